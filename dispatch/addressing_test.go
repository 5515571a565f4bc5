package dispatch

import (
	"testing"
)

func mustCompile(t *testing.T, p AddressingPolicy) *addressMatcher {
	t.Helper()
	m, err := compilePolicy(p)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return m
}

func TestAddressMatcher_Strip(t *testing.T) {
	m := mustCompile(t, AddressingPolicy{BotID: "UBOT", BotName: "machine", Aliases: []string{"!"}})

	cases := []struct {
		name      string
		text      string
		addressed bool
		remainder string
	}{
		{"mention token", "<@UBOT> ping", true, "ping"},
		{"mention with colon", "<@UBOT>: ping", true, "ping"},
		{"mention with comma", "<@UBOT>, ping", true, "ping"},
		{"bot name with colon", "machine: ping", true, "ping"},
		{"bot name with comma", "machine, ping", true, "ping"},
		{"bot name case-insensitive", "MACHINE: ping", true, "ping"},
		{"alias", "!ping", true, "ping"},
		{"foreign mention", "<@UOTHER> ping", false, "<@UOTHER> ping"},
		{"foreign name", "otherbot: ping", false, "otherbot: ping"},
		{"plain text", "ping", false, "ping"},
		{"name without separator", "machine ping", false, "machine ping"},
		{"multiline remainder", "machine: line one\nline two", true, "line one\nline two"},
		{"empty remainder", "machine:", true, ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			addressed, remainder := m.strip(c.text)
			if addressed != c.addressed || remainder != c.remainder {
				t.Fatalf("strip(%q) = (%v, %q), want (%v, %q)",
					c.text, addressed, remainder, c.addressed, c.remainder)
			}
		})
	}
}

func TestAddressMatcher_CaseSensitive(t *testing.T) {
	m := mustCompile(t, AddressingPolicy{BotName: "Machine", CaseSensitive: true})

	if ok, _ := m.strip("machine: ping"); ok {
		t.Error("lowercase name must not address a case-sensitive bot")
	}
	if ok, rest := m.strip("Machine: ping"); !ok || rest != "ping" {
		t.Error("exact-case name must address the bot")
	}
}

func TestAddressMatcher_NoBotName(t *testing.T) {
	m := mustCompile(t, AddressingPolicy{BotID: "UBOT"})

	if ok, _ := m.strip("anything: text"); ok {
		t.Error("a name prefix must not address a bot without a configured name")
	}
	if ok, rest := m.strip("<@UBOT> text"); !ok || rest != "text" {
		t.Error("the mention token must still address the bot")
	}
}

func TestAddressMatcher_AliasQuoting(t *testing.T) {
	// alias with regex metacharacters must be treated literally
	m := mustCompile(t, AddressingPolicy{BotName: "machine", Aliases: []string{"?"}})

	if ok, rest := m.strip("?ping"); !ok || rest != "ping" {
		t.Error("metacharacter alias must match literally")
	}
	if ok, _ := m.strip("xping"); ok {
		t.Error("quoted alias must not act as a wildcard")
	}
}
