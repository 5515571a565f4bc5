package dispatch

import (
	"fmt"
	"regexp"
	"strings"
)

// AddressingPolicy decides what counts as "directly addressed". The default
// follows the usual chat convention: a leading mention token, the bot's
// name with a trailing ':' or ',', or a known alias, all case-insensitive.
// Every piece is configurable rather than hard-coded.
type AddressingPolicy struct {
	// BotID is the platform user id of the bot ("U123...").
	BotID string

	// BotName is the bot's display name; "name: text" addresses the bot.
	BotName string

	// Aliases are additional tokens that address the bot, e.g. "!".
	Aliases []string

	// CaseSensitive disables the default case-insensitive matching.
	CaseSensitive bool
}

// addressMatcher is the compiled form of an AddressingPolicy. Its regex
// captures the addressing prefix and the remaining text in one pass.
type addressMatcher struct {
	policy AddressingPolicy
	re     *regexp.Regexp
}

// compilePolicy builds the message matcher. The shape mirrors the
// conventional "<@id>: text" / "name: text" / "alias text" addressing:
//
//	^(?:<@(?P<atuser>\w+)>[:,]?|(?P<username>\w+)[:,]|(?P<alias>...)) ?(?P<text>.*)$
func compilePolicy(p AddressingPolicy) (*addressMatcher, error) {
	aliasAlt := ""
	if len(p.Aliases) > 0 {
		quoted := make([]string, 0, len(p.Aliases))
		for _, a := range p.Aliases {
			if a == "" {
				continue
			}
			quoted = append(quoted, regexp.QuoteMeta(a))
		}
		if len(quoted) > 0 {
			aliasAlt = fmt.Sprintf(`|(?P<alias>%s)`, strings.Join(quoted, "|"))
		}
	}

	flags := "(?is)"
	if p.CaseSensitive {
		flags = "(?s)"
	}

	pattern := fmt.Sprintf(`%s^(?:<@(?P<atuser>\w+)>[:,]?|(?P<username>\w+)[:,]%s) ?(?P<text>.*)$`, flags, aliasAlt)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling addressing policy: %w", err)
	}
	return &addressMatcher{policy: p, re: re}, nil
}

// strip applies the matcher to text. addressed reports whether the prefix
// targets this bot; remainder is the text with the prefix removed (equal to
// text when not addressed).
func (m *addressMatcher) strip(text string) (addressed bool, remainder string) {
	match := m.re.FindStringSubmatch(text)
	if match == nil {
		return false, text
	}

	var atUser, username, alias, rest string
	for i, name := range m.re.SubexpNames() {
		switch name {
		case "atuser":
			atUser = match[i]
		case "username":
			username = match[i]
		case "alias":
			alias = match[i]
		case "text":
			rest = match[i]
		}
	}

	if alias != "" {
		return true, rest
	}
	if atUser != "" && atUser == m.policy.BotID {
		return true, rest
	}
	if username != "" && m.nameMatches(username) {
		return true, rest
	}
	return false, text
}

func (m *addressMatcher) nameMatches(name string) bool {
	if m.policy.BotName == "" {
		return false
	}
	if m.policy.CaseSensitive {
		return name == m.policy.BotName
	}
	return strings.EqualFold(name, m.policy.BotName)
}
