package plugins

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/slackmachine/core"
)

// AIOptions configures the AI responder plugin.
type AIOptions struct {
	// Model selects the Claude model to answer with.
	Model anthropic.Model

	// MaxTokens caps the answer length.
	MaxTokens int64

	// System is the system prompt framing the bot's answers.
	System string

	// APIKey authenticates against the Anthropic API; falls back to the
	// SDK's environment lookup when empty.
	APIKey string
}

// AI answers free-form questions via the Anthropic Messages API when the
// bot is addressed with "ask <question>". Answers are replies in the
// originating channel; API failures follow the ordinary handler failure
// path.
type AI struct {
	client *anthropic.Client
	opts   AIOptions
}

// NewAI constructs the AI responder with its own API client.
func NewAI(optFns ...func(o *AIOptions)) *AI {
	opts := AIOptions{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 1024,
		System:    "You are a concise, helpful chat bot. Answer in plain text suitable for a chat channel.",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &AI{client: &client, opts: opts}
}

// NewAIFromClient constructs the AI responder reusing an existing client.
func NewAIFromClient(client *anthropic.Client, optFns ...func(o *AIOptions)) *AI {
	opts := AIOptions{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 1024,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &AI{client: client, opts: opts}
}

// Name implements core.Plugin.
func (a *AI) Name() string { return "builtin.AI" }

// Group implements core.Plugin.
func (a *AI) Group() string { return "ai" }

// Description implements core.Plugin.
func (a *AI) Description() string { return "Ask the bot anything" }

// Handlers implements core.Plugin.
func (a *AI) Handlers() []core.HandlerSpec {
	return []core.HandlerSpec{
		core.Respond("ask", `(?s)^ask (?P<question>.+)$`, "ask <question>: answers with the help of a language model", a.ask).WantLogger(),
	}
}

func (a *AI) ask(ctx *core.Context) error {
	question := strings.TrimSpace(ctx.Matches["question"])
	if question == "" {
		return ctx.Reply("Ask me something, e.g. `ask why is the sky blue?`")
	}

	params := anthropic.MessageNewParams{
		Model:     a.opts.Model,
		MaxTokens: a.opts.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
		},
	}
	if a.opts.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: a.opts.System}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return fmt.Errorf("anthropic api error: %w", err)
	}

	var answer strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			answer.WriteString(block.AsText().Text)
		}
	}
	if answer.Len() == 0 {
		return ctx.Reply("I have no answer to that.")
	}

	ctx.Logger.Info("answered question", "question_len", len(question), "answer_len", answer.Len())

	return ctx.Reply(answer.String())
}
