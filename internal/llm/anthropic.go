package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Five to seven detailed players plus trends overflow 4096 output tokens.
const maxAnthropicTokens = 8192

// AnthropicClient implements the Client interface using Claude with native web search.
// Claude's built-in web_search tool runs server side within the same request, and
// the text blocks it writes afterwards cite the pages they drew on.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a new Claude-backed analysis client.
func NewAnthropicClient(apiKey string, model string) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicClient{
		client: &client,
		model:  model,
	}
}

func (a *AnthropicClient) ProviderName() string { return "anthropic" }
func (a *AnthropicClient) ModelName() string    { return a.model }

func (a *AnthropicClient) Generate(ctx context.Context, req Request) (*Reply, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxAnthropicTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Grounded {
		params.Tools = []anthropic.ToolUnionParam{
			{OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{}},
		}
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, generationError(a, fmt.Errorf("anthropic API call: %w", err))
	}

	reply, err := replyFromAnthropic(message)
	if err != nil {
		return nil, generationError(a, err)
	}
	return reply, nil
}

// replyFromAnthropic concatenates the text blocks of message and collects the
// web-search citations attached to them. Tool-use and search-result blocks
// are skipped. A reply cut short by the token limit, a paused server-tool
// turn or a refusal is an error rather than text the extractor would reject
// as invalid JSON.
func replyFromAnthropic(message *anthropic.Message) (*Reply, error) {
	if message == nil {
		return nil, errors.New("anthropic returned no message")
	}

	switch message.StopReason {
	case "max_tokens":
		return nil, fmt.Errorf("reply truncated at %d output tokens", message.Usage.OutputTokens)
	case "pause_turn":
		return nil, errors.New("reply paused mid web search")
	case "refusal":
		return nil, errors.New("model refused to answer")
	}

	reply := &Reply{}
	var sb strings.Builder
	for _, block := range message.Content {
		text, ok := block.AsAny().(anthropic.TextBlock)
		if !ok {
			continue
		}
		sb.WriteString(text.Text)

		for _, citation := range text.Citations {
			web, ok := citation.AsAny().(anthropic.CitationsWebSearchResultLocation)
			if !ok {
				continue
			}
			reply.Citations = append(reply.Citations, Citation{URI: web.URL, Title: web.Title})
		}
	}
	reply.Text = sb.String()

	return reply, nil
}
