package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements the Client interface using OpenAI's chat API as a fallback.
// The chat API has no search grounding, so replies never carry citations.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI-backed analysis client.
func NewOpenAIClient(apiKey string, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (o *OpenAIClient) ProviderName() string { return "openai" }
func (o *OpenAIClient) ModelName() string    { return o.model }

func (o *OpenAIClient) Generate(ctx context.Context, req Request) (*Reply, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: "You are a market research analyst. Answer with the requested JSON in a json code block.",
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return nil, generationError(o, fmt.Errorf("openai API call: %w", err))
	}

	reply, err := replyFromOpenAI(resp)
	if err != nil {
		return nil, generationError(o, err)
	}
	return reply, nil
}

// replyFromOpenAI takes the first choice. A choice cut off by the token limit
// or the content filter is an error.
func replyFromOpenAI(resp openai.ChatCompletionResponse) (*Reply, error) {
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	choice := resp.Choices[0]
	switch choice.FinishReason {
	case openai.FinishReasonLength:
		return nil, errors.New("reply truncated by the token limit")
	case openai.FinishReasonContentFilter:
		return nil, errors.New("reply withheld by the content filter")
	}

	return &Reply{Text: choice.Message.Content}, nil
}
