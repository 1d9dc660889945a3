package service

import (
	"context"
	"sync"

	"github.com/fleveque/market-radar/internal/llm"
)

// scriptedClient is an llm.Client that answers from a script and remembers
// every prompt it was sent.
type scriptedClient struct {
	mu      sync.Mutex
	script  []func(ctx context.Context) (*llm.Reply, error)
	prompts []string
}

func (c *scriptedClient) Generate(ctx context.Context, req llm.Request) (*llm.Reply, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, req.Prompt)
	step := c.script[0]
	if len(c.script) > 1 {
		c.script = c.script[1:]
	}
	c.mu.Unlock()
	return step(ctx)
}

func (c *scriptedClient) ProviderName() string { return "scripted" }
func (c *scriptedClient) ModelName() string    { return "scripted-1" }

func (c *scriptedClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

func replyWith(text string, citations ...llm.Citation) func(context.Context) (*llm.Reply, error) {
	return func(context.Context) (*llm.Reply, error) {
		return &llm.Reply{Text: text, Citations: citations}, nil
	}
}

func failWith(err error) func(context.Context) (*llm.Reply, error) {
	return func(context.Context) (*llm.Reply, error) {
		return nil, err
	}
}
