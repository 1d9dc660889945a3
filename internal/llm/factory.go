package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fleveque/market-radar/internal/config"
)

// NewClients builds the configured providers in llm.provider_order.
// Providers without an API key are skipped with a warning.
func NewClients(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) ([]Client, error) {
	var clients []Client

	for _, name := range cfg.ProviderOrder {
		pc, ok := cfg.Provider(name)
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", name)
		}
		if pc.APIKey == "" {
			logger.Warn("provider has no API key, skipping", zap.String("provider", name))
			continue
		}

		switch name {
		case "gemini":
			c, err := NewGeminiClient(ctx, pc.APIKey, pc.Model)
			if err != nil {
				return nil, err
			}
			clients = append(clients, c)
		case "anthropic":
			clients = append(clients, NewAnthropicClient(pc.APIKey, pc.Model))
		case "openai":
			clients = append(clients, NewOpenAIClient(pc.APIKey, pc.Model))
		}

		logger.Info("generation provider enabled",
			zap.String("provider", name),
			zap.String("model", pc.Model),
		)
	}

	return clients, nil
}
