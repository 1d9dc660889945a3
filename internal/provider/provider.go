// Package provider wraps the configured generation clients in an ordered
// chain: the first provider is primary, the rest are fallbacks.
package provider

import "github.com/fleveque/market-radar/internal/llm"

// Result is a reply together with the provider that produced it.
type Result struct {
	Reply    *llm.Reply
	Provider string
	Model    string
}
