package ai

import "context"

// Provider sends a prompt to an LLM and returns the raw text response.
// Providers are tried in order by the Extractor; a provider error moves
// on to the next one in the chain.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
