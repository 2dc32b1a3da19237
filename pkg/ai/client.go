// pkg/ai/client.go

package ai

import "context"

// Client is the generative-text collaborator: one prompt in, Markdown text out.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}
