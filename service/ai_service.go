package service

import "context"

// AIService is the opaque text-completion boundary: one prompt in, one
// answer out. Implementations never fetch their own context; the query
// engine decides what the model may see.
type AIService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
