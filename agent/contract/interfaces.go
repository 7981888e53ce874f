package contract

import "context"

// Generator produces one completion for the given conversation history.
type Generator interface {
	Generate(ctx context.Context, turns []Turn) (string, error)
}
