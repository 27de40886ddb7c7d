package ports

import (
	"context"

	"skill-installer/internal/types"
)

// AskPort reads one response to a prompt. An empty string means the user
// did not answer.
type AskPort interface {
	Ask(ctx context.Context, prompt string, data map[string]string, maxRetries int) (string, error)
}

// ReporterPort delivers the acknowledgment of a finished transaction.
type ReporterPort interface {
	Report(ctx context.Context, outcome types.Outcome) error
}
