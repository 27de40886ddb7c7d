package ports

import (
	"context"

	"skill-installer/internal/types"
)

// BatchFunc is applied to each named entry of a batch.
type BatchFunc func(ctx context.Context, entry types.SkillEntry) error

// CatalogPort is the skill repository the installer acts upon.
type CatalogPort interface {
	List(ctx context.Context) ([]types.SkillEntry, error)

	// FindByName returns the single entry matching text. It fails with a
	// *types.AmbiguousMatchError when several entries match, or a NotFound
	// *types.SkillError when none does.
	FindByName(ctx context.Context, text string) (types.SkillEntry, error)

	Install(ctx context.Context, entry types.SkillEntry) error
	Remove(ctx context.Context, entry types.SkillEntry) error
	Update(ctx context.Context, entry types.SkillEntry) error
	InstallURL(ctx context.Context, url string) (types.SkillEntry, error)

	// ApplyBatch runs fn for every name concurrently and records each
	// outcome under its name.
	ApplyBatch(ctx context.Context, fn BatchFunc, names []string) types.BatchResult
}

// ExecutorPort performs the transport work behind a catalog mutation.
type ExecutorPort interface {
	Install(ctx context.Context, entry types.SkillEntry, dir string) error
	Remove(ctx context.Context, entry types.SkillEntry, dir string) error
	Update(ctx context.Context, entry types.SkillEntry, dir string) error
}
