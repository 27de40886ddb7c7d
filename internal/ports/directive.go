package ports

import (
	"context"

	"skill-installer/internal/types"
)

type DirectiveSourcePort interface {
	Load(ctx context.Context) (types.Directive, error)
}

type SettingsSourcePort interface {
	LoadSettings(ctx context.Context) (types.Settings, error)
	SaveSettings(ctx context.Context, settings types.Settings) error
}
