package ports

import (
	"context"

	"skill-installer/internal/types"
)

// ManifestStorePort persists the reconciliation manifest.
//
// Lock grants exclusive access for a load-modify-save cycle; the returned
// function releases it and is safe to call more than once.
type ManifestStorePort interface {
	Load(ctx context.Context) (types.Manifest, error)
	Save(ctx context.Context, manifest types.Manifest) error
	Lock(ctx context.Context) (func(), error)
}

// ManifestPushPort uploads the manifest to the remote authority.
type ManifestPushPort interface {
	Push(ctx context.Context, manifest types.Manifest) error
}
