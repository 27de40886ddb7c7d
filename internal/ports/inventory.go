package ports

import (
	"context"

	"skill-installer/internal/types"
)

// InventoryPort reports the package versions installed on this device.
type InventoryPort interface {
	InstalledVersions(ctx context.Context, depType types.DependencyType) (map[string]string, error)
}
