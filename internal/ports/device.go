package ports

import "context"

type DeviceIdentityPort interface {
	DeviceID(ctx context.Context) (string, error)
}
