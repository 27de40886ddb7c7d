package adapters

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/shirou/gopsutil/v4/host"

	"skill-installer/internal/ports"
)

// DeviceIdentityAdapter returns the configured device ID, falling back to
// the host ID reported by the operating system.
type DeviceIdentityAdapter struct {
	Configured string
	hostID     func(ctx context.Context) (string, error)
}

func NewDeviceIdentityAdapter(configured string) DeviceIdentityAdapter {
	return DeviceIdentityAdapter{Configured: configured, hostID: host.HostIDWithContext}
}

func (a DeviceIdentityAdapter) DeviceID(ctx context.Context) (string, error) {
	if id := strings.TrimSpace(a.Configured); id != "" {
		return id, nil
	}
	lookup := a.hostID
	if lookup == nil {
		lookup = host.HostIDWithContext
	}
	id, err := lookup(ctx)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read host id").
			WithCause(err)
	}
	return strings.TrimSpace(id), nil
}

var _ ports.DeviceIdentityPort = DeviceIdentityAdapter{}
