package policies

import (
	"strings"

	"skill-installer/internal/types"
)

// DirectivePolicy decides which directive items apply to this device.
type DirectivePolicy struct {
	DeviceID string
}

// DirectivePlan lists the skill names a directive asks this device to
// install and remove, in directive order without duplicates.
type DirectivePlan struct {
	Install []string
	Remove  []string
}

func NewDirectivePolicy(deviceID string) DirectivePolicy {
	return DirectivePolicy{DeviceID: strings.TrimSpace(deviceID)}
}

// Plan applies removal precedence first, then the device filter. A name
// listed for removal is never installed by the same directive, whatever
// devices either item targets.
func (p DirectivePolicy) Plan(directive types.Directive) DirectivePlan {
	removing := map[string]struct{}{}
	for _, item := range directive.ToRemove {
		if name := normalizeDirectiveName(item.Name); name != "" {
			removing[name] = struct{}{}
		}
	}
	var install []types.DirectiveItem
	for _, item := range directive.ToInstall {
		if _, ok := removing[normalizeDirectiveName(item.Name)]; ok {
			continue
		}
		install = append(install, item)
	}
	return DirectivePlan{
		Install: p.applicableNames(install),
		Remove:  p.applicableNames(directive.ToRemove),
	}
}

// AppliesTo reports whether item targets this device. Items without a
// device list target every device.
func (p DirectivePolicy) AppliesTo(item types.DirectiveItem) bool {
	return matchesDevice(p.DeviceID, item.Devices)
}

func (p DirectivePolicy) applicableNames(items []types.DirectiveItem) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, item := range items {
		name := normalizeDirectiveName(item.Name)
		if name == "" || !p.AppliesTo(item) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func matchesDevice(device string, devices []string) bool {
	if len(devices) == 0 {
		return true
	}
	if device == "" {
		return false
	}
	for _, entry := range devices {
		if strings.TrimSpace(entry) == device {
			return true
		}
	}
	return false
}

func normalizeDirectiveName(value string) string {
	return strings.TrimSpace(value)
}
