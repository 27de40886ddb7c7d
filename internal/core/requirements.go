package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"skill-installer/internal/ports"
	"skill-installer/internal/types"
)

// RequirementsChecker verifies a skill's declared requirements against the
// packages installed on this device.
type RequirementsChecker struct {
	Inventory ports.InventoryPort
}

func NewRequirementsChecker(inventory ports.InventoryPort) RequirementsChecker {
	return RequirementsChecker{Inventory: inventory}
}

// Check fails with a pip or system requirements SkillError naming the
// first unmet package of each kind.
func (c RequirementsChecker) Check(ctx context.Context, entry types.SkillEntry) error {
	if c.Inventory == nil {
		return nil
	}
	deps, err := requirementDependencies(entry)
	if err != nil {
		return types.NewSkillError(types.KindRequirementsUnmet, entry.Name, err)
	}
	if len(deps) == 0 {
		return nil
	}
	installed := map[types.DependencyType]map[string]string{}
	cache := newVersionCache()
	var unmet []string
	var unmetType types.DependencyType
	for _, dep := range deps {
		versions, ok := installed[dep.Type]
		if !ok {
			versions, err = c.Inventory.InstalledVersions(ctx, dep.Type)
			if err != nil {
				return types.NewSkillError(types.KindRequirementsUnmet, entry.Name, err)
			}
			installed[dep.Type] = versions
		}
		version, present := versions[dep.Name]
		if !present {
			unmet = append(unmet, dep.Name)
			unmetType = dep.Type
			continue
		}
		satisfied, err := installedSatisfies(dep, version, cache)
		if err != nil {
			return types.NewSkillError(kindForDependency(dep.Type), entry.Name, err)
		}
		if !satisfied {
			unmet = append(unmet, fmt.Sprintf("%s (installed %s)", dep.Name, version))
			unmetType = dep.Type
		}
	}
	if len(unmet) == 0 {
		return nil
	}
	log.Ctx(ctx).Debug().Str("skill", entry.Name).Strs("unmet", unmet).Msg("requirements not satisfied")
	return types.NewSkillError(kindForDependency(unmetType), entry.Name, errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("unmet requirements: "+strings.Join(unmet, ", ")))
}

func kindForDependency(depType types.DependencyType) types.ErrorKind {
	switch depType {
	case types.DependencyTypePip:
		return types.KindPipRequirementsUnmet
	case types.DependencyTypeApt:
		return types.KindSystemRequirementsUnmet
	default:
		return types.KindRequirementsUnmet
	}
}
