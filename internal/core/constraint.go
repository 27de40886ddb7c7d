package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"skill-installer/internal/shared"
	"skill-installer/internal/types"
)

// opTokens is the ordered list of constraint operators tried during
// parsing. Longer tokens must precede shorter ones (">=" before ">").
var opTokens = []types.ConstraintOp{
	types.ConstraintOpGte,
	types.ConstraintOpLte,
	types.ConstraintOpCompat,
	types.ConstraintOpNe,
	types.ConstraintOpEq2,
	types.ConstraintOpEq,
	types.ConstraintOpGt,
	types.ConstraintOpLt,
}

// ParseConstraint splits a raw "name>=version" requirement. A bare name
// yields ConstraintOpNone, meaning any installed version will do.
func ParseConstraint(raw string, source string) (types.Constraint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Constraint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty requirement")
	}
	for _, op := range opTokens {
		if !strings.Contains(raw, string(op)) {
			continue
		}
		parts := strings.SplitN(raw, string(op), 2)
		name := strings.TrimSpace(parts[0])
		version := strings.TrimSpace(parts[1])
		if name == "" || version == "" {
			return types.Constraint{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid requirement: %s", raw))
		}
		return types.Constraint{
			Name:    name,
			Op:      op,
			Version: version,
			Source:  source,
		}, nil
	}
	return types.Constraint{Name: raw, Op: types.ConstraintOpNone, Source: source}, nil
}

// requirementDependencies groups a skill's requirement strings by package.
func requirementDependencies(entry types.SkillEntry) ([]types.Dependency, error) {
	var out []types.Dependency
	index := map[string]int{}
	add := func(depType types.DependencyType, raw string) error {
		constraint, err := ParseConstraint(raw, "skill:"+entry.Name)
		if err != nil {
			return err
		}
		name := constraint.Name
		if depType == types.DependencyTypePip {
			name = shared.NormalizePipName(name)
		}
		key := string(depType) + ":" + name
		if i, ok := index[key]; ok {
			out[i].Constraints = append(out[i].Constraints, constraint)
			return nil
		}
		index[key] = len(out)
		out = append(out, types.Dependency{
			Name:        name,
			Type:        depType,
			Constraints: []types.Constraint{constraint},
		})
		return nil
	}
	for _, raw := range entry.Requirements.System {
		if err := add(types.DependencyTypeApt, raw); err != nil {
			return nil, err
		}
	}
	for _, raw := range entry.Requirements.Python {
		if err := add(types.DependencyTypePip, raw); err != nil {
			return nil, err
		}
	}
	return out, nil
}
