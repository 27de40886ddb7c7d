package app

import (
	"context"
	"errors"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"skill-installer/internal/policies"
	"skill-installer/internal/types"
)

// candidates resolves target against the catalog. When fuzzy matching finds
// nothing, the catalog's own lookup is consulted and an ambiguous lookup
// contributes its candidates.
func (s *Service) candidates(ctx context.Context, target string, preferLocal bool) ([]types.SkillEntry, error) {
	entries, err := s.Catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	found := s.Resolver.Resolve(ctx, target, entries)
	if len(found) == 0 {
		entry, err := s.Catalog.FindByName(ctx, target)
		var ambiguous *types.AmbiguousMatchError
		switch {
		case err == nil:
			found = []types.SkillEntry{entry}
		case errors.As(err, &ambiguous):
			found = ambiguous.Candidates
		case policies.Classify(err) == types.KindNotFound:
			return nil, nil
		default:
			return nil, err
		}
	}
	return narrowByLocal(found, preferLocal), nil
}

// narrowByLocal keeps the candidates whose local state matches local. When
// none match, installs keep every candidate, while removals keep only the
// best one so that it is reported as already removed without a prompt.
func narrowByLocal(candidates []types.SkillEntry, local bool) []types.SkillEntry {
	if len(candidates) < 2 {
		return candidates
	}
	var narrowed []types.SkillEntry
	for _, entry := range candidates {
		if entry.IsLocal == local {
			narrowed = append(narrowed, entry)
		}
	}
	if len(narrowed) == 0 {
		if local {
			return candidates[:1]
		}
		return candidates
	}
	return narrowed
}

// Explain scores target against the whole catalog without interacting.
func (s *Service) Explain(ctx context.Context, target string) (ExplainResult, error) {
	if strings.TrimSpace(target) == "" {
		return ExplainResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("query is required")
	}
	entries, err := s.Catalog.List(ctx)
	if err != nil {
		return ExplainResult{}, err
	}
	return ExplainResult{
		Query:      target,
		Scores:     s.Resolver.ScoreAll(target, entries),
		Candidates: s.Resolver.Resolve(ctx, target, entries),
	}, nil
}
