package app

import (
	"context"

	"skill-installer/internal/types"
)

// Remove uninstalls a local skill and drops its manifest entry.
func (s *Service) Remove(ctx context.Context, target string) (types.Outcome, error) {
	return s.runConfirmable(ctx, confirmable{
		action:      types.ActionRemove,
		target:      target,
		preferLocal: true,
		verify: func(_ context.Context, entry types.SkillEntry, _ types.Manifest) (*types.Outcome, error) {
			if !entry.IsLocal {
				return nil, types.NewSkillError(types.KindAlreadyRemoved, entry.Name, nil)
			}
			return nil, nil
		},
		variant: func(types.SkillEntry) types.DialogVariant {
			return types.DialogRemove
		},
		execute: func(ctx context.Context, entry types.SkillEntry) error {
			return s.Catalog.Remove(ctx, entry)
		},
		record: func(manifest types.Manifest, entry types.SkillEntry) {
			delete(manifest, entry.Name)
		},
		complete: types.ReportRemoveComplete,
	})
}
