package app

import (
	"context"

	"skill-installer/internal/types"
)

// Install installs the skill target names, reinstalling it when it is
// local but flagged beta.
func (s *Service) Install(ctx context.Context, target string) (types.Outcome, error) {
	return s.runConfirmable(ctx, confirmable{
		action:      types.ActionInstall,
		target:      target,
		preferLocal: false,
		verify: func(_ context.Context, entry types.SkillEntry, manifest types.Manifest) (*types.Outcome, error) {
			if entry.IsLocal && !manifest[entry.Name].Beta {
				return nil, types.NewSkillError(types.KindAlreadyInstalled, entry.Name, nil)
			}
			return nil, nil
		},
		checkRequirements: true,
		variant: func(entry types.SkillEntry) types.DialogVariant {
			if entry.IsLocal {
				return types.DialogReinstall
			}
			return types.DialogInstall
		},
		execute: func(ctx context.Context, entry types.SkillEntry) error {
			if entry.IsLocal {
				if err := s.Catalog.Remove(ctx, entry); err != nil {
					return err
				}
			}
			return s.Catalog.Install(ctx, entry)
		},
		record: func(manifest types.Manifest, entry types.SkillEntry) {
			s.recordInstalled(manifest, entry.Name, false, true, nil)
		},
		complete: types.ReportInstallComplete,
	})
}

// InstallBeta moves the skill to the latest revision of its beta channel.
func (s *Service) InstallBeta(ctx context.Context, target string) (types.Outcome, error) {
	return s.runConfirmable(ctx, confirmable{
		action:      types.ActionInstallBeta,
		target:      target,
		preferLocal: false,
		verify: func(_ context.Context, entry types.SkillEntry, manifest types.Manifest) (*types.Outcome, error) {
			if entry.IsLocal && manifest[entry.Name].Beta {
				return &types.Outcome{Key: types.ReportAlreadyBeta}, nil
			}
			return nil, nil
		},
		checkRequirements: true,
		variant: func(entry types.SkillEntry) types.DialogVariant {
			if entry.IsLocal {
				return types.DialogUpgradeBeta
			}
			return types.DialogInstallBeta
		},
		execute: func(ctx context.Context, entry types.SkillEntry) error {
			entry.Revision = ""
			if entry.IsLocal {
				return s.Catalog.Update(ctx, entry)
			}
			return s.Catalog.Install(ctx, entry)
		},
		record: func(manifest types.Manifest, entry types.SkillEntry) {
			s.recordInstalled(manifest, entry.Name, true, true, nil)
		},
		complete: types.ReportInstallBetaComplete,
	})
}

// recordInstalled upserts a manifest entry. Devices are kept from the
// existing entry when devices is nil.
func (s *Service) recordInstalled(manifest types.Manifest, name string, beta bool, manual bool, devices []string) {
	entry := manifest[name]
	entry.Name = name
	entry.Beta = beta
	entry.ManualInstall = manual
	if devices != nil {
		entry.Devices = append([]string(nil), devices...)
	}
	entry.UpdatedAt = s.now()
	manifest[name] = entry
}
