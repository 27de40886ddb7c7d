package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"skill-installer/internal/shared"
	"skill-installer/internal/types"
)

// InstallCustom installs a skill straight from a repository link. An empty
// link falls back to the configured installer link.
func (s *Service) InstallCustom(ctx context.Context, link string) (types.Outcome, error) {
	link = strings.TrimSpace(link)
	if link == "" && s.Settings != nil {
		settings, err := s.Settings.LoadSettings(ctx)
		if err != nil {
			ctx = beginTxn(ctx, types.ActionCustom, "")
			return s.fail(ctx, map[string]string{"skill": "", "action": string(types.ActionCustom)}, err)
		}
		link = strings.TrimSpace(settings.InstallerLink)
	}
	ctx = beginTxn(ctx, types.ActionCustom, link)
	name := shared.ExtractRepoName(link)
	data := map[string]string{"skill": name, "action": string(types.ActionCustom)}
	if name == "" {
		return s.fail(ctx, data, types.NewSkillError(types.KindNotFound, link, nil))
	}

	entry := types.SkillEntry{Name: name, URL: link}
	install := func(ctx context.Context, entry types.SkillEntry) error {
		_, err := s.Catalog.InstallURL(ctx, entry.URL)
		return err
	}
	record := func(manifest types.Manifest, entry types.SkillEntry) {
		s.recordInstalled(manifest, entry.Name, false, true, nil)
	}
	if err := s.commit(ctx, entry, install, record); err != nil {
		return s.fail(ctx, data, err)
	}
	transition(ctx, stateNotifying)
	return s.report(ctx, types.Outcome{Key: types.ReportInstallComplete, Skill: name, Data: data})
}

// OnSettingsChanged installs the configured link when auto-install is on and
// the link differs from the one installed last. The second result reports
// whether an install was attempted.
func (s *Service) OnSettingsChanged(ctx context.Context, settings types.Settings) (types.Outcome, bool, error) {
	link := strings.TrimSpace(settings.InstallerLink)
	if link == "" || link == strings.TrimSpace(settings.PreviousLink) || !settings.AutoInstall {
		return types.Outcome{}, false, nil
	}
	log.Ctx(ctx).Info().Str("link", link).Msg("installer link changed")
	settings.PreviousLink = link
	if s.Settings != nil {
		if err := s.Settings.SaveSettings(ctx, settings); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to record previous link")
		}
	}
	outcome, err := s.InstallCustom(ctx, link)
	return outcome, true, err
}

// ReloadSettings reads the settings source and reacts to any change.
func (s *Service) ReloadSettings(ctx context.Context) (types.Outcome, bool, error) {
	if s.Settings == nil {
		return types.Outcome{}, false, nil
	}
	settings, err := s.Settings.LoadSettings(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to load settings")
		return types.Outcome{}, false, err
	}
	return s.OnSettingsChanged(ctx, settings)
}
