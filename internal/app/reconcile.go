package app

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"skill-installer/internal/core"
	"skill-installer/internal/policies"
	"skill-installer/internal/types"
)

// ApplyDirective reconciles local skills with a directive. Removal wins over
// installation, items targeting other devices are skipped, and each item
// succeeds or fails on its own. The manifest is persisted and pushed once.
func (s *Service) ApplyDirective(ctx context.Context, directive types.Directive) (ReconcileResult, error) {
	ctx = beginTxn(ctx, types.ActionReconcile, "")
	result := emptyReconcileResult()

	plan := policies.NewDirectivePolicy(s.deviceID(ctx)).Plan(directive)
	entries, err := s.Catalog.List(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list catalog, nothing changed")
		return result, err
	}
	known := make(map[string]types.SkillEntry, len(entries))
	for _, entry := range entries {
		known[entry.Name] = entry
	}
	var toInstall, toRemove []string
	for _, name := range plan.Install {
		entry, ok := known[name]
		if !ok {
			log.Ctx(ctx).Warn().Str("skill", name).Msg("directive names unknown skill")
			continue
		}
		if !entry.IsLocal {
			toInstall = append(toInstall, name)
		}
	}
	for _, name := range plan.Remove {
		if entry, ok := known[name]; ok && entry.IsLocal {
			toRemove = append(toRemove, name)
		}
	}
	if len(toInstall) == 0 && len(toRemove) == 0 {
		log.Ctx(ctx).Debug().Msg("directive requires no changes")
		return result, nil
	}

	s.mu.Lock()
	unlock, err := s.Manifest.Lock(ctx)
	if err != nil {
		s.mu.Unlock()
		log.Ctx(ctx).Error().Err(err).Msg("failed to lock manifest, nothing changed")
		return result, err
	}
	release := func() {
		unlock()
		s.mu.Unlock()
	}

	transition(ctx, stateExecuting)
	result.Installed = s.Catalog.ApplyBatch(ctx, func(ctx context.Context, entry types.SkillEntry) error {
		if err := s.Requirements.Check(ctx, entry); err != nil {
			return err
		}
		return s.Catalog.Install(ctx, entry)
	}, toInstall)
	result.Removed = s.Catalog.ApplyBatch(ctx, func(ctx context.Context, entry types.SkillEntry) error {
		return s.Catalog.Remove(ctx, entry)
	}, toRemove)
	logBatchFailures(ctx, "install", result.Installed)
	logBatchFailures(ctx, "remove", result.Removed)

	transition(ctx, statePersisting)
	manifest, err := s.Manifest.Load(ctx)
	if err != nil {
		release()
		log.Ctx(ctx).Error().Err(err).Msg("failed to load manifest")
		return result, err
	}
	manifest = manifest.Clone()
	devices := directiveDevices(directive.ToInstall)
	for _, name := range result.Installed.Succeeded {
		s.recordInstalled(manifest, name, false, false, devices[name])
	}
	for _, name := range result.Removed.Succeeded {
		delete(manifest, name)
	}
	if err := s.Manifest.Save(ctx, manifest); err != nil {
		release()
		log.Ctx(ctx).Error().Err(err).Msg("failed to save manifest")
		return result, err
	}
	release()

	transition(ctx, stateNotifying)
	s.push(ctx, manifest)
	log.Ctx(ctx).Info().
		Int("installed", len(result.Installed.Succeeded)).
		Int("removed", len(result.Removed.Succeeded)).
		Int("failed", len(result.Installed.Failed)+len(result.Removed.Failed)).
		Msg("directive applied")
	return result, nil
}

// ApplyDirectivePayload parses a serialized directive and applies it. A
// payload that does not parse changes nothing.
func (s *Service) ApplyDirectivePayload(ctx context.Context, payload string) (ReconcileResult, error) {
	directive, err := core.ParseDirective(payload)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("ignoring malformed directive")
		return emptyReconcileResult(), nil
	}
	return s.ApplyDirective(ctx, directive)
}

// Reconcile loads the directive from the configured source and applies it.
func (s *Service) Reconcile(ctx context.Context) (ReconcileResult, error) {
	if s.Directives == nil {
		return emptyReconcileResult(), nil
	}
	directive, err := s.Directives.Load(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("ignoring unreadable directive")
		return emptyReconcileResult(), nil
	}
	return s.ApplyDirective(ctx, directive)
}

func (s *Service) deviceID(ctx context.Context) string {
	if s.Device == nil {
		return ""
	}
	id, err := s.Device.DeviceID(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("device identity unavailable, only untargeted items apply")
		return ""
	}
	return id
}

// directiveDevices collects the device targets of install items by name.
func directiveDevices(items []types.DirectiveItem) map[string][]string {
	out := map[string][]string{}
	for _, item := range items {
		if len(item.Devices) == 0 {
			continue
		}
		name := strings.TrimSpace(item.Name)
		out[name] = append(out[name], item.Devices...)
	}
	return out
}

func logBatchFailures(ctx context.Context, action string, result types.BatchResult) {
	names := make([]string, 0, len(result.Failed))
	for name := range result.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log.Ctx(ctx).Warn().Err(result.Failed[name]).Str("skill", name).Str("batch", action).Msg("batch item failed")
	}
}
