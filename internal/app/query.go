package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"skill-installer/internal/types"
)

const availableSkillsShown = 4

// IsInstalled reports whether the skill target names is local.
func (s *Service) IsInstalled(ctx context.Context, target string) (types.Outcome, error) {
	ctx = beginTxn(ctx, types.ActionQuery, target)
	data := map[string]string{"skill": strings.TrimSpace(target), "action": string(types.ActionQuery)}
	if data["skill"] == "" {
		return s.fail(ctx, data, types.NewSkillError(types.KindNotFound, "", nil))
	}
	transition(ctx, stateResolving)
	candidates, err := s.candidates(ctx, target, true)
	if err != nil {
		return s.fail(ctx, data, err)
	}
	transition(ctx, stateDisambiguating)
	selection, err := s.Disambiguator.Disambiguate(ctx, candidates, s.Asker)
	if err != nil {
		return s.fail(ctx, data, err)
	}
	switch selection.State {
	case types.SelectionAborted:
		return s.cancel(ctx, data)
	case types.SelectionReported:
		return s.fail(ctx, data, types.NewSkillError(selection.Kind, target, nil))
	}
	key := types.ReportIsNotInstalled
	if selection.Entry.IsLocal {
		key = types.ReportIsInstalled
	}
	transition(ctx, stateNotifying)
	return s.report(ctx, types.Outcome{Key: key, Skill: selection.Entry.Name, Data: withSkill(data, selection.Entry.Name)})
}

// ListAvailable suggests a few skills that are not installed yet.
func (s *Service) ListAvailable(ctx context.Context) (types.Outcome, error) {
	ctx = beginTxn(ctx, types.ActionList, "")
	data := map[string]string{"action": string(types.ActionList)}
	entries, err := s.Catalog.List(ctx)
	if err != nil {
		return s.fail(ctx, data, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsLocal {
			names = append(names, entry.Name)
		}
	}
	if len(names) == 0 {
		return s.report(ctx, types.Outcome{Key: types.ReportNoAvailableSkills, Data: data})
	}
	if s.Shuffle != nil {
		s.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	}
	if len(names) > availableSkillsShown {
		names = names[:availableSkillsShown]
	}
	log.Ctx(ctx).Debug().Strs("skills", names).Msg("suggesting skills")
	data["skills"] = strings.Join(names, ", ")
	return s.report(ctx, types.Outcome{Key: types.ReportAvailableSkills, Data: data})
}
