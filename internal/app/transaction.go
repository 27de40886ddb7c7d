package app

import (
	"context"
	"errors"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"skill-installer/internal/policies"
	"skill-installer/internal/types"
)

type txnState string

const (
	stateResolving      txnState = "resolving"
	stateDisambiguating txnState = "disambiguating"
	stateConfirming     txnState = "confirming"
	stateExecuting      txnState = "executing"
	statePersisting     txnState = "persisting"
	stateNotifying      txnState = "notifying"
	stateAborted        txnState = "aborted"
	stateReported       txnState = "reported"
)

// confirmable describes one confirm-then-act transaction.
type confirmable struct {
	action types.Action
	target string
	// preferLocal narrows an ambiguous candidate set to entries whose local
	// state matches, when any do.
	preferLocal bool
	// verify runs before any prompt. A non-nil outcome ends the transaction
	// with that informational acknowledgment.
	verify            func(ctx context.Context, entry types.SkillEntry, manifest types.Manifest) (*types.Outcome, error)
	checkRequirements bool
	variant           func(entry types.SkillEntry) types.DialogVariant
	execute           func(ctx context.Context, entry types.SkillEntry) error
	record            func(manifest types.Manifest, entry types.SkillEntry)
	complete          types.ReportKey
}

// beginTxn tags the context logger with a transaction id.
func beginTxn(ctx context.Context, action types.Action, target string) context.Context {
	logger := log.Ctx(ctx).With().
		Str("txn", uuid.New().String()).
		Str("action", string(action)).
		Logger()
	ctx = logger.WithContext(ctx)
	logger.Debug().Str("target", target).Msg("transaction started")
	return ctx
}

func transition(ctx context.Context, state txnState) {
	log.Ctx(ctx).Debug().Str("state", string(state)).Msg("transaction state")
}

func (s *Service) runConfirmable(ctx context.Context, tx confirmable) (types.Outcome, error) {
	ctx = beginTxn(ctx, tx.action, tx.target)
	data := map[string]string{"skill": strings.TrimSpace(tx.target), "action": string(tx.action)}
	if data["skill"] == "" {
		return s.fail(ctx, data, types.NewSkillError(types.KindNotFound, "", nil))
	}

	transition(ctx, stateResolving)
	candidates, err := s.candidates(ctx, tx.target, tx.preferLocal)
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
		return s.fail(ctx, data, types.NewSkillError(selection.Kind, tx.target, nil))
	}
	entry := selection.Entry
	data["author"] = entry.Author

	if tx.verify != nil {
		manifest, err := s.Manifest.Load(ctx)
		if err != nil {
			return s.fail(ctx, data, err)
		}
		informational, err := tx.verify(ctx, entry, manifest)
		if err != nil {
			return s.fail(ctx, data, err)
		}
		if informational != nil {
			informational.Skill = entry.Name
			informational.Data = withSkill(data, entry.Name)
			transition(ctx, stateReported)
			return s.report(ctx, *informational)
		}
	}
	if tx.checkRequirements {
		if err := s.Requirements.Check(ctx, entry); err != nil {
			return s.fail(ctx, data, err)
		}
	}

	transition(ctx, stateConfirming)
	decision, err := s.Gate.Confirm(ctx, entry, tx.variant(entry), s.Asker)
	if err != nil {
		return s.fail(ctx, data, err)
	}
	if decision != types.DecisionAccepted {
		return s.cancel(ctx, data)
	}

	if err := s.commit(ctx, entry, tx.execute, tx.record); err != nil {
		return s.fail(ctx, data, err)
	}

	transition(ctx, stateNotifying)
	return s.report(ctx, types.Outcome{Key: tx.complete, Skill: entry.Name, Data: withSkill(data, entry.Name)})
}

// commit executes the mutation and persists the manifest while holding
// both the service lock and the store lock. Nothing is persisted when
// execution fails. The manifest is pushed after the locks are released.
func (s *Service) commit(ctx context.Context, entry types.SkillEntry, execute func(context.Context, types.SkillEntry) error, record func(types.Manifest, types.SkillEntry)) error {
	assert.NotEmpty(ctx, entry.Name, "committed skill must have a name")
	s.mu.Lock()
	unlock, err := s.Manifest.Lock(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	release := func() {
		unlock()
		s.mu.Unlock()
	}

	transition(ctx, stateExecuting)
	if err := execute(ctx, entry); err != nil {
		release()
		return err
	}

	transition(ctx, statePersisting)
	manifest, err := s.Manifest.Load(ctx)
	if err != nil {
		release()
		return err
	}
	manifest = manifest.Clone()
	record(manifest, entry)
	if err := s.Manifest.Save(ctx, manifest); err != nil {
		release()
		return err
	}
	release()

	s.push(ctx, manifest)
	return nil
}

// push uploads the manifest best-effort.
func (s *Service) push(ctx context.Context, manifest types.Manifest) {
	if s.Push == nil {
		return
	}
	if err := s.Push.Push(ctx, manifest); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("manifest push failed")
	}
}

func (s *Service) cancel(ctx context.Context, data map[string]string) (types.Outcome, error) {
	transition(ctx, stateAborted)
	log.Ctx(ctx).Info().Str("skill", data["skill"]).Msg("transaction cancelled")
	return s.report(ctx, types.Outcome{Key: types.ReportCancelled, Data: data})
}

// fail maps err onto exactly one acknowledgment and returns it tagged with
// its kind.
func (s *Service) fail(ctx context.Context, data map[string]string, err error) (types.Outcome, error) {
	transition(ctx, stateReported)
	kind := policies.Classify(err)
	if kind == types.KindCancelled {
		return s.cancel(ctx, data)
	}
	skill := data["skill"]
	var skillErr *types.SkillError
	if policies.NamesSkill(kind) && errors.As(err, &skillErr) && skillErr.Skill != "" {
		skill = skillErr.Skill
	}
	log.Ctx(ctx).Error().Err(err).Str("kind", string(kind)).Str("skill", skill).Msg("transaction failed")

	outcome := types.Outcome{
		Key:   policies.ReportKeyFor(kind),
		Skill: skill,
		Data:  withSkill(data, skill),
	}
	if _, reportErr := s.report(ctx, outcome); reportErr != nil {
		return outcome, reportErr
	}
	if _, ok := types.KindOf(err); !ok {
		err = types.NewSkillError(kind, skill, err)
	}
	return outcome, err
}

func (s *Service) report(ctx context.Context, outcome types.Outcome) (types.Outcome, error) {
	if s.Reporter == nil {
		return outcome, nil
	}
	if err := s.Reporter.Report(ctx, outcome); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("report", string(outcome.Key)).Msg("failed to deliver report")
		return outcome, err
	}
	return outcome, nil
}

func withSkill(data map[string]string, skill string) map[string]string {
	out := make(map[string]string, len(data)+1)
	for key, value := range data {
		out[key] = value
	}
	out["skill"] = skill
	return out
}
