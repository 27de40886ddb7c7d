package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"skill-installer/internal/ports"
	"skill-installer/internal/types"
)

// DefaultChoiceLimit is the candidate count at which disambiguation gives up
// without asking.
const DefaultChoiceLimit = 8

// minResponseSimilarity is the free-text score a response must exceed to
// select a candidate by name.
const minResponseSimilarity = 0.5

var spokenOrdinals = map[string]int{
	"one": 1, "first": 1,
	"two": 2, "second": 2,
	"three": 3, "third": 3,
	"four": 4, "fourth": 4,
	"five": 5, "fifth": 5,
	"six": 6, "sixth": 6,
	"seven": 7, "seventh": 7,
	"eight": 8, "eighth": 8,
	"nine": 9, "ninth": 9,
}

type Disambiguator struct {
	Normalizer Normalizer
	Limit      int
	OrWord     string
}

func NewDisambiguator(normalizer Normalizer, limit int) Disambiguator {
	if limit <= 1 {
		limit = DefaultChoiceLimit
	}
	return Disambiguator{Normalizer: normalizer, Limit: limit, OrWord: "or"}
}

// Disambiguate narrows candidates to one entry, asking at most once.
func (d Disambiguator) Disambiguate(ctx context.Context, candidates []types.SkillEntry, asker ports.AskPort) (types.Selection, error) {
	switch {
	case len(candidates) == 0:
		return types.Selection{State: types.SelectionReported, Kind: types.KindNotFound}, nil
	case len(candidates) == 1:
		return types.Selection{State: types.SelectionSelected, Entry: candidates[0]}, nil
	case len(candidates) >= d.Limit:
		log.Ctx(ctx).Info().Int("candidates", len(candidates)).Msg("too many matches to choose from")
		return types.Selection{State: types.SelectionReported, Kind: types.KindAmbiguousSelection}, nil
	}
	response, err := asker.Ask(ctx, types.PromptChooseSkill, map[string]string{
		"skills": d.presentChoices(candidates),
	}, 0)
	if err != nil {
		return types.Selection{}, err
	}
	entry, ok := d.Interpret(response, candidates)
	if !ok {
		return types.Selection{State: types.SelectionAborted}, nil
	}
	return types.Selection{State: types.SelectionSelected, Entry: entry}, nil
}

// Interpret maps a response onto one of the presented candidates. A listed
// ordinal wins over any name similarity. A bare "one" is read as the first
// candidate only when no name matches.
func (d Disambiguator) Interpret(response string, candidates []types.SkillEntry) (types.SkillEntry, bool) {
	response = strings.TrimSpace(response)
	if response == "" {
		return types.SkillEntry{}, false
	}
	ordinals, sawOne := responseOrdinals(response)
	for i, entry := range candidates {
		if _, ok := ordinals[i+1]; ok {
			return entry, true
		}
	}
	if entry, ok := d.matchName(response, candidates); ok {
		return entry, true
	}
	if sawOne && len(candidates) > 0 {
		return candidates[0], true
	}
	return types.SkillEntry{}, false
}

func (d Disambiguator) matchName(response string, candidates []types.SkillEntry) (types.SkillEntry, bool) {
	heard := d.Normalizer.Normalize(response).Text
	bestIndex, bestScore := -1, 0.0
	for i, entry := range candidates {
		score := charSimilarity(heard, d.Normalizer.NormalizeName(entry.Name).Text)
		if score > bestScore {
			bestIndex, bestScore = i, score
		}
	}
	if bestIndex < 0 || bestScore <= minResponseSimilarity {
		return types.SkillEntry{}, false
	}
	return candidates[bestIndex], true
}

func (d Disambiguator) presentChoices(candidates []types.SkillEntry) string {
	items := make([]string, len(candidates))
	for i, entry := range candidates {
		items[i] = fmt.Sprintf("%d. %s", i+1, entry.Name)
	}
	last := len(items) - 1
	return fmt.Sprintf("%s, %s %s", strings.Join(items[:last], ", "), d.OrWord, items[last])
}

// responseOrdinals collects the ordinals named in response and reports a
// bare "one" separately, so "the third one" means 3.
func responseOrdinals(response string) (map[int]struct{}, bool) {
	found := map[int]struct{}{}
	sawOne := false
	for _, token := range strings.Fields(strings.ToLower(response)) {
		token = strings.Trim(token, ".,;:!?#()")
		token = strings.TrimPrefix(token, "number")
		if token == "one" {
			sawOne = true
			continue
		}
		if n, err := strconv.Atoi(token); err == nil {
			found[n] = struct{}{}
			continue
		}
		if n, ok := spokenOrdinals[token]; ok {
			found[n] = struct{}{}
		}
	}
	return found, sawOne && len(found) == 0
}
