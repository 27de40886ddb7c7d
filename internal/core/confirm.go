package core

import (
	"context"
	"strings"

	"skill-installer/internal/ports"
	"skill-installer/internal/types"
)

var DefaultYesWords = []string{
	"yes", "yeah", "yep", "sure", "ok", "okay", "confirm", "please", "absolutely", "correct",
}

// ConfirmationGate asks a single yes/no question.
type ConfirmationGate struct {
	yesWords map[string]struct{}
}

func NewConfirmationGate(yesWords []string) ConfirmationGate {
	if len(yesWords) == 0 {
		yesWords = DefaultYesWords
	}
	set := make(map[string]struct{}, len(yesWords))
	for _, word := range yesWords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			set[word] = struct{}{}
		}
	}
	return ConfirmationGate{yesWords: set}
}

func (g ConfirmationGate) Confirm(ctx context.Context, entry types.SkillEntry, variant types.DialogVariant, asker ports.AskPort) (types.Decision, error) {
	response, err := asker.Ask(ctx, string(variant), map[string]string{
		"skill":  entry.Name,
		"author": entry.Author,
	}, 0)
	if err != nil {
		return types.DecisionDeclined, err
	}
	if g.Affirmative(response) {
		return types.DecisionAccepted, nil
	}
	return types.DecisionDeclined, nil
}

// Affirmative reports whether any word of response is a yes-word.
func (g ConfirmationGate) Affirmative(response string) bool {
	for _, token := range strings.Fields(strings.ToLower(response)) {
		if _, ok := g.yesWords[strings.Trim(token, ".,;:!?")]; ok {
			return true
		}
	}
	return false
}
