package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-installer/internal/types"
)

func TestConfirm(t *testing.T) {
	gate := NewConfirmationGate(nil)
	entry := types.SkillEntry{Name: "weather-skill", Author: "mycroft"}
	tests := []struct {
		response string
		want     types.Decision
	}{
		{"yes", types.DecisionAccepted},
		{"Yeah, go ahead", types.DecisionAccepted},
		{"sure.", types.DecisionAccepted},
		{"no", types.DecisionDeclined},
		{"yesterday", types.DecisionDeclined},
		{"", types.DecisionDeclined},
	}
	for _, tt := range tests {
		t.Run(tt.response, func(t *testing.T) {
			asker := &fakeAsker{response: tt.response}
			got, err := gate.Confirm(t.Context(), entry, types.DialogInstall, asker)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			want := []askCall{{
				Prompt:     "install.confirm",
				Data:       map[string]string{"skill": "weather-skill", "author": "mycroft"},
				MaxRetries: 0,
			}}
			if diff := cmp.Diff(want, asker.calls); diff != "" {
				t.Fatalf("unexpected prompts (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfirmCustomYesWords(t *testing.T) {
	gate := NewConfirmationGate([]string{" Ja "})
	assert.True(t, gate.Affirmative("ja bitte"))
	assert.False(t, gate.Affirmative("yes"))
}
