package core

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-installer/internal/types"
)

type askCall struct {
	Prompt     string
	Data       map[string]string
	MaxRetries int
}

type fakeAsker struct {
	response string
	err      error
	calls    []askCall
}

func (f *fakeAsker) Ask(_ context.Context, prompt string, data map[string]string, maxRetries int) (string, error) {
	f.calls = append(f.calls, askCall{Prompt: prompt, Data: data, MaxRetries: maxRetries})
	return f.response, f.err
}

func TestDisambiguateWithoutPrompt(t *testing.T) {
	disambiguator := NewDisambiguator(NewNormalizer(nil, nil), 0)
	tests := []struct {
		name       string
		candidates []types.SkillEntry
		want       types.Selection
	}{
		{
			name: "none",
			want: types.Selection{State: types.SelectionReported, Kind: types.KindNotFound},
		},
		{
			name:       "single",
			candidates: catalogOf("weather-skill"),
			want:       types.Selection{State: types.SelectionSelected, Entry: types.SkillEntry{Name: "weather-skill"}},
		},
		{
			name:       "at limit",
			candidates: catalogOf("a", "b", "c", "d", "e", "f", "g", "h"),
			want:       types.Selection{State: types.SelectionReported, Kind: types.KindAmbiguousSelection},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asker := &fakeAsker{response: "1"}
			got, err := disambiguator.Disambiguate(t.Context(), tt.candidates, asker)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected selection (-want +got):\n%s", diff)
			}
			assert.Empty(t, asker.calls)
		})
	}
}

func TestDisambiguatePresentsNumberedChoices(t *testing.T) {
	disambiguator := NewDisambiguator(NewNormalizer(nil, nil), DefaultChoiceLimit)
	asker := &fakeAsker{response: "the third one please"}
	candidates := catalogOf("a", "b", "c", "d", "e", "f", "g")

	got, err := disambiguator.Disambiguate(t.Context(), candidates, asker)
	require.NoError(t, err)
	assert.Equal(t, types.SelectionSelected, got.State)

	want := []askCall{{
		Prompt:     types.PromptChooseSkill,
		Data:       map[string]string{"skills": "1. a, 2. b, 3. c, 4. d, 5. e, 6. f, or 7. g"},
		MaxRetries: 0,
	}}
	if diff := cmp.Diff(want, asker.calls); diff != "" {
		t.Fatalf("unexpected prompts (-want +got):\n%s", diff)
	}
	assert.Equal(t, "c", got.Entry.Name)
}

func TestDisambiguateOrdinalBeatsSimilarity(t *testing.T) {
	disambiguator := NewDisambiguator(NewNormalizer(nil, nil), DefaultChoiceLimit)
	candidates := catalogOf("weather-skill", "news-skill")

	for _, response := range []string{"weather number 2", "weather 2", "weather, second", "two"} {
		t.Run(response, func(t *testing.T) {
			got, err := disambiguator.Disambiguate(t.Context(), candidates, &fakeAsker{response: response})
			require.NoError(t, err)
			assert.Equal(t, types.SelectionSelected, got.State)
			assert.Equal(t, "news-skill", got.Entry.Name)
		})
	}
}

func TestDisambiguateFirstListedOrdinalWins(t *testing.T) {
	disambiguator := NewDisambiguator(NewNormalizer(nil, nil), DefaultChoiceLimit)
	candidates := catalogOf("a", "b", "c")

	got, err := disambiguator.Disambiguate(t.Context(), candidates, &fakeAsker{response: "3 or 2"})
	require.NoError(t, err)
	assert.Equal(t, "b", got.Entry.Name)

	got, err = disambiguator.Disambiguate(t.Context(), candidates, &fakeAsker{response: "one"})
	require.NoError(t, err)
	assert.Equal(t, "a", got.Entry.Name)
}

func TestDisambiguateNameBeatsBareOne(t *testing.T) {
	disambiguator := NewDisambiguator(NewNormalizer(nil, nil), DefaultChoiceLimit)
	candidates := catalogOf("weather-skill", "weather-alerts-skill")

	got, err := disambiguator.Disambiguate(t.Context(), candidates, &fakeAsker{response: "the weather alerts one"})
	require.NoError(t, err)
	assert.Equal(t, types.SelectionSelected, got.State)
	assert.Equal(t, "weather-alerts-skill", got.Entry.Name)

	got, err = disambiguator.Disambiguate(t.Context(), candidates, &fakeAsker{response: "the second one"})
	require.NoError(t, err)
	assert.Equal(t, "weather-alerts-skill", got.Entry.Name)
}

func TestDisambiguateByName(t *testing.T) {
	disambiguator := NewDisambiguator(NewNormalizer(nil, nil), DefaultChoiceLimit)
	candidates := catalogOf("weather-skill", "news-skill")

	got, err := disambiguator.Disambiguate(t.Context(), candidates, &fakeAsker{response: "News"})
	require.NoError(t, err)
	assert.Equal(t, types.SelectionSelected, got.State)
	assert.Equal(t, "news-skill", got.Entry.Name)
}

func TestDisambiguateAborts(t *testing.T) {
	disambiguator := NewDisambiguator(NewNormalizer(nil, nil), DefaultChoiceLimit)
	candidates := catalogOf("weather-skill", "news-skill")

	for _, response := range []string{"", "   ", "zzzz qqqq"} {
		got, err := disambiguator.Disambiguate(t.Context(), candidates, &fakeAsker{response: response})
		require.NoError(t, err)
		assert.Equal(t, types.SelectionAborted, got.State, "response %q", response)
	}
}

func TestDisambiguateAskError(t *testing.T) {
	disambiguator := NewDisambiguator(NewNormalizer(nil, nil), DefaultChoiceLimit)
	boom := errors.New("boom")
	_, err := disambiguator.Disambiguate(t.Context(), catalogOf("a", "b"), &fakeAsker{err: boom})
	require.ErrorIs(t, err, boom)
}
