package adapters

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-installer/internal/types"
)

func TestConsoleAskAdapter(t *testing.T) {
	var out bytes.Buffer
	asker := NewConsoleAskAdapter(strings.NewReader("  yes please \nsecond\n"), &out)

	response, err := asker.Ask(t.Context(), string(types.DialogInstall), map[string]string{
		"skill":  "weather-skill",
		"author": "mycroft",
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "yes please", response)
	assert.Equal(t, "Install weather-skill by mycroft? ", out.String())

	response, err = asker.Ask(t.Context(), "custom.prompt", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "second", response)

	response, err = asker.Ask(t.Context(), types.PromptChooseSkill, map[string]string{"skills": "1. a, or 2. b"}, 0)
	require.NoError(t, err)
	assert.Empty(t, response)
	assert.Contains(t, out.String(), "Which skill did you mean: 1. a, or 2. b? ")
}

func TestConsoleReporterAdapter(t *testing.T) {
	var out bytes.Buffer
	reporter := NewConsoleReporterAdapter(&out)

	require.NoError(t, reporter.Report(t.Context(), types.Outcome{
		Key:   types.ReportInstallComplete,
		Skill: "weather-skill",
		Data:  map[string]string{"skill": "weather-skill", "author": "mycroft"},
	}))
	require.NoError(t, reporter.Report(t.Context(), types.Outcome{Key: types.ReportCancelled}))
	require.NoError(t, reporter.Report(t.Context(), types.Outcome{
		Key:  types.ReportCancelled,
		Data: map[string]string{"skill": "news-skill"},
	}))

	want := "install.complete skill=weather-skill author=\"mycroft\"\ncancelled\ncancelled skill=\"news-skill\"\n"
	assert.Equal(t, want, out.String())
}
