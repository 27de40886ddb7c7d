package app

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-installer/internal/core"
	"skill-installer/internal/types"
)

func TestInstallConfirmedRecordsManifestAndPushes(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("weather-skill"), remote("news-skill")}, "yes please")

	outcome, err := h.svc.Install(t.Context(), "weather")
	require.NoError(t, err)

	assert.Equal(t, types.ReportInstallComplete, outcome.Key)
	assert.Equal(t, "weather-skill", outcome.Skill)
	assert.Equal(t, []string{"install:weather-skill"}, h.catalog.calls)
	assert.Equal(t, []string{string(types.DialogInstall)}, h.asker.prompts)
	assert.Equal(t, []types.ReportKey{types.ReportInstallComplete}, h.reporter.keys())
	assert.Equal(t, 1, h.push.calls)

	want := types.Manifest{
		"weather-skill": {Name: "weather-skill", ManualInstall: true, UpdatedAt: "2025-06-15T10:30:00Z"},
	}
	if diff := cmp.Diff(want, h.manifest.data); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestInstallAlreadyLocalReportsWithoutPrompt(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{local("weather-skill")}, "yes")

	outcome, err := h.svc.Install(t.Context(), "weather skill")
	require.Error(t, err)

	kind, ok := types.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, types.KindAlreadyInstalled, kind)
	assert.Equal(t, types.ReportErrAlreadyInstalled, outcome.Key)
	assert.Equal(t, "weather-skill", outcome.Data["skill"])
	assert.Empty(t, h.asker.prompts)
	assert.Empty(t, h.catalog.calls)
	assert.Zero(t, h.manifest.saves)
	assert.Len(t, h.reporter.outcomes, 1)
}

func TestInstallLocalBetaReinstalls(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{local("weather-skill")}, "yes")
	h.manifest.data = types.Manifest{
		"weather-skill": {Name: "weather-skill", Beta: true, Devices: []string{"kitchen"}},
	}

	outcome, err := h.svc.Install(t.Context(), "weather skill")
	require.NoError(t, err)

	assert.Equal(t, types.ReportInstallComplete, outcome.Key)
	assert.Equal(t, []string{string(types.DialogReinstall)}, h.asker.prompts)
	assert.Equal(t, []string{"remove:weather-skill", "install:weather-skill"}, h.catalog.calls)
	entry := h.manifest.data["weather-skill"]
	assert.False(t, entry.Beta)
	assert.True(t, entry.ManualInstall)
	assert.Equal(t, []string{"kitchen"}, entry.Devices)
}

func TestInstallNoResponseCancels(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("weather-skill")})
	before := h.manifest.data.Clone()

	outcome, err := h.svc.Install(t.Context(), "weather")
	require.NoError(t, err)

	assert.Equal(t, types.ReportCancelled, outcome.Key)
	assert.Equal(t, []types.ReportKey{types.ReportCancelled}, h.reporter.keys())
	assert.Empty(t, h.catalog.calls)
	assert.Zero(t, h.manifest.saves)
	assert.Zero(t, h.push.calls)
	assert.Equal(t, before, h.manifest.data)
}

func TestInstallDeclinedCancels(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("weather-skill")}, "no thanks")

	outcome, err := h.svc.Install(t.Context(), "weather")
	require.NoError(t, err)
	assert.Equal(t, types.ReportCancelled, outcome.Key)
	assert.Empty(t, h.catalog.calls)
}

func TestInstallUnknownSkillReportsNotFound(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("weather-skill")}, "yes")

	outcome, err := h.svc.Install(t.Context(), "xyzzy")
	require.Error(t, err)

	assert.Equal(t, types.ReportErrNotFound, outcome.Key)
	assert.Equal(t, "xyzzy", outcome.Data["skill"])
	assert.Empty(t, h.asker.prompts)
}

func TestInstallEmptyTargetReportsNotFound(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("weather-skill")}, "yes")

	outcome, err := h.svc.Install(t.Context(), "   ")
	require.Error(t, err)
	assert.Equal(t, types.ReportErrNotFound, outcome.Key)
	assert.Empty(t, h.catalog.calls)
}

func TestInstallDisambiguatesByOrdinal(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("timer-one-skill"), remote("timer-two-skill")}, "the second", "yes")

	outcome, err := h.svc.Install(t.Context(), "timer")
	require.NoError(t, err)

	assert.Equal(t, "timer-two-skill", outcome.Skill)
	assert.Equal(t, []string{types.PromptChooseSkill, string(types.DialogInstall)}, h.asker.prompts)
	assert.Equal(t, []string{"install:timer-two-skill"}, h.catalog.calls)
}

func TestInstallUnintelligibleChoiceCancels(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("timer-one-skill"), remote("timer-two-skill")}, "")

	outcome, err := h.svc.Install(t.Context(), "timer")
	require.NoError(t, err)
	assert.Equal(t, types.ReportCancelled, outcome.Key)
	assert.Equal(t, []string{types.PromptChooseSkill}, h.asker.prompts)
}

func TestInstallTooManyCandidatesReportsWithoutPrompt(t *testing.T) {
	var entries []types.SkillEntry
	for _, letter := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		entries = append(entries, remote("timer-"+letter+"-skill"))
	}
	h := newHarness(t, entries, "first")

	outcome, err := h.svc.Install(t.Context(), "timer")
	require.Error(t, err)

	assert.Equal(t, types.ReportErrTooManySkills, outcome.Key)
	assert.Equal(t, "timer", outcome.Data["skill"])
	assert.Empty(t, h.asker.prompts)
}

func TestInstallCatalogAmbiguityOffersCandidates(t *testing.T) {
	alpha, beta := remote("alpha-skill"), remote("beta-skill")
	h := newHarness(t, []types.SkillEntry{alpha, beta}, "first", "yes")
	h.catalog.findErr = &types.AmbiguousMatchError{Query: "zzzz", Candidates: []types.SkillEntry{alpha, beta}}

	outcome, err := h.svc.Install(t.Context(), "zzzz")
	require.NoError(t, err)
	assert.Equal(t, "alpha-skill", outcome.Skill)
	assert.Equal(t, []string{types.PromptChooseSkill, string(types.DialogInstall)}, h.asker.prompts)
}

func TestInstallExecutionFailureLeavesManifestUntouched(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("weather-skill")}, "yes")
	h.catalog.fail["weather-skill"] = types.NewSkillError(types.KindTransportFailure, "weather-skill", errors.New("clone failed"))

	outcome, err := h.svc.Install(t.Context(), "weather")
	require.Error(t, err)

	assert.Equal(t, types.ReportErrFilesystem, outcome.Key)
	assert.Zero(t, h.manifest.saves)
	assert.Zero(t, h.push.calls)
	assert.Len(t, h.reporter.outcomes, 1)
}

func TestInstallUnclassifiedFailureIsTagged(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("weather-skill")}, "yes")
	h.catalog.fail["weather-skill"] = errors.New("disk on fire")

	outcome, err := h.svc.Install(t.Context(), "weather")
	require.Error(t, err)

	assert.Equal(t, types.ReportErrOther, outcome.Key)
	kind, ok := types.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, types.KindUnclassified, kind)
}

func TestInstallPushFailureDoesNotFailTransaction(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("weather-skill")}, "yes")
	h.push.err = errors.New("backend down")

	outcome, err := h.svc.Install(t.Context(), "weather")
	require.NoError(t, err)
	assert.Equal(t, types.ReportInstallComplete, outcome.Key)
	assert.Equal(t, 1, h.manifest.saves)
	assert.Equal(t, 1, h.push.calls)
}

func TestInstallUnmetRequirementsReportsBeforeConfirm(t *testing.T) {
	entry := remote("vision-skill")
	entry.Requirements.Python = []string{"numpy>=1.20"}
	h := newHarness(t, []types.SkillEntry{entry}, "yes")
	h.svc.Requirements = core.NewRequirementsChecker(fakeInventory{
		types.DependencyTypePip: {"numpy": "1.19.0"},
	})

	outcome, err := h.svc.Install(t.Context(), "vision skill")
	require.Error(t, err)

	assert.Equal(t, types.ReportErrPipRequirements, outcome.Key)
	assert.Equal(t, "vision skill", outcome.Data["skill"])
	assert.Empty(t, h.asker.prompts)
	assert.Empty(t, h.catalog.calls)
}

func TestInstallBetaFreshInstall(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("weather-skill")}, "yes")

	outcome, err := h.svc.InstallBeta(t.Context(), "weather")
	require.NoError(t, err)

	assert.Equal(t, types.ReportInstallBetaComplete, outcome.Key)
	assert.Equal(t, []string{string(types.DialogInstallBeta)}, h.asker.prompts)
	assert.Equal(t, []string{"install:weather-skill"}, h.catalog.calls)
	assert.True(t, h.manifest.data["weather-skill"].Beta)
	assert.True(t, h.manifest.data["weather-skill"].ManualInstall)
}

func TestInstallBetaUpgradesLocalToLatestRevision(t *testing.T) {
	entry := local("weather-skill")
	entry.Revision = "v1.2.0"
	h := newHarness(t, []types.SkillEntry{entry}, "sure")

	outcome, err := h.svc.InstallBeta(t.Context(), "weather")
	require.NoError(t, err)

	assert.Equal(t, types.ReportInstallBetaComplete, outcome.Key)
	assert.Equal(t, []string{string(types.DialogUpgradeBeta)}, h.asker.prompts)
	assert.Equal(t, []string{"update:weather-skill"}, h.catalog.calls)
	require.Len(t, h.catalog.executed, 1)
	assert.Empty(t, h.catalog.executed[0].Revision)
	assert.True(t, h.manifest.data["weather-skill"].Beta)
}

func TestInstallBetaAlreadyBetaIsInformational(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{local("weather-skill")}, "yes")
	h.manifest.data = types.Manifest{"weather-skill": {Name: "weather-skill", Beta: true}}

	outcome, err := h.svc.InstallBeta(t.Context(), "weather")
	require.NoError(t, err)

	assert.Equal(t, types.ReportAlreadyBeta, outcome.Key)
	assert.Equal(t, "weather-skill", outcome.Skill)
	assert.Empty(t, h.asker.prompts)
	assert.Zero(t, h.manifest.saves)
}

func TestRemoveConfirmedDropsManifestEntry(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{local("weather-skill"), local("news-skill")}, "yes")
	h.manifest.data = types.Manifest{
		"weather-skill": {Name: "weather-skill"},
		"news-skill":    {Name: "news-skill"},
	}

	outcome, err := h.svc.Remove(t.Context(), "weather")
	require.NoError(t, err)

	assert.Equal(t, types.ReportRemoveComplete, outcome.Key)
	assert.Equal(t, []string{string(types.DialogRemove)}, h.asker.prompts)
	assert.Equal(t, []string{"remove:weather-skill"}, h.catalog.calls)
	assert.NotContains(t, h.manifest.data, "weather-skill")
	assert.Contains(t, h.manifest.data, "news-skill")
	assert.Equal(t, 1, h.push.calls)
}

func TestRemoveNotLocalReportsWithoutPrompt(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("weather-skill")}, "yes")

	outcome, err := h.svc.Remove(t.Context(), "weather")
	require.Error(t, err)

	kind, _ := types.KindOf(err)
	assert.Equal(t, types.KindAlreadyRemoved, kind)
	assert.Equal(t, types.ReportErrAlreadyRemoved, outcome.Key)
	assert.Empty(t, h.asker.prompts)
	assert.Empty(t, h.catalog.calls)
	assert.Len(t, h.reporter.outcomes, 1)
}

func TestRemoveAmbiguousNotLocalReportsWithoutPrompt(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("timer-one-skill"), remote("timer-two-skill")}, "1")

	outcome, err := h.svc.Remove(t.Context(), "timer skill")
	require.Error(t, err)

	kind, _ := types.KindOf(err)
	assert.Equal(t, types.KindAlreadyRemoved, kind)
	assert.Equal(t, types.ReportErrAlreadyRemoved, outcome.Key)
	assert.Empty(t, h.asker.prompts)
	assert.Empty(t, h.catalog.calls)
	assert.Len(t, h.reporter.outcomes, 1)
}

func TestRemovePrefersLocalCandidate(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("timer-one-skill"), local("timer-two-skill")}, "yes")

	outcome, err := h.svc.Remove(t.Context(), "timer")
	require.NoError(t, err)

	assert.Equal(t, "timer-two-skill", outcome.Skill)
	assert.Equal(t, []string{string(types.DialogRemove)}, h.asker.prompts)
}

func TestIsInstalled(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{local("weather-skill"), remote("news-skill")})

	outcome, err := h.svc.IsInstalled(t.Context(), "weather")
	require.NoError(t, err)
	assert.Equal(t, types.ReportIsInstalled, outcome.Key)

	outcome, err = h.svc.IsInstalled(t.Context(), "news")
	require.NoError(t, err)
	assert.Equal(t, types.ReportIsNotInstalled, outcome.Key)
	assert.Equal(t, "news-skill", outcome.Skill)

	assert.Empty(t, h.asker.prompts)
	assert.Empty(t, h.catalog.calls)
}

func TestListAvailableSuggestsUninstalledSkills(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{
		remote("a-skill"), local("b-skill"), remote("c-skill"), remote("d-skill"),
		remote("e-skill"), remote("f-skill"),
	})
	h.svc.Shuffle = func(int, func(i, j int)) {}

	outcome, err := h.svc.ListAvailable(t.Context())
	require.NoError(t, err)

	assert.Equal(t, types.ReportAvailableSkills, outcome.Key)
	assert.Equal(t, "a-skill, c-skill, d-skill, e-skill", outcome.Data["skills"])
}

func TestListAvailableNothingLeft(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{local("a-skill")})

	outcome, err := h.svc.ListAvailable(t.Context())
	require.NoError(t, err)
	assert.Equal(t, types.ReportNoAvailableSkills, outcome.Key)
}

func TestExplainScoresWholeCatalog(t *testing.T) {
	h := newHarness(t, []types.SkillEntry{remote("weather-skill"), remote("news-skill")})

	result, err := h.svc.Explain(t.Context(), "weather")
	require.NoError(t, err)

	require.Len(t, result.Scores, 2)
	assert.InDelta(t, 0.9, result.Scores[0].Score, 1e-9)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "weather-skill", result.Candidates[0].Name)

	_, err = h.svc.Explain(t.Context(), " ")
	require.Error(t, err)
}

func TestNarrowByLocal(t *testing.T) {
	tests := []struct {
		name       string
		candidates []types.SkillEntry
		local      bool
		want       []string
	}{
		{"single passes through", []types.SkillEntry{remote("a-skill")}, true, []string{"a-skill"}},
		{"keeps local for removal", []types.SkillEntry{remote("a-skill"), local("b-skill")}, true, []string{"b-skill"}},
		{"keeps remote for install", []types.SkillEntry{remote("a-skill"), local("b-skill")}, false, []string{"a-skill"}},
		{"removal without local keeps best", []types.SkillEntry{remote("a-skill"), remote("b-skill")}, true, []string{"a-skill"}},
		{"install without remote keeps all", []types.SkillEntry{local("a-skill"), local("b-skill")}, false, []string{"a-skill", "b-skill"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, entry := range narrowByLocal(tt.candidates, tt.local) {
				got = append(got, entry.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
