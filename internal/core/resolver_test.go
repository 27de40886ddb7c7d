package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-installer/internal/types"
)

func skillNames(entries []types.SkillEntry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names
}

func catalogOf(names ...string) []types.SkillEntry {
	out := make([]types.SkillEntry, 0, len(names))
	for _, name := range names {
		out = append(out, types.SkillEntry{Name: name})
	}
	return out
}

func TestResolveExactMatchBypassesBand(t *testing.T) {
	resolver := NewResolver(NewNormalizer(nil, nil))
	catalog := catalogOf("weather-skill", "weather-alerts-skill", "weathers-skill")

	got := resolver.Resolve(t.Context(), "weather skill", catalog)
	if diff := cmp.Diff([]string{"weather-skill"}, skillNames(got)); diff != "" {
		t.Fatalf("unexpected candidates (-want +got):\n%s", diff)
	}

	got = resolver.Resolve(t.Context(), "Weather Alerts Skill", catalog)
	if diff := cmp.Diff([]string{"weather-alerts-skill"}, skillNames(got)); diff != "" {
		t.Fatalf("unexpected candidates (-want +got):\n%s", diff)
	}
}

func TestResolveBelowThresholdIsEmpty(t *testing.T) {
	resolver := NewResolver(NewNormalizer(nil, nil))
	got := resolver.Resolve(t.Context(), "xyz", catalogOf("weather-skill", "news-skill"))
	assert.Empty(t, got)
}

func TestResolveEmptyCatalog(t *testing.T) {
	resolver := NewResolver(NewNormalizer(nil, nil))
	assert.Empty(t, resolver.Resolve(t.Context(), "weather", nil))
}

func TestResolveIsIdempotent(t *testing.T) {
	resolver := NewResolver(NewNormalizer(nil, nil))
	catalog := catalogOf("news-skill", "npr-news-skill", "news-briefing-skill", "weather-skill")

	first := resolver.Resolve(t.Context(), "news", catalog)
	second := resolver.Resolve(t.Context(), "news", catalog)
	require.NotEmpty(t, first)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("resolve is not idempotent (-first +second):\n%s", diff)
	}
}

func TestResolveWeatherScenario(t *testing.T) {
	resolver := NewResolver(NewNormalizer(nil, nil))
	catalog := catalogOf("weather-skill", "weather-alerts-skill")

	scored := resolver.ScoreAll("whether skill", catalog)
	require.Len(t, scored, 2)
	// char 12/14, word 0, common 1
	assert.InDelta(t, (9*12.0/14.0+2)/20, scored[0].Score, 1e-9)
	// char 12/21, word 0, common 1
	assert.InDelta(t, (9*12.0/21.0+2)/20, scored[1].Score, 1e-9)
	require.Greater(t, scored[0].Score-scored[1].Score, BandWidth)

	got := resolver.Resolve(t.Context(), "whether skill", catalog)
	if diff := cmp.Diff([]string{"weather-skill"}, skillNames(got)); diff != "" {
		t.Fatalf("unexpected candidates (-want +got):\n%s", diff)
	}
}

func TestResolveBandKeepsCatalogOrder(t *testing.T) {
	resolver := NewResolver(NewNormalizer(nil, nil))
	catalog := catalogOf("timer-two-skill", "unrelated-music", "timer-one-skill")

	got := resolver.Resolve(t.Context(), "timer", catalog)
	if diff := cmp.Diff([]string{"timer-two-skill", "timer-one-skill"}, skillNames(got)); diff != "" {
		t.Fatalf("unexpected candidates (-want +got):\n%s", diff)
	}
}

func TestScoreBounds(t *testing.T) {
	resolver := NewResolver(NewNormalizer(nil, nil))
	for _, item := range resolver.ScoreAll("play some music", catalogOf("music-skill", "spotify-skill", "x")) {
		assert.GreaterOrEqual(t, item.Score, 0.0)
		assert.LessOrEqual(t, item.Score, 1.0)
	}
}
