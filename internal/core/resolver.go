package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"skill-installer/internal/types"
)

const (
	// MinConfidence is the score below which nothing is considered a match.
	MinConfidence = 0.4
	// BandWidth is how far below the best score a candidate may fall and
	// still be offered for disambiguation.
	BandWidth = 0.1

	charWeight   = 9
	wordWeight   = 9
	commonWeight = 2

	scoreEpsilon = 1e-9
)

// ScoredEntry pairs a catalog entry with its match score.
type ScoredEntry struct {
	Entry types.SkillEntry
	Score float64
}

type Resolver struct {
	Normalizer Normalizer
}

func NewResolver(normalizer Normalizer) Resolver {
	return Resolver{Normalizer: normalizer}
}

// Score rates how well query matches name, in [0,1]:
// 0.45*char + 0.45*word + 0.10*common.
func (r Resolver) Score(query Query, name Query) float64 {
	char := charSimilarity(query.Text, name.Text)
	word := sequenceRatio(query.Words, name.Words)
	common := sequenceRatio(query.Common, name.Common)
	return (charWeight*char + wordWeight*word + commonWeight*common) /
		(charWeight + wordWeight + commonWeight)
}

// ScoreAll scores every catalog entry against text, in catalog order.
func (r Resolver) ScoreAll(text string, catalog []types.SkillEntry) []ScoredEntry {
	query := r.Normalizer.Normalize(text)
	scored := make([]ScoredEntry, 0, len(catalog))
	for _, entry := range catalog {
		scored = append(scored, ScoredEntry{
			Entry: entry,
			Score: r.Score(query, r.Normalizer.NormalizeName(entry.Name)),
		})
	}
	return scored
}

// Resolve returns the candidates for text. An empty result means nothing
// matched with enough confidence; an exact normalized match is always
// returned alone.
func (r Resolver) Resolve(ctx context.Context, text string, catalog []types.SkillEntry) []types.SkillEntry {
	scored := r.ScoreAll(text, catalog)
	if len(scored) == 0 {
		return nil
	}
	best := scored[0]
	for _, item := range scored[1:] {
		if item.Score > best.Score {
			best = item
		}
	}
	logger := log.Ctx(ctx).Debug().Str("query", text).Float64("best", best.Score)
	if best.Score < MinConfidence {
		logger.Msg("no confident match")
		return nil
	}
	if best.Score >= 1.0-scoreEpsilon {
		logger.Str("skill", best.Entry.Name).Msg("exact match")
		return []types.SkillEntry{best.Entry}
	}
	var candidates []types.SkillEntry
	for _, item := range scored {
		if item.Score >= best.Score-BandWidth-scoreEpsilon {
			candidates = append(candidates, item.Entry)
		}
	}
	logger.Int("candidates", len(candidates)).Msg("resolved")
	return candidates
}
