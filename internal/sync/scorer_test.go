package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreHighTierWins(t *testing.T) {
	t.Parallel()

	tiers := KeywordTiers{
		High:   []string{"black hole"},
		Medium: []string{"cosmology"},
	}
	score, matched := Score("Binary black hole merger", "", tiers)
	require.Equal(t, 5, score)
	assert.Equal(t, []string{"black hole"}, matched)
}

func TestScoreLowerTiersStillRecordedWhenEvaluated(t *testing.T) {
	t.Parallel()

	tiers := KeywordTiers{
		High:   []string{"neutron star"},
		Medium: []string{"cosmology"},
		Low:    []string{"survey"},
	}
	// High misses, so medium is evaluated and sets the score; low is below
	// the running score of 3 and never scanned.
	score, matched := Score("Cosmology survey results", "", tiers)
	require.Equal(t, 3, score)
	assert.Equal(t, []string{"cosmology"}, matched)
}

func TestScoreLowTier(t *testing.T) {
	t.Parallel()

	tiers := KeywordTiers{Low: []string{"galaxy"}}
	score, matched := Score("A galaxy far away", "", tiers)
	require.Equal(t, 2, score)
	assert.Equal(t, []string{"galaxy"}, matched)
}

func TestScoreFloorsAtOne(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name            string
		title, abstract string
		tiers           KeywordTiers
	}{
		{name: "no match", title: "Stellar winds", abstract: "nothing relevant", tiers: KeywordTiers{High: []string{"quasar"}}},
		{name: "empty tiers", title: "anything", abstract: "at all"},
		{name: "empty everything"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			score, matched := Score(tc.title, tc.abstract, tc.tiers)
			require.Equal(t, 1, score)
			assert.Empty(t, matched)
		})
	}
}

func TestScoreCaseInsensitiveAndUsesAbstract(t *testing.T) {
	t.Parallel()

	tiers := KeywordTiers{High: []string{"Dark Energy"}}
	score, matched := Score("Untitled", "constraints on DARK ENERGY models", tiers)
	require.Equal(t, 5, score)
	assert.Equal(t, []string{"Dark Energy"}, matched)
}

func TestScoreMultipleMatchesWithinTier(t *testing.T) {
	t.Parallel()

	tiers := KeywordTiers{High: []string{"black hole", "gravitational wave"}}
	score, matched := Score("Gravitational wave signal from a black hole binary", "", tiers)
	require.Equal(t, 5, score)
	assert.ElementsMatch(t, []string{"black hole", "gravitational wave"}, matched)
}

func TestScoreAlwaysInRange(t *testing.T) {
	t.Parallel()

	tiers := KeywordTiers{
		High:   []string{"a"},
		Medium: []string{"e"},
		Low:    []string{"i"},
	}
	for _, text := range []string{"", "a e i", "xyz", "AEI", "the quick brown fox"} {
		score, _ := Score(text, text, tiers)
		assert.GreaterOrEqual(t, score, 1)
		assert.LessOrEqual(t, score, 5)
	}
}
