package matching

import (
	"testing"

	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/naming"
	"github.com/riskibarqy/overmind/internal/domain/replay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func participants(names ...string) []replay.Participant {
	out := make([]replay.Participant, 0, len(names))
	for i, name := range names {
		out = append(out, replay.Participant{
			PID:     i + 1,
			Name:    name,
			Locator: identity.Locator{Region: 2, Realm: 1, ProfileID: int64(1000 + i)},
		})
	}
	return out
}

func candidates(aliases *naming.AliasTable, names ...string) []naming.Candidate {
	out := make([]naming.Candidate, 0, len(names))
	for _, name := range names {
		out = append(out, naming.Candidate{Raw: name, Canonical: aliases.Resolve(name), Segment: naming.SegmentFilename})
	}
	return out
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, Similarity("serral", "serral"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("ab", ""))
	assert.InDelta(t, 5.0/6.0, Similarity("Serral", "serral"), 1e-9)
}

func TestMatch_ConfidentStraight(t *testing.T) {
	t.Parallel()

	aliases := naming.NewAliasTable(nil)
	got := Match(candidates(aliases, "serral", "elazer"), participants("Serral", "Elazer"), aliases.Resolve)

	require.True(t, got.Confident)
	assert.False(t, got.Swapped)
	assert.InDelta(t, 1.0, got.Best, 1e-9)
	require.Len(t, got.Pairs, 2)
	assert.Equal(t, "Serral", got.Pairs[0].Participant.Name)
	assert.Equal(t, "serral", got.Pairs[0].Canonical)
	assert.Equal(t, "Elazer", got.Pairs[1].Participant.Name)
	assert.Equal(t, "elazer", got.Pairs[1].Canonical)
}

func TestMatch_ConfidentSwapped(t *testing.T) {
	t.Parallel()

	aliases := naming.NewAliasTable(nil)
	got := Match(candidates(aliases, "elazer", "serral"), participants("Serral", "Elazer"), aliases.Resolve)

	require.True(t, got.Confident)
	assert.True(t, got.Swapped)
	require.Len(t, got.Pairs, 2)
	assert.Equal(t, "Elazer", got.Pairs[0].Participant.Name)
	assert.Equal(t, "elazer", got.Pairs[0].Canonical)
	assert.Equal(t, "Serral", got.Pairs[1].Participant.Name)
	assert.Equal(t, "serral", got.Pairs[1].Canonical)
}

func TestMatch_AliasBridgesNickname(t *testing.T) {
	t.Parallel()

	aliases := naming.NewAliasTable(map[string][]string{"serral": {"joona"}})
	got := Match(candidates(aliases, "Maru", "Joona"), participants("Serral", "Maru"), aliases.Resolve)

	require.True(t, got.Confident)
	assert.True(t, got.Swapped)
	assert.Equal(t, "Serral", got.Pairs[1].Participant.Name)
	assert.Equal(t, "serral", got.Pairs[1].Canonical)
}

func TestMatch_RejectsFullySymmetricScores(t *testing.T) {
	t.Parallel()

	aliases := naming.NewAliasTable(nil)
	got := Match(candidates(aliases, "aa", "aa"), participants("aa", "aa"), aliases.Resolve)

	assert.False(t, got.Confident)
	assert.Nil(t, got.Pairs)
}

func TestMatch_RejectsWeakEvidence(t *testing.T) {
	t.Parallel()

	aliases := naming.NewAliasTable(nil)
	got := Match(candidates(aliases, "zest", "parting"), participants("Serral", "Elazer"), aliases.Resolve)

	assert.False(t, got.Confident)
	assert.Less(t, got.Best, MinConfidence)
}

func TestMatch_DegenerateWithoutCandidates(t *testing.T) {
	t.Parallel()

	aliases := naming.NewAliasTable(map[string][]string{"serral": {"joona"}})
	got := Match(nil, participants("Joona", "??Elazer"), aliases.Resolve)

	require.True(t, got.Confident)
	assert.True(t, got.Degenerate)
	require.Len(t, got.Pairs, 2)
	// An in-game nickname that is also a known alias keeps its own name.
	assert.Equal(t, "joona", got.Pairs[0].Canonical)
	assert.Equal(t, "Joona", got.Pairs[0].Participant.Name)
	assert.Equal(t, "elazer", got.Pairs[1].Canonical)
}

func TestMatch_RejectsWrongArity(t *testing.T) {
	t.Parallel()

	aliases := naming.NewAliasTable(nil)
	got := Match(candidates(aliases, "serral", "elazer"), participants("Serral", "Elazer", "Maru"), aliases.Resolve)
	assert.False(t, got.Confident)
	assert.Zero(t, got.Best)
}
