package match

import (
	"testing"

	"cardstock/core/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexLookups(t *testing.T) {
	ix := NewIndex([]provider.Item{
		{ID: "r1", Name: "Crimson Haze", Code: "SV5a"},
		{ID: "r2", Name: "Jungle"},
	})

	rec, ok := ix.Code("sv5a")
	require.True(t, ok)
	assert.Equal(t, "r1", rec.ID)

	// Codes are matched case-insensitively.
	rec, ok = ix.Code("SV5A")
	require.True(t, ok)
	assert.Equal(t, "r1", rec.ID)

	rec, ok = ix.Name("Jungle")
	require.True(t, ok)
	assert.Equal(t, "r2", rec.ID)

	rec, ok, ambiguous := ix.Normalized("crimson haze")
	require.True(t, ok)
	assert.False(t, ambiguous)
	assert.Equal(t, "r1", rec.ID)

	assert.True(t, ix.HasID("r1"))
	assert.False(t, ix.HasID("r9"))
	assert.Equal(t, 2, ix.Size())
}

func TestIndexDuplicateCodeFirstWriteWins(t *testing.T) {
	ix := NewIndex([]provider.Item{
		{ID: "r1", Name: "First", Code: "XY1"},
		{ID: "r2", Name: "Second", Code: "xy1"},
	})

	rec, ok := ix.Code("XY1")
	require.True(t, ok)
	assert.Equal(t, "r1", rec.ID, "later duplicate codes are ignored")
}

func TestIndexNormalizedCollisionStaysAmbiguous(t *testing.T) {
	// Two distinct records normalizing to "base set" must never be silently
	// resolved, not even after a third collision.
	ix := NewIndex([]provider.Item{
		{ID: "r1", Name: "Base Set"},
		{ID: "r2", Name: "Base Set!"},
		{ID: "r3", Name: "BASE-SET"},
	})

	_, ok, ambiguous := ix.Normalized("base set")
	assert.False(t, ok)
	assert.True(t, ambiguous)
}

func TestIndexSameRecordTwiceIsNotACollision(t *testing.T) {
	// A resumed fetch merged with the local mirror seed can contain the same
	// record twice.
	ix := NewIndex([]provider.Item{
		{ID: "r1", Name: "Base Set"},
		{ID: "r1", Name: "Base Set"},
	})

	rec, ok, ambiguous := ix.Normalized("base set")
	require.True(t, ok)
	assert.False(t, ambiguous)
	assert.Equal(t, "r1", rec.ID)
	assert.Equal(t, 1, ix.Size())
}

func TestIndexSkipsRecordsWithoutID(t *testing.T) {
	ix := NewIndex([]provider.Item{{Name: "No ID"}})
	assert.Equal(t, 0, ix.Size())
	_, ok := ix.Name("No ID")
	assert.False(t, ok)
}
