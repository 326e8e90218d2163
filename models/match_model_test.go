package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortPairAndKey(t *testing.T) {
	lo, hi := SortPair("beta", "alpha")
	assert.Equal(t, "alpha", lo)
	assert.Equal(t, "beta", hi)

	assert.Equal(t, PairKey("alpha", "beta"), PairKey("beta", "alpha"))
	assert.Equal(t, "alpha:beta", PairKey("beta", "alpha"))
}

func TestMatchUserHelpers(t *testing.T) {
	m := Match{Users: []string{"alpha", "beta"}}

	assert.True(t, m.HasUser("alpha"))
	assert.False(t, m.HasUser("gamma"))

	other, ok := m.OtherUser("alpha")
	assert.True(t, ok)
	assert.Equal(t, "beta", other)

	_, ok = m.OtherUser("gamma")
	assert.True(t, ok, "OtherUser returns the first non-matching entry")
}
