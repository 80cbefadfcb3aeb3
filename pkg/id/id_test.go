package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAt_SortsByTime(t *testing.T) {
	t.Parallel()

	early := time.Date(2026, 1, 24, 9, 30, 0, 0, time.UTC)
	a := At(early)
	b := At(early.Add(time.Minute))
	assert.Less(t, a, b)

	u, err := ulid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, early, ulid.Time(u.Time()).UTC())
}

func TestNew_Unique(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for range 1000 {
		s := New()
		require.Len(t, s, 26)
		require.False(t, seen[s], s)
		seen[s] = true
	}
}
