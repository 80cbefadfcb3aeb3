package series

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/num"
)

const barsCSV = `time,open,high,low,close,volume
2026-01-24T09:30:00Z,100,101,99,100.5,10
2026-01-24T09:31:00Z,100.5,102,100,101.75,

2026-01-24T09:32:00.5Z,101.75,103,101,102.25,7
`

func TestReadCSV(t *testing.T) {
	t.Parallel()

	s, err := ReadCSV(strings.NewReader(barsCSV), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	c, ok := s.ClosePrice(1)
	require.True(t, ok)
	assert.True(t, num.MustParse("101.75").Equal(c))
	assert.True(t, s.Bars[1].Volume.IsZero())
	assert.Equal(t, 500*time.Millisecond, s.Bars[2].Time.Sub(s.Bars[2].Time.Truncate(time.Second)))

	_, ok = s.ClosePrice(3)
	assert.False(t, ok)
	_, ok = s.ClosePrice(-1)
	assert.False(t, ok)
}

func TestReadCSV_Range(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 1, 24, 9, 31, 0, 0, time.UTC)
	to := time.Date(2026, 1, 24, 9, 32, 0, 0, time.UTC)
	s, err := ReadCSV(strings.NewReader(barsCSV), from, to)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	i, ok := s.IndexAt(from.Add(30 * time.Second))
	assert.True(t, ok)
	assert.Equal(t, 0, i)
	_, ok = s.IndexAt(from.Add(-time.Hour))
	assert.False(t, ok)
}

func TestReadCSV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"short row", "2026-01-24T09:30:00Z,1,2,3\n"},
		{"bad time", "yesterday,1,2,3,4\n"},
		{"bad close", "2026-01-24T09:30:00Z,1,2,3,x\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadCSV(strings.NewReader(tt.in), time.Time{}, time.Time{})
			assert.Error(t, err)
		})
	}
}

func TestLoadCSV_PricesBaseRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(barsCSV), 0o644))

	s, err := LoadCSV(path, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, path, s.Name)

	r := ledger.NewBaseRecord(ledger.WithSeries(s))
	require.NoError(t, r.OperateAt(0, num.New(2)))
	require.NoError(t, r.OperateAt(2, num.New(2)))
	require.Len(t, r.Positions(), 1)
	assert.True(t, num.MustParse("3.5").Equal(r.Positions()[0].GrossProfit()))

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), time.Time{}, time.Time{})
	assert.Error(t, err)
}
