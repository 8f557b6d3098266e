package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVLoaderParsesAndSorts(t *testing.T) {
	csv := `timestamp,open,high,low,close,volume
2024-01-02T00:00:00Z,101,103,100,102,1500
2024-01-01T00:00:00Z,100,102,99,101,1200
2024-01-03 00:00:00,102,104,101,103,1100
`
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	bars, err := NewCSVLoader().Load(path)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	// Out-of-order rows come back sorted.
	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i].Timestamp.After(bars[i-1].Timestamp))
	}
	assert.InDelta(t, 101, bars[0].Close, 1e-9)
	assert.InDelta(t, 103, bars[2].Close, 1e-9)
}

func TestCSVLoaderUnixMillisTimestamps(t *testing.T) {
	csv := "timestamp,open,high,low,close,volume\n1704067200000,100,101,99,100.5,900\n"
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	bars, err := NewCSVLoader().Load(path)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].Timestamp)
}

func TestCSVLoaderRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"bad timestamp":      "timestamp,open,high,low,close,volume\nnonsense,100,101,99,100,900\n",
		"non-numeric close":  "timestamp,open,high,low,close,volume\n2024-01-01,100,101,99,abc,900\n",
		"negative price":     "timestamp,open,high,low,close,volume\n2024-01-01,100,101,99,-5,900\n",
		"high below low":     "timestamp,open,high,low,close,volume\n2024-01-01,100,98,99,100,900\n",
		"wrong column count": "timestamp,open,high,low,close,volume\n2024-01-01,100,101,99,100\n",
	}
	for name, csv := range cases {
		path := filepath.Join(t.TempDir(), "candles.csv")
		require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

		_, err := NewCSVLoader().Load(path)
		assert.Error(t, err, name)
	}
}

func TestCSVLoaderMissingFile(t *testing.T) {
	_, err := NewCSVLoader().Load(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestGenerateSyntheticIsDeterministic(t *testing.T) {
	cfg := DefaultSyntheticConfig()
	a := GenerateSynthetic(cfg)
	b := GenerateSynthetic(cfg)

	require.Len(t, a, cfg.Bars)
	assert.Equal(t, a, b)

	cfg.Seed = 7
	c := GenerateSynthetic(cfg)
	assert.NotEqual(t, a, c)
}

func TestGenerateSyntheticBarsAreWellFormed(t *testing.T) {
	bars := GenerateSynthetic(DefaultSyntheticConfig())
	for i, b := range bars {
		assert.Greater(t, b.Close, 0.0, "bar %d", i)
		assert.GreaterOrEqual(t, b.High, b.Low, "bar %d", i)
		assert.Positive(t, b.Volume, "bar %d", i)
		if i > 0 {
			assert.True(t, b.Timestamp.After(bars[i-1].Timestamp), "bar %d", i)
		}
	}
}

func TestGenerateSyntheticZeroBars(t *testing.T) {
	cfg := DefaultSyntheticConfig()
	cfg.Bars = 0
	assert.Nil(t, GenerateSynthetic(cfg))
}
