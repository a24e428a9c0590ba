package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEpochUnits(t *testing.T) {
	want := time.Date(2023, time.November, 14, 22, 13, 20, 0, time.UTC)

	cases := []struct {
		name  string
		input int64
	}{
		{"seconds", 1700000000},
		{"milliseconds", 1700000000000},
		{"microseconds", 1700000000000000},
		{"nanoseconds", 1700000000000000000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeEpoch(tc.input)
			assert.True(t, got.Equal(want), "got %s, want %s", got, want)
		})
	}
}

func TestNormalizeEpochSameInstantAcrossUnits(t *testing.T) {
	seconds := NormalizeEpoch(1700000000)
	millis := NormalizeEpoch(1700000000000)

	assert.Equal(t, seconds.Format(time.RFC3339), millis.Format(time.RFC3339))
}

func TestNormalizeEpochInvalid(t *testing.T) {
	assert.True(t, NormalizeEpoch(0).IsZero())
	assert.True(t, NormalizeEpoch(-42).IsZero())
}

func TestNormalizeEpochThresholdBoundaries(t *testing.T) {
	// Just below the seconds threshold: still seconds.
	secs := int64(1e11) - 1
	assert.Equal(t, time.Unix(secs, 0).UTC(), NormalizeEpoch(secs))

	// At the threshold: interpreted as milliseconds.
	assert.Equal(t, time.UnixMilli(int64(1e11)).UTC(), NormalizeEpoch(int64(1e11)))
}
