package subscription

import "time"

// Stripe normally reports Unix seconds, but some environments have been
// observed returning milli-, micro- or nanosecond precision. The
// magnitude thresholds below are the contract for sniffing the unit:
// values under 1e11 are seconds, under 1e14 milliseconds, under 1e17
// microseconds, anything larger nanoseconds.
const (
	epochMaxSeconds = int64(1e11)
	epochMaxMillis  = int64(1e14)
	epochMaxMicros  = int64(1e17)
)

// NormalizeEpoch converts a Stripe timestamp of unknown precision to a
// UTC time. Non-positive input returns the zero time.
func NormalizeEpoch(n int64) time.Time {
	if n <= 0 {
		return time.Time{}
	}

	var ms int64
	switch {
	case n < epochMaxSeconds:
		ms = n * 1000
	case n < epochMaxMillis:
		ms = n
	case n < epochMaxMicros:
		ms = n / 1000
	default:
		ms = n / 1e6
	}

	return time.UnixMilli(ms).UTC()
}
