package fit

import (
	"math"
	"time"
)

// FITEpochMs is the millisecond offset between the Unix and FIT epochs.
const FITEpochMs int64 = 631065600000

// FITEpoch is 1989-12-31T00:00:00Z.
var FITEpoch = time.UnixMilli(FITEpochMs).UTC()

// ConvertDateTimeToDate turns seconds since the FIT epoch into a UTC time.
func ConvertDateTimeToDate(seconds int64) time.Time {
	return time.UnixMilli(seconds*1000 + FITEpochMs).UTC()
}

// ConvertDateToDateTime is the inverse of ConvertDateTimeToDate, truncating to seconds.
func ConvertDateToDateTime(t time.Time) int64 {
	return (t.UnixMilli() - FITEpochMs) / 1000
}

// convertDateTimes maps every numeric element of v to a time.Time.
func convertDateTimes(v any) any {
	switch n := v.(type) {
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = convertDateTimes(e)
		}
		return out
	case nil:
		return nil
	}
	s, ok := toInt64(v)
	if !ok {
		return v
	}
	return ConvertDateTimeToDate(s)
}

// sanitizeValues collapses an expansion result: all nil becomes nil and a
// single element becomes a scalar.
func sanitizeValues(values []any) any {
	if onlyNullValues(values) {
		return nil
	}
	if len(values) == 1 {
		return values[0]
	}
	return values
}

func onlyNullValues(values []any) bool {
	for _, v := range values {
		if v != nil {
			return false
		}
	}
	return true
}

// onlyInvalidValues reports whether every element of raw is nil or the invalid sentinel.
func onlyInvalidValues(raw any, bt BaseType) bool {
	if arr, ok := raw.([]any); ok {
		for _, v := range arr {
			if v != nil && !isInvalidValue(v, bt) {
				return false
			}
		}
		return true
	}
	return raw == nil || isInvalidValue(raw, bt)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case int64:
		return uint64(n), true
	case uint64:
		return n, true
	case int:
		return uint64(n), true
	case float64:
		return uint64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// isFiniteNumber rejects NaN and infinities produced by scale arithmetic.
func isFiniteNumber(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
