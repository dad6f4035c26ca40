// Package testutil holds comparison helpers and FIT byte fixtures shared by
// the package tests.
package testutil

import (
	"math"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ConvertToInt64 converts various numeric types to int64 for comparison.
// Returns the int64 value and a boolean indicating success.
func ConvertToInt64(i any) (int64, bool) {
	switch v := i.(type) {
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
		return 0, false
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// NumericComparer treats decoded integers and JSON floats with the same
// whole value as equal. Other floats and times compare approximately.
var NumericComparer = cmp.Options{
	cmp.FilterValues(func(x, y any) bool {
		_, xOk := ConvertToInt64(x)
		_, yOk := ConvertToInt64(y)
		return xOk && yOk
	}, cmp.Comparer(func(x, y any) bool {
		xInt, _ := ConvertToInt64(x)
		yInt, _ := ConvertToInt64(y)
		return xInt == yInt
	})),
	cmpopts.EquateApprox(0, 1e-9),
	cmpopts.EquateApproxTime(time.Millisecond),
}

// Diff compares decoded message maps, ignoring numeric representation.
func Diff(want, got map[string]any) string {
	return cmp.Diff(want, got, NumericComparer)
}

// Equal reports whether two decoded values match under NumericComparer.
func Equal(want, got any) bool {
	return cmp.Equal(want, got, NumericComparer)
}

// FilterMapKeys recursively creates a new map from 'source' containing only keys present in 'reference'.
func FilterMapKeys(source map[string]any, reference map[string]any) map[string]any {
	result := make(map[string]any)
	for key, refVal := range reference {
		if srcVal, ok := source[key]; ok {
			if refSubMap, refIsMap := refVal.(map[string]any); refIsMap {
				if srcSubMap, srcIsMap := srcVal.(map[string]any); srcIsMap {
					result[key] = FilterMapKeys(srcSubMap, refSubMap)
				} else {
					result[key] = srcVal // Type mismatch, will be caught by cmp.Diff
				}
			} else {
				result[key] = srcVal
			}
		}
	}
	return result
}
