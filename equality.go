package parts

import (
	"math"
	"reflect"
)

// sameValueZero is the single change-detection primitive used everywhere "did
// this slice of state change" must be decided. It is strict value equality
// with NaN equal to itself, plus reference identity for values Go cannot
// compare; it is never a deep comparison. Reducers remain responsible for
// preserving object identity when their own sub-state is unchanged.
func sameValueZero(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta := reflect.TypeOf(a)
	tb := reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if isNaN(a) {
		return isNaN(b)
	}
	if ta.Comparable() {
		return a == b
	}

	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// sameState reports whether two composite state objects are the same map.
func sameState(a, b State) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}
