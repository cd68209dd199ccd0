package component

import "reflect"

type memoEntry struct {
	deps  []any
	value any
}

// memoize caches per-key values across renders. The memo map is only
// touched while a render holds the instance lock, so no locking here.
func (inst *Instance) memoize(key string, deps []any, compute func() any) any {
	if e, ok := inst.memo[key]; ok && depsEqual(e.deps, deps) {
		return e.value
	}
	v := compute()
	if inst.memo == nil {
		inst.memo = make(map[string]memoEntry)
	}
	inst.memo[key] = memoEntry{deps: deps, value: v}
	return v
}

// depsEqual compares dependency lists pairwise with ==. Values of
// uncomparable type never match, which forces a recompute.
func depsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !comparableValue(a[i]) || !comparableValue(b[i]) {
			return false
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func comparableValue(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// shallowEqual reports whether two props maps hold identical values under
// ==, treating uncomparable values as unequal.
func shallowEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if !comparableValue(av) || !comparableValue(bv) {
			return false
		}
		if av != bv {
			return false
		}
	}
	return true
}

// deepEqual reports deep equality of two props maps.
func deepEqual(a, b map[string]any) bool {
	return reflect.DeepEqual(a, b)
}
