package htreemap

import "reflect"

// isAbsent reports whether v is a nil pointer/interface/map/slice/chan/func
// — the closest Go analogue of "null" for an arbitrary generic K or V.
// Neither Put nor Remove accept an absent key or value. Value kinds (int,
// string, struct, array...) are never absent; there is no zero-value
// convention for them to special-case without contradicting ordinary map
// usage.
func isAbsent[T any](v T) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
