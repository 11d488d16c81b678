package htreemap

// ModificationListener is notified synchronously, under the segment's
// write lock, for every create/update/remove.
// oldVal/newVal carry ok=false when the respective side is absent (a
// fresh insert has no old value; a remove has no new value). triggered
// is true when the change was caused by eviction or a value-loader
// insert rather than an explicit caller mutation.
type ModificationListener[K, V any] func(key K, oldVal V, oldOK bool, newVal V, newOK bool, triggered bool)

func notifyAll[K, V any](listeners []ModificationListener[K, V], key K, oldVal V, oldOK bool, newVal V, newOK bool, triggered bool) {
	for _, l := range listeners {
		l(key, oldVal, oldOK, newVal, newOK, triggered)
	}
}
