package htreemap

// NewSet builds a key-only HMap: the hasValues=false/valueInline=true
// combination where values aren't stored at all, only presence.
// V is conventionally struct{}.
func NewSet[K any](opts ...Option[K, struct{}]) (*HMap[K, struct{}], error) {
	all := append([]Option[K, struct{}]{
		WithHasValues[K, struct{}](false),
		WithValueInline[K, struct{}](true),
	}, opts...)
	return New(all...)
}
