package metrics

// Noop discards everything. It is HMap's default Recorder when none is
// configured, so call sites never need a nil check.
type Noop struct{}

func (Noop) PutHit()               {}
func (Noop) PutMiss()              {}
func (Noop) GetHit()               {}
func (Noop) GetMiss()              {}
func (Noop) GetLoaderTriggered()   {}
func (Noop) Remove()               {}
func (Noop) Evicted(segment int)   {}
func (Noop) SetSize(n int64)       {}
