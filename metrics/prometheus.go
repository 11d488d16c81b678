package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Prom is the prometheus-backed Recorder, wiring prometheus counters and
// gauges straight into the map's put/get/remove/eviction call sites.
type Prom struct {
	puts      *prometheus.CounterVec
	gets      *prometheus.CounterVec
	removes   prometheus.Counter
	evictions *prometheus.CounterVec
	size      prometheus.Gauge
}

// NewProm builds a Prom recorder with metrics registered under the given
// namespace, e.g. "htreemap". Register it with a prometheus.Registerer of
// the caller's choosing (MustRegister is not called here, so callers
// control registration and can avoid duplicate-registration panics in
// tests that build multiple HMaps).
func NewProm(namespace string) *Prom {
	p := &Prom{
		puts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "puts_total", Help: "HMap Put calls by outcome.",
		}, []string{"outcome"}),
		gets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "gets_total", Help: "HMap Get calls by outcome.",
		}, []string{"outcome"}),
		removes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "removes_total", Help: "HMap Remove calls.",
		}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "evictions_total", Help: "Entries evicted, by segment.",
		}, []string{"segment"}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "size", Help: "Current HMap entry count.",
		}),
	}
	return p
}

// Collectors returns every metric for bulk registration, e.g.
// registry.MustRegister(p.Collectors()...).
func (p *Prom) Collectors() []prometheus.Collector {
	return []prometheus.Collector{p.puts, p.gets, p.removes, p.evictions, p.size}
}

func (p *Prom) PutHit()             { p.puts.WithLabelValues("hit").Inc() }
func (p *Prom) PutMiss()            { p.puts.WithLabelValues("miss").Inc() }
func (p *Prom) GetHit()             { p.gets.WithLabelValues("hit").Inc() }
func (p *Prom) GetMiss()            { p.gets.WithLabelValues("miss").Inc() }
func (p *Prom) GetLoaderTriggered() { p.gets.WithLabelValues("loader").Inc() }
func (p *Prom) Remove()             { p.removes.Inc() }
func (p *Prom) Evicted(segment int) { p.evictions.WithLabelValues(strconv.Itoa(segment)).Inc() }
func (p *Prom) SetSize(n int64)     { p.size.Set(float64(n)) }
