package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider implements Provider on top of a prometheus.Registerer,
// giving a reactor runtime real observability when it is wired into a
// process that already exports a /metrics endpoint. Instruments are
// created once per name and reused, same as BasicProvider.
type PrometheusProvider struct {
	reg        prometheus.Registerer
	namespace  string
	counters   map[string]*prometheus.CounterVec
	updowns    map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusProvider constructs a PrometheusProvider that registers
// every instrument it creates against reg, prefixed with namespace.
func NewPrometheusProvider(reg prometheus.Registerer, namespace string) *PrometheusProvider {
	return &PrometheusProvider{
		reg:        reg,
		namespace:  namespace,
		counters:   make(map[string]*prometheus.CounterVec),
		updowns:    make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	if c, ok := p.counters[name]; ok {
		return counterVecAdapter{c}
	}
	cfg := applyOptions(opts)
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace,
		Name:      name,
		Help:      describe(cfg),
	}, nil)
	registerOrReuse(p.reg, c)
	p.counters[name] = c
	return counterVecAdapter{c}
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	if g, ok := p.updowns[name]; ok {
		return gaugeVecAdapter{g}
	}
	cfg := applyOptions(opts)
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: p.namespace,
		Name:      name,
		Help:      describe(cfg),
	}, nil)
	registerOrReuse(p.reg, g)
	p.updowns[name] = g
	return gaugeVecAdapter{g}
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	if h, ok := p.histograms[name]; ok {
		return histogramVecAdapter{h}
	}
	cfg := applyOptions(opts)
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: p.namespace,
		Name:      name,
		Help:      describe(cfg),
	}, nil)
	registerOrReuse(p.reg, h)
	p.histograms[name] = h
	return histogramVecAdapter{h}
}

func describe(cfg InstrumentConfig) string {
	if cfg.Description != "" {
		return cfg.Description
	}
	return "reactor runtime instrument"
}

// registerOrReuse swallows AlreadyRegisteredError, which happens when
// two PrometheusProvider instances in the same process share a
// Registerer and race to register the same instrument name.
func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			panic(err)
		}
	}
}

type counterVecAdapter struct{ v *prometheus.CounterVec }

func (a counterVecAdapter) Add(n int64) { a.v.WithLabelValues().Add(float64(n)) }

type gaugeVecAdapter struct{ v *prometheus.GaugeVec }

func (a gaugeVecAdapter) Add(n int64) { a.v.WithLabelValues().Add(float64(n)) }

type histogramVecAdapter struct{ v *prometheus.HistogramVec }

func (a histogramVecAdapter) Record(v float64) { a.v.WithLabelValues().Observe(v) }
