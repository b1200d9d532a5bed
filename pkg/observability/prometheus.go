package observability

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics on a Prometheus registry. Collectors
// are created on first use; a metric name keeps the label keys it was first
// recorded with and calls using other keys are dropped.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	labelKeys  map[string][]string
}

// NewPrometheusMetrics creates a metrics sink with its own registry, including
// the Go runtime and process collectors.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &PrometheusMetrics{
		registry:   reg,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		labelKeys:  make(map[string][]string),
	}
}

// Registry returns the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	if value < 0 {
		return
	}
	keys, values := splitTags(tags)

	m.mu.Lock()
	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: promName(name),
			Help: name,
		}, keys)
		if !m.register(name, vec, keys) {
			m.mu.Unlock()
			return
		}
		m.counters[name] = vec
	}
	ok = m.sameKeys(name, keys)
	m.mu.Unlock()

	if ok {
		vec.WithLabelValues(values...).Add(float64(value))
	}
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	keys, values := splitTags(tags)

	m.mu.Lock()
	vec, ok := m.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: promName(name),
			Help: name,
		}, keys)
		if !m.register(name, vec, keys) {
			m.mu.Unlock()
			return
		}
		m.gauges[name] = vec
	}
	ok = m.sameKeys(name, keys)
	m.mu.Unlock()

	if ok {
		vec.WithLabelValues(values...).Set(value)
	}
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.observe(name, value, prometheus.DefBuckets, tags)
}

// Timing records durations in seconds.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.observe(name+".seconds", duration.Seconds(), prometheus.DefBuckets, tags)
}

func (m *PrometheusMetrics) observe(name string, value float64, buckets []float64, tags []Tag) {
	keys, values := splitTags(tags)

	m.mu.Lock()
	vec, ok := m.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    promName(name),
			Help:    name,
			Buckets: buckets,
		}, keys)
		if !m.register(name, vec, keys) {
			m.mu.Unlock()
			return
		}
		m.histograms[name] = vec
	}
	ok = m.sameKeys(name, keys)
	m.mu.Unlock()

	if ok {
		vec.WithLabelValues(values...).Observe(value)
	}
}

// register must be called with mu held.
func (m *PrometheusMetrics) register(name string, c prometheus.Collector, keys []string) bool {
	if err := m.registry.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return false
		}
	}
	m.labelKeys[name] = keys
	return true
}

// sameKeys must be called with mu held.
func (m *PrometheusMetrics) sameKeys(name string, keys []string) bool {
	want := m.labelKeys[name]
	if len(want) != len(keys) {
		return false
	}
	for i := range want {
		if want[i] != keys[i] {
			return false
		}
	}
	return true
}

// splitTags returns label keys and values ordered by key.
func splitTags(tags []Tag) ([]string, []string) {
	sorted := append([]Tag(nil), tags...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	keys := make([]string, len(sorted))
	values := make([]string, len(sorted))
	for i, t := range sorted {
		keys[i] = promName(t.Key)
		values[i] = t.Value
	}
	return keys, values
}

var promReplacer = strings.NewReplacer(".", "_", "-", "_", " ", "_")

func promName(name string) string {
	return promReplacer.Replace(name)
}
