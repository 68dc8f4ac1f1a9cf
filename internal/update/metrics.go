package update

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts executor activity. A nil *Metrics records nothing.
type Metrics struct {
	operations  *prometheus.CounterVec
	inserted    prometheus.Counter
	deleted     prometheus.Counter
	skipped     prometheus.Counter
	loadedBytes prometheus.Counter
}

// NewMetrics creates the counters and registers them on reg. A nil reg
// leaves them unregistered. Registering twice on the same registry reuses
// the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rdfup_operations_total",
			Help: "Update operations applied, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		inserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdfup_quads_inserted_total",
			Help: "Quads added to the store by update operations.",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdfup_quads_deleted_total",
			Help: "Quads removed from the store by update operations.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdfup_template_rows_skipped_total",
			Help: "Template instantiations skipped for unbound or ill-typed slots.",
		}),
		loadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdfup_load_bytes_total",
			Help: "Bytes fetched by LOAD operations.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	m.operations, err = register(reg, m.operations)
	if err != nil {
		return nil, err
	}
	for _, c := range []*prometheus.Counter{&m.inserted, &m.deleted, &m.skipped, &m.loadedBytes} {
		if *c, err = register(reg, *c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Outcome labels.
const (
	outcomeOK         = "ok"
	outcomeFailed     = "failed"
	outcomeDowngraded = "downgraded"
)

func (m *Metrics) observe(res OpResult) {
	if m == nil {
		return
	}
	outcome := outcomeOK
	if res.Downgraded {
		outcome = outcomeDowngraded
	}
	m.operations.WithLabelValues(string(res.Kind), outcome).Inc()
	m.inserted.Add(float64(res.Inserted))
	m.deleted.Add(float64(res.Deleted))
	m.skipped.Add(float64(res.Skipped))
	if res.Loaded != nil {
		m.loadedBytes.Add(float64(res.Loaded.Bytes))
	}
}

func (m *Metrics) observeFailure(kind OpKind) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(string(kind), outcomeFailed).Inc()
}
