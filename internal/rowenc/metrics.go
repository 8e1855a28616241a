package rowenc

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuannm99/novarow/internal/encerr"
)

// Metrics counts encode outcomes. A nil *Metrics records nothing.
type Metrics struct {
	rows     prometheus.Counter
	errors   *prometheus.CounterVec
	rowBytes prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "novarow_rows_encoded_total",
			Help: "Rows encoded successfully",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "novarow_encode_errors_total",
			Help: "Row encodes that failed, by error kind",
		}, []string{"kind"}),
		rowBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "novarow_row_bytes",
			Help:    "Size of encoded row payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(16, 4, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.rows, m.errors, m.rowBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(r Row) {
	if m == nil {
		return
	}
	m.rows.Inc()
	m.rowBytes.Observe(float64(len(r.Payload)))
}

func (m *Metrics) observeError(err error) {
	if m == nil {
		return
	}
	kind := encerr.KindOf(err)
	if kind == "" {
		kind = "unknown"
	}
	m.errors.WithLabelValues(string(kind)).Inc()
}
