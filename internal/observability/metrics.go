package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geomag_wdc"

// Metrics holds the Prometheus counters and histograms for WDC ingestion.
type Metrics struct {
	FilesRead     prometheus.Counter
	FileErrors    *prometheus.CounterVec // labels: kind={format,consistency,io}
	RecordsParsed prometheus.Counter
	HourlyValues  prometheus.Counter

	// Data-quality markers: output hours with a missing component.
	MissingValues *prometheus.CounterVec // labels: column={X,Y,Z}

	AppendConflicts prometheus.Counter
	RowsLoaded      *prometheus.CounterVec // labels: sink
	LoadErrors      *prometheus.CounterVec // labels: sink

	FileProcessingDuration prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_read_total",
			Help:      "WDC files parsed and assembled successfully.",
		}),
		FileErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_errors_total",
			Help:      "WDC files rejected, by error kind.",
		}, []string{"kind"}),
		RecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_parsed_total",
			Help:      "Daily WDC records decoded.",
		}),
		HourlyValues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hourly_rows_total",
			Help:      "Hourly X/Y/Z rows assembled.",
		}),
		MissingValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_values_total",
			Help:      "Assembled hours with a missing output component.",
		}, []string{"column"}),
		AppendConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "append_conflicts_total",
			Help:      "Multi-file appends rejected for overlapping hours or station mismatch.",
		}),
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Hourly rows written to a sink.",
		}, []string{"sink"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Sink write failures.",
		}, []string{"sink"}),
		FileProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_processing_duration_seconds",
			Help:      "Time to parse and assemble one WDC file.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FilesRead,
		m.FileErrors,
		m.RecordsParsed,
		m.HourlyValues,
		m.MissingValues,
		m.AppendConflicts,
		m.RowsLoaded,
		m.LoadErrors,
		m.FileProcessingDuration,
	}
}

// NewMetrics creates and registers all ingestion metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered with a fresh registry to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
