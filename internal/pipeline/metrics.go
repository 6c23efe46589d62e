package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reqextract"

// Metrics collects the counters of one run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Pages         prometheus.Counter
	Images        prometheus.Counter
	OCRFailures   prometheus.Counter
	Records       prometheus.Counter
	StageDuration *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Pages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages read from the source document.",
		}),
		Images: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_total",
			Help:      "Embedded images sent to OCR.",
		}),
		OCRFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ocr_failures_total",
			Help:      "Images whose OCR failed and contributed no text.",
		}),
		Records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Requirement records produced by the segmenter.",
		}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage.",
		}, []string{"stage"}),
	}
	m.registry.MustRegister(m.Pages, m.Images, m.OCRFailures, m.Records, m.StageDuration)
	return m
}

// Registry exposes the underlying registry, e.g. for a push gateway.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) observe(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Set(time.Since(start).Seconds())
}

func add(c prometheus.Counter, n int) {
	if n > 0 {
		c.Add(float64(n))
	}
}

// WriteFile writes the registry in the node-exporter textfile format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
