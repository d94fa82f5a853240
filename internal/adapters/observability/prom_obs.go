package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/kyberfog/kyberfog/internal/ports"
)

// Metric names used across the pipeline.
const (
	MetricFramesReceived = "fog_frames_received_total"
	MetricRecordsDecoded = "fog_records_decoded_total"
	MetricRunsProcessed  = "fog_runs_processed_total"
	MetricFramesDropped  = "fog_frames_dropped_total"
	MetricQueueDepth     = "fog_queue_depth"

	MetricStageDeviceEncrypt = "fog_stage_device_encrypt_seconds"
	MetricStageGatewayPRE    = "fog_stage_gateway_pre_seconds"
	MetricStageCloudDecrypt  = "fog_stage_cloud_decrypt_seconds"
	MetricStageVerify        = "fog_stage_verify_seconds"
	MetricRunTotal           = "fog_run_total_seconds"
)

// PromObs backs the Observability port with Prometheus metrics and
// zerolog structured logging.
type PromObs struct {
	log      zerolog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs(log zerolog.Logger) *PromObs {
	received := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricFramesReceived,
		Help: "Total frames read off the link, regardless of kind.",
	})
	decoded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricRecordsDecoded,
		Help: "Encrypted payloads successfully decoded into sensor records.",
	})
	processed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricRunsProcessed,
		Help: "Workflow runs that reached the verified Ready state.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricFramesDropped,
		Help: "Frames lost to queue overflow, decode failures, or link loss.",
	})
	depth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricQueueDepth,
		Help: "Current number of frames buffered in the bounded queue.",
	})

	histos := make(map[string]prometheus.Observer, 5)
	collectors := []prometheus.Collector{received, decoded, processed, dropped, depth}
	for name, help := range map[string]string{
		MetricStageDeviceEncrypt: "Device encapsulate+seal stage latency.",
		MetricStageGatewayPRE:    "Gateway re-encryption stage latency.",
		MetricStageCloudDecrypt:  "Cloud decapsulate+open stage latency.",
		MetricStageVerify:        "Round-trip verification stage latency.",
		MetricRunTotal:           "Sum of the four stage latencies per run.",
	} {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		})
		histos[name] = h
		collectors = append(collectors, h)
	}

	prometheus.MustRegister(collectors...)

	return &PromObs{
		log: log,
		counters: map[string]prometheus.Counter{
			MetricFramesReceived: received,
			MetricRecordsDecoded: decoded,
			MetricRunsProcessed:  processed,
			MetricFramesDropped:  dropped,
		},
		gauges: map[string]prometheus.Gauge{
			MetricQueueDepth: depth,
		},
		histos: histos,
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info().Fields(fieldMap(fields)).Msg(msg)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.log.Error().Err(err).Fields(fieldMap(fields)).Msg(msg)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.log.Error().Bool("critical", true).Err(err).Fields(fieldMap(fields)).Msg(msg)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func fieldMap(fields []ports.Field) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return m
}

var _ ports.Observability = (*PromObs)(nil)
