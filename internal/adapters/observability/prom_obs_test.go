package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/kyberfog/kyberfog/internal/ports"
)

func testField(key string, value any) ports.Field {
	return ports.Field{Key: key, Value: value}
}

func newTestObs(t *testing.T) (*PromObs, *bytes.Buffer) {
	t.Helper()

	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	var buf bytes.Buffer
	return NewPromObs(zerolog.New(&buf)), &buf
}

func TestPromObsMetrics(t *testing.T) {
	obs, _ := newTestObs(t)

	obs.IncCounter(MetricFramesReceived, 5)
	if got := testutil.ToFloat64(obs.counters[MetricFramesReceived]); got != 5 {
		t.Fatalf("expected received counter 5, got %f", got)
	}

	obs.IncCounter(MetricFramesDropped, 2)
	if got := testutil.ToFloat64(obs.counters[MetricFramesDropped]); got != 2 {
		t.Fatalf("expected dropped counter 2, got %f", got)
	}

	obs.SetGauge(MetricQueueDepth, 42)
	if got := testutil.ToFloat64(obs.gauges[MetricQueueDepth]); got != 42 {
		t.Fatalf("expected queue depth gauge 42, got %f", got)
	}

	obs.ObserveLatency(MetricStageGatewayPRE, 0.005)
	hCollector := obs.histos[MetricStageGatewayPRE].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	// Unknown names are ignored, not registered on the fly.
	obs.IncCounter("fog_unknown_total", 1)
	obs.SetGauge("fog_unknown", 1)
	obs.ObserveLatency("fog_unknown_seconds", 1)
}

func TestPromObsLogging(t *testing.T) {
	obs, buf := newTestObs(t)

	obs.LogInfo("device_init", testField("device", "DEV_1"))
	obs.LogError("link_lost", errors.New("io timeout"), testField("attempt", 2))
	obs.LogCritical("config_invalid", errors.New("bad psk"))

	out := buf.String()
	for _, want := range []string{"device_init", "DEV_1", "link_lost", "io timeout", "config_invalid", `"critical":true`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}
