package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/hamed0406/scopeping/internal/domain"
)

// Run holds the metrics of one scan run in a private registry.
type Run struct {
	reg *prometheus.Registry

	targets       prometheus.Gauge
	skipped       prometheus.Gauge
	probes        *prometheus.CounterVec
	rtt           prometheus.Histogram
	loss          prometheus.Histogram
	uploadOK      prometheus.Gauge
	duration      prometheus.Gauge
	lastTimestamp prometheus.Gauge
}

func NewRun() *Run {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Run{
		reg: reg,
		targets: f.NewGauge(prometheus.GaugeOpts{
			Name: "scopeping_targets",
			Help: "Number of in-scope targets fetched",
		}),
		skipped: f.NewGauge(prometheus.GaugeOpts{
			Name: "scopeping_fetch_skipped",
			Help: "Groups or programs skipped because the API refused them",
		}),
		probes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scopeping_probes_total",
			Help: "Probe results by status",
		}, []string{"status"}),
		rtt: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "scopeping_probe_rtt_avg_seconds",
			Help:    "Average round-trip time reported by ping",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		loss: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "scopeping_probe_packet_loss_percent",
			Help:    "Packet loss reported by ping",
			Buckets: []float64{0, 25, 50, 75, 100},
		}),
		uploadOK: f.NewGauge(prometheus.GaugeOpts{
			Name: "scopeping_upload_success",
			Help: "1 when the report upload succeeded",
		}),
		duration: f.NewGauge(prometheus.GaugeOpts{
			Name: "scopeping_run_duration_seconds",
			Help: "Wall time of the run",
		}),
		lastTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "scopeping_last_run_timestamp_seconds",
			Help: "Unix time the run finished",
		}),
	}
}

func (r *Run) Registry() *prometheus.Registry { return r.reg }

func (r *Run) SetTargets(n, skipped int) {
	r.targets.Set(float64(n))
	r.skipped.Set(float64(skipped))
}

func (r *Run) ObserveProbe(res domain.ProbeResult) {
	r.probes.WithLabelValues(string(res.Status)).Inc()
	if res.Stats != nil {
		r.loss.Observe(res.Stats.LossPercent)
		if res.Stats.Received > 0 {
			r.rtt.Observe(res.Stats.AvgMS / 1000)
		}
	}
}

func (r *Run) Finish(uploaded bool, took time.Duration, now time.Time) {
	if uploaded {
		r.uploadOK.Set(1)
	} else {
		r.uploadOK.Set(0)
	}
	r.duration.Set(took.Seconds())
	r.lastTimestamp.Set(float64(now.Unix()))
}

// Pusher sends a run's registry to a Prometheus Pushgateway.
type Pusher struct {
	URL      string
	Job      string
	Grouping map[string]string
}

// Push replaces the metrics of this job and grouping on the gateway.
func (p Pusher) Push(ctx context.Context, run *Run) error {
	if p.URL == "" {
		return nil
	}
	ps := push.New(p.URL, p.Job).Gatherer(run.Registry())
	for k, v := range p.Grouping {
		if v != "" {
			ps = ps.Grouping(k, v)
		}
	}
	if err := ps.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
