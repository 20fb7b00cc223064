package scan

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/scopeping/internal/domain"
	"github.com/hamed0406/scopeping/internal/fetch"
	"github.com/hamed0406/scopeping/internal/metrics"
	"github.com/hamed0406/scopeping/internal/notify"
	"github.com/hamed0406/scopeping/internal/probe"
)

const (
	NoTargetsTitle = "❌ No targets found!"
	NoTargetsText  = "Check your API configuration."
)

var rule = strings.Repeat("=", 50)

type TargetSource interface {
	Fetch(ctx context.Context, groupIDs []string) (fetch.Result, error)
}

type ResultUploader interface {
	Upload(ctx context.Context, results []domain.ProbeResult) error
}

type MetricsPusher interface {
	Push(ctx context.Context, run *metrics.Run) error
}

type Diagnoser interface {
	Diagnose(ctx context.Context, host string) probe.DNSStatus
}

// Runner performs one fetch, probe and report pass.
type Runner struct {
	Logger   *zap.Logger
	Targets  TargetSource
	Prober   probe.Prober
	Reporter ResultUploader
	Notifier notify.Notifier
	Pusher   MetricsPusher // optional
	DNS      Diagnoser     // optional, consulted for hosts that are not ONLINE

	GroupIDs []string
	Delay    time.Duration
	Out      io.Writer

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
	RunID func() string
}

// Run never fails: every problem is logged and reflected in the summary.
func (r *Runner) Run(ctx context.Context) domain.Summary {
	start := r.now()
	sum := domain.Summary{RunID: r.runID()}
	run := metrics.NewRun()
	log := r.Logger.With(zap.String("run_id", sum.RunID))

	r.printf("%s\n🏓 SCOPEPING - STARTING\n%s\n", rule, rule)
	r.printf("⏰ Started at: %s\n", start.Format(domain.TimeLayout))
	r.printf("🆔 Run: %s\n\n", sum.RunID)
	log.Info("scan_start", zap.Strings("group_ids", r.GroupIDs))

	r.printf("📡 Fetching targets from API...\n")
	res, err := r.Targets.Fetch(ctx, r.GroupIDs)
	if err != nil {
		r.printf("❌ API Error: %v\n", err)
	}
	if res.Skipped != nil {
		for _, e := range multierr.Errors(res.Skipped) {
			r.printf("  ⚠️  Skipped: %v\n", e)
		}
	}
	targets := res.Targets
	sum.Targets = len(targets)
	run.SetTargets(len(targets), len(multierr.Errors(res.Skipped)))

	// Outbound calls after this point must survive an interrupted loop.
	bg := context.WithoutCancel(ctx)

	if len(targets) == 0 {
		r.printf("%s\n", NoTargetsTitle)
		log.Warn("scan_no_targets", zap.Error(err))
		if r.Notifier != nil {
			if nerr := r.Notifier.Send(bg, NoTargetsTitle, NoTargetsText); nerr != nil {
				log.Warn("notify_failed", zap.Error(nerr))
			}
		}
		r.finish(bg, log, run, sum, start)
		return sum
	}
	r.printf("✅ Total domains to ping: %d\n", len(targets))

	results := make([]domain.ProbeResult, 0, len(targets))
	for i, t := range targets {
		if i > 0 {
			if err := r.sleep(ctx, r.Delay); err != nil {
				log.Warn("scan_interrupted", zap.Int("probed", len(results)), zap.Int("targets", len(targets)))
				r.printf("\n⚠️  Interrupted after %d/%d targets\n", len(results), len(targets))
				break
			}
		}
		r.printf("\n[%d/%d] %s (%s)\n", i+1, len(targets), t.Domain, t.Program)
		r.printf("  🏓 Pinging %s...\n", t.Domain)

		pr := r.Prober.Probe(ctx, t.Domain)
		pr.Program = t.Program
		results = append(results, pr)
		sum.Add(pr)
		run.ObserveProbe(pr)

		fields := []zap.Field{
			zap.String("domain", pr.Domain),
			zap.String("program", pr.Program),
			zap.String("status", string(pr.Status)),
			zap.String("details", pr.Details),
		}
		if pr.Stats != nil {
			fields = append(fields, zap.Float64("rtt_avg_ms", pr.Stats.AvgMS), zap.Float64("loss_pct", pr.Stats.LossPercent))
		}
		log.Info("probe_done", fields...)
		r.printf("  %s\n", pr.Status.Label())

		if r.DNS != nil && pr.Status != domain.StatusOnline {
			ds := r.DNS.Diagnose(ctx, pr.Domain)
			log.Info("dns_check",
				zap.String("domain", ds.Domain),
				zap.String("class", ds.Class),
				zap.Strings("ips", ds.IPs),
				zap.String("cname", ds.CNAME),
				zap.Strings("nameservers", ds.Nameservers),
				zap.String("resolver_error", ds.ResolverError),
			)
			r.printf("  DNS: %s\n", ds.Class)
		}
	}

	r.printf("\n%s\n📊 RESULTS SUMMARY\n%s\n", rule, rule)
	r.printf("✅ Online: %d\n", sum.Online)
	r.printf("❌ Offline: %d\n", sum.Offline)
	r.printf("⏱️ Timeout: %d\n", sum.Timeout)
	r.printf("❌ Error: %d\n", sum.Errors)
	r.printf("📊 Total: %d\n\n", sum.Total())

	r.printf("📤 Uploading results to API...\n")
	if err := r.Reporter.Upload(bg, results); err != nil {
		r.printf("⚠️  Upload failed: %v\n", err)
	} else {
		sum.Uploaded = true
		r.printf("✅ Results uploaded successfully\n")
	}

	r.finish(bg, log, run, sum, start)
	r.printf("\n✅ Done!\n%s\n", rule)
	return sum
}

func (r *Runner) finish(ctx context.Context, log *zap.Logger, run *metrics.Run, sum domain.Summary, start time.Time) {
	end := r.now()
	run.Finish(sum.Uploaded, end.Sub(start), end)
	if r.Pusher != nil {
		if err := r.Pusher.Push(ctx, run); err != nil {
			log.Warn("metrics_push_failed", zap.Error(err))
		}
	}
	log.Info("scan_done",
		zap.Int("targets", sum.Targets),
		zap.Int("online", sum.Online),
		zap.Int("offline", sum.Offline),
		zap.Int("timeout", sum.Timeout),
		zap.Int("errors", sum.Errors),
		zap.Bool("uploaded", sum.Uploaded),
		zap.Duration("took", end.Sub(start)),
	)
}

func (r *Runner) printf(format string, args ...any) {
	if r.Out == nil {
		return
	}
	fmt.Fprintf(r.Out, format, args...)
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) runID() string {
	if r.RunID != nil {
		return r.RunID()
	}
	return uuid.NewString()
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
