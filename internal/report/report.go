package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/scopeping/internal/api"
	"github.com/hamed0406/scopeping/internal/domain"
)

// ScanType is sent with every upload.
const ScanType = "ping-check"

// Build renders the results as the plain-text report.
func Build(results []domain.ProbeResult, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Ping Scan Results\n")
	fmt.Fprintf(&b, "# Date: %s\n", now.Format(domain.TimeLayout))
	fmt.Fprintf(&b, "# Total Scanned: %d\n\n", len(results))
	for _, r := range results {
		fmt.Fprintf(&b, "%s: %s\n", r.Domain, r.Status.Label())
		fmt.Fprintf(&b, "  Details: %s\n", r.Details)
		fmt.Fprintf(&b, "  Time: %s\n\n", r.FormattedTime())
	}
	return b.String()
}

// FileName is the name the upload is stored under.
func FileName(now time.Time) string {
	return "ping_results_" + now.Format("20060102_150405") + ".txt"
}

type Uploader interface {
	UploadResults(ctx context.Context, u api.Upload) error
}

type Reporter struct {
	API      Uploader
	DeviceID string
	Timeout  time.Duration
	Log      *zap.Logger

	Now func() time.Time
}

// Upload renders and posts the report. It is never retried.
func (r *Reporter) Upload(ctx context.Context, results []domain.ProbeResult) error {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	u := api.Upload{
		ScanType: ScanType,
		Results:  Build(results, now),
		FileName: FileName(now),
		DeviceID: r.DeviceID,
	}
	if err := r.API.UploadResults(ctx, u); err != nil {
		r.Log.Error("upload_failed", zap.String("file_name", u.FileName), zap.Error(err))
		return fmt.Errorf("upload results: %w", err)
	}
	r.Log.Info("upload_ok", zap.String("file_name", u.FileName), zap.Int("results", len(results)))
	return nil
}
