package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/hamed0406/scopeping/internal/domain"
)

// Prober checks a single host. Failures are reported through the result
// status, never as an error.
type Prober interface {
	Probe(ctx context.Context, host string) domain.ProbeResult
}

// Pinger runs the system ping binary once per host.
type Pinger struct {
	Binary  string
	Count   int
	Timeout time.Duration

	Now func() time.Time
}

func NewPinger(binary string, count int, timeout time.Duration) *Pinger {
	if binary == "" {
		binary = "ping"
	}
	if count <= 0 {
		count = 4
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Pinger{Binary: binary, Count: count, Timeout: timeout, Now: time.Now}
}

func (p *Pinger) Probe(ctx context.Context, host string) domain.ProbeResult {
	res := domain.ProbeResult{Domain: host}
	finish := func(st domain.Status, details string) domain.ProbeResult {
		res.Status = st
		res.Details = details
		res.Timestamp = p.now()
		return res
	}

	// ping would read a leading dash as a flag.
	if host == "" || strings.HasPrefix(host, "-") {
		return finish(domain.StatusError, fmt.Sprintf("invalid host %q", host))
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Binary, "-c", strconv.Itoa(p.Count), host)
	cmd.WaitDelay = time.Second
	out, err := cmd.Output()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return finish(domain.StatusTimeout, fmt.Sprintf("Ping timeout after %s", p.Timeout))
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return finish(domain.StatusError, "Ping interrupted")
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return finish(domain.StatusOffline, "Host unreachable")
		}
		return finish(domain.StatusError, err.Error())
	}

	res.Stats = ParseStats(string(out))
	return finish(domain.StatusOnline, summaryLine(string(out)))
}

func (p *Pinger) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// summaryLine picks the round-trip line out of ping's output.
func summaryLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "min/avg/max") || strings.Contains(line, "rtt") {
			return strings.TrimSpace(line)
		}
	}
	return "Ping successful"
}
