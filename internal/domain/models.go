package domain

import "time"

// TimeLayout is the human-readable timestamp format used in reports and logs.
const TimeLayout = "2006-01-02 15:04:05"

// Target is an in-scope domain together with the program that owns it.
type Target struct {
	Domain  string `json:"domain"`
	Program string `json:"program"`
}

type Status string

const (
	StatusOnline  Status = "ONLINE"
	StatusOffline Status = "OFFLINE"
	StatusTimeout Status = "TIMEOUT"
	StatusError   Status = "ERROR"
)

// Label is the status as it appears in the uploaded report.
func (s Status) Label() string {
	switch s {
	case StatusOnline:
		return "✅ ONLINE"
	case StatusOffline:
		return "❌ OFFLINE"
	case StatusTimeout:
		return "⏱️ TIMEOUT"
	case StatusError:
		return "❌ ERROR"
	default:
		return string(s)
	}
}

// ProbeResult is the outcome of probing a single Target.
type ProbeResult struct {
	Domain    string    `json:"domain"`
	Status    Status    `json:"status"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
	Program   string    `json:"program,omitempty"`

	// Stats is set when ping printed a round-trip summary.
	Stats *PingStats `json:"stats,omitempty"`
}

// FormattedTime renders the capture time for the report.
func (r ProbeResult) FormattedTime() string {
	return r.Timestamp.Format(TimeLayout)
}

// PingStats holds the numbers parsed from ping's summary lines.
type PingStats struct {
	Transmitted int     `json:"transmitted"`
	Received    int     `json:"received"`
	LossPercent float64 `json:"loss_percent"`
	MinMS       float64 `json:"min_ms"`
	AvgMS       float64 `json:"avg_ms"`
	MaxMS       float64 `json:"max_ms"`
}

// Summary aggregates one scan run.
type Summary struct {
	RunID    string `json:"run_id"`
	Targets  int    `json:"targets"`
	Online   int    `json:"online"`
	Offline  int    `json:"offline"`
	Timeout  int    `json:"timeout"`
	Errors   int    `json:"errors"`
	Uploaded bool   `json:"uploaded"`
}

// Total is the number of probe results counted.
func (s Summary) Total() int {
	return s.Online + s.Offline + s.Timeout + s.Errors
}

// Add counts one result.
func (s *Summary) Add(r ProbeResult) {
	switch r.Status {
	case StatusOnline:
		s.Online++
	case StatusOffline:
		s.Offline++
	case StatusTimeout:
		s.Timeout++
	default:
		s.Errors++
	}
}
