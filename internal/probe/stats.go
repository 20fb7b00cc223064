package probe

import (
	"regexp"
	"strconv"

	"github.com/hamed0406/scopeping/internal/domain"
)

var (
	// Linux iputils, BSD/macOS and busybox wording.
	packetsRe = regexp.MustCompile(`(\d+) packets transmitted, (\d+) (?:packets )?received(?:, \+\d+ errors)?, ([\d.]+)% packet loss`)
	rttRe     = regexp.MustCompile(`min/avg/max\S* = ([\d.]+)/([\d.]+)/([\d.]+)`)
)

// ParseStats extracts packet counts and round-trip times from ping output.
// It returns nil when neither summary line is present.
func ParseStats(out string) *domain.PingStats {
	var st domain.PingStats
	found := false

	if m := packetsRe.FindStringSubmatch(out); m != nil {
		st.Transmitted, _ = strconv.Atoi(m[1])
		st.Received, _ = strconv.Atoi(m[2])
		st.LossPercent, _ = strconv.ParseFloat(m[3], 64)
		found = true
	}
	if m := rttRe.FindStringSubmatch(out); m != nil {
		st.MinMS, _ = strconv.ParseFloat(m[1], 64)
		st.AvgMS, _ = strconv.ParseFloat(m[2], 64)
		st.MaxMS, _ = strconv.ParseFloat(m[3], 64)
		found = true
	}
	if !found {
		return nil
	}
	return &st
}
