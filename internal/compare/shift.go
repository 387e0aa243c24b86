package compare

import (
	"math"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

// ParseShift parses an ISO-8601 duration such as P1D, P7D or PT12H.
// Year and month components are calendar dependent and rejected.
func ParseShift(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, invalidWindowf("missing shift")
	}
	d, err := duration.Parse(s)
	if err != nil {
		return 0, invalidWindowf("shift %q: %v", s, err)
	}
	if d.Years != 0 || d.Months != 0 {
		return 0, invalidWindowf("shift %q: year and month shifts are not fixed durations", s)
	}
	if d.Negative {
		return 0, invalidWindowf("shift %q must be positive", s)
	}
	secs := ((d.Weeks*7+d.Days)*24+d.Hours)*3600 + d.Minutes*60 + d.Seconds
	if secs >= float64(math.MaxInt64)/float64(time.Second) {
		return 0, invalidWindowf("shift %q is too large", s)
	}
	td := d.ToTimeDuration()
	if td <= 0 {
		return 0, invalidWindowf("shift %q must be positive", s)
	}
	return td, nil
}
