package sim

import (
	"sort"
	"time"

	"github.com/aclements/go-moremath/stats"
)

// CallStats summarises how long the firmware took to answer the calls made
// to one extension.
type CallStats struct {
	EID    uint64
	Calls  int
	Mean   time.Duration
	Median time.Duration
	P99    time.Duration
	Max    time.Duration
}

// Latency groups the completed ecalls in events by extension id.  Calls
// that never returned to their caller (a stop or a reset) are not counted.
func Latency(events []Event) []CallStats {
	samples := make(map[uint64]*stats.Sample)
	for _, e := range events {
		if e.Kind != EventReturn {
			continue
		}
		s := samples[e.Value]
		if s == nil {
			s = &stats.Sample{}
			samples[e.Value] = s
		}
		s.Xs = append(s.Xs, float64(e.Took))
	}

	out := make([]CallStats, 0, len(samples))
	for eid, s := range samples {
		s.Sort()
		_, max := s.Bounds()
		out = append(out, CallStats{
			EID:    eid,
			Calls:  len(s.Xs),
			Mean:   time.Duration(s.Mean()),
			Median: time.Duration(s.Quantile(0.5)),
			P99:    time.Duration(s.Quantile(0.99)),
			Max:    time.Duration(max),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EID < out[j].EID })
	return out
}
