package sim

import (
	"strconv"

	"github.com/google/pprof/profile"
)

// Profile turns the event log into a pprof profile: one function per
// event kind, one sample per hart and kind, labelled with the hart.
func (m *Machine) Profile() *profile.Profile {
	events := m.events.snapshot()
	p := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "events", Unit: "count"}},
		PeriodType: &profile.ValueType{Type: "events", Unit: "count"},
		Period:     1,
		TimeNanos:  m.start.UnixNano(),
	}
	if len(events) > 0 {
		p.DurationNanos = int64(events[len(events)-1].At)
	}

	locs := make(map[EventKind]*profile.Location)
	location := func(k EventKind) *profile.Location {
		if l, ok := locs[k]; ok {
			return l
		}
		fn := &profile.Function{
			ID:         uint64(len(p.Function) + 1),
			Name:       "sbi." + k.String(),
			SystemName: k.String(),
		}
		p.Function = append(p.Function, fn)
		l := &profile.Location{
			ID:   uint64(len(p.Location) + 1),
			Line: []profile.Line{{Function: fn}},
		}
		p.Location = append(p.Location, l)
		locs[k] = l
		return l
	}

	type key struct {
		hart int
		kind EventKind
	}
	counts := make(map[key]int64)
	var order []key
	for _, e := range events {
		k := key{e.Hart, e.Kind}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	for _, k := range order {
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{location(k.kind)},
			Value:    []int64{counts[k]},
			Label:    map[string][]string{"hart": {strconv.Itoa(k.hart)}},
			NumLabel: map[string][]int64{"hartid": {int64(k.hart)}},
		})
	}
	return p
}
