package sim

import (
	"fmt"
	"time"

	"github.com/fogleman/gg"
)

const (
	timelineWidth = 1200
	laneHeight    = 40
	laneLabel     = 80
)

var kindColors = [...][3]float64{
	EventMSIP:            {0.90, 0.30, 0.20},
	EventTrap:            {0.60, 0.60, 0.60},
	EventFence:           {0.20, 0.40, 0.90},
	EventSupervisorIPI:   {0.95, 0.70, 0.10},
	EventSupervisorTimer: {0.50, 0.20, 0.70},
	EventDelegated:       {0.80, 0.10, 0.60},
	EventReturn:          {0.20, 0.70, 0.30},
	EventStage:           {0.00, 0.00, 0.00},
}

// Timeline draws events as ticks on one lane per hart, left to right in
// time order.  The context is returned ready for EncodePNG or SavePNG.
func Timeline(events []Event, harts int) *gg.Context {
	if harts < 1 {
		harts = 1
	}
	dc := gg.NewContext(timelineWidth, laneHeight*(harts+1))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	var span time.Duration
	if len(events) > 0 {
		span = events[len(events)-1].At
	}
	if span <= 0 {
		span = 1
	}
	plot := float64(timelineWidth - laneLabel - 10)

	dc.SetRGB(0, 0, 0)
	for h := 0; h < harts; h++ {
		y := float64(laneHeight * (h + 1))
		dc.DrawString(fmt.Sprintf("hart %d", h), 8, y+4)
		dc.DrawLine(laneLabel, y, timelineWidth-10, y)
	}
	dc.SetLineWidth(1)
	dc.Stroke()

	for _, e := range events {
		if e.Hart < 0 || e.Hart >= harts || int(e.Kind) >= len(kindColors) {
			continue
		}
		c := kindColors[e.Kind]
		x := laneLabel + plot*float64(e.At)/float64(span)
		y := float64(laneHeight * (e.Hart + 1))
		dc.SetRGB(c[0], c[1], c[2])
		dc.DrawRectangle(x-1, y-laneHeight/3, 3, 2*laneHeight/3)
		dc.Fill()
	}
	dc.SetRGB(0, 0, 0)
	dc.DrawString(fmt.Sprintf("%d events over %s", len(events), span), laneLabel, float64(laneHeight)/2)
	return dc
}
