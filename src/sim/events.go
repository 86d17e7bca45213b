package sim

import (
	"fmt"
	"sync"
	"time"
)

// EventKind is what an Event records.
type EventKind int

const (
	EventMSIP EventKind = iota
	EventTrap
	EventFence
	EventSupervisorIPI
	EventSupervisorTimer
	EventDelegated
	EventReturn
	EventStage
)

var eventNames = [...]string{
	"msip", "trap", "fence", "ssip", "stip", "delegated", "return", "stage",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "invalid"
}

// Event is one entry in the machine's log.  Seq gives the global order.
type Event struct {
	Seq    int
	At     time.Duration
	Hart   int
	Kind   EventKind
	Detail string
	Value  uint64
	// Took is how long an ecall spent in the firmware.  Only EventReturn
	// sets it.
	Took time.Duration
}

func (e Event) String() string {
	return fmt.Sprintf("%5d hart %d %-9s %#x %s", e.Seq, e.Hart, e.Kind, e.Value, e.Detail)
}

type eventLog struct {
	lock   sync.Mutex
	start  time.Time
	events []Event
}

func (l *eventLog) add(e Event) {
	l.lock.Lock()
	e.Seq = len(l.events)
	e.At = time.Since(l.start)
	l.events = append(l.events, e)
	l.lock.Unlock()
}

func (l *eventLog) snapshot() []Event {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]Event(nil), l.events...)
}
