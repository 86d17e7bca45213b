// This file was automatically generated by genny.
// Any changes will be lost if this file is regenerated.
// see https://github.com/cheekybits/genny

package hart

// FIFOCapacity is the number of elements a fifo holds.  It is fixed so a
// fifo can live inside a statically allocated hart context.
const FIFOCapacity = 16

// FIFOError is returned by Push and Pop instead of blocking.
type FIFOError int

const (
	FIFOEmpty FIFOError = iota + 1
	FIFOFull
)

func (e FIFOError) Error() string {
	switch e {
	case FIFOEmpty:
		return "fifo empty"
	case FIFOFull:
		return "fifo full"
	}
	return "fifo error"
}

// RequestFIFO is a fixed capacity ring buffer.  It is not concurrent safe,
// callers that share one hold a lock around it.  The zero value is an
// empty fifo.
type RequestFIFO struct {
	data  [FIFOCapacity]Request
	head  int
	tail  int
	count int
}

// Full returns true if another Push would fail.
func (g *RequestFIFO) Full() bool {
	return g.count == FIFOCapacity
}

// Empty returns true if a Pop would fail.
func (g *RequestFIFO) Empty() bool {
	return g.count == 0
}

// Len returns the number of queued elements.
func (g *RequestFIFO) Len() int {
	return g.count
}

// Push appends element at the tail.
func (g *RequestFIFO) Push(element Request) error {
	if g.Full() {
		return FIFOFull
	}
	g.data[g.tail] = element
	g.tail = (g.tail + 1) % FIFOCapacity
	g.count++
	return nil
}

// Pop removes the element at the head.
func (g *RequestFIFO) Pop() (Request, error) {
	var element Request
	if g.Empty() {
		return element, FIFOEmpty
	}
	element = g.data[g.head]
	g.data[g.head] = *new(Request)
	g.head = (g.head + 1) % FIFOCapacity
	g.count--
	return element, nil
}

// Reset drops everything queued.
func (g *RequestFIFO) Reset() {
	*g = RequestFIFO{}
}
