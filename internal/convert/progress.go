package convert

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"tes3conv/internal/services"
)

// Progress values delivered to sinks.
const (
	ProgressLoaded  float64 = 33
	ProgressDecoded float64 = 66
	ProgressDone    float64 = 100
	ProgressFailed  float64 = -1
)

// ErrSinkClosed is returned by ChannelSink.Send after the consumer detached.
var ErrSinkClosed = errors.New("progress sink closed")

// ProgressSink receives progress values from a conversion. Send is called from
// the goroutine running the conversion, never concurrently.
type ProgressSink interface {
	Send(value float64) error
}

// FuncSink adapts a function to ProgressSink.
type FuncSink func(float64) error

// Send calls f(value).
func (f FuncSink) Send(value float64) error {
	if f == nil {
		return nil
	}
	return f(value)
}

// ChannelSink delivers progress over a channel to a single consumer.
type ChannelSink struct {
	values     chan float64
	detached   chan struct{}
	detachOnce sync.Once
	closeOnce  sync.Once
	closed     atomic.Bool
}

// NewChannelSink creates a sink whose channel holds up to buffer values.
// A buffer of at least 3 lets a conversion finish without a consumer reading.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelSink{
		values:   make(chan float64, buffer),
		detached: make(chan struct{}),
	}
}

// Send delivers value, blocking until the consumer receives it, buffer space
// frees up, or the consumer detaches.
func (s *ChannelSink) Send(value float64) error {
	if s == nil || s.closed.Load() {
		return ErrSinkClosed
	}
	select {
	case <-s.detached:
		return ErrSinkClosed
	default:
	}
	select {
	case s.values <- value:
		return nil
	case <-s.detached:
		return ErrSinkClosed
	}
}

// Values returns the receive side of the sink.
func (s *ChannelSink) Values() <-chan float64 {
	return s.values
}

// Detach tells the producer nobody is listening any more. Safe to call more
// than once and from any goroutine.
func (s *ChannelSink) Detach() {
	s.detachOnce.Do(func() { close(s.detached) })
}

// Close closes the value channel. Only the producer may call it, and only
// after its last Send.
func (s *ChannelSink) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.values)
	})
}

// reporter enforces the emission contract: values strictly increase, each is
// sent at most once, and exactly one terminal value ends the sequence.
type reporter struct {
	sink     ProgressSink
	sent     []float64
	terminal bool
}

func newReporter(sink ProgressSink) *reporter {
	return &reporter{sink: sink}
}

func (r *reporter) last() float64 {
	if len(r.sent) == 0 {
		return 0
	}
	return r.sent[len(r.sent)-1]
}

// advance sends an intermediate or success value.
func (r *reporter) advance(value float64) error {
	if r.terminal || value <= r.last() {
		return nil
	}
	r.sent = append(r.sent, value)
	if value >= ProgressDone {
		r.terminal = true
	}
	if r.sink == nil {
		return nil
	}
	if err := r.sink.Send(value); err != nil {
		return services.Wrap(services.ErrSink, "report", "send progress", fmt.Sprintf("value %g", value), err)
	}
	return nil
}

// fail sends the failure marker unless a terminal value already went out.
// Delivery errors are ignored; there is nothing left to report them to.
func (r *reporter) fail() {
	if r.terminal {
		return
	}
	r.terminal = true
	r.sent = append(r.sent, ProgressFailed)
	if r.sink != nil {
		_ = r.sink.Send(ProgressFailed)
	}
}

func (r *reporter) values() []float64 {
	return append([]float64(nil), r.sent...)
}
