// internal/sim/sink.go
package sim

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Segment is one key-down or key-up interval. Units is the length in dits
// when the segment is Morse-timed, zero for free-running segments.
type Segment struct {
	On    bool
	Units int
	Dur   time.Duration
}

// Emission is everything the engine keyed for one call.
type Emission struct {
	Label    string
	Segments []Segment
	PitchHz  uint16
	Sidetone bool
	Transmit bool
}

// Duration is the total length of the emission.
func (e Emission) Duration() time.Duration {
	var d time.Duration
	for _, s := range e.Segments {
		d += s.Dur
	}
	return d
}

// Sink receives emissions in order.
type Sink interface {
	Emit(e Emission)
}

// Sinks fans out to several sinks.
type Sinks []Sink

func (ss Sinks) Emit(e Emission) {
	for _, s := range ss {
		s.Emit(e)
	}
}

// ---- log sink ----

// LogSink writes one line per emission. Pure gaps are logged at debug.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log.With("component", "sim")}
}

func (s *LogSink) Emit(e Emission) {
	keyed := false
	for _, seg := range e.Segments {
		if seg.On {
			keyed = true
			break
		}
	}

	if !keyed {
		s.log.Debug("sim: gap", "label", e.Label, "dur", e.Duration())
		return
	}
	s.log.Info("sim: keyed",
		"label", e.Label,
		"dur", e.Duration(),
		"pitch_hz", e.PitchHz,
		"tx", e.Transmit,
	)
}

// ---- recorder ----

// Recorder keeps every emission. Safe for use from a reader goroutine.
type Recorder struct {
	mu  sync.Mutex
	all []Emission
}

func (r *Recorder) Emit(e Emission) {
	r.mu.Lock()
	r.all = append(r.all, e)
	r.mu.Unlock()
}

// Emissions returns a copy of what was recorded.
func (r *Recorder) Emissions() []Emission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Emission(nil), r.all...)
}

// Text joins the labels of every keyed emission.
func (r *Recorder) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	for _, e := range r.all {
		for _, seg := range e.Segments {
			if seg.On {
				b.WriteString(e.Label)
				break
			}
		}
	}
	return b.String()
}
