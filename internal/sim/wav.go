// internal/sim/wav.go
package sim

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/wav"
)

// MaxWAVDuration caps one render. Emissions past the cap are dropped.
const MaxWAVDuration = 30 * time.Minute

// WAVSink renders audible emissions to a mono WAV file. Segments are kept
// as lazy streamers until Close encodes them, so the render is capped at
// MaxWAVDuration.
type WAVSink struct {
	mu        sync.Mutex
	path      string
	format    beep.Format
	parts     []beep.Streamer
	samples   int
	limit     int // samples
	truncated bool
	err       error
}

func NewWAVSink(path string, sampleRate int) *WAVSink {
	sr := beep.SampleRate(sampleRate)
	return &WAVSink{
		path:  path,
		limit: sr.N(MaxWAVDuration),
		format: beep.Format{
			SampleRate:  sr,
			NumChannels: 1,
			Precision:   2,
		},
	}
}

func (w *WAVSink) Emit(e Emission) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil || w.truncated {
		return
	}

	audible := e.Sidetone || e.Transmit
	for _, seg := range e.Segments {
		if w.truncated {
			return
		}
		n := w.format.SampleRate.N(seg.Dur)
		if n <= 0 {
			continue
		}
		if w.samples+n > w.limit {
			n = w.limit - w.samples
			w.truncated = true
		}
		if n <= 0 {
			return
		}
		w.samples += n

		if !seg.On || !audible {
			w.parts = append(w.parts, beep.Silence(n))
			continue
		}

		tone, err := generators.SineTone(w.format.SampleRate, float64(e.PitchHz))
		if err != nil {
			w.err = fmt.Errorf("sim: tone %d Hz: %w", e.PitchHz, err)
			return
		}
		w.parts = append(w.parts, beep.Take(n, &effects.Volume{
			Streamer: tone,
			Base:     2,
			Volume:   -1,
		}))
	}
}

// Truncated reports whether the render hit MaxWAVDuration.
func (w *WAVSink) Truncated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.truncated
}

// Samples returns the number of samples rendered so far.
func (w *WAVSink) Samples() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.samples
}

// Close encodes the rendered audio. A render error is reported here.
func (w *WAVSink) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("sim: create wav: %w", err)
	}

	if err := wav.Encode(f, beep.Seq(w.parts...), w.format); err != nil {
		_ = f.Close()
		return fmt.Errorf("sim: encode wav: %w", err)
	}
	w.parts = nil

	return f.Close()
}
