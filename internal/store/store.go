// internal/store/store.go
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tamzrod/cw-keyer/internal/keyer"
)

var (
	// ErrNotFound is returned by a Backend holding no record yet.
	ErrNotFound = errors.New("store: no persisted record")
	// ErrRange rejects a value outside its persisted range.
	ErrRange = errors.New("store: value out of range")
	// ErrUnknownUser rejects a user scalar id with no slot.
	ErrUnknownUser = errors.New("store: unknown user scalar")
	// ErrSlot rejects a macro slot outside 1..MacroSlots.
	ErrSlot = errors.New("store: invalid macro slot")
)

// Limits of the adjustable scalars.
const (
	PitchMinHz  = 300
	PitchMaxHz  = 1200
	PitchStepHz = 10

	MinWPM = 5
	MaxWPM = 50
)

// Record is the complete persisted configuration.
type Record struct {
	Mode          keyer.Mode
	Flags         uint16
	PitchHz       uint16
	WPM           uint8
	FarnsworthWPM uint8 // 0 = off
	User          [UserSlots]uint16
	Macros        [keyer.MacroSlots]string
}

// Backend is physical persistence. Store calls it only when something changed.
type Backend interface {
	Load() (Record, error)
	Store(r Record) error
	Close() error
}

// Store owns the configuration record and its dirty indicator.
// It is not safe for concurrent use: exactly one mutator owns it at a time.
type Store struct {
	backend  Backend
	defaults Record
	rec      Record
	dirty    bool
	writes   int
	log      *slog.Logger
}

// Open loads the record from b. Blank media starts from defaults.
func Open(b Backend, defaults Record, log *slog.Logger) (*Store, error) {
	if b == nil {
		return nil, errors.New("store: backend required")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Store{
		backend:  b,
		defaults: clampRecord(defaults),
		log:      log.With("component", "store"),
	}

	rec, err := b.Load()
	switch {
	case errors.Is(err, ErrNotFound):
		s.rec = s.defaults
		s.log.Info("store: blank media, using defaults")
	case err != nil:
		return nil, fmt.Errorf("store: load: %w", err)
	default:
		s.rec = clampRecord(rec)
		if s.rec != rec {
			s.dirty = true
			s.log.Warn("store: persisted record out of range, clamped")
		}
	}

	return s, nil
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() Record { return s.rec }

// Dirty reports unsaved mutations.
func (s *Store) Dirty() bool { return s.dirty }

// Writes counts physical writes performed by Save.
func (s *Store) Writes() int { return s.writes }

// Save writes the record if dirty. Safe to call unconditionally.
// On failure the record stays dirty so the next Save retries.
func (s *Store) Save() error {
	if !s.dirty {
		return nil
	}
	if err := s.backend.Store(s.rec); err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	s.dirty = false
	s.writes++
	s.log.Debug("store: saved", "writes", s.writes)
	return nil
}

// Close releases the backend. Unsaved changes are not flushed.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) mutate(fn func(r *Record)) {
	before := s.rec
	fn(&s.rec)
	if s.rec != before {
		s.dirty = true
	}
}

// Reset restores factory defaults.
func (s *Store) Reset() {
	s.mutate(func(r *Record) { *r = s.defaults })
}

func (s *Store) Mode() keyer.Mode { return s.rec.Mode }

func (s *Store) SetMode(m keyer.Mode) {
	s.mutate(func(r *Record) { r.Mode = m })
}

func (s *Store) Flag(f keyer.Flag) bool { return s.rec.Flags&f.Mask() != 0 }

func (s *Store) SetFlag(f keyer.Flag, on bool) {
	s.mutate(func(r *Record) {
		if on {
			r.Flags |= f.Mask()
		} else {
			r.Flags &^= f.Mask()
		}
	})
}

func (s *Store) Toggle(f keyer.Flag) {
	s.SetFlag(f, !s.Flag(f))
}

func (s *Store) PitchHz() uint16 { return s.rec.PitchHz }

// AdjustPitch moves the pitch one step, saturating at the limits.
func (s *Store) AdjustPitch(d keyer.Direction) {
	s.mutate(func(r *Record) {
		p := int(r.PitchHz) + int(d)*PitchStepHz
		r.PitchHz = uint16(clampInt(p, PitchMinHz, PitchMaxHz))
	})
}

func (s *Store) WPM() uint8 { return s.rec.WPM }

// AdjustWPM moves the character speed one WPM. A Farnsworth speed that is
// no longer below the character speed is switched off.
func (s *Store) AdjustWPM(d keyer.Direction) {
	s.mutate(func(r *Record) {
		r.WPM = uint8(clampInt(int(r.WPM)+int(d), MinWPM, MaxWPM))
		if r.FarnsworthWPM >= r.WPM {
			r.FarnsworthWPM = 0
		}
	})
}

func (s *Store) FarnsworthWPM() uint8 { return s.rec.FarnsworthWPM }

// AdjustFarnsworth moves the Farnsworth speed one WPM. Down means slower
// effective speed, i.e. more spacing. Reaching the character speed turns it off.
func (s *Store) AdjustFarnsworth(d keyer.Direction) {
	s.mutate(func(r *Record) {
		f := int(r.FarnsworthWPM)
		if f == 0 {
			if d == keyer.Up {
				return
			}
			f = int(r.WPM)
		}
		f += int(d)
		switch {
		case f >= int(r.WPM):
			r.FarnsworthWPM = 0
		case f < MinWPM:
			r.FarnsworthWPM = MinWPM
		default:
			r.FarnsworthWPM = uint8(f)
		}
	})
}

// User returns a user scalar. Unknown ids read as zero.
func (s *Store) User(id uint8) uint16 {
	if int(id) >= UserSlots {
		return 0
	}
	return s.rec.User[id]
}

// SetUser stores a user scalar. The beacon interval is bounded to 0..9999.
func (s *Store) SetUser(id uint8, v uint16) error {
	if int(id) >= UserSlots {
		return fmt.Errorf("%w: id=%d", ErrUnknownUser, id)
	}
	if id == keyer.UserBeaconInterval && v > keyer.MaxBeaconInterval {
		return fmt.Errorf("%w: beacon interval %d", ErrRange, v)
	}
	s.mutate(func(r *Record) { r.User[id] = v })
	return nil
}

// Macro returns the text of a macro slot (1-based).
func (s *Store) Macro(slot int) (string, error) {
	if slot < 1 || slot > keyer.MacroSlots {
		return "", fmt.Errorf("%w: %d", ErrSlot, slot)
	}
	return s.rec.Macros[slot-1], nil
}

// SetMacro replaces a macro slot. Text is truncated to MacroMaxChars.
func (s *Store) SetMacro(slot int, text string) error {
	if slot < 1 || slot > keyer.MacroSlots {
		return fmt.Errorf("%w: %d", ErrSlot, slot)
	}
	text = sanitizeMacro(text)
	s.mutate(func(r *Record) { r.Macros[slot-1] = text })
	return nil
}

// clampRecord forces every scalar into its valid range.
func clampRecord(r Record) Record {
	if r.Mode > keyer.DahPriority {
		r.Mode = keyer.IambicB
	}
	r.PitchHz = uint16(clampInt(int(r.PitchHz), PitchMinHz, PitchMaxHz))
	r.WPM = uint8(clampInt(int(r.WPM), MinWPM, MaxWPM))
	if r.FarnsworthWPM != 0 && (r.FarnsworthWPM >= r.WPM || r.FarnsworthWPM < MinWPM) {
		r.FarnsworthWPM = 0
	}
	if r.User[keyer.UserBeaconInterval] > keyer.MaxBeaconInterval {
		r.User[keyer.UserBeaconInterval] = 0
	}
	for i := range r.Macros {
		r.Macros[i] = sanitizeMacro(r.Macros[i])
	}
	return r
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
