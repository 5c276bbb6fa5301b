// internal/sim/console.go
package sim

import (
	"bufio"
	"context"
	"errors"
	"io"
)

// Console key bindings.
const (
	ConsoleCtrl = '!'
	ConsoleDit  = '<'
	ConsoleDah  = '>'
)

type EventKind uint8

const (
	EventSymbol EventKind = iota
	EventCtrl
	EventDit
	EventDah
)

// Event is one operator action delivered to the engine.
type Event struct {
	Kind EventKind
	Sym  byte
}

// ParseConsoleByte maps one console byte onto an event.
// Line endings and non-printable bytes yield nothing.
func ParseConsoleByte(c byte) (Event, bool) {
	switch {
	case c == ConsoleCtrl:
		return Event{Kind: EventCtrl}, true
	case c == ConsoleDit:
		return Event{Kind: EventDit}, true
	case c == ConsoleDah:
		return Event{Kind: EventDah}, true
	case c >= 'a' && c <= 'z':
		return Event{Kind: EventSymbol, Sym: c - ('a' - 'A')}, true
	case c >= 0x20 && c <= 0x7E:
		return Event{Kind: EventSymbol, Sym: c}, true
	}
	return Event{}, false
}

// ReadConsole parses r until EOF or ctx is done. A blocked read is not
// interrupted by ctx; the caller simply stops waiting for it.
func ReadConsole(ctx context.Context, r io.Reader, out chan<- Event) error {
	br := bufio.NewReader(r)

	for {
		c, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		ev, ok := ParseConsoleByte(c)
		if !ok {
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
