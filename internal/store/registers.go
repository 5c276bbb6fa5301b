// internal/store/registers.go
package store

import (
	"errors"
	"fmt"
	"strings"
)

// RegisterClient is the exact contract the register backend uses.
type RegisterClient interface {
	ReadRegisters(unitID uint8, addr, qty uint16) ([]uint16, error)
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
	Close() error
}

// RegisterBackend mirrors the block into a bank of holding registers.
//
// Writes are minimized: the full block is written on the first Store and after
// any failure; otherwise only runs of registers that changed are written.
type RegisterBackend struct {
	cli    RegisterClient
	unitID uint8
	base   uint16

	needFull bool
	last     []uint16
}

// NewRegisterBackend builds a backend over cli. base is the first register
// of the block on the device.
func NewRegisterBackend(cli RegisterClient, unitID uint8, base uint16) (*RegisterBackend, error) {
	if cli == nil {
		return nil, errors.New("store: register client required")
	}
	if int(base)+BlockSize > 0x10000 {
		return nil, fmt.Errorf("store: block at %d exceeds register space", base)
	}
	return &RegisterBackend{
		cli:      cli,
		unitID:   unitID,
		base:     base,
		needFull: true,
	}, nil
}

func (b *RegisterBackend) Load() (Record, error) {
	regs, err := b.cli.ReadRegisters(b.unitID, b.base, BlockSize)
	if err != nil {
		return Record{}, fmt.Errorf("store: register read: %w", err)
	}

	rec, err := Decode(regs)
	if errors.Is(err, errBlankMedia) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}

	// device content is now known; next Store may write deltas
	b.last = append([]uint16(nil), regs[:BlockSize]...)
	b.needFull = false
	return rec, nil
}

// Store writes r. On any write failure, the next call re-asserts the full block.
func (b *RegisterBackend) Store(r Record) error {
	regs := Encode(r)

	// ------------------------------------------------------------
	// Full block write (re-assert)
	// ------------------------------------------------------------
	if b.needFull || len(b.last) != BlockSize {
		if err := b.cli.WriteRegisters(b.unitID, b.base, regs); err != nil {
			b.needFull = true
			return fmt.Errorf("store: full block write failed: %w", err)
		}
		b.needFull = false
		b.last = regs
		return nil
	}

	var errs []string

	for _, run := range changedRuns(b.last, regs) {
		chunk := regs[run.start:run.end]
		addr := b.base + uint16(run.start)
		if err := b.cli.WriteRegisters(b.unitID, addr, chunk); err != nil {
			errs = append(errs, fmt.Sprintf("slots %d-%d write failed: %v", run.start, run.end-1, err))
			continue
		}
		copy(b.last[run.start:run.end], chunk)
	}

	if len(errs) > 0 {
		// After a partial failure the device state is unknown; re-assert next time.
		b.needFull = true
		return errors.New("store: " + strings.Join(errs, " | "))
	}

	return nil
}

func (b *RegisterBackend) Close() error {
	return b.cli.Close()
}

type span struct {
	start int
	end   int // exclusive
}

// changedRuns returns maximal runs of differing registers.
func changedRuns(prev, next []uint16) []span {
	var runs []span
	start := -1
	for i := range next {
		diff := i >= len(prev) || prev[i] != next[i]
		switch {
		case diff && start < 0:
			start = i
		case !diff && start >= 0:
			runs = append(runs, span{start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, span{start: start, end: len(next)})
	}
	return runs
}
