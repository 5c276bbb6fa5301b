// internal/store/pebble.go
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/zeebo/xxh3"
)

const pebbleRecordKey = "keyer|record"

// checksumSize is the xxh3 trailer appended to the packed block.
const checksumSize = 8

var errCorruptRecord = errors.New("store: corrupt pebble record")

// PebbleBackend persists the packed block under a single key.
// Value layout: BlockSize big-endian registers followed by an xxh3-64 checksum.
type PebbleBackend struct {
	db   *pebble.DB
	path string
}

// OpenPebble opens (or creates) the database directory at path.
func OpenPebble(path string) (*PebbleBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: pebble path is empty")
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("store: pebble open: %w", err)
	}
	return &PebbleBackend{db: db, path: path}, nil
}

func (p *PebbleBackend) Load() (Record, error) {
	val, closer, err := p.db.Get([]byte(pebbleRecordKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: pebble get: %w", err)
	}
	raw := append([]byte(nil), val...)
	_ = closer.Close()

	regs, err := unpackChecked(raw)
	if err != nil {
		return Record{}, err
	}

	rec, err := Decode(regs)
	if errors.Is(err, errBlankMedia) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (p *PebbleBackend) Store(r Record) error {
	if err := p.db.Set([]byte(pebbleRecordKey), packChecked(Encode(r)), pebble.Sync); err != nil {
		return fmt.Errorf("store: pebble set: %w", err)
	}
	return nil
}

func (p *PebbleBackend) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

func packChecked(regs []uint16) []byte {
	out := make([]byte, len(regs)*2, len(regs)*2+checksumSize)
	for i, r := range regs {
		binary.BigEndian.PutUint16(out[2*i:], r)
	}
	var sum [checksumSize]byte
	binary.BigEndian.PutUint64(sum[:], xxh3.Hash(out))
	return append(out, sum[:]...)
}

func unpackChecked(raw []byte) ([]uint16, error) {
	if len(raw) != BlockSize*2+checksumSize {
		return nil, fmt.Errorf("%w: length %d", errCorruptRecord, len(raw))
	}
	payload := raw[:BlockSize*2]
	want := binary.BigEndian.Uint64(raw[BlockSize*2:])
	if got := xxh3.Hash(payload); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch", errCorruptRecord)
	}
	regs := make([]uint16, BlockSize)
	for i := range regs {
		regs[i] = binary.BigEndian.Uint16(payload[2*i:])
	}
	return regs, nil
}
