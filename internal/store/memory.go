// internal/store/memory.go
package store

// MemoryBackend keeps the encoded block in process memory.
// Writes counts every physical write it received.
type MemoryBackend struct {
	regs   []uint16
	Writes int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load() (Record, error) {
	if m.regs == nil {
		return Record{}, ErrNotFound
	}
	return Decode(m.regs)
}

func (m *MemoryBackend) Store(r Record) error {
	m.regs = Encode(r)
	m.Writes++
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
