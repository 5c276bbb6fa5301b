// internal/store/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

var errNoEndpoint = errors.New("store modbus: endpoint required")

// Bank is the non-volatile holding-register bank that mirrors the keyer
// settings. One TCP session; calls are serialized since the unit id is
// set on the shared handler before each request.
type Bank struct {
	mu  sync.Mutex
	tcp *modbus.TCPClientHandler
	mb  modbus.Client
}

// Dial opens the session to the register bank at endpoint (host:port).
func Dial(endpoint string, timeout time.Duration) (*Bank, error) {
	if endpoint == "" {
		return nil, errNoEndpoint
	}

	tcp := modbus.NewTCPClientHandler(endpoint)
	tcp.Timeout = timeout
	if err := tcp.Connect(); err != nil {
		return nil, fmt.Errorf("store modbus: dial %s: %w", endpoint, err)
	}

	return &Bank{tcp: tcp, mb: modbus.NewClient(tcp)}, nil
}

// ReadRegisters fetches qty holding registers (FC 3).
func (b *Bank) ReadRegisters(unitID uint8, addr, qty uint16) ([]uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tcp.SlaveId = unitID
	raw, err := b.mb.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	if len(raw) != int(qty)*2 {
		return nil, fmt.Errorf("store modbus: short read: got=%d bytes want=%d", len(raw), int(qty)*2)
	}
	return unpackRegisters(raw), nil
}

// WriteRegisters stores a run of holding registers (FC 16).
func (b *Bank) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tcp.SlaveId = unitID
	_, err := b.mb.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs))
	return err
}

// Close ends the session.
func (b *Bank) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tcp.Close()
}

// packRegisters lays registers out big-endian, as they travel on the wire.
func packRegisters(regs []uint16) []byte {
	out := make([]byte, 0, len(regs)*2)
	for _, r := range regs {
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}

func unpackRegisters(data []byte) []uint16 {
	out := make([]uint16, len(data)/2)
	for i := range out {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
