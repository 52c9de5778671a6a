// internal/transport/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// maxReadQuantity is the FC3 per-request register limit.
const maxReadQuantity = 125

// RegisterReader is the slice of a Modbus client the bus needs.
type RegisterReader interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

// Config selects TCP (Endpoint) or RTU (SerialPort).
type Config struct {
	Endpoint   string
	SerialPort string
	BaudRate   int
	UnitID     uint8
	Timeout    time.Duration
	Address    uint16
}

// Bus reads the raw frame out of a Modbus gateway's holding registers.
// Register bytes are copied in wire order, so the gateway must expose the
// frame byte-for-byte.
type Bus struct {
	mu      sync.Mutex
	reader  RegisterReader
	closer  io.Closer
	address uint16
	name    string
}

// Open connects a TCP or RTU handler.
func Open(cfg Config) (*Bus, error) {
	var (
		handler modbus.ClientHandler
		closer  io.Closer
		name    string
	)

	switch {
	case cfg.Endpoint != "":
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("modbus transport: connect %s: %w", cfg.Endpoint, err)
		}
		handler, closer, name = h, h, "modbus-tcp:"+cfg.Endpoint

	case cfg.SerialPort != "":
		h := modbus.NewRTUClientHandler(cfg.SerialPort)
		if cfg.BaudRate > 0 {
			h.BaudRate = cfg.BaudRate
		}
		h.Timeout = cfg.Timeout
		h.IdleTimeout = 100 * time.Millisecond
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("modbus transport: open %s: %w", cfg.SerialPort, err)
		}
		handler, closer, name = h, h, "modbus-rtu:"+cfg.SerialPort

	default:
		return nil, errors.New("modbus transport: endpoint or serial_port required")
	}

	b := New(modbus.NewClient(handler), cfg.Address)
	b.closer = closer
	b.name = name
	return b, nil
}

// New wraps an existing reader.
func New(r RegisterReader, address uint16) *Bus {
	return &Bus{reader: r, address: address, name: "modbus"}
}

// ReadFrame fills buf from consecutive holding registers.
func (b *Bus) ReadFrame(buf []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := (len(buf) + 1) / 2
	off := 0
	for reg := 0; reg < total; {
		qty := min(total-reg, maxReadQuantity)
		data, err := b.reader.ReadHoldingRegisters(b.address+uint16(reg), uint16(qty))
		if err != nil {
			return err
		}
		if len(data) != qty*2 {
			return fmt.Errorf("modbus transport: short read: got %d bytes want %d", len(data), qty*2)
		}
		off += copy(buf[off:], data)
		reg += qty
	}
	return nil
}

func (b *Bus) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func (b *Bus) String() string { return b.name }
