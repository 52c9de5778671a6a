// internal/transport/i2c/bus.go
package i2c

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultAddress is the Vue's fixed 7-bit bus address.
const DefaultAddress uint16 = 0x64

type Config struct {
	Bus     string // "" opens the first available bus
	Address uint16
}

// Bus reads whole frames from the Vue with a single read transaction.
type Bus struct {
	dev    *i2c.Dev
	closer i2c.BusCloser
}

// Open initializes the host drivers and opens the named bus.
func Open(cfg Config) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("i2c transport: host init: %w", err)
	}
	bc, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("i2c transport: open bus %q: %w", cfg.Bus, err)
	}
	b := New(bc, cfg.Address)
	b.closer = bc
	return b, nil
}

// New wraps an already opened bus. A zero address means DefaultAddress.
func New(bus i2c.Bus, addr uint16) *Bus {
	if addr == 0 {
		addr = DefaultAddress
	}
	return &Bus{dev: &i2c.Dev{Bus: bus, Addr: addr}}
}

// ReadFrame reads len(buf) bytes; no register pointer is written first.
func (b *Bus) ReadFrame(buf []byte) error {
	return b.dev.Tx(nil, buf)
}

func (b *Bus) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func (b *Bus) String() string { return b.dev.String() }
