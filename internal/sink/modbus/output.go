// internal/sink/modbus/output.go
package modbus

import (
	"errors"
	"time"

	"github.com/tamzrod/vue-bridge/internal/sensor"
)

// floatWriter is satisfied by *EndpointClient.
type floatWriter interface {
	WriteFloat32(unitID uint8, addr uint16, v float64) error
}

// Output mirrors sensor values into holding registers of a Modbus target.
// Sensors without a register are skipped.
type Output struct {
	cli    floatWriter
	unitID uint8
}

func NewOutput(cli floatWriter, unitID uint8) (*Output, error) {
	if cli == nil {
		return nil, errors.New("sink modbus: client required")
	}
	return &Output{cli: cli, unitID: unitID}, nil
}

func (o *Output) Write(m sensor.Meta, _ time.Time, v float64) error {
	if m.Register == nil {
		return nil
	}
	return o.cli.WriteFloat32(o.unitID, *m.Register, v)
}
