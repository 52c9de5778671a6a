// internal/vue/clamp.go
package vue

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tamzrod/vue-bridge/internal/frame"
	"github.com/tamzrod/vue-bridge/internal/sensor"
)

// Port is a CT input channel, 0..18.
// 0..2 are the built-in clamps (labelled A, B, C), 3..18 the expansion clamps (1..16).
type Port uint8

const (
	PortA Port = 0
	PortB Port = 1
	PortC Port = 2

	// builtinPorts is the number of built-in clamps.
	builtinPorts = 3
)

// CT ratio corrections.
const (
	builtinCorrection   = 5.5
	expansionCorrection = 22.0
)

var builtinLabels = [builtinPorts]string{"A", "B", "C"}

// ParsePort maps an input label (A, B, C, 1..16) onto its channel.
func ParsePort(label string) (Port, error) {
	for i, l := range builtinLabels {
		if l == label {
			return Port(i), nil
		}
	}
	n, err := strconv.Atoi(label)
	if err != nil || n < 1 || n > frame.NumChannels-builtinPorts {
		return 0, fmt.Errorf("vue: unknown CT input %q", label)
	}
	return Port(builtinPorts + n - 1), nil
}

func (p Port) String() string {
	if p < builtinPorts {
		return builtinLabels[p]
	}
	return strconv.Itoa(int(p) - builtinPorts + 1)
}

// Valid reports whether p addresses a reported channel.
func (p Port) Valid() bool { return p < frame.NumChannels }

// Builtin reports whether p is one of the three built-in clamps.
func (p Port) Builtin() bool { return p < builtinPorts }

// CorrectionFactor is the divisor applied to calibrated power on this channel.
func (p Port) CorrectionFactor() float64 {
	if p.Builtin() {
		return builtinCorrection
	}
	return expansionCorrection
}

// ClampSinks are the optional endpoints of a clamp. Nil means not configured.
type ClampSinks struct {
	Power   sensor.Sink
	Current sensor.Sink
}

// Clamp is one CT input linked to the phase it measures.
type Clamp struct {
	phase *Phase // borrowed, owned by the Driver
	port  Port
	sinks ClampSinks
}

// NewClamp validates and builds a clamp.
func NewClamp(phase *Phase, port Port, sinks ClampSinks) (*Clamp, error) {
	if phase == nil {
		return nil, errors.New("vue: clamp requires a phase")
	}
	if !port.Valid() {
		return nil, fmt.Errorf("vue: clamp port %d out of range", uint8(port))
	}
	return &Clamp{phase: phase, port: port, sinks: sinks}, nil
}

func (c *Clamp) Phase() *Phase { return c.phase }
func (c *Clamp) Port() Port    { return c.port }

// CalibratedPower applies the phase calibration and the channel correction.
func (c *Clamp) CalibratedPower(raw int32) float64 {
	return float64(raw) * c.phase.Calibration() / c.port.CorrectionFactor()
}

func (c *Clamp) update(r *frame.Reading) {
	if c.sinks.Power != nil {
		raw := c.phase.PowerForWire(r.Power[c.port])
		c.sinks.Power.Publish(c.CalibratedPower(raw))
	}
	if c.sinks.Current != nil {
		// current calibration of the stock firmware is unknown; published raw
		c.sinks.Current.Publish(float64(r.Current[c.port]))
	}
}
