// internal/vue/phase.go
package vue

import (
	"fmt"

	"github.com/tamzrod/vue-bridge/internal/frame"
	"github.com/tamzrod/vue-bridge/internal/sensor"
)

// DefaultCalibration is the voltage/power multiplier used when none is configured.
const DefaultCalibration = 0.022

// frequencyScale converts the chip's raw period count into hertz.
// Taken from the later ESPHome emporia_vue component, which also supplies the
// phase-angle formula in update; the bundled driver only declares these sensors.
const frequencyScale = 25310.0

// PhaseSinks are the optional endpoints of a phase. Nil means not configured.
type PhaseSinks struct {
	Voltage    sensor.Sink
	Frequency  sensor.Sink // BLACK only
	PhaseAngle sensor.Sink // RED and BLUE only
}

// Phase is one measured wire and its calibration.
// Immutable after NewPhase. Clamps borrow it read-only.
type Phase struct {
	id          string
	wire        frame.Wire
	calibration float64
	sinks       PhaseSinks
}

// NewPhase validates and builds a phase.
func NewPhase(id string, wire frame.Wire, calibration float64, sinks PhaseSinks) (*Phase, error) {
	if !wire.Valid() {
		return nil, fmt.Errorf("vue: phase %q: invalid wire %d", id, uint8(wire))
	}
	if sinks.Frequency != nil && wire != frame.WireBlack {
		return nil, fmt.Errorf("vue: phase %q: frequency is only reported on the BLACK wire", id)
	}
	if sinks.PhaseAngle != nil && wire == frame.WireBlack {
		return nil, fmt.Errorf("vue: phase %q: phase angle is not reported on the BLACK wire", id)
	}
	return &Phase{id: id, wire: wire, calibration: calibration, sinks: sinks}, nil
}

func (p *Phase) ID() string           { return p.id }
func (p *Phase) Wire() frame.Wire     { return p.wire }
func (p *Phase) Calibration() float64 { return p.calibration }

// Voltage returns the calibrated voltage of this phase's wire.
func (p *Phase) Voltage(r *frame.Reading) float64 {
	return float64(r.Voltage[p.wire]) * p.calibration
}

// PowerForWire selects this phase's raw power from a channel's power triple.
// No calibration is applied here; the clamp owns the channel gain.
func (p *Phase) PowerForWire(e frame.PowerEntry) int32 {
	return e.ForWire(p.wire)
}

func (p *Phase) update(r *frame.Reading) {
	if p.sinks.Voltage != nil {
		p.sinks.Voltage.Publish(p.Voltage(r))
	}

	// frequency == 0 means the chip has no line lock yet
	if r.Frequency == 0 {
		return
	}
	if p.sinks.Frequency != nil {
		p.sinks.Frequency.Publish(frequencyScale / float64(r.Frequency))
	}
	if p.sinks.PhaseAngle != nil {
		deg := r.Degrees[p.wire-1]
		p.sinks.PhaseAngle.Publish(float64(deg) * 360 / float64(r.Frequency))
	}
}
