// internal/poller/builder.go
package poller

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/vue-bridge/internal/config"
	"github.com/tamzrod/vue-bridge/internal/frame"
	"github.com/tamzrod/vue-bridge/internal/sensor"
	ti2c "github.com/tamzrod/vue-bridge/internal/transport/i2c"
	tmodbus "github.com/tamzrod/vue-bridge/internal/transport/modbus"
	"github.com/tamzrod/vue-bridge/internal/vue"
)

// Bus is a frame transport the poller owns.
type Bus interface {
	vue.Bus
	io.Closer
}

// Build opens the configured transport, builds the driver, and wraps it in a Poller.
// The returned closer releases the transport.
func Build(c *cfg.Config, outputs []sensor.Output, log *zap.Logger) (*Poller, *vue.Driver, func() error, error) {
	bus, err := OpenBus(c.Device)
	if err != nil {
		return nil, nil, nil, err
	}

	drv, err := BuildDriver(c, bus, outputs, log)
	if err != nil {
		_ = bus.Close()
		return nil, nil, nil, err
	}

	p, err := New(
		Config{
			DeviceID: c.Device.ID,
			Interval: time.Duration(c.Device.IntervalMs) * time.Millisecond,
		},
		drv,
	)
	if err != nil {
		_ = bus.Close()
		return nil, nil, nil, err
	}

	return p, drv, bus.Close, nil
}

// OpenBus connects the transport selected by d.Transport.Kind.
func OpenBus(d cfg.DeviceConfig) (Bus, error) {
	tr := d.Transport
	switch tr.Kind {
	case "", "i2c":
		b, err := ti2c.Open(ti2c.Config{Bus: tr.I2C.Bus, Address: tr.I2C.Address})
		if err != nil {
			return nil, err
		}
		return b, nil
	case "modbus":
		m := tr.Modbus
		b, err := tmodbus.Open(tmodbus.Config{
			Endpoint:   m.Endpoint,
			SerialPort: m.SerialPort,
			BaudRate:   m.BaudRate,
			UnitID:     m.UnitID,
			Timeout:    time.Duration(m.TimeoutMs) * time.Millisecond,
			Address:    m.Address,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("poller: unknown transport kind %q", tr.Kind)
	}
}

// BuildDriver turns normalized config into phases, clamps and sensors on top of bus.
func BuildDriver(c *cfg.Config, bus vue.Bus, outputs []sensor.Output, log *zap.Logger) (*vue.Driver, error) {
	if log == nil {
		log = zap.NewNop()
	}

	mk := func(s *cfg.SensorConfig) sensor.Sink {
		if s == nil {
			return nil
		}
		m := sensor.Meta{Name: s.Name, Unit: s.Unit, Register: s.Register}
		if s.AccuracyDecimals != nil {
			m.Decimals = *s.AccuracyDecimals
		}
		return sensor.New(m, log, outputs...)
	}

	phases := make([]*vue.Phase, 0, len(c.Phases))
	byID := make(map[string]*vue.Phase, len(c.Phases))

	for _, pc := range c.Phases {
		wire, err := frame.ParseWire(pc.Input)
		if err != nil {
			return nil, fmt.Errorf("phase %q: %w", pc.ID, err)
		}
		calibration := vue.DefaultCalibration
		if pc.Calibration != nil {
			calibration = *pc.Calibration
		}
		ph, err := vue.NewPhase(pc.ID, wire, calibration, vue.PhaseSinks{
			Voltage:    mk(pc.Voltage),
			Frequency:  mk(pc.Frequency),
			PhaseAngle: mk(pc.PhaseAngle),
		})
		if err != nil {
			return nil, err
		}
		phases = append(phases, ph)
		byID[pc.ID] = ph
	}

	clamps := make([]*vue.Clamp, 0, len(c.CTClamps))
	for i, cc := range c.CTClamps {
		ph, ok := byID[cc.PhaseID]
		if !ok {
			return nil, fmt.Errorf("ct_clamps[%d]: unknown phase %q", i, cc.PhaseID)
		}
		port, err := vue.ParsePort(cc.Input)
		if err != nil {
			return nil, fmt.Errorf("ct_clamps[%d]: %w", i, err)
		}
		cl, err := vue.NewClamp(ph, port, vue.ClampSinks{
			Power:   mk(cc.Power),
			Current: mk(cc.Current),
		})
		if err != nil {
			return nil, fmt.Errorf("ct_clamps[%d]: %w", i, err)
		}
		clamps = append(clamps, cl)
	}

	return vue.New(bus, phases, clamps, log.With(zap.String("device", c.Device.ID)))
}
