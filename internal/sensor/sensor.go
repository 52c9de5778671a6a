// internal/sensor/sensor.go
package sensor

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sink receives calibrated values from the driver.
// Fire-and-forget: the driver never observes a result.
type Sink interface {
	Publish(value float64)
}

// Meta describes one sensor endpoint.
type Meta struct {
	Name     string
	Unit     string
	Decimals int

	// Register is the output address for register-based outputs (optional).
	Register *uint16
}

// Output delivers a published value somewhere outside the process.
type Output interface {
	Write(m Meta, at time.Time, value float64) error
}

// Sensor is a named endpoint that keeps the last state and fans it out to outputs.
type Sensor struct {
	meta    Meta
	outputs []Output
	log     *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	state float64
	has   bool
}

// New creates a sensor. A nil logger disables logging.
func New(m Meta, log *zap.Logger, outputs ...Output) *Sensor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sensor{
		meta:    m,
		outputs: outputs,
		log:     log.With(zap.String("sensor", m.Name)),
		now:     time.Now,
	}
}

// Meta returns the sensor description.
func (s *Sensor) Meta() Meta { return s.meta }

// Publish records value as the current state and writes it to every output.
// Output failures are logged, never returned.
func (s *Sensor) Publish(value float64) {
	s.mu.Lock()
	s.state = value
	s.has = true
	s.mu.Unlock()

	s.log.Debug("publish",
		zap.String("state", strconv.FormatFloat(value, 'f', s.meta.Decimals, 64)),
		zap.String("unit", s.meta.Unit),
	)

	at := s.now()
	for _, o := range s.outputs {
		if err := o.Write(s.meta, at, value); err != nil {
			s.log.Warn("output write failed", zap.Error(err))
		}
	}
}

// State returns the last published value and whether one exists.
func (s *Sensor) State() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.has
}
