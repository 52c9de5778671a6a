// internal/poller/poller.go
package poller

import (
	"errors"

	"github.com/tamzrod/vue-bridge/internal/vue"
)

// Poller is a dumb, clock-driven ticker around one device.
type Poller struct {
	cfg Config
	dev Updater
}

// New creates a poller with immutable config.
func New(cfg Config, dev Updater) (*Poller, error) {
	if cfg.DeviceID == "" {
		return nil, errors.New("poller: device id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if dev == nil {
		return nil, errors.New("poller: device required")
	}
	return &Poller{cfg: cfg, dev: dev}, nil
}

func (p *Poller) DeviceID() string { return p.cfg.DeviceID }

// PollOnce performs exactly one tick.
func (p *Poller) PollOnce() vue.TickResult {
	return p.dev.Update()
}
