// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/vue-bridge/internal/vue"
)

// Updater is one polled device.
// The vue driver satisfies it.
type Updater interface {
	Update() vue.TickResult
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	DeviceID string
	Interval time.Duration
}
