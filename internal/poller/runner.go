// internal/poller/runner.go
package poller

import (
	"context"
	"time"

	"github.com/tamzrod/vue-bridge/internal/vue"
)

// Run starts the ticker loop and emits every TickResult on out.
// Ticks run on this goroutine only, so they never overlap.
func (p *Poller) Run(ctx context.Context, out chan<- vue.TickResult) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res := p.PollOnce()
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Start runs Run on its own goroutine. The returned channel closes once
// Run has returned, so no tick is in flight after it is drained.
func (p *Poller) Start(ctx context.Context, out chan<- vue.TickResult) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, out)
	}()
	return done
}
