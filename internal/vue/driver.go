// internal/vue/driver.go
package vue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/vue-bridge/internal/frame"
)

// Bus abstracts the byte-stream transport to the metering chip.
// ReadFrame must fill buf completely or return an error.
type Bus interface {
	ReadFrame(buf []byte) error
}

var (
	// ErrTransport wraps every bus failure.
	ErrTransport = errors.New("vue: transport error")

	// ErrBusy is returned when a tick is requested while another is running.
	ErrBusy = errors.New("vue: tick already in progress")
)

// Outcome classifies one tick.
type Outcome uint8

const (
	OutcomeAccepted Outcome = iota
	OutcomeStale
	OutcomeMalformed
	OutcomeTransportError
	OutcomeBusy
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeStale:
		return "stale"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeBusy:
		return "busy"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// TickResult is what one Update produced.
type TickResult struct {
	At       time.Time
	Outcome  Outcome
	Sequence uint8 // valid only when Accepted
	Gap      int   // frames inferred lost before this one (advisory)
	Err      error // nil when Accepted or Stale
}

// UpdateHook runs after every accepted tick has been dispatched.
type UpdateHook func(r frame.Reading)

// Driver polls the chip and fans calibrated values out to phases and clamps.
type Driver struct {
	bus    Bus
	phases []*Phase
	clamps []*Clamp
	log    *zap.Logger

	mu    sync.Mutex // non-reentrant tick guard
	seq   SequenceTracker
	buf   [frame.Size]byte
	hooks []UpdateHook
}

// New builds a driver. Every clamp must reference one of phases.
func New(bus Bus, phases []*Phase, clamps []*Clamp, log *zap.Logger) (*Driver, error) {
	if bus == nil {
		return nil, errors.New("vue: bus required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	owned := make(map[*Phase]struct{}, len(phases))
	for i, p := range phases {
		if p == nil {
			return nil, fmt.Errorf("vue: phase %d is nil", i)
		}
		owned[p] = struct{}{}
	}
	for i, c := range clamps {
		if c == nil {
			return nil, fmt.Errorf("vue: clamp %d is nil", i)
		}
		if _, ok := owned[c.phase]; !ok {
			return nil, fmt.Errorf("vue: clamp %s references phase %q not owned by this driver", c.port, c.phase.id)
		}
	}

	return &Driver{
		bus:    bus,
		phases: phases,
		clamps: clamps,
		log:    log,
	}, nil
}

// OnUpdate registers a hook. Not safe to call concurrently with Update.
func (d *Driver) OnUpdate(h UpdateHook) {
	d.hooks = append(d.hooks, h)
}

// LastSequence returns the last accepted sequence number, if any.
func (d *Driver) LastSequence() (uint8, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq.Last()
}

// Update performs exactly one tick: read, decode, sequence check, dispatch.
// Rejected frames end the tick with no state change and no publishes.
func (d *Driver) Update() TickResult {
	res := TickResult{At: time.Now()}

	if !d.mu.TryLock() {
		res.Outcome = OutcomeBusy
		res.Err = ErrBusy
		return res
	}
	defer d.mu.Unlock()

	if err := d.bus.ReadFrame(d.buf[:]); err != nil {
		d.log.Error("failed to read from sensor due to bus error", zap.Error(err))
		res.Outcome = OutcomeTransportError
		res.Err = fmt.Errorf("%w: %w", ErrTransport, err)
		return res
	}

	r, err := frame.Decode(d.buf[:])
	switch {
	case errors.Is(err, frame.ErrStale):
		d.log.Debug("ignoring sensor reading that is marked as read")
		res.Outcome = OutcomeStale
		return res
	case err != nil:
		d.log.Error("failed to read from sensor due to a malformed reading", zap.Error(err))
		res.Outcome = OutcomeMalformed
		res.Err = err
		return res
	}

	d.log.Debug("received sensor reading", zap.Uint8("sequence", r.SequenceNum))

	res.Outcome = OutcomeAccepted
	res.Sequence = r.SequenceNum
	res.Gap = d.seq.Observe(r.SequenceNum)
	if res.Gap > 0 {
		d.log.Warn("detected missing reading(s), data may not be accurate",
			zap.Int("missing", res.Gap),
			zap.Uint8("sequence", r.SequenceNum),
		)
	}

	for _, p := range d.phases {
		p.update(&r)
	}
	for _, c := range d.clamps {
		c.update(&r)
	}
	for _, h := range d.hooks {
		h(r)
	}

	return res
}
