// internal/status/tracker.go
package status

import "github.com/tamzrod/vue-bridge/internal/vue"

// DefaultStaleAfter is the number of consecutive stale ticks before health turns Stale.
const DefaultStaleAfter = 25

// Tracker folds tick results into a Snapshot.
// Owned by one goroutine; not safe for concurrent use.
type Tracker struct {
	snap       Snapshot
	stale      int
	staleAfter int
}

// NewTracker starts in HealthUnknown.
func NewTracker(staleAfter int) *Tracker {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Tracker{
		snap:       Snapshot{Health: HealthUnknown},
		staleAfter: staleAfter,
	}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Apply folds one tick result in and reports whether the snapshot changed.
func (t *Tracker) Apply(res vue.TickResult) bool {
	prev := t.snap

	switch res.Outcome {
	case vue.OutcomeAccepted:
		t.stale = 0
		t.snap.Health = HealthOK
		// Reset last error code and seconds-in-error on recovery.
		t.snap.LastErrorCode = ErrorCodeNone
		t.snap.SecondsInError = 0
		t.snap.LastSequence = uint16(res.Sequence)
		t.snap.LostFrames = addSat(t.snap.LostFrames, res.Gap)

	case vue.OutcomeStale:
		t.stale++
		if t.stale >= t.staleAfter && t.snap.Health != HealthError {
			t.snap.Health = HealthStale
		}

	case vue.OutcomeMalformed:
		t.stale = 0
		t.snap.Health = HealthError
		t.snap.LastErrorCode = ErrorCodeMalformed

	case vue.OutcomeTransportError:
		t.stale = 0
		t.snap.Health = HealthError
		t.snap.LastErrorCode = ErrorCodeTransport
	}

	return t.snap != prev
}

// Tick advances seconds-in-error; call at 1 Hz.
// It only counts while not OK and never wraps.
func (t *Tracker) Tick() bool {
	if t.snap.Health == HealthOK || t.snap.SecondsInError == 0xFFFF {
		return false
	}
	t.snap.SecondsInError++
	return true
}

func addSat(v uint16, n int) uint16 {
	if n <= 0 {
		return v
	}
	if int(v)+n > 0xFFFF {
		return 0xFFFF
	}
	return v + uint16(n)
}
