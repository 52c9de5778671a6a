// internal/vue/sequence.go
package vue

// SequenceTracker detects lost frames from the chip's 8-bit sequence counter.
//
// "No frame seen yet" is its own state; sequence 0 is a normal value.
// Wraparound (255 -> 0) is not corrected: a wrap is never reported as a gap,
// and a jump across the wrap is under-reported.
type SequenceTracker struct {
	last  uint8
	valid bool
}

// Observe records an accepted frame's sequence number and returns the number
// of frames inferred lost since the previous accepted frame.
// Must only be called for accepted frames.
func (t *SequenceTracker) Observe(seq uint8) int {
	gap := 0
	if t.valid && int(seq) > int(t.last)+1 {
		gap = int(seq) - int(t.last) - 1
	}
	t.last = seq
	t.valid = true
	return gap
}

// Last returns the previous accepted sequence number, if any.
func (t *SequenceTracker) Last() (uint8, bool) {
	return t.last, t.valid
}
