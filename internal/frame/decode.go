// internal/frame/decode.go
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrMalformed is matched by every MalformedError.
	ErrMalformed = errors.New("frame: malformed")

	// ErrStale means the chip has not produced a new frame since the last read.
	// This is expected and frequent.
	ErrStale = errors.New("frame: stale (already read)")
)

// MalformedError describes why a buffer was rejected.
type MalformedError struct {
	Length int    // buffer length when it was not Size
	End    uint16 // trailer value when it was non-zero
}

func (e *MalformedError) Error() string {
	if e.Length != Size {
		return fmt.Sprintf("frame: malformed, length %d want %d", e.Length, Size)
	}
	return fmt.Sprintf("frame: malformed, should end in null bytes but is %d", e.End)
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

// Decode validates and decodes one raw frame.
//
// Validation order:
//  1. wrong length or end != 0 -> *MalformedError
//  2. unread flag clear        -> ErrStale
//  3. otherwise the Reading is accepted
//
// Pure: no state, no IO.
func Decode(buf []byte) (Reading, error) {
	var r Reading

	if len(buf) != Size {
		return r, &MalformedError{Length: len(buf)}
	}

	le := binary.LittleEndian

	r.End = le.Uint16(buf[OffsetEnd:])
	if r.End != 0 {
		return Reading{}, &MalformedError{Length: Size, End: r.End}
	}

	r.Unread = buf[OffsetUnread] != 0
	if !r.Unread {
		return Reading{}, ErrStale
	}

	r.Checksum = buf[OffsetChecksum]
	r.Unknown = buf[OffsetUnknown]
	r.SequenceNum = buf[OffsetSequence]

	for ch := 0; ch < NumChannels; ch++ {
		p := buf[OffsetPower+ch*PowerEntrySize:]
		r.Power[ch] = PowerEntry{
			PhaseBlack: int32(le.Uint32(p[0:4])),
			PhaseRed:   int32(le.Uint32(p[4:8])),
			PhaseBlue:  int32(le.Uint32(p[8:12])),
		}
		r.Current[ch] = le.Uint16(buf[OffsetCurrent+2*ch:])
	}

	for w := 0; w < NumWires; w++ {
		r.Voltage[w] = le.Uint16(buf[OffsetVoltage+2*w:])
	}
	r.Frequency = le.Uint16(buf[OffsetFrequency:])
	r.Degrees[0] = le.Uint16(buf[OffsetDegrees:])
	r.Degrees[1] = le.Uint16(buf[OffsetDegrees+2:])

	return r, nil
}
