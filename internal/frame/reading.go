// internal/frame/reading.go
package frame

import "fmt"

// Wire identifies one of the three phase conductors.
// The numeric value is the wire index used by voltage[] and the power triple.
type Wire uint8

const (
	WireBlack Wire = 0
	WireRed   Wire = 1
	WireBlue  Wire = 2
)

var wireNames = [NumWires]string{
	WireBlack: "BLACK",
	WireRed:   "RED",
	WireBlue:  "BLUE",
}

func (w Wire) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Wire(%d)", uint8(w))
	}
	return wireNames[w]
}

// Valid reports whether w addresses one of the three wires.
func (w Wire) Valid() bool { return w < NumWires }

// ParseWire maps a wire color name onto its Wire.
func ParseWire(name string) (Wire, error) {
	for i, n := range wireNames {
		if n == name {
			return Wire(i), nil
		}
	}
	return 0, fmt.Errorf("frame: unknown wire %q", name)
}

// PowerEntry is the per-channel power triple, one value per wire.
type PowerEntry struct {
	PhaseBlack int32
	PhaseRed   int32
	PhaseBlue  int32
}

// powerSelectors maps each wire onto its PowerEntry field.
// Order is fixed by the wire protocol.
var powerSelectors = [NumWires]func(PowerEntry) int32{
	WireBlack: func(e PowerEntry) int32 { return e.PhaseBlack },
	WireRed:   func(e PowerEntry) int32 { return e.PhaseRed },
	WireBlue:  func(e PowerEntry) int32 { return e.PhaseBlue },
}

// ForWire returns the raw power measured on wire w.
func (e PowerEntry) ForWire(w Wire) int32 {
	return powerSelectors[w](e)
}

// Reading is one decoded frame.
// Only accepted frames are ever exposed as a Reading.
type Reading struct {
	Unread      bool
	Checksum    uint8
	Unknown     uint8
	SequenceNum uint8

	Power [NumChannels]PowerEntry

	Voltage   [NumWires]uint16
	Frequency uint16
	Degrees   [2]uint16

	Current [NumChannels]uint16

	End uint16
}
