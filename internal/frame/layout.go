// internal/frame/layout.go
package frame

// Wire frame layout constants.
// These values define the protocol of the metering chip and MUST NOT be configurable.
// All multi-byte fields are little-endian and packed (no padding).

// Size is the exact length of one frame in bytes.
const Size = 284

// NumChannels is the number of CT inputs reported per frame.
const NumChannels = 19

// NumWires is the number of phase wires reported per frame.
const NumWires = 3

// ---- HEADER ----

const (
	OffsetUnread   = 0 // bool, set by the chip until the frame is consumed
	OffsetChecksum = 1 // uint8, carried but not validated
	OffsetUnknown  = 2 // uint8, reserved
	OffsetSequence = 3 // uint8, cyclic 0..255
)

// ---- POWER ----

// OffsetPower is the start of power[19], each entry three int32 (black, red, blue).
const OffsetPower = 4

// PowerEntrySize is the width of one per-channel power triple.
const PowerEntrySize = 4 * NumWires

// ---- LINE ----

const (
	OffsetVoltage   = OffsetPower + NumChannels*PowerEntrySize // uint16[3]
	OffsetFrequency = OffsetVoltage + 2*NumWires               // uint16
	OffsetDegrees   = OffsetFrequency + 2                      // uint16[2]
)

// ---- CURRENT ----

// OffsetCurrent is the start of current[19], uint16 each.
const OffsetCurrent = OffsetDegrees + 2*2

// ---- TRAILER ----

// OffsetEnd holds a uint16 that must be zero in every well-formed frame.
const OffsetEnd = OffsetCurrent + 2*NumChannels
