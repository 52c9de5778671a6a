// internal/frame/encode.go
package frame

import "encoding/binary"

// Encode lays a Reading out in wire format.
// Used by gateways and fixtures; the chip is the only real producer.
func Encode(r Reading) []byte {
	buf := make([]byte, Size)
	le := binary.LittleEndian

	if r.Unread {
		buf[OffsetUnread] = 1
	}
	buf[OffsetChecksum] = r.Checksum
	buf[OffsetUnknown] = r.Unknown
	buf[OffsetSequence] = r.SequenceNum

	for ch := 0; ch < NumChannels; ch++ {
		p := buf[OffsetPower+ch*PowerEntrySize:]
		le.PutUint32(p[0:4], uint32(r.Power[ch].PhaseBlack))
		le.PutUint32(p[4:8], uint32(r.Power[ch].PhaseRed))
		le.PutUint32(p[8:12], uint32(r.Power[ch].PhaseBlue))
		le.PutUint16(buf[OffsetCurrent+2*ch:], r.Current[ch])
	}

	for w := 0; w < NumWires; w++ {
		le.PutUint16(buf[OffsetVoltage+2*w:], r.Voltage[w])
	}
	le.PutUint16(buf[OffsetFrequency:], r.Frequency)
	le.PutUint16(buf[OffsetDegrees:], r.Degrees[0])
	le.PutUint16(buf[OffsetDegrees+2:], r.Degrees[1])
	le.PutUint16(buf[OffsetEnd:], r.End)

	return buf
}
