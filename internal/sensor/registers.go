// internal/sensor/registers.go
package sensor

import "math"

// Float32Registers encodes a value as an IEEE-754 float32 in two
// 16-bit registers, high word first (ABCD).
func Float32Registers(v float64) []uint16 {
	bits := math.Float32bits(float32(v))
	return []uint16{uint16(bits >> 16), uint16(bits)}
}
