// internal/status/writer.go
package status

import (
	"errors"
	"fmt"
	"strings"
)

// RegisterClient is the exact contract the status writer uses.
type RegisterClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// Writer delivers snapshots into a status memory.
// It writes verbatim: no interpretation.
type Writer struct {
	cli      RegisterClient
	unitID   uint8
	baseSlot uint16

	needFull bool
	last     Snapshot
	nameRegs []uint16
}

// NewWriter builds a status writer for one device slot.
func NewWriter(cli RegisterClient, unitID uint8, baseSlot uint16, deviceName string) (*Writer, error) {
	if cli == nil {
		return nil, errors.New("status writer: client required")
	}
	return &Writer{
		cli:      cli,
		unitID:   unitID,
		baseSlot: baseSlot,
		needFull: true, // full re-assert on first successful write
		last:     Snapshot{Health: HealthUnknown},
		nameRegs: EncodeDeviceName(deviceName),
	}, nil
}

// WriteStatus delivers a snapshot.
// On any write failure, the next successful call will re-assert the full block.
func (w *Writer) WriteStatus(s Snapshot) error {
	base := w.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if w.needFull {
		regs := Encode(s)
		copy(regs[SlotDeviceNameStart:SlotDeviceNameEnd+1], w.nameRegs)

		if err := w.cli.WriteRegisters(w.unitID, base, regs); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		w.needFull = false
		w.last = s
		return nil
	}

	slots := []struct {
		slot uint16
		name string
		old  *uint16
		new  uint16
	}{
		{SlotHealthCode, "health", &w.last.Health, s.Health},
		{SlotLastErrorCode, "last_error", &w.last.LastErrorCode, s.LastErrorCode},
		{SlotSecondsInError, "seconds_in_error", &w.last.SecondsInError, s.SecondsInError},
		{SlotLostFrames, "lost_frames", &w.last.LostFrames, s.LostFrames},
		{SlotLastSequence, "last_sequence", &w.last.LastSequence, s.LastSequence},
	}

	var errs []string
	for _, sl := range slots {
		if *sl.old == sl.new {
			continue
		}
		if err := w.cli.WriteRegisters(w.unitID, base+sl.slot, []uint16{sl.new}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", sl.slot, sl.name, err))
			continue
		}
		*sl.old = sl.new
	}

	if len(errs) > 0 {
		// Any partial failure forces a full re-assert on the next call.
		w.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (w *Writer) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return w.baseSlot * SlotsPerDevice
}
