// internal/config/validate.go
package config

import (
	"fmt"
	"strconv"
	"strings"
)

const maxPhases = 3

var (
	phaseInputs = map[string]bool{"BLACK": true, "RED": true, "BLUE": true}
	clampInputs = func() map[string]bool {
		m := map[string]bool{"A": true, "B": true, "C": true}
		for i := 1; i <= 16; i++ {
			m[strconv.Itoa(i)] = true
		}
		return m
	}()
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if cfg.Device.ID == "" {
		return fmt.Errorf("device: id required")
	}
	if cfg.Device.IntervalMs < 0 {
		return fmt.Errorf("device %q: interval_ms must be >= 0", cfg.Device.ID)
	}

	tr := cfg.Device.Transport
	switch tr.Kind {
	case "", "i2c":
		if tr.I2C.Address > 0x7F {
			return fmt.Errorf("device %q: i2c address 0x%x is not a 7-bit address", cfg.Device.ID, tr.I2C.Address)
		}
	case "modbus":
		if (tr.Modbus.Endpoint == "") == (tr.Modbus.SerialPort == "") {
			return fmt.Errorf("device %q: modbus transport needs exactly one of endpoint or serial_port", cfg.Device.ID)
		}
	default:
		return fmt.Errorf("device %q: unknown transport kind %q", cfg.Device.ID, tr.Kind)
	}

	// ------------------------------------------------------------
	// PHASES
	// ------------------------------------------------------------

	if len(cfg.Phases) == 0 {
		return fmt.Errorf("phases: at least one phase required")
	}
	if len(cfg.Phases) > maxPhases {
		return fmt.Errorf("phases: no more than %d phases are supported", maxPhases)
	}

	phaseIDs := make(map[string]bool)
	wires := make(map[string]string)

	for i, p := range cfg.Phases {
		if p.ID == "" {
			return fmt.Errorf("phases[%d]: id required", i)
		}
		if phaseIDs[p.ID] {
			return fmt.Errorf("phase %q: duplicate id", p.ID)
		}
		phaseIDs[p.ID] = true

		if !phaseInputs[p.Input] {
			return fmt.Errorf("phase %q: input must be BLACK, RED or BLUE, got %q", p.ID, p.Input)
		}
		if prev, ok := wires[p.Input]; ok {
			return fmt.Errorf("phase %q: input %s already used by phase %q, only one entry per input color is allowed", p.ID, p.Input, prev)
		}
		wires[p.Input] = p.ID

		if p.Calibration != nil && (*p.Calibration < 0 || *p.Calibration > 1) {
			return fmt.Errorf("phase %q: calibration %v must be between 0 and 1", p.ID, *p.Calibration)
		}

		if p.Input == "BLACK" && p.PhaseAngle != nil {
			return fmt.Errorf("phase %q: phase angle is not supported for the black wire, only for the red and blue wires", p.ID)
		}
		if p.Input != "BLACK" && p.Frequency != nil {
			return fmt.Errorf("phase %q: frequency is not supported for the red and blue wires, only for the black wire", p.ID)
		}
	}

	// ------------------------------------------------------------
	// CT CLAMPS
	// ------------------------------------------------------------

	for i, c := range cfg.CTClamps {
		if !phaseIDs[c.PhaseID] {
			return fmt.Errorf("ct_clamps[%d]: unknown phase_id %q", i, c.PhaseID)
		}
		if !clampInputs[c.Input] {
			return fmt.Errorf("ct_clamps[%d]: input must be A, B, C or 1..16, got %q", i, c.Input)
		}
	}

	// ------------------------------------------------------------
	// SENSOR NAMES + OUTPUT REGISTER GEOMETRY
	// ------------------------------------------------------------

	type span struct {
		start  uint16
		end    uint16
		sensor string
	}

	names := make(map[string]bool)
	var spans []span

	for _, s := range AllSensors(cfg) {
		if s.Name == "" {
			return fmt.Errorf("%s: sensor name required", s.Path)
		}
		if names[s.Name] {
			return fmt.Errorf("%s: duplicate sensor name %q", s.Path, s.Name)
		}
		names[s.Name] = true

		if s.AccuracyDecimals != nil && (*s.AccuracyDecimals < 0 || *s.AccuracyDecimals > 6) {
			return fmt.Errorf("sensor %q: accuracy_decimals must be 0..6", s.Name)
		}

		if s.Register == nil {
			continue
		}
		if cfg.Outputs.Modbus == nil && cfg.Outputs.Ingest == nil {
			return fmt.Errorf("sensor %q: register set but no modbus or ingest output is configured", s.Name)
		}
		if *s.Register == 0xFFFF {
			return fmt.Errorf("sensor %q: register %d leaves no room for a 2-register value", s.Name, *s.Register)
		}

		start := *s.Register
		end := start + 1

		for _, o := range spans {
			// overlap check (inclusive)
			if !(end < o.start || start > o.end) {
				return fmt.Errorf(
					"register overlap: sensor %q range=%d-%d overlaps with sensor %q range=%d-%d",
					s.Name, start, end, o.sensor, o.start, o.end,
				)
			}
		}
		spans = append(spans, span{start: start, end: end, sensor: s.Name})
	}

	// ------------------------------------------------------------
	// OUTPUTS
	// ------------------------------------------------------------

	if o := cfg.Outputs.Modbus; o != nil && o.Endpoint == "" {
		return fmt.Errorf("outputs.modbus: endpoint required")
	}
	if o := cfg.Outputs.Ingest; o != nil && o.Endpoint == "" {
		return fmt.Errorf("outputs.ingest: endpoint required")
	}
	if h := cfg.Outputs.History; h != nil && h.Path == "" {
		return fmt.Errorf("outputs.history: path required")
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK (OPT-IN)
	// ------------------------------------------------------------

	if st := cfg.Status; st != nil {
		if st.Endpoint == "" {
			return fmt.Errorf("status: endpoint required")
		}
		// device_name sanity (ASCII only)
		for i := 0; i < len(st.DeviceName); i++ {
			if st.DeviceName[i] > 0x7F {
				return fmt.Errorf("status: device_name must contain ASCII characters only")
			}
		}
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging: unknown format %q", cfg.Logging.Format)
	}
	if f := cfg.Logging.File; f != nil && f.Filename == "" {
		return fmt.Errorf("logging.file: filename required")
	}

	return nil
}
