// internal/vue/dump.go
package vue

import (
	"fmt"

	"github.com/tamzrod/vue-bridge/internal/sensor"
)

// DumpConfig logs the configured phases and clamps. Informational only.
func (d *Driver) DumpConfig() {
	for _, line := range d.dumpLines() {
		d.log.Info(line)
	}
}

func (d *Driver) dumpLines() []string {
	lines := []string{"Emporia Vue"}
	for _, p := range d.phases {
		lines = append(lines,
			"  Phase",
			fmt.Sprintf("    ID: %s", p.id),
			fmt.Sprintf("    Wire: %s", p.wire),
			fmt.Sprintf("    Calibration: %f", p.calibration),
			fmt.Sprintf("    Voltage: %s", sinkName(p.sinks.Voltage)),
		)
		if p.sinks.Frequency != nil {
			lines = append(lines, fmt.Sprintf("    Frequency: %s", sinkName(p.sinks.Frequency)))
		}
		if p.sinks.PhaseAngle != nil {
			lines = append(lines, fmt.Sprintf("    Phase Angle: %s", sinkName(p.sinks.PhaseAngle)))
		}
	}
	for _, c := range d.clamps {
		lines = append(lines,
			"  CT Clamp",
			fmt.Sprintf("    Phase: %s (%s)", c.phase.id, c.phase.wire),
			fmt.Sprintf("    Phase Calibration: %f", c.phase.calibration),
			fmt.Sprintf("    CT Port Index: %d (%s)", uint8(c.port), c.port),
			fmt.Sprintf("    Power: %s", sinkName(c.sinks.Power)),
			fmt.Sprintf("    Current: %s", sinkName(c.sinks.Current)),
		)
	}
	return lines
}

func sinkName(s sensor.Sink) string {
	if s == nil {
		return "none"
	}
	if m, ok := s.(interface{ Meta() sensor.Meta }); ok {
		return fmt.Sprintf("'%s'", m.Meta().Name)
	}
	return "configured"
}
