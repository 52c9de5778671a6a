// internal/config/sensors.go
package config

import "fmt"

// SensorKind identifies what a sensor entry measures.
type SensorKind string

const (
	KindVoltage    SensorKind = "voltage"
	KindFrequency  SensorKind = "frequency"
	KindPhaseAngle SensorKind = "phase_angle"
	KindPower      SensorKind = "power"
	KindCurrent    SensorKind = "current"
)

// SensorRef points at one configured sensor entry.
type SensorRef struct {
	*SensorConfig
	Kind SensorKind
	Path string // for error messages
}

// AllSensors lists every configured sensor in declaration order.
// The returned entries alias cfg, so Normalize can fill defaults through them.
func AllSensors(cfg *Config) []SensorRef {
	var out []SensorRef
	add := func(s *SensorConfig, k SensorKind, path string) {
		if s != nil {
			out = append(out, SensorRef{SensorConfig: s, Kind: k, Path: path})
		}
	}
	for i := range cfg.Phases {
		p := &cfg.Phases[i]
		add(p.Voltage, KindVoltage, fmt.Sprintf("phase %q voltage", p.ID))
		add(p.Frequency, KindFrequency, fmt.Sprintf("phase %q frequency", p.ID))
		add(p.PhaseAngle, KindPhaseAngle, fmt.Sprintf("phase %q phase_angle", p.ID))
	}
	for i := range cfg.CTClamps {
		c := &cfg.CTClamps[i]
		add(c.Power, KindPower, fmt.Sprintf("ct_clamps[%d] power", i))
		add(c.Current, KindCurrent, fmt.Sprintf("ct_clamps[%d] current", i))
	}
	return out
}
