// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultIntervalMs       = 240
	DefaultI2CAddress       = 0x64
	DefaultCalibration      = 0.022
	DefaultTimeoutMs        = 2000
	DefaultHistoryQueueSize = 1000
	DefaultMetricsAddr      = ":9108"
	DefaultMetricsPath      = "/metrics"
	DeviceNameMaxChars      = 16
)

type sensorDefaults struct {
	unit     string
	decimals int
}

var kindDefaults = map[SensorKind]sensorDefaults{
	KindVoltage:    {unit: "V", decimals: 1},
	KindFrequency:  {unit: "Hz", decimals: 1},
	KindPhaseAngle: {unit: "°", decimals: 0},
	KindPower:      {unit: "W", decimals: 1},
	KindCurrent:    {unit: "A", decimals: 2},
}

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Device
	if d.IntervalMs == 0 {
		d.IntervalMs = DefaultIntervalMs
	}
	if d.Transport.Kind == "" {
		d.Transport.Kind = "i2c"
	}
	if d.Transport.I2C.Address == 0 {
		d.Transport.I2C.Address = DefaultI2CAddress
	}
	if d.Transport.Modbus.TimeoutMs <= 0 {
		d.Transport.Modbus.TimeoutMs = DefaultTimeoutMs
	}

	for i := range cfg.Phases {
		if cfg.Phases[i].Calibration == nil {
			c := DefaultCalibration
			cfg.Phases[i].Calibration = &c
		}
	}

	for _, s := range AllSensors(cfg) {
		def := kindDefaults[s.Kind]
		if s.Unit == "" {
			s.Unit = def.unit
		}
		if s.AccuracyDecimals == nil {
			n := def.decimals
			s.AccuracyDecimals = &n
		}
	}

	for _, ep := range []*EndpointConfig{cfg.Outputs.Modbus, cfg.Outputs.Ingest} {
		if ep != nil && ep.TimeoutMs <= 0 {
			ep.TimeoutMs = DefaultTimeoutMs
		}
	}
	if h := cfg.Outputs.History; h != nil && h.QueueSize <= 0 {
		h.QueueSize = DefaultHistoryQueueSize
	}

	if st := cfg.Status; st != nil {
		// Truncate to max 16 characters; ASCII already validated
		if len(st.DeviceName) > DeviceNameMaxChars {
			st.DeviceName = st.DeviceName[:DeviceNameMaxChars]
		}
		if st.TimeoutMs <= 0 {
			st.TimeoutMs = DefaultTimeoutMs
		}
	}

	if cfg.Metrics.Enable {
		if cfg.Metrics.Addr == "" {
			cfg.Metrics.Addr = DefaultMetricsAddr
		}
		if cfg.Metrics.Path == "" {
			cfg.Metrics.Path = DefaultMetricsPath
		}
	}

	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}
