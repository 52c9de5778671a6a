// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Device   DeviceConfig  `yaml:"device"`
	Phases   []PhaseConfig `yaml:"phases"`
	CTClamps []ClampConfig `yaml:"ct_clamps"`
	Outputs  OutputsConfig `yaml:"outputs"`
	Status   *StatusConfig `yaml:"status"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Logging  LoggingConfig `yaml:"logging"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	ID         string          `yaml:"id"`
	IntervalMs int             `yaml:"interval_ms"`
	Transport  TransportConfig `yaml:"transport"`
}

type TransportConfig struct {
	Kind   string           `yaml:"kind"` // i2c | modbus
	I2C    I2CConfig        `yaml:"i2c"`
	Modbus ModbusReadConfig `yaml:"modbus"`
}

type I2CConfig struct {
	Bus     string `yaml:"bus"`     // periph bus name, "" = first available
	Address uint16 `yaml:"address"` // 7-bit, default 0x64
}

// ModbusReadConfig reads the raw frame through a Modbus gateway.
// Either Endpoint (TCP) or SerialPort (RTU) is set.
type ModbusReadConfig struct {
	Endpoint   string `yaml:"endpoint"`
	SerialPort string `yaml:"serial_port"`
	BaudRate   int    `yaml:"baud_rate"`
	UnitID     uint8  `yaml:"unit_id"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	Address    uint16 `yaml:"address"` // first holding register of the frame
}

// ---- SENSORS ----

type PhaseConfig struct {
	ID          string        `yaml:"id"`
	Input       string        `yaml:"input"` // BLACK | RED | BLUE
	Calibration *float64      `yaml:"calibration"`
	Voltage     *SensorConfig `yaml:"voltage"`
	Frequency   *SensorConfig `yaml:"frequency"`
	PhaseAngle  *SensorConfig `yaml:"phase_angle"`
}

type ClampConfig struct {
	PhaseID string        `yaml:"phase_id"`
	Input   string        `yaml:"input"` // A | B | C | 1..16
	Power   *SensorConfig `yaml:"power"`
	Current *SensorConfig `yaml:"current"`
}

type SensorConfig struct {
	Name             string  `yaml:"name"`
	Unit             string  `yaml:"unit"`
	AccuracyDecimals *int    `yaml:"accuracy_decimals"`
	Register         *uint16 `yaml:"register"` // modbus / ingest address, 2 registers per value
}

// ---- OUTPUTS ----

type OutputsConfig struct {
	Modbus  *EndpointConfig `yaml:"modbus"`
	Ingest  *EndpointConfig `yaml:"ingest"`
	History *HistoryConfig  `yaml:"history"`
}

type EndpointConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type HistoryConfig struct {
	Path      string `yaml:"path"`
	QueueSize int    `yaml:"queue_size"`
}

// ---- STATUS ----

// StatusConfig enables the device status block (opt-in).
type StatusConfig struct {
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// ---- AMBIENT ----

type MetricsConfig struct {
	Enable bool   `yaml:"enable"`
	Addr   string `yaml:"addr"`
	Path   string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string         `yaml:"level"`
	Format string         `yaml:"format"` // console | json
	File   *LogFileConfig `yaml:"file"`
}

type LogFileConfig struct {
	Filename   string `yaml:"filename"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load reads and parses a YAML config file.
// It does not validate; call Validate then Normalize.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes into a Config. Unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return &cfg, nil
}
