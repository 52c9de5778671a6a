package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sample = `
device:
  id: panel-1
  transport:
    kind: i2c
    i2c:
      bus: "1"
phases:
  - id: phase_a
    input: BLACK
    calibration: 0.0215
    voltage:
      name: Phase A Voltage
    frequency:
      name: Line Frequency
  - id: phase_b
    input: RED
    voltage:
      name: Phase B Voltage
      register: 2
ct_clamps:
  - phase_id: phase_a
    input: A
    power:
      name: Main A Power
      register: 0
  - phase_id: phase_b
    input: "16"
    current:
      name: Circuit 16 Current
outputs:
  modbus:
    endpoint: 127.0.0.1:1502
    unit_id: 3
status:
  endpoint: 127.0.0.1:1502
  slot: 2
  device_name: A-very-long-device-name
`

func TestLoad_ValidateNormalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vue.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	Normalize(cfg)

	if cfg.Device.IntervalMs != DefaultIntervalMs {
		t.Fatalf("interval default: got %d", cfg.Device.IntervalMs)
	}
	if cfg.Device.Transport.I2C.Address != DefaultI2CAddress {
		t.Fatalf("i2c address default: got 0x%x", cfg.Device.Transport.I2C.Address)
	}
	if *cfg.Phases[0].Calibration != 0.0215 {
		t.Fatalf("explicit calibration overwritten: %v", *cfg.Phases[0].Calibration)
	}
	if *cfg.Phases[1].Calibration != DefaultCalibration {
		t.Fatalf("calibration default: got %v", *cfg.Phases[1].Calibration)
	}
	if cfg.Phases[0].Frequency.Unit != "Hz" {
		t.Fatalf("frequency unit default: got %q", cfg.Phases[0].Frequency.Unit)
	}
	cur := cfg.CTClamps[1].Current
	if cur.Unit != "A" || *cur.AccuracyDecimals != 2 {
		t.Fatalf("current defaults: got unit=%q decimals=%d", cur.Unit, *cur.AccuracyDecimals)
	}
	if len(cfg.Status.DeviceName) != DeviceNameMaxChars {
		t.Fatalf("device name not truncated: %q", cfg.Status.DeviceName)
	}
	if cfg.Outputs.Modbus.TimeoutMs != DefaultTimeoutMs {
		t.Fatalf("modbus timeout default: got %d", cfg.Outputs.Modbus.TimeoutMs)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("logging defaults: %+v", cfg.Logging)
	}
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	if _, err := Parse([]byte("device:\n  idd: x\n")); err == nil {
		t.Fatalf("expected unknown field error, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "vuebridge.example.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	Normalize(cfg)
	if got := len(AllSensors(cfg)); got != 9 {
		t.Fatalf("sensors: got %d want 9", got)
	}
}
