package sink

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/vue-bridge/internal/config"
	"github.com/tamzrod/vue-bridge/internal/sensor"
	"github.com/tamzrod/vue-bridge/internal/sink/history"
)

func TestBuild_NoOutputs(t *testing.T) {
	set, closeAll, err := Build(&cfg.Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeAll()

	if len(set.Outputs) != 0 || len(set.Clients) != 0 {
		t.Fatalf("expected empty set, got %+v", set)
	}
}

func TestBuild_HistoryAndIngest(t *testing.T) {
	c := &cfg.Config{
		Outputs: cfg.OutputsConfig{
			Ingest:  &cfg.EndpointConfig{Endpoint: "127.0.0.1:9", TimeoutMs: 100},
			History: &cfg.HistoryConfig{Path: filepath.Join(t.TempDir(), "h.sqlite"), QueueSize: 4},
		},
	}

	set, closeAll, err := Build(c, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(set.Outputs))
	}
	if _, ok := set.Outputs[1].(*history.Store); !ok {
		t.Fatalf("expected history store last, got %T", set.Outputs[1])
	}

	// sensors without a register skip ingest, history still records
	s := sensor.New(sensor.Meta{Name: "p"}, nil, set.Outputs...)
	s.Publish(1)

	if err := closeAll(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestBuild_ModbusConnectFailure(t *testing.T) {
	c := &cfg.Config{
		Outputs: cfg.OutputsConfig{
			History: &cfg.HistoryConfig{Path: filepath.Join(t.TempDir(), "h.sqlite")},
			// port 1 on loopback: connection refused
			Modbus: &cfg.EndpointConfig{Endpoint: "127.0.0.1:1", TimeoutMs: 200},
		},
	}
	if _, _, err := Build(c, zap.NewNop()); err == nil {
		t.Fatalf("expected connect error, got nil")
	}
}
