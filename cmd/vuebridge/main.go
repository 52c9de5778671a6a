// cmd/vuebridge/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/vue-bridge/internal/config"
	"github.com/tamzrod/vue-bridge/internal/logging"
	"github.com/tamzrod/vue-bridge/internal/metrics"
	"github.com/tamzrod/vue-bridge/internal/poller"
	"github.com/tamzrod/vue-bridge/internal/sink"
	"github.com/tamzrod/vue-bridge/internal/status"
	"github.com/tamzrod/vue-bridge/internal/vue"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: vuebridge <config.yaml>")
		os.Exit(2)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "vuebridge: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	log, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Outputs
	// --------------------

	set, closeOutputs, err := sink.Build(cfg, log)
	if err != nil {
		return fmt.Errorf("outputs build failed: %w", err)
	}
	defer func() {
		if err := closeOutputs(); err != nil {
			log.Warn("closing outputs", zap.Error(err))
		}
	}()

	var vm *metrics.VueMetrics
	if cfg.Metrics.Enable {
		reg := metrics.NewRegistry()
		vm = metrics.NewVueMetrics(reg)
		set.Outputs = append(set.Outputs, vm)

		srv := serveMetrics(cfg.Metrics, metrics.Handler(reg), log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// --------------------
	// Device
	// --------------------

	p, drv, closeBus, err := poller.Build(cfg, set.Outputs, log)
	if err != nil {
		return fmt.Errorf("device build failed (device=%s): %w", cfg.Device.ID, err)
	}
	defer func() {
		if err := closeBus(); err != nil {
			log.Warn("closing transport", zap.Error(err))
		}
	}()
	drv.DumpConfig()

	var statusWriter *status.Writer
	if sc := cfg.Status; sc != nil {
		statusWriter, err = status.NewWriter(set.Clients[sc.Endpoint], sc.UnitID, sc.Slot, sc.DeviceName)
		if err != nil {
			return fmt.Errorf("status writer failed: %w", err)
		}
	}

	out := make(chan vue.TickResult)
	pollDone := p.Start(ctx, out)

	log.Info("polling started",
		zap.String("device", cfg.Device.ID),
		zap.Int("interval_ms", cfg.Device.IntervalMs),
	)

	orchestrate(ctx, out, status.NewTracker(status.DefaultStaleAfter), statusWriter, vm, log)

	log.Info("shutting down", zap.String("device", cfg.Device.ID))

	// outputs and the bus are closed by the defers above; no tick may still be publishing
	<-pollDone
	return nil
}

// orchestrate owns the status tracker: tick results and a 1 Hz
// seconds-in-error clock both feed it until ctx is done.
func orchestrate(
	ctx context.Context,
	in <-chan vue.TickResult,
	tracker *status.Tracker,
	w *status.Writer,
	vm *metrics.VueMetrics,
	log *zap.Logger,
) {
	write := func(what string) {
		if w == nil {
			return
		}
		if err := w.WriteStatus(tracker.Snapshot()); err != nil {
			log.Warn("status write failed", zap.String("trigger", what), zap.Error(err))
		}
	}

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	// Full block write on start.
	write("start")

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			if vm != nil {
				vm.ObserveTick(res)
			}
			if tracker.Apply(res) {
				write("tick")
			}

		case <-secTicker.C:
			if tracker.Tick() {
				write("seconds")
			}
		}
	}
}

func serveMetrics(mc config.MetricsConfig, h http.Handler, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(mc.Path, h)
	srv := &http.Server{Addr: mc.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	log.Info("metrics listening", zap.String("addr", mc.Addr), zap.String("path", mc.Path))
	return srv
}
