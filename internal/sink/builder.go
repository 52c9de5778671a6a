// internal/sink/builder.go
package sink

import (
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/vue-bridge/internal/config"
	"github.com/tamzrod/vue-bridge/internal/sensor"
	"github.com/tamzrod/vue-bridge/internal/sink/history"
	"github.com/tamzrod/vue-bridge/internal/sink/ingest"
	smodbus "github.com/tamzrod/vue-bridge/internal/sink/modbus"
)

// Set is everything built from the outputs section.
type Set struct {
	Outputs []sensor.Output

	// Clients holds one Modbus TCP client per unique endpoint,
	// shared by the register output and the status writer.
	Clients map[string]*smodbus.EndpointClient
}

// Build creates the configured outputs.
// Assumes config has already passed Validate and Normalize.
// On error every resource opened so far is closed.
func Build(c *cfg.Config, log *zap.Logger) (*Set, func() error, error) {
	set := &Set{Clients: make(map[string]*smodbus.EndpointClient)}
	var closers []func() error

	closeAll := func() error {
		var last error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				last = err
			}
		}
		return last
	}
	fail := func(err error) (*Set, func() error, error) {
		_ = closeAll()
		return nil, nil, err
	}

	// ---- modbus endpoint clients (outputs + status) ----

	type ep struct {
		endpoint  string
		timeoutMs int
	}
	var eps []ep
	if m := c.Outputs.Modbus; m != nil {
		eps = append(eps, ep{m.Endpoint, m.TimeoutMs})
	}
	if st := c.Status; st != nil {
		eps = append(eps, ep{st.Endpoint, st.TimeoutMs})
	}
	for _, e := range eps {
		if _, ok := set.Clients[e.endpoint]; ok {
			continue
		}
		cli, err := smodbus.NewEndpointClient(smodbus.Config{
			Endpoint: e.endpoint,
			Timeout:  time.Duration(e.timeoutMs) * time.Millisecond,
		})
		if err != nil {
			return fail(err)
		}
		set.Clients[e.endpoint] = cli
		closers = append(closers, cli.Close)
	}

	// ---- outputs ----

	if m := c.Outputs.Modbus; m != nil {
		o, err := smodbus.NewOutput(set.Clients[m.Endpoint], m.UnitID)
		if err != nil {
			return fail(err)
		}
		qo := NewQueued("modbus", o, DefaultQueueSize, log)
		set.Outputs = append(set.Outputs, qo)
		closers = append(closers, qo.Close)
	}

	if in := c.Outputs.Ingest; in != nil {
		o, err := ingest.New(ingest.Config{
			Endpoint: in.Endpoint,
			UnitID:   in.UnitID,
			Timeout:  time.Duration(in.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			return fail(err)
		}
		qo := NewQueued("ingest", o, DefaultQueueSize, log)
		set.Outputs = append(set.Outputs, qo)
		closers = append(closers, qo.Close)
	}

	if h := c.Outputs.History; h != nil {
		st, err := history.Open(h.Path, h.QueueSize, log.Named("history"))
		if err != nil {
			return fail(err)
		}
		set.Outputs = append(set.Outputs, st)
		closers = append(closers, st.Close)
	}

	return set, closeAll, nil
}
