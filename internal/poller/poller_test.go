// internal/poller/poller_test.go
package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cfg "github.com/tamzrod/vue-bridge/internal/config"
	"github.com/tamzrod/vue-bridge/internal/frame"
	"github.com/tamzrod/vue-bridge/internal/sensor"
	"github.com/tamzrod/vue-bridge/internal/sink"
	"github.com/tamzrod/vue-bridge/internal/vue"
)

type fakeUpdater struct {
	n atomic.Int32
}

func (f *fakeUpdater) Update() vue.TickResult {
	seq := f.n.Add(1)
	return vue.TickResult{At: time.Now(), Outcome: vue.OutcomeAccepted, Sequence: uint8(seq)}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Interval: time.Second}, &fakeUpdater{})
	require.Error(t, err)

	_, err = New(Config{DeviceID: "d", Interval: 0}, &fakeUpdater{})
	require.Error(t, err)

	_, err = New(Config{DeviceID: "d", Interval: time.Second}, nil)
	require.Error(t, err)
}

func TestPollOnce(t *testing.T) {
	p, err := New(Config{DeviceID: "d", Interval: time.Second}, &fakeUpdater{})
	require.NoError(t, err)

	res := p.PollOnce()
	require.Equal(t, vue.OutcomeAccepted, res.Outcome)
	require.EqualValues(t, 1, res.Sequence)
	require.Equal(t, "d", p.DeviceID())
}

func TestRun_EmitsUntilCancelled(t *testing.T) {
	p, err := New(Config{DeviceID: "d", Interval: 5 * time.Millisecond}, &fakeUpdater{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan vue.TickResult)
	done := make(chan struct{})
	go func() {
		p.Run(ctx, out)
		close(done)
	}()

	for want := 1; want <= 3; want++ {
		select {
		case res := <-out:
			require.EqualValues(t, want, res.Sequence)
		case <-time.After(time.Second):
			t.Fatal("no tick result")
		}
	}

	// Run must return even while blocked on a full channel.
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

type fakeBus struct {
	frames [][]byte
	err    error
}

func (b *fakeBus) ReadFrame(buf []byte) error {
	if b.err != nil {
		return b.err
	}
	copy(buf, b.frames[0])
	b.frames = b.frames[1:]
	return nil
}

type memOutput struct {
	got map[string]float64
}

func (m *memOutput) Write(meta sensor.Meta, _ time.Time, v float64) error {
	m.got[meta.Name] = v
	return nil
}

const driverConfig = `
device:
  id: panel-1
phases:
  - id: phase_a
    input: BLACK
    calibration: 0.5
    voltage:
      name: Phase A Voltage
    frequency:
      name: Line Frequency
  - id: phase_b
    input: RED
    voltage:
      name: Phase B Voltage
    phase_angle:
      name: Phase B Angle
ct_clamps:
  - phase_id: phase_a
    input: A
    power:
      name: Main A Power
  - phase_id: phase_b
    input: "1"
    power:
      name: Circuit 1 Power
    current:
      name: Circuit 1 Current
`

func loadDriverConfig(t *testing.T) *cfg.Config {
	t.Helper()
	c, err := cfg.Parse([]byte(driverConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate(c))
	cfg.Normalize(c)
	return c
}

func TestBuildDriver_EndToEnd(t *testing.T) {
	c := loadDriverConfig(t)

	r := frame.Reading{Unread: true, SequenceNum: 4, Frequency: 422}
	r.Voltage[frame.WireBlack] = 240
	r.Voltage[frame.WireRed] = 2000
	r.Degrees[0] = 211
	r.Power[0].PhaseBlack = 110
	r.Power[3].PhaseRed = 440
	r.Current[3] = 77

	out := &memOutput{got: map[string]float64{}}
	drv, err := BuildDriver(c, &fakeBus{frames: [][]byte{frame.Encode(r)}}, []sensor.Output{out}, nil)
	require.NoError(t, err)

	res := drv.Update()
	require.Equal(t, vue.OutcomeAccepted, res.Outcome)

	require.InDelta(t, 120.0, out.got["Phase A Voltage"], 1e-9)
	require.InDelta(t, 2000*vue.DefaultCalibration, out.got["Phase B Voltage"], 1e-9)
	require.InDelta(t, 25310.0/422, out.got["Line Frequency"], 1e-9)
	require.InDelta(t, 211.0*360/422, out.got["Phase B Angle"], 1e-9)
	require.InDelta(t, 110*0.5/5.5, out.got["Main A Power"], 1e-9)
	require.InDelta(t, 440*vue.DefaultCalibration/22, out.got["Circuit 1 Power"], 1e-9)
	require.InDelta(t, 77.0, out.got["Circuit 1 Current"], 1e-9)
}

func TestBuildDriver_TransportError(t *testing.T) {
	c := loadDriverConfig(t)
	drv, err := BuildDriver(c, &fakeBus{err: errors.New("nack")}, nil, nil)
	require.NoError(t, err)

	res := drv.Update()
	require.Equal(t, vue.OutcomeTransportError, res.Outcome)
	require.ErrorIs(t, res.Err, vue.ErrTransport)
}

func TestBuildDriver_UnknownPhase(t *testing.T) {
	c := loadDriverConfig(t)
	c.CTClamps[0].PhaseID = "nope"
	_, err := BuildDriver(c, &fakeBus{}, nil, nil)
	require.Error(t, err)
}

func TestOpenBus_UnknownKind(t *testing.T) {
	_, err := OpenBus(cfg.DeviceConfig{Transport: cfg.TransportConfig{Kind: "spi"}})
	require.Error(t, err)
}

// blockingUpdater publishes to out from inside a tick that waits for release.
type blockingUpdater struct {
	started chan struct{}
	release chan struct{}
	out     *sink.Queued
	err     error
}

func (u *blockingUpdater) Update() vue.TickResult {
	close(u.started)
	<-u.release
	u.err = u.out.Write(sensor.Meta{Name: "late"}, time.Now(), 1)
	return vue.TickResult{Outcome: vue.OutcomeAccepted}
}

func TestStart_DoneWaitsForInFlightTick(t *testing.T) {
	out := &memOutput{got: map[string]float64{}}
	q := sink.NewQueued("mem", out, 4, nil)
	u := &blockingUpdater{started: make(chan struct{}), release: make(chan struct{}), out: q}

	p, err := New(Config{DeviceID: "d", Interval: time.Millisecond}, u)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := p.Start(ctx, make(chan vue.TickResult))

	<-u.started
	cancel()

	select {
	case <-done:
		t.Fatal("done closed while a tick was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(u.release)
	<-done

	// closing outputs only after done: the in-flight write landed
	require.NoError(t, q.Close())
	require.NoError(t, u.err)
	require.Equal(t, 1.0, out.got["late"])
}
