package sink

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/vue-bridge/internal/frame"
	"github.com/tamzrod/vue-bridge/internal/sensor"
	"github.com/tamzrod/vue-bridge/internal/vue"
)

// slowOutput blocks every write until release is closed.
type slowOutput struct {
	release chan struct{}

	mu     sync.Mutex
	values []float64
}

func newSlowOutput() *slowOutput { return &slowOutput{release: make(chan struct{})} }

func (o *slowOutput) Write(_ sensor.Meta, _ time.Time, v float64) error {
	<-o.release
	o.mu.Lock()
	o.values = append(o.values, v)
	o.mu.Unlock()
	return nil
}

func (o *slowOutput) got() []float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]float64(nil), o.values...)
}

func TestQueued_WriteDoesNotWaitForDelivery(t *testing.T) {
	slow := newSlowOutput()
	q := NewQueued("slow", slow, 4, nil)

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, q.Write(sensor.Meta{Name: "x"}, time.Now(), float64(i)))
	}
	require.Less(t, time.Since(start), 100*time.Millisecond)

	close(slow.release)
	require.NoError(t, q.Close())
	require.Equal(t, []float64{0, 1, 2, 3}, slow.got())
}

func TestQueued_FullAndClosed(t *testing.T) {
	slow := newSlowOutput()
	q := NewQueued("slow", slow, 1, nil)

	// the first value may already sit in the delivery goroutine
	var full bool
	for i := 0; i < 3; i++ {
		if err := q.Write(sensor.Meta{Name: "x"}, time.Now(), 1); err != nil {
			require.ErrorIs(t, err, ErrQueueFull)
			full = true
		}
	}
	require.True(t, full)

	close(slow.release)
	require.NoError(t, q.Close())
	require.ErrorIs(t, q.Write(sensor.Meta{Name: "x"}, time.Now(), 1), ErrClosed)
	require.NoError(t, q.Close())
}

type oneFrameBus struct{ raw []byte }

func (b *oneFrameBus) ReadFrame(buf []byte) error {
	copy(buf, b.raw)
	return nil
}

func TestQueued_TickNotHeldByBlockedOutput(t *testing.T) {
	slow := newSlowOutput()
	q := NewQueued("slow", slow, DefaultQueueSize, nil)
	mk := func(name string) sensor.Sink { return sensor.New(sensor.Meta{Name: name}, nil, q) }

	phase, err := vue.NewPhase("a", frame.WireBlack, vue.DefaultCalibration, vue.PhaseSinks{
		Voltage:   mk("voltage"),
		Frequency: mk("frequency"),
	})
	require.NoError(t, err)

	var clamps []*vue.Clamp
	for _, label := range []string{"A", "1", "2", "3"} {
		port, err := vue.ParsePort(label)
		require.NoError(t, err)
		c, err := vue.NewClamp(phase, port, vue.ClampSinks{Power: mk("p" + label), Current: mk("c" + label)})
		require.NoError(t, err)
		clamps = append(clamps, c)
	}

	r := frame.Reading{Unread: true, SequenceNum: 1, Frequency: 422}
	drv, err := vue.New(&oneFrameBus{raw: frame.Encode(r)}, []*vue.Phase{phase}, clamps, nil)
	require.NoError(t, err)

	start := time.Now()
	res := drv.Update()
	require.Equal(t, vue.OutcomeAccepted, res.Outcome)
	require.Less(t, time.Since(start), 100*time.Millisecond)

	close(slow.release)
	require.NoError(t, q.Close())
	require.Len(t, slow.got(), 10)
}
