package sensor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeOutput struct {
	fail   bool
	writes []float64
	metas  []Meta
}

func (f *fakeOutput) Write(m Meta, _ time.Time, v float64) error {
	if f.fail {
		return errors.New("boom")
	}
	f.writes = append(f.writes, v)
	f.metas = append(f.metas, m)
	return nil
}

func TestSensor_PublishFansOut(t *testing.T) {
	a := &fakeOutput{}
	b := &fakeOutput{}
	s := New(Meta{Name: "Phase A Voltage", Unit: "V", Decimals: 1}, nil, a, b)

	_, ok := s.State()
	require.False(t, ok)

	s.Publish(121.5)

	v, ok := s.State()
	require.True(t, ok)
	require.Equal(t, 121.5, v)
	require.Equal(t, []float64{121.5}, a.writes)
	require.Equal(t, []float64{121.5}, b.writes)
	require.Equal(t, "Phase A Voltage", a.metas[0].Name)
}

func TestSensor_OutputFailureDoesNotBlockOthers(t *testing.T) {
	bad := &fakeOutput{fail: true}
	good := &fakeOutput{}
	s := New(Meta{Name: "x"}, nil, bad, good)

	s.Publish(1)
	require.Equal(t, []float64{1}, good.writes)
}

func TestFloat32Registers(t *testing.T) {
	// 210.0 = 0x43520000
	require.Equal(t, []uint16{0x4352, 0x0000}, Float32Registers(210))
	// -1.5 = 0xBFC00000
	require.Equal(t, []uint16{0xBFC0, 0x0000}, Float32Registers(-1.5))
}
