package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/vue-bridge/internal/sensor"
)

type storedReading struct {
	At    time.Time
	Unit  string
	Value float64
}

func latest(ctx context.Context, s *Store, name string) (storedReading, error) {
	var (
		r  storedReading
		ts int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT ts, unit, value FROM readings WHERE sensor = ? ORDER BY ts DESC LIMIT 1`,
		name,
	).Scan(&ts, &r.Unit, &r.Value)
	if err != nil {
		return storedReading{}, err
	}
	r.At = time.Unix(0, ts)
	return r, nil
}

func count(ctx context.Context, s *Store, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings WHERE sensor = ?`, name).Scan(&n)
	return n, err
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "vue.sqlite")
	s, err := Open(path, 16, nil)
	require.NoError(t, err)
	return s, path
}

func TestStore_WriteThenClosePersists(t *testing.T) {
	s, path := newTestStore(t)

	m := sensor.Meta{Name: "Phase A Voltage", Unit: "V"}
	t0 := time.Unix(1700000000, 0)
	require.NoError(t, s.Write(m, t0, 120.5))
	require.NoError(t, s.Write(m, t0.Add(time.Second), 121.0))
	require.NoError(t, s.Close())

	reopened, err := Open(path, 1, nil)
	require.NoError(t, err)
	defer reopened.Close()

	ctx := context.Background()
	n, err := count(ctx, reopened, m.Name)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	r, err := latest(ctx, reopened, m.Name)
	require.NoError(t, err)
	require.Equal(t, 121.0, r.Value)
	require.Equal(t, "V", r.Unit)
	require.True(t, r.At.Equal(t0.Add(time.Second)))
}

func TestStore_LatestMissing(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	_, err := latest(context.Background(), s, "nope")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStore_QueueFull(t *testing.T) {
	s := &Store{q: make(chan record)} // unbuffered, no reader
	require.ErrorIs(t, s.Write(sensor.Meta{Name: "x"}, time.Now(), 1), ErrQueueFull)
}

func TestStore_WriteAfterClose(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.Write(sensor.Meta{Name: "x"}, time.Now(), 1), ErrClosed)
	require.NoError(t, s.Close())
}
