// internal/sink/history/store.go
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/tamzrod/vue-bridge/internal/sensor"
)

const schema = `
CREATE TABLE IF NOT EXISTS readings (
	ts     INTEGER NOT NULL,
	sensor TEXT    NOT NULL,
	unit   TEXT    NOT NULL,
	value  REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS readings_sensor_ts ON readings (sensor, ts);
`

var (
	// ErrQueueFull is returned when the writer goroutine cannot keep up.
	ErrQueueFull = errors.New("history: queue full")

	// ErrClosed is returned by Write after Close.
	ErrClosed = errors.New("history: store closed")
)

type record struct {
	at    time.Time
	name  string
	unit  string
	value float64
}

// Store appends sensor values to SQLite from a single background goroutine.
// Implements sensor.Output.
type Store struct {
	db   *sql.DB
	q    chan record
	done chan struct{}
	log  *zap.Logger

	mu     sync.Mutex
	closed bool
}

// Open ensures the directory exists, creates the schema and starts the writer.
func Open(path string, queueSize int, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = 1000
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// one writer connection; sqlite serializes writes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: schema: %w", err)
	}

	s := &Store{
		db:   db,
		q:    make(chan record, queueSize),
		done: make(chan struct{}),
		log:  log,
	}
	go s.run()
	return s, nil
}

// Write enqueues a value without blocking.
func (s *Store) Write(m sensor.Meta, at time.Time, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.q <- record{at: at, name: m.Name, unit: m.Unit, value: v}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *Store) run() {
	defer close(s.done)
	for r := range s.q {
		if _, err := s.db.Exec(
			`INSERT INTO readings (ts, sensor, unit, value) VALUES (?, ?, ?, ?)`,
			r.at.UnixNano(), r.name, r.unit, r.value,
		); err != nil {
			s.log.Warn("history insert failed", zap.String("sensor", r.name), zap.Error(err))
		}
	}
}

// Close drains the queue and closes the database.
// Later writes fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.q)
	s.mu.Unlock()

	<-s.done
	return s.db.Close()
}
