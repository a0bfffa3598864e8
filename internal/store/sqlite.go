package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"tiered-scheduler/internal/logging"
	"tiered-scheduler/internal/responses"
)

//go:generate mockgen -destination "../simulation/mock_recorder_test.go" -package simulation -write_package_comment=false tiered-scheduler/internal/store Recorder

// Recorder persists run summaries of a simulation batch.
type Recorder interface {
	RecordRun(batchID string, summary responses.ScheduleResponse) error
	Flush() error
}

// Reader reads recorded summaries back.
type Reader interface {
	ListRuns(batchID string) ([]responses.ScheduleResponse, error)
	ListBatches() ([]string, error)
}

const createTableSQL = `CREATE TABLE IF NOT EXISTS run_summaries (
	batch_id TEXT NOT NULL,
	run_index INTEGER NOT NULL,
	run_id TEXT NOT NULL,
	total_time INTEGER NOT NULL,
	ticks INTEGER NOT NULL,
	process_count INTEGER NOT NULL,
	completed_cpu_bursts INTEGER NOT NULL,
	core_idle_time INTEGER NOT NULL,
	cpu_idle_time INTEGER NOT NULL,
	average_turn_around_time REAL NOT NULL,
	average_waiting_time REAL NOT NULL,
	average_response_time REAL NOT NULL,
	cpu_utilization REAL NOT NULL,
	cpu_throughput REAL NOT NULL,
	PRIMARY KEY (batch_id, run_index)
);`

const insertSQL = `INSERT OR REPLACE INTO run_summaries (
	batch_id, run_index, run_id, total_time, ticks, process_count,
	completed_cpu_bursts, core_idle_time, cpu_idle_time,
	average_turn_around_time, average_waiting_time, average_response_time,
	cpu_utilization, cpu_throughput
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type entry struct {
	batchID string
	summary responses.ScheduleResponse
}

// SQLiteStore buffers summaries and writes them in one transaction per flush.
// It is safe for concurrent use by the workers of a batch.
type SQLiteStore struct {
	*sql.DB

	mu        sync.Mutex
	path      string
	batchSize int
	entries   []entry
}

// New opens (or creates) the database at path. An empty path gets a unique
// name. The store flushes itself when the process exits through atexit.
func New(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "tiered_rr_" + xid.New().String()
	}
	if filepath.Ext(path) == "" {
		path += ".sqlite3"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s, err := NewWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.path = path

	atexit.Register(func() {
		if err := s.Flush(); err != nil {
			slog.Error("flush run summaries at exit", logging.ErrAttr(err))
		}
	})

	return s, nil
}

// NewWithDB uses an already opened database.
func NewWithDB(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("create run_summaries: %w", err)
	}
	return &SQLiteStore{
		DB:        db,
		batchSize: 1000,
	}, nil
}

func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) RecordRun(batchID string, summary responses.ScheduleResponse) error {
	s.mu.Lock()
	s.entries = append(s.entries, entry{batchID: batchID, summary: summary})
	full := len(s.entries) >= s.batchSize
	s.mu.Unlock()

	if full {
		return s.Flush()
	}
	return nil
}

func (s *SQLiteStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return nil
	}

	tx, err := s.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range s.entries {
		r := e.summary
		_, err := stmt.Exec(e.batchID, r.RunIndex, r.RunID, r.TotalTime, r.Ticks,
			r.ProcessCount, r.CompletedCpuBursts, r.CoreIdleTime, r.CpuIdleTime,
			r.AverageTurnAroundTime, r.AverageWaitingTime, r.AverageResponseTime,
			r.CpuUtilization, r.CpuThroughput)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert run %d of batch %s: %w", r.RunIndex, e.batchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.entries = s.entries[:0]
	return nil
}

// Close flushes pending summaries and closes the database.
func (s *SQLiteStore) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.DB.Close()
}

func (s *SQLiteStore) ListRuns(batchID string) ([]responses.ScheduleResponse, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}

	rows, err := s.Query(`SELECT run_index, run_id, total_time, ticks, process_count,
		completed_cpu_bursts, core_idle_time, cpu_idle_time,
		average_turn_around_time, average_waiting_time, average_response_time,
		cpu_utilization, cpu_throughput
		FROM run_summaries WHERE batch_id = ? ORDER BY run_index`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]responses.ScheduleResponse, 0)
	for rows.Next() {
		var r responses.ScheduleResponse
		err := rows.Scan(&r.RunIndex, &r.RunID, &r.TotalTime, &r.Ticks, &r.ProcessCount,
			&r.CompletedCpuBursts, &r.CoreIdleTime, &r.CpuIdleTime,
			&r.AverageTurnAroundTime, &r.AverageWaitingTime, &r.AverageResponseTime,
			&r.CpuUtilization, &r.CpuThroughput)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListBatches() ([]string, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}

	rows, err := s.Query(`SELECT DISTINCT batch_id FROM run_summaries ORDER BY batch_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
