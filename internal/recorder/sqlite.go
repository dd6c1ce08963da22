package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run and fit history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads don't block sweep writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS run_summaries (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			label            TEXT,
			route            TEXT,
			compound         TEXT,
			dose_mg          REAL,
			duration_h       REAL,
			supplements      TEXT,
			peak_nad_cyt     REAL,
			peak_nad_mito    REAL,
			final_nad_cyt    REAL,
			precursor_cmax   REAL,
			precursor_tmax_h REAL,
			warning_count    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_ts ON run_summaries(timestamp)`,

		`CREATE TABLE IF NOT EXISTS fit_results (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			dataset        TEXT,
			supplements    TEXT,
			success        INTEGER,
			not_applicable INTEGER,
			objective      REAL,
			iterations     INTEGER,
			message        TEXT,
			coefficients   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fit_ts ON fit_results(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(s *RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO run_summaries
		(timestamp, label, route, compound, dose_mg, duration_h, supplements,
		 peak_nad_cyt, peak_nad_mito, final_nad_cyt,
		 precursor_cmax, precursor_tmax_h, warning_count)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), s.Label, s.Route, s.Compound, s.DoseMg, s.DurationH,
		s.Supplements, s.PeakNadCytUM, s.PeakNadMitoUM, s.FinalNadCytUM,
		s.PrecursorCmax, s.PrecursorTmaxH, s.WarningCount,
	)
	return err
}

func (r *SQLiteRecorder) RecordFit(e *FitEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fit_results
		(timestamp, dataset, supplements, success, not_applicable,
		 objective, iterations, message, coefficients)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), e.Dataset, e.Supplements,
		boolInt(e.Success), boolInt(e.NotApplicable),
		e.Objective, e.Iterations, e.Message, e.Coefficients,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
