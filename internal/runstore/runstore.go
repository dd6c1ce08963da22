// Package runstore persists named simulation runs for side-by-side
// comparison, backed by a single JSON file.
package runstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"NutraKinetics/internal/model"
)

// Series names stored for every saved run.
const (
	SeriesTimeH           = "time_h"
	SeriesPlasmaPrecursor = "plasma_precursor_uM"
	SeriesNadCyt          = "nad_cyt_uM"
	SeriesNadMito         = "nad_mito_uM"
	SeriesStackSignal     = "supplement_stack_signal_uM"
)

// SavedRun is one stored scenario run: the inputs that produced it, the
// advisory messages it raised, and the plotted series.
type SavedRun struct {
	RunID        string               `json:"run_id"`
	Label        string               `json:"label"`
	CreatedAtUTC string               `json:"created_at_utc"`
	Scenario     model.Scenario       `json:"scenario"`
	Warnings     []string             `json:"warnings"`
	Series       map[string][]float64 `json:"series"`
}

// Manager stores saved runs in a JSON file with concurrency safety. When the
// store grows past maxRuns, the oldest runs are evicted on save.
type Manager struct {
	mu       sync.Mutex
	filePath string
	maxRuns  int
	runs     []SavedRun
}

// NewManager loads (or initializes) the store at filePath. maxRuns <= 0
// disables eviction.
func NewManager(filePath string, maxRuns int) (*Manager, error) {
	m := &Manager{filePath: filePath, maxRuns: maxRuns}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("read run store: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m.runs); err != nil {
			return nil, fmt.Errorf("parse run store: %w", err)
		}
	}
	return m, nil
}

// Save stores a run under the given label and returns the saved record.
func (m *Manager) Save(label string, scenario model.Scenario, result *model.SimulationResult) (SavedRun, error) {
	run := SavedRun{
		RunID:        uuid.NewString(),
		Label:        label,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Scenario:     scenario,
		Warnings:     append([]string(nil), result.Warnings...),
		Series: map[string][]float64{
			SeriesTimeH:           result.TimesH,
			SeriesPlasmaPrecursor: result.PlasmaPrecursorUM,
			SeriesNadCyt:          result.NadCytUM,
			SeriesNadMito:         result.NadMitoUM,
			SeriesStackSignal:     result.StackSignalUM,
		},
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, run)
	if m.maxRuns > 0 && len(m.runs) > m.maxRuns {
		m.runs = m.runs[len(m.runs)-m.maxRuns:]
	}
	if err := m.save(); err != nil {
		return SavedRun{}, err
	}
	return run, nil
}

// List returns the saved runs, oldest first.
func (m *Manager) List() []SavedRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SavedRun(nil), m.runs...)
}

// Get returns the run with the given id.
func (m *Manager) Get(runID string) (SavedRun, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.RunID == runID {
			return r, true
		}
	}
	return SavedRun{}, false
}

// Delete removes the run with the given id. Deleting an unknown id is not an
// error; it reports false.
func (m *Manager) Delete(runID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.runs {
		if r.RunID == runID {
			m.runs = append(m.runs[:i], m.runs[i+1:]...)
			return true, m.save()
		}
	}
	return false, nil
}

// Clear removes every saved run.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = nil
	return m.save()
}

func (m *Manager) save() error {
	if dir := filepath.Dir(m.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create run store dir: %w", err)
		}
	}
	runs := m.runs
	if runs == nil {
		runs = []SavedRun{}
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run store: %w", err)
	}
	if err := os.WriteFile(m.filePath, data, 0644); err != nil {
		return fmt.Errorf("write run store: %w", err)
	}
	return nil
}
