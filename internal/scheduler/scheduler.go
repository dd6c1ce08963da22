// Package scheduler runs the configured scenario sweep on a cron schedule,
// logging summaries and persisting results.
package scheduler

import (
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"NutraKinetics/internal/config"
	"NutraKinetics/internal/recorder"
	"NutraKinetics/internal/report"
	"NutraKinetics/internal/runstore"
	"NutraKinetics/internal/simulation"
)

// Scheduler manages the periodic scenario sweep.
type Scheduler struct {
	Cron      *cron.Cron
	Engine    *simulation.Engine
	Store     *runstore.Manager
	Recorder  recorder.Recorder
	Scenarios []config.ScenarioConfig
}

// NewScheduler creates a new Scheduler over the configured scenarios.
func NewScheduler(engine *simulation.Engine, store *runstore.Manager, rec recorder.Recorder, scenarios []config.ScenarioConfig) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Engine:    engine,
		Store:     store,
		Recorder:  rec,
		Scenarios: scenarios,
	}
}

// Register schedules the sweep task.
func (s *Scheduler) Register(sweepCron string) error {
	if _, err := s.Cron.AddFunc(sweepCron, s.sweepTask); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunSweepNow executes the sweep immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunSweepNow() {
	s.sweepTask()
}

func (s *Scheduler) sweepTask() {
	log.Printf("[INFO] running scenario sweep (%d scenarios)", len(s.Scenarios))

	for _, sc := range s.Scenarios {
		scenario := sc.ToScenario()
		label := sc.Label
		if label == "" {
			label = fmt.Sprintf("%s %s %.0fmg", scenario.Compound, scenario.Route, scenario.DoseMg)
		}

		result, err := s.Engine.Run(scenario)
		if err != nil {
			log.Printf("[ERROR] sweep scenario %q: %v", label, err)
			continue
		}

		log.Printf("[INFO] sweep scenario %q:\n%s", label, report.FormatRunSummary(scenario, result))

		cmax, tmax := result.PrecursorCmax()
		if err := s.Recorder.RecordRun(&recorder.RunSummary{
			Label:          label,
			Route:          string(scenario.Route),
			Compound:       scenario.Compound,
			DoseMg:         scenario.DoseMg,
			DurationH:      scenario.DurationH,
			Supplements:    strings.Join(scenario.SelectedSet(), ","),
			PeakNadCytUM:   result.PeakNadCyt(),
			PeakNadMitoUM:  result.PeakNadMito(),
			FinalNadCytUM:  result.FinalNadCyt(),
			PrecursorCmax:  cmax,
			PrecursorTmaxH: tmax,
			WarningCount:   len(result.Warnings),
		}); err != nil {
			log.Printf("[ERROR] record sweep run %q: %v", label, err)
		}

		if s.Store != nil {
			if _, err := s.Store.Save(label, scenario, result); err != nil {
				log.Printf("[ERROR] save sweep run %q: %v", label, err)
			}
		}
	}
}
