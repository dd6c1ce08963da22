package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"NutraKinetics/internal/calibration"
	"NutraKinetics/internal/config"
	"NutraKinetics/internal/dataset"
	"NutraKinetics/internal/model"
	"NutraKinetics/internal/recorder"
	"NutraKinetics/internal/report"
	"NutraKinetics/internal/runstore"
	"NutraKinetics/internal/scheduler"
	"NutraKinetics/internal/simulation"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		configPath  = flag.String("config", "configs/config.yaml", "application config file")
		daemon      = flag.Bool("daemon", false, "run the scheduled scenario sweep until interrupted")
		rulesTable  = flag.Bool("rules", false, "print the interaction rule table and exit")
		listRuns    = flag.Bool("list-runs", false, "list saved comparison runs and exit")
		saveLabel   = flag.String("save", "", "save the run to the comparison store under this label")
		fitDataset  = flag.String("fit", "", "calibrate interaction coefficients against this CSV dataset")
		fitMaxIter  = flag.Int("maxiter", 200, "maximum optimizer iterations for -fit")
		fitOutput   = flag.String("output", "", "write the fit result to this YAML file")
		route       = flag.String("route", "oral", "administration route (oral or iv)")
		compound    = flag.String("compound", "NR", "primary compound")
		doseMg      = flag.Float64("dose-mg", 300, "primary dose in mg")
		durationH   = flag.Float64("duration-h", 24, "simulation duration in hours")
		formulation = flag.String("formulation", "standard", "formulation label")
		cd38Scale   = flag.Float64("cd38-scale", 1.0, "CD38 activity scale")
		supplements = flag.String("supplements", "", "comma-separated supplement ids")
	)
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*configPath = v
	}

	provider, err := config.NewProvider(*configPath)
	if err != nil {
		log.Fatalf("[FATAL] load configuration: %v", err)
	}

	engine := simulation.NewEngine(provider.Params, provider.Registry, provider.Rules, provider.ClassScalars)

	if *rulesTable {
		fmt.Print(report.FormatInteractionTable(provider.Rules))
		return
	}

	store, err := runstore.NewManager(provider.Config.Paths.CompareStore, provider.Config.Sweep.MaxSavedRuns)
	if err != nil {
		log.Fatalf("[FATAL] open run store: %v", err)
	}

	if *listRuns {
		for _, r := range store.List() {
			fmt.Printf("%s  %-24s %s\n", r.RunID, r.Label, r.CreatedAtUTC)
		}
		return
	}

	rec := openRecorder(provider.Config.Database.SQLitePath)
	defer rec.Close()

	if *daemon {
		runDaemon(provider, engine, store, rec)
		return
	}

	scenario := model.Scenario{
		Route:       model.Route(*route),
		Compound:    *compound,
		DoseMg:      *doseMg,
		DurationH:   *durationH,
		Formulation: *formulation,
		CD38Scale:   *cd38Scale,
		Supplements: splitIDs(*supplements),
	}

	if *fitDataset != "" {
		runFit(engine, rec, scenario, *fitDataset, *fitMaxIter, *fitOutput)
		return
	}

	runOnce(engine, store, rec, scenario, *saveLabel)
}

// runOnce executes one scenario, prints its summary, and records it.
func runOnce(engine *simulation.Engine, store *runstore.Manager, rec recorder.Recorder, scenario model.Scenario, saveLabel string) {
	result, err := engine.Run(scenario)
	if err != nil {
		log.Fatalf("[FATAL] run scenario: %v", err)
	}

	fmt.Print(report.FormatRunSummary(scenario, result))

	cmax, tmax := result.PrecursorCmax()
	if err := rec.RecordRun(&recorder.RunSummary{
		Label:          saveLabel,
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
		log.Printf("[ERROR] record run: %v", err)
	}

	if saveLabel != "" {
		run, err := store.Save(saveLabel, scenario, result)
		if err != nil {
			log.Fatalf("[FATAL] save run: %v", err)
		}
		log.Printf("[INFO] saved run %s as %q", run.RunID, run.Label)
	}
}

// runFit calibrates the fittable interaction coefficients for the scenario.
func runFit(engine *simulation.Engine, rec recorder.Recorder, scenario model.Scenario, datasetPath string, maxIter int, outputPath string) {
	loader := dataset.NewCSVLoader(datasetPath)
	observed, err := loader.Load()
	if err != nil {
		log.Fatalf("[FATAL] load dataset: %v", err)
	}
	log.Printf("[INFO] fitting against %s (%d observations)", loader.Name(), len(observed.TimesH))

	fit, err := calibration.Fit(engine, scenario, observed, maxIter)
	if err != nil {
		log.Fatalf("[FATAL] calibration: %v", err)
	}

	fmt.Print(report.FormatFitResult(fit))

	coefJSON, _ := json.Marshal(fit.Coefficients)
	if err := rec.RecordFit(&recorder.FitEvent{
		Dataset:       loader.Name(),
		Supplements:   strings.Join(scenario.SelectedSet(), ","),
		Success:       fit.Success,
		NotApplicable: fit.NotApplicable,
		Objective:     fit.Objective,
		Iterations:    fit.Iterations,
		Message:       fit.Message,
		Coefficients:  string(coefJSON),
	}); err != nil {
		log.Printf("[ERROR] record fit: %v", err)
	}

	if outputPath != "" {
		out, err := yaml.Marshal(map[string]interface{}{
			"success":        fit.Success,
			"not_applicable": fit.NotApplicable,
			"message":        fit.Message,
			"objective":      fit.Objective,
			"iterations":     fit.Iterations,
			"coefficients":   fit.Coefficients,
		})
		if err != nil {
			log.Fatalf("[FATAL] encode fit result: %v", err)
		}
		if err := os.WriteFile(outputPath, out, 0644); err != nil {
			log.Fatalf("[FATAL] write fit result: %v", err)
		}
		log.Printf("[INFO] fit result written to %s", outputPath)
	}
}

// runDaemon starts the cron sweep and blocks until SIGINT/SIGTERM.
func runDaemon(provider *config.Provider, engine *simulation.Engine, store *runstore.Manager, rec recorder.Recorder) {
	sched := scheduler.NewScheduler(engine, store, rec, provider.Config.Scenarios)
	if err := sched.Register(provider.Config.Sweep.Cron); err != nil {
		log.Fatalf("[FATAL] register sweep task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing sweep now")
		go sched.RunSweepNow()
	}

	log.Println("[INFO] NutraKinetics daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
}

func openRecorder(sqlitePath string) recorder.Recorder {
	if sqlitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(sqlitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func splitIDs(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	for _, id := range strings.Split(csv, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
