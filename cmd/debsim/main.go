package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/aquatox/debsim/internal/config"
	"github.com/aquatox/debsim/internal/dataset"
	"github.com/aquatox/debsim/internal/experiment"
	"github.com/aquatox/debsim/internal/fit"
	"github.com/aquatox/debsim/internal/forcing"
	"github.com/aquatox/debsim/internal/ode"
	"github.com/aquatox/debsim/internal/simulate"
	"github.com/aquatox/debsim/internal/storage"
	"github.com/aquatox/debsim/internal/sweep"
	"github.com/aquatox/debsim/internal/viz"
)

var (
	dataDir string
	verbose bool

	family     string
	preset     string
	configFile string
	solverName string
	tolTier    int
	noSave     bool

	// fit
	dataFile    string
	stateCol    int
	obsWeight   float64
	forcingFile string
	gridPoints  int
	maxIters    int
	maxEvals    int
	reportOut   string

	// sweep
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int

	// png
	outFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "debsim",
		Short: "energy-budget simulation of aquatic organisms",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.Kitchen,
			})))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".debsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run an experiment",
		RunE:  runExperiment,
	}
	addExperimentFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip writing the run to the data directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	pngCmd := &cobra.Command{
		Use:   "png [run_id]",
		Short: "render a stored run to a PNG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  pngRun,
	}
	pngCmd.Flags().StringVarP(&outFile, "out", "o", "run.png", "output file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportMeta,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print run trajectory as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print run trajectory as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "calibrate free parameters against observed data",
		RunE:  runFit,
	}
	addExperimentFlags(fitCmd)
	fitCmd.Flags().StringVar(&dataFile, "obs", "", "observed time series (wide CSV)")
	fitCmd.Flags().IntVar(&stateCol, "state-col", 0, "state column the observations measure")
	fitCmd.Flags().Float64Var(&obsWeight, "weight", 1, "table weight in the objective")
	fitCmd.Flags().StringVar(&forcingFile, "forcing", "", "forcing time series (wide CSV)")
	fitCmd.Flags().IntVar(&gridPoints, "grid", 5, "coarse grid points per parameter (0 skips)")
	fitCmd.Flags().IntVar(&maxIters, "iters", 500, "simplex iteration budget")
	fitCmd.Flags().IntVar(&maxEvals, "evals", 2000, "objective evaluation budget")
	fitCmd.Flags().StringVar(&reportOut, "out", "", "write the fit report as YAML")
	fitCmd.MarkFlagRequired("obs")

	fitsCmd := &cobra.Command{
		Use:   "fits",
		Short: "list indexed calibrations",
		RunE:  listFits,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter and plot the responses",
		RunE:  runSweep,
	}
	addExperimentFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "f", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.2, "range start")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1.0, "range end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 9, "number of values")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run an experiment and play it back",
		RunE:  runLive,
	}
	addExperimentFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time every solver family and tolerance tier",
		RunE:  benchSolvers,
	}
	addExperimentFlags(benchCmd)

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare solver families on one experiment",
		RunE:  compareSolvers,
	}
	addExperimentFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset experiments",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FAMILY\tPRESET\tMODEL\tSCENARIOS")
			for _, fam := range config.Families() {
				for _, name := range config.ListPresets(fam) {
					cfg := config.GetPreset(fam, name)
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", fam, name, cfg.Global.Kind, len(cfg.Scenarios))
				}
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, pngCmd, exportCmd, exportCSVCmd,
		exportJSONCmd, fitCmd, fitsCmd, sweepCmd, liveCmd, benchCmd, compareCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addExperimentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&family, "family", "lymnaea", "organism family")
	cmd.Flags().StringVar(&preset, "preset", "default", "preset name")
	cmd.Flags().StringVar(&configFile, "config", "", "experiment file (yaml), overrides the preset")
	cmd.Flags().StringVar(&solverName, "solver", "", "solver family (dopri, bs23, rosenbrock)")
	cmd.Flags().IntVar(&tolTier, "tol", -1, "tolerance tier 0..2")
}

// loadExperiment resolves the experiment from --config or the preset
// catalog and applies the solver/tolerance overrides.
func loadExperiment(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		found := config.GetPreset(family, preset)
		if found == nil {
			return nil, fmt.Errorf("unknown preset: %s/%s (available: %v)", family, preset, config.ListPresets(family))
		}
		copied := *found
		cfg = &copied
	}
	if cmd.Flags().Changed("solver") {
		cfg.Solver = solverName
	}
	if cmd.Flags().Changed("tol") {
		cfg.Global.Tol = tolTier
	}
	return cfg, nil
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := loadExperiment(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	runs, err := experiment.New(cfg).Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	fmt.Printf("experiment %s: %d scenario(s) in %v\n\n", cfg.Name, len(runs), elapsed)
	for _, run := range runs {
		fmt.Printf("scenario %g:\n", run.Scenario.ID)
		for name, val := range run.Metrics {
			fmt.Printf("  %s: %.6g\n", name, val)
		}
		if st != nil {
			runID, err := st.Save(cfg.Name, cfg.Global.Kind.String(), run.Scenario.ID, run.Result, run.Metrics)
			if err != nil {
				return err
			}
			fmt.Printf("  run id: %s\n", runID)
		}
		fmt.Println()
	}

	fmt.Println(viz.Trajectory(runs[0].Result))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODEL\tSOLVER\tSCENARIO\tAGE\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%s\t%d\n",
			run.ID, run.Name, run.Model, run.Solver, run.Scenario,
			humanize.Time(run.Timestamp), run.Steps)
	}
	return w.Flush()
}

// loadStored rebuilds a result from a stored run for the plotting and
// export commands.
func loadStored(runID string) (*storage.RunMetadata, *simulate.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	times, states, labels, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	res := &simulate.Result{
		Times:  times,
		States: make([]ode.State, len(states)),
		Labels: labels,
		Solver: meta.Solver,
	}
	for i, s := range states {
		res.States[i] = ode.State(s)
	}
	return meta, res, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, res, err := loadStored(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("run: %s\nmodel: %s\nsamples: %d\n\n", meta.ID, meta.Model, len(res.Times))
	fmt.Println(viz.Trajectory(res))
	return nil
}

func pngRun(cmd *cobra.Command, args []string) error {
	meta, res, err := loadStored(args[0])
	if err != nil {
		return err
	}
	overlays := make([]viz.Overlay, len(res.Labels))
	for col, label := range res.Labels {
		overlays[col] = viz.Overlay{Label: label, Times: res.Times, Values: res.Column(col)}
	}
	if err := viz.WritePNG(outFile, meta.ID, overlays); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func exportMeta(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, res, err := loadStored(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, res)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, res, err := loadStored(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta.Name, meta.Model, meta.Scenario, res, meta.Metrics)
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := loadExperiment(cmd)
	if err != nil {
		return err
	}

	table, err := dataset.LoadTable(dataFile, stateCol, obsWeight)
	if err != nil {
		return err
	}
	var env *forcing.Set
	if forcingFile != "" {
		env, err = dataset.LoadForcing(forcingFile)
		if err != nil {
			return err
		}
	} else {
		env, err = cfg.Forcing()
		if err != nil {
			return err
		}
	}

	prob := &fit.Problem{
		Params: cfg.Params,
		Global: cfg.Global,
		Env:    env,
		Tables: []*dataset.Table{table},
		X0:     cfg.Scenarios[0].X0,
	}
	report, err := fit.Calibrate(context.Background(), prob, fit.Options{
		GridPoints: gridPoints,
		MaxIters:   maxIters,
		MaxEvals:   maxEvals,
	})
	if err != nil {
		return err
	}
	report.Name = cfg.Name

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tSTART\tFITTED\tRANGE")
	for _, p := range report.Params {
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t[%g, %g]\n", p.Name, p.Start, p.Fitted, p.Min, p.Max)
	}
	w.Flush()
	fmt.Printf("\nssq: %.6g -> %.6g (%d evaluations)\n", report.SSQStart, report.SSQ, report.Evaluations)

	if reportOut != "" {
		if err := report.Save(reportOut); err != nil {
			return err
		}
		fmt.Printf("report: %s\n", reportOut)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	ix, err := storage.OpenFitIndex(context.Background(), filepath.Join(dataDir, "fits.db"))
	if err != nil {
		return err
	}
	defer ix.Close()
	id, err := ix.Add(context.Background(), report)
	if err != nil {
		return err
	}
	fmt.Printf("indexed: %s\n", id)
	return nil
}

func listFits(cmd *cobra.Command, args []string) error {
	ix, err := storage.OpenFitIndex(context.Background(), filepath.Join(dataDir, "fits.db"))
	if err != nil {
		return err
	}
	defer ix.Close()

	records, err := ix.List(context.Background())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no fits indexed")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAGE\tSSQ\tEVALS\tPARAMS")
	for _, rec := range records {
		fmt.Fprintf(w, "%.8s\t%s\t%s\t%.6g\t%d\t%d\n",
			rec.ID, rec.Name, humanize.Time(rec.When), rec.SSQ, rec.Evaluations, len(rec.Fitted))
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadExperiment(cmd)
	if err != nil {
		return err
	}
	env, err := cfg.Forcing()
	if err != nil {
		return err
	}

	points, err := sweep.Run(context.Background(), cfg.Params, cfg.Global, env, sweep.Request{
		Param: sweepParam,
		From:  sweepFrom,
		To:    sweepTo,
		Steps: sweepSteps,
		Times: cfg.Grid(),
		X0:    cfg.Scenarios[0].InitialVector(),
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL\tPEAK\tREPRO\tSURVIVAL\tPUBERTY\n", sweepParam)
	for _, p := range points {
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\n",
			p.Value, p.FinalSize, p.PeakSize, p.Reproduction, p.Survival, p.PubertyDay)
	}
	w.Flush()
	fmt.Println()

	caption := fmt.Sprintf("final size vs %s (%g..%g)", sweepParam, sweepFrom, sweepTo)
	fmt.Println(viz.Series(sweep.Column(points, func(p sweep.Point) float64 { return p.FinalSize }), caption))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadExperiment(cmd)
	if err != nil {
		return err
	}
	runs, err := experiment.New(cfg).Run(context.Background())
	if err != nil {
		return err
	}
	return viz.RunLive(cfg.Name, runs[0].Result)
}

func benchSolvers(cmd *cobra.Command, args []string) error {
	cfg, err := loadExperiment(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tTOL\tSTEPS\tREJECTED\tEVALS\tTIME")
	for _, name := range experiment.NewRegistry().ListSolvers() {
		for tier := 0; tier <= 2; tier++ {
			run := *cfg
			run.Solver = name
			run.Global.Tol = tier

			start := time.Now()
			results, err := experiment.New(&run).Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stats := results[0].Result.Stats
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%v\n",
				name, tier, stats.Steps, stats.Rejected, stats.Evaluations, elapsed)
		}
	}
	return w.Flush()
}

func compareSolvers(cmd *cobra.Command, args []string) error {
	cfg, err := loadExperiment(cmd)
	if err != nil {
		return err
	}

	// Tight dopri as the reference trajectory.
	ref := *cfg
	ref.Solver = "dopri"
	ref.Global.Tol = 2
	refRuns, err := experiment.New(&ref).Run(context.Background())
	if err != nil {
		return err
	}
	refFinal := refRuns[0].Result.States[len(refRuns[0].Result.States)-1]

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tSTEPS\tEVALS\tMAX FINAL DIFF")
	for _, name := range experiment.NewRegistry().ListSolvers() {
		run := *cfg
		run.Solver = name
		results, err := experiment.New(&run).Run(context.Background())
		if err != nil {
			return err
		}
		res := results[0].Result
		final := res.States[len(res.States)-1]
		maxDiff := 0.0
		for i := range final {
			d := final[i] - refFinal[i]
			if d < 0 {
				d = -d
			}
			if d > maxDiff {
				maxDiff = d
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3g\n", name, res.Stats.Steps, res.Stats.Evaluations, maxDiff)
	}
	return w.Flush()
}
