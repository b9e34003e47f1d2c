package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/tovsim/internal/config"
	"github.com/san-kum/tovsim/internal/eos"
	"github.com/san-kum/tovsim/internal/export"
	"github.com/san-kum/tovsim/internal/metrics"
	"github.com/san-kum/tovsim/internal/optim"
	"github.com/san-kum/tovsim/internal/sequence"
	"github.com/san-kum/tovsim/internal/storage"
	"github.com/san-kum/tovsim/internal/tov"
	"github.com/san-kum/tovsim/internal/units"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	metricsOut string
	// EOS
	eosType       string
	polyK         float64
	polyGamma     float64
	epsilon0      float64
	tableFile     string
	extrapolation string
	// Single star
	rhoC float64
	pc   float64
	// Sweep
	rhoMin     float64
	rhoMax     float64
	points     int
	logSpacing bool
	workers    int
	refine     bool
	svgOut     string
	// Solver
	rtol     float64
	atol     float64
	rMax     float64
	maxSteps int
)

var (
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	stableStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	unstableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "tovsim",
		Short:        "relativistic stellar structure solver",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("bad log level %q: %w", logLevel, err)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".tovsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve a single star",
		Args:  cobra.NoArgs,
		RunE:  solveStar,
	}
	addEOSFlags(solveCmd)
	addSolverFlags(solveCmd)
	solveCmd.Flags().Float64Var(&rhoC, "rho-c", config.DefaultCentralDensity, "central rest-mass density")
	solveCmd.Flags().Float64Var(&pc, "pc", 0, "central pressure (overrides --rho-c)")

	sequenceCmd := &cobra.Command{
		Use:   "sequence",
		Short: "solve a sweep of central densities",
		Long:  "solve a sweep of central densities. The constant-density eos has no\npressure-density relation and is rejected; solve its stars with solve --pc.",
		Args:  cobra.NoArgs,
		RunE:  solveSequence,
	}
	addEOSFlags(sequenceCmd)
	addSolverFlags(sequenceCmd)
	sequenceCmd.Flags().Float64Var(&rhoMin, "rho-min", config.DefaultDensityMin, "lowest central density")
	sequenceCmd.Flags().Float64Var(&rhoMax, "rho-max", config.DefaultDensityMax, "highest central density")
	sequenceCmd.Flags().IntVar(&points, "points", config.DefaultPoints, "number of models")
	sequenceCmd.Flags().BoolVar(&logSpacing, "log", false, "logarithmic density spacing")
	sequenceCmd.Flags().IntVar(&workers, "workers", 0, "concurrent solves (0 = GOMAXPROCS)")
	sequenceCmd.Flags().BoolVar(&refine, "refine", false, "refine the maximum mass between neighboring models")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored profile or sequence",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).WriteCSV(os.Stdout, args[0])
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a mass-radius curve or pressure profile to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [eos_type]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(solveCmd, sequenceCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func addEOSFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration for --eos")
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write solver metrics to this file")
	cmd.Flags().StringVar(&eosType, "eos", eos.TypePolytrope, "eos type")
	cmd.Flags().Float64Var(&polyK, "k", config.DefaultK, "polytropic constant")
	cmd.Flags().Float64Var(&polyGamma, "gamma", config.DefaultGamma, "adiabatic index")
	cmd.Flags().Float64Var(&epsilon0, "epsilon0", 1, "energy density (constant eos)")
	cmd.Flags().StringVar(&tableFile, "table", "", "csv table (tabulated eos)")
	cmd.Flags().StringVar(&extrapolation, "extrapolation", "clamp", "table extrapolation (clamp, linear)")
}

func addSolverFlags(cmd *cobra.Command) {
	d := tov.DefaultConfig()
	cmd.Flags().Float64Var(&rtol, "rtol", d.RelTol, "relative tolerance")
	cmd.Flags().Float64Var(&atol, "atol", d.AbsTol, "absolute tolerance")
	cmd.Flags().Float64Var(&rMax, "r-max", d.RMax, "outer integration bound")
	cmd.Flags().IntVar(&maxSteps, "max-steps", d.MaxSteps, "step budget per star")
}

// loadConfig layers preset, config file and explicitly set flags, in that
// order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(eosType, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(eosType))
		}
		copied := *p
		cfg = &copied
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}
	set("eos", func() { cfg.EOS.Type = eosType })
	set("k", func() { cfg.EOS.K = polyK })
	set("gamma", func() { cfg.EOS.Gamma = polyGamma })
	set("epsilon0", func() { cfg.EOS.Epsilon0 = epsilon0 })
	set("table", func() { cfg.EOS.Table = tableFile })
	set("extrapolation", func() { cfg.EOS.Extrapolation = extrapolation })
	set("rho-c", func() { cfg.Star.CentralDensity, cfg.Star.CentralPressure = rhoC, 0 })
	set("pc", func() { cfg.Star.CentralPressure = pc })
	set("rho-min", func() { cfg.Sequence.DensityMin = rhoMin })
	set("rho-max", func() { cfg.Sequence.DensityMax = rhoMax })
	set("points", func() { cfg.Sequence.Points = points })
	set("log", func() {
		cfg.Sequence.Spacing = config.SpacingLinear
		if logSpacing {
			cfg.Sequence.Spacing = config.SpacingLog
		}
	})
	set("workers", func() { cfg.Sequence.Workers = workers })
	set("rtol", func() { cfg.Solver.RelTol = rtol })
	set("atol", func() { cfg.Solver.AbsTol = atol })
	set("r-max", func() { cfg.Solver.RMax = rMax })
	set("max-steps", func() { cfg.Solver.MaxSteps = maxSteps })

	return cfg, nil
}

func field(label string, format string, args ...any) {
	fmt.Printf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-16s", label+":")), valueStyle.Render(fmt.Sprintf(format, args...)))
}

func writeMetrics() error {
	if metricsOut == "" {
		return nil
	}
	if err := metrics.WriteTextfile(metricsOut); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func solveStar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	e, err := cfg.BuildEOS()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	centralPressure := cfg.CentralPressure(e)
	solverCfg := cfg.SolverConfig()
	fmt.Printf("solving %s at pc=%.6g...\n", e.Name(), centralPressure)

	start := time.Now()
	m, err := tov.NewSolver(solverCfg).Solve(cmd.Context(), e, centralPressure)
	metrics.ObserveSolve(m, err, start)
	elapsed := time.Since(start)
	if err != nil {
		_ = writeMetrics()
		return err
	}

	runID, err := st.SaveModel(m, solverCfg)
	if err != nil {
		return err
	}

	u := units.Geometric()
	fmt.Printf("completed in %v\n\n", elapsed)
	field("run id", "%s", runID)
	field("eos", "%s", m.EOS)
	field("central pressure", "%.6e (%.4e dyn/cm^2)", m.CentralPressure, u.PressureCGS(m.CentralPressure))
	field("central density", "%.6e (%.4e g/cm^3)", e.DensityFromPressure(m.CentralPressure), u.DensityCGS(e.DensityFromPressure(m.CentralPressure)))
	field("mass", "%.6f (%.4f M_sun)", m.Mass, u.MassSolar(m.Mass))
	field("radius", "%.6f (%.4f km)", m.Radius, u.LengthKm(m.Radius))
	field("baryon mass", "%.6f", m.BaryonMass)
	field("binding energy", "%.6f", m.BindingEnergy())
	field("compactness", "%.6f", m.Compactness())
	field("steps", "%d accepted, %d rejected", m.Steps, m.Rejected)
	if m.Degenerate {
		fmt.Println(warnStyle.Render("surface inside 2M: metric left unnormalized"))
	} else {
		field("metric mismatch", "%.3e", m.MetricMismatch())
	}

	return writeMetrics()
}

func solveSequence(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	e, err := cfg.BuildEOS()
	if err != nil {
		return err
	}
	pts, err := cfg.SequencePoints(e)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("solving %d models of %s...\n", len(pts), e.Name())
	start := time.Now()

	seqCfg := cfg.SequenceConfig()
	seq, err := sequence.Build(cmd.Context(), e, pts, seqCfg)
	if err != nil {
		_ = writeMetrics()
		return err
	}

	runID, err := st.SaveSequence(seq, seqCfg.Solver)
	if err != nil {
		return err
	}

	u := units.Geometric()
	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n\n", runID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IDX\tRHO_C\tM[M_sun]\tR[km]\tM_B\tC_S_MAX\tSTATUS")
	for i, m := range seq.Models {
		status := stableStyle.Render(string(seq.Stability[i]))
		if seq.Stability[i] == sequence.Unstable {
			status = unstableStyle.Render(string(seq.Stability[i]))
		}
		if !seq.Causality[i].Causal {
			status += " " + warnStyle.Render("acausal")
		}
		fmt.Fprintf(w, "%d\t%.4e\t%.4f\t%.3f\t%.4f\t%.3f\t%s\n",
			i,
			seq.Points[i].Density,
			u.MassSolar(m.Mass),
			u.LengthKm(m.Radius),
			m.BaryonMass,
			seq.Causality[i].MaxSoundSpeed,
			status,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	if heaviest := seq.MaxMass(); heaviest != nil {
		field("max mass", "%.4f M_sun at R=%.3f km (index %d)", u.MassSolar(heaviest.Mass), u.LengthKm(heaviest.Radius), seq.MaxMassIndex)
	}
	field("stable models", "%d of %d", seq.StableCount(), seq.Len())
	if seq.TurningPoints > 1 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("%d turning points: only the first maximum splits stability", seq.TurningPoints)))
	}
	for _, f := range seq.Failures {
		fmt.Println(warnStyle.Render(fmt.Sprintf("skipped rho_c=%.4e: %v", f.Density, f.Err)))
	}

	if refine && seq.Len() > 1 {
		i := seq.MaxMassIndex
		lo, hi := seq.Points[max(i-1, 0)].Density, seq.Points[min(i+1, seq.Len()-1)].Density
		res, err := optim.NewGridSearch(7, 6, 1e-6).MaxMass(cmd.Context(), e, lo, hi, seqCfg)
		if err != nil {
			return err
		}
		field("refined max", "%.6f M_sun at rho_c=%.6e, R=%.4f km (%d solves)",
			u.MassSolar(res.Model.Mass), res.Density, u.LengthKm(res.Model.Radius), res.Evaluations)
	}

	return writeMetrics()
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
	fmt.Fprintln(w, "ID\tKIND\tEOS\tTIME\tMASS\tRADIUS\tMODELS")

	for _, run := range runs {
		mass, radius := run.Mass, run.Radius
		if run.Kind == storage.KindSequence {
			mass, radius = run.MaxMass, run.MaxMassRadius
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f\t%.4f\t%d\n",
			run.ID,
			run.Kind,
			run.EOS,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			mass,
			radius,
			run.Models,
		)
	}

	return w.Flush()
}

func plotSeries(data []float64, caption string) {
	if len(data) == 0 {
		return
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	fmt.Println()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("eos: %s\n", meta.EOS)

	if meta.Kind == storage.KindSequence {
		rows, err := st.LoadSequence(runID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("no data to plot")
		}
		fmt.Printf("models: %d\n\n", len(rows))

		masses := make([]float64, len(rows))
		radii := make([]float64, len(rows))
		for i, r := range rows {
			masses[i], radii[i] = r.Mass, r.Radius
		}
		plotSeries(masses, "mass vs central density index")
		plotSeries(radii, "radius vs central density index")
		return nil
	}

	p, err := st.LoadProfile(runID)
	if err != nil {
		return err
	}
	if p.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}
	fmt.Printf("samples: %d (r from %.3g to %.6g)\n\n", p.Len(), p.R[0], p.R[p.Len()-1])

	plotSeries(p.P, "pressure P(r)")
	plotSeries(p.M, "enclosed mass m(r)")
	plotSeries(p.Nu, "metric potential nu(r)")
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	u := units.Geometric()
	var svg string
	if meta.Kind == storage.KindSequence {
		rows, err := st.LoadSequence(runID)
		if err != nil {
			return err
		}
		rs := make([]float64, len(rows))
		ms := make([]float64, len(rows))
		for i, r := range rows {
			rs[i], ms[i] = u.LengthKm(r.Radius), u.MassSolar(r.Mass)
		}
		svg, err = export.CurveToSVG(rs, ms, 800, 600, "#00ff00", "R [km]", "M [M_sun]")
		if err != nil {
			return err
		}
	} else {
		p, err := st.LoadProfile(runID)
		if err != nil {
			return err
		}
		rs := make([]float64, p.Len())
		for i, r := range p.R {
			rs[i] = u.LengthKm(r)
		}
		svg, err = export.CurveToSVG(rs, p.P, 800, 600, "#00ff00", "r [km]", "P")
		if err != nil {
			return err
		}
	}

	if svgOut == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	types := eos.NewRegistry().Types()
	if len(args) == 1 {
		types = []string{args[0]}
	}

	found := false
	for _, t := range types {
		presets := config.ListPresets(t)
		if len(presets) == 0 {
			continue
		}
		found = true
		fmt.Printf("presets for %s:\n", t)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	if !found {
		fmt.Printf("no presets for eos: %v\n", types)
	}
	return nil
}
