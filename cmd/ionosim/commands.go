package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/ionosim/internal/config"
	"github.com/san-kum/ionosim/internal/dynamo"
	"github.com/san-kum/ionosim/internal/experiment"
	"github.com/san-kum/ionosim/internal/ionocraft"
	"github.com/san-kum/ionosim/internal/logger"
	"github.com/san-kum/ionosim/internal/storage"
	"github.com/san-kum/ionosim/internal/viz"
)

// resolveConfig layers the default config, the preset, the config file and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Overlay(configFile, cfg)
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
	set("mode", func() { cfg.Model.Mode = mode })
	set("dt", func() { cfg.Model.Dt = dt })
	set("seed", func() { cfg.Model.Seed = seed })
	set("process-noise", func() { cfg.Model.ProcessNoise = processNoise })
	set("input-noise", func() { cfg.Model.InputNoise = inputNoise })
	set("angle", func() { cfg.Model.Angle = angle })
	set("steps", func() { cfg.Rollout.Steps = steps })
	set("runs", func() { cfg.Rollout.Runs = runs })
	set("controller", func() { cfg.Rollout.Controller = controller })
	set("kp", func() { cfg.Rollout.ControllerParams.Kp = kp })
	set("ki", func() { cfg.Rollout.ControllerParams.Ki = ki })
	set("kd", func() { cfg.Rollout.ControllerParams.Kd = kd })
	set("target", func() { cfg.Rollout.ControllerParams.Target = target })
	set("att-kp", func() { cfg.Rollout.ControllerParams.AttKp = attKp })
	set("att-kd", func() { cfg.Rollout.ControllerParams.AttKd = attKd })
	set("z", func() { cfg.Rollout.InitState.Z = initZ })
	set("pitch", func() { cfg.Rollout.InitState.Pitch = initPitch })
	set("roll", func() { cfg.Rollout.InitState.Roll = initRoll })
	set("log-level", func() { cfg.Logging.Level = logLevel })
	set("log-format", func() { cfg.Logging.Format = logFormat })

	return cfg, cfg.Validate()
}

func runName() string {
	if preset != "" {
		return preset
	}
	return "run"
}

func parseVector(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func stepOnce(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	model, err := cfg.BuildModel()
	if err != nil {
		return err
	}

	x := make(dynamo.State, ionocraft.NumStates)
	if stateArg != "" {
		if x, err = parseVector(stateArg); err != nil {
			return err
		}
	}
	u := model.Equilibrium()
	if inputArg != "" {
		if u, err = parseVector(inputArg); err != nil {
			return err
		}
	}

	next, err := model.Step(x, u)
	if err != nil {
		var dm *dynamo.DimensionMismatchError
		if errors.As(err, &dm) {
			return fmt.Errorf("%w (mode %s)", err, model.Mode())
		}
		return err
	}

	act, err := model.Actuators(u)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, ionocraft.NumStates)
	for _, f := range ionocraft.StateLayout() {
		rows = append(rows, []string{
			f.Name, string(f.Category),
			strconv.FormatFloat(x[f.Index], 'g', 6, 64),
			strconv.FormatFloat(next[f.Index], 'g', 6, 64),
		})
	}
	fmt.Print(viz.Table([]string{"STATE", "CAT", "BEFORE", "AFTER"}, rows))

	fmt.Println()
	actRows := make([][]string, len(act))
	for i, v := range act {
		actRows[i] = []string{fmt.Sprintf("F%d", i+1), strconv.FormatFloat(v, 'g', 6, 64)}
	}
	fmt.Print(viz.Table([]string{"ACTUATOR", "FORCE"}, actRows))
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.L()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(runName(), cfg, nil)
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("running %s (%s, %s, %d steps x %d runs)...\n",
		runName(), cfg.Model.Mode, cfg.Rollout.Controller, cfg.Rollout.Steps, cfg.Rollout.Runs)
	start := time.Now()

	var results []*dynamo.Result
	if cfg.Rollout.Runs > 1 {
		results, err = exp.RunEnsemble(context.Background())
	} else {
		var res *dynamo.Result
		res, err = exp.Run(context.Background())
		results = []*dynamo.Result{res}
	}
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	log.Info("rollouts finished", "runs", len(results), "elapsed", elapsed)

	spec := exp.RunSpec()
	ids := make([]string, 0, len(results))
	for i, res := range results {
		runSpec := spec
		if cfg.Rollout.Runs > 1 {
			runSpec.Seed = cfg.Model.Seed + int64(i)
		}
		runID, err := st.Save(runSpec, res)
		if err != nil {
			return err
		}
		ids = append(ids, runID)
		for _, e := range res.Errors {
			log.Warn("run stopped early", "run", runID, "err", e)
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	if len(results) == 1 {
		fmt.Printf("run id: %s\n", ids[0])
		fmt.Printf("steps: %d\n", results[0].StepsTaken)
		fmt.Println("\nmetrics:")
		for name, val := range results[0].Metrics {
			fmt.Printf("  %s: %.6g\n", name, val)
		}
		return nil
	}

	fmt.Println("run ids:")
	for _, id := range ids {
		fmt.Printf("  %s\n", id)
	}
	fmt.Println()
	fmt.Print(ensembleSummary(results))
	return nil
}

// ensembleSummary tabulates mean and standard deviation of each metric.
func ensembleSummary(results []*dynamo.Result) string {
	names := make([]string, 0)
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	slices.Sort(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		vals := make([]float64, 0, len(results))
		for _, r := range results {
			vals = append(vals, r.Metrics[name])
		}
		mean, std := stat.MeanStdDev(vals, nil)
		rows = append(rows, []string{name, fmt.Sprintf("%.6g", mean), fmt.Sprintf("%.3g", std)})
	}
	return viz.Table([]string{"METRIC", "MEAN", "STD"}, rows)
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

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Controller,
			strconv.Itoa(run.StepsTaken),
			fmt.Sprintf("%.4gs", run.Dt),
			strconv.FormatInt(run.Seed, 10),
		})
	}
	fmt.Print(viz.Table([]string{"ID", "TIME", "MODE", "CTRL", "STEPS", "DT", "SEED"}, rows))
	return nil
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(traj.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("mode: %s  controller: %s\n", meta.Mode, meta.Controller)
	fmt.Printf("samples: %d\n\n", len(traj.States))

	width := terminalWidth() - 12
	if width < 20 {
		width = 20
	}

	for _, name := range strings.Split(plotVars, ",") {
		name = strings.TrimSpace(name)
		idx, ok := columnIndex(traj.StateNames, name)
		if !ok {
			return fmt.Errorf("unknown state %q (available: %v)", name, traj.StateNames)
		}

		data := make([]float64, len(traj.States))
		for i, x := range traj.States {
			data[i] = x[idx]
			if math.IsNaN(data[i]) || math.IsInf(data[i], 0) {
				data[i] = 0
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(width),
			asciigraph.Caption(name+" vs step"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func columnIndex(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traj, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(traj.States) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteCSV(os.Stdout, traj.StateNames, traj.InputNames, traj.Result())
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	res := traj.Result()
	res.Metrics = meta.Metrics
	return storage.ExportJSON(os.Stdout, meta.Spec(), res)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(runName(), cfg, nil)
	if err := exp.Setup(); err != nil {
		return err
	}

	model := exp.Model()
	title := fmt.Sprintf("%s / %s", runName(), cfg.Rollout.Controller)
	return viz.Run(viz.NewLive(model, exp.Controller(), cfg.InitState(), title, model.InputNames()))
}

func listPresets(cmd *cobra.Command, args []string) error {
	rows := make([][]string, 0)
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		rows = append(rows, []string{
			name,
			p.Model.Mode,
			p.Rollout.Controller,
			strconv.Itoa(p.Rollout.Steps),
			strconv.Itoa(p.Rollout.Runs),
			fmt.Sprintf("%g", p.Model.Angle),
			fmt.Sprintf("%g", p.Model.ProcessNoise),
		})
	}
	fmt.Print(viz.Table([]string{"PRESET", "MODE", "CTRL", "STEPS", "RUNS", "ANGLE", "NOISE"}, rows))
	return nil
}

func showLayout(cmd *cobra.Command, args []string) error {
	m, err := ionocraft.ParseMode(mode)
	if err != nil {
		return err
	}

	fieldRows := func(fields []ionocraft.Field) [][]string {
		rows := make([][]string, len(fields))
		for i, f := range fields {
			rows[i] = []string{strconv.Itoa(f.Index), f.Name, string(f.Category)}
		}
		return rows
	}

	fmt.Print(viz.Table([]string{"IDX", "STATE", "CATEGORY"}, fieldRows(ionocraft.StateLayout())))
	fmt.Println()
	fmt.Print(viz.Table([]string{"IDX", "INPUT (" + m.String() + ")", "CATEGORY"}, fieldRows(ionocraft.InputLayout(m))))
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "ionosim.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
