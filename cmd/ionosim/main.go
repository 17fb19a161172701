package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/ionosim/internal/config"
	"github.com/san-kum/ionosim/internal/logger"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFormat  string

	mode         string
	dt           float64
	steps        int
	runs         int
	seed         int64
	controller   string
	kp           float64
	ki           float64
	kd           float64
	target       float64
	attKp        float64
	attKd        float64
	processNoise float64
	inputNoise   float64
	angle        float64
	initZ        float64
	initPitch    float64
	initRoll     float64

	stateArg string
	inputArg string
	plotVars string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ionosim",
		Short:         "ionocraft rigid-body simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".ionosim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "console", "log format (console, text, json)")

	stepCmd := &cobra.Command{
		Use:   "step",
		Short: "advance one state by a single timestep",
		RunE:  stepOnce,
	}
	addModelFlags(stepCmd)
	stepCmd.Flags().StringVar(&stateArg, "state", "", "comma separated 15-component state (default zero)")
	stepCmd.Flags().StringVar(&inputArg, "input", "", "comma separated input (default equilibrium)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed-loop rollout and store it",
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	addRolloutFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot state components of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotVars, "vars", "Z,pitch,roll", "comma separated state names")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a stored trajectory as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a stored run as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a rollout with live terminal visualization",
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	addRolloutFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "show the state and input layout",
		RunE:  showLayout,
	}
	layoutCmd.Flags().StringVar(&mode, "mode", "three_input", "input mode (three_input, four_input)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default (or --preset) config to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(stepCmd, runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd,
		liveCmd, presetsCmd, layoutCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&mode, "mode", "three_input", "input mode (three_input, four_input)")
	f.Float64Var(&dt, "dt", 0.001, "timestep")
	f.Int64Var(&seed, "seed", 0, "noise seed (0 draws a random seed)")
	f.Float64Var(&processNoise, "process-noise", 0, "process noise std-dev")
	f.Float64Var(&inputNoise, "input-noise", 0, "input noise std-dev")
	f.Float64Var(&angle, "angle", 0, "thruster cant angle (rad)")
}

func addRolloutFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&steps, "steps", 2000, "number of steps")
	f.IntVar(&runs, "runs", 1, "number of seeded runs")
	f.StringVar(&controller, "controller", "hover", "controller (none, hover, constant, pid, attitude)")
	f.Float64Var(&kp, "kp", 1.675e-3, "altitude pid kp")
	f.Float64Var(&ki, "ki", 0, "altitude pid ki")
	f.Float64Var(&kd, "kd", 4.7e-4, "altitude pid kd")
	f.Float64Var(&target, "target", 0, "altitude pid target Z")
	f.Float64Var(&attKp, "att-kp", 2.2e-3, "attitude kp")
	f.Float64Var(&attKd, "att-kd", 1.6e-4, "attitude kd")
	f.Float64Var(&initZ, "z", 0, "initial Z")
	f.Float64Var(&initPitch, "pitch", 0, "initial pitch (rad)")
	f.Float64Var(&initRoll, "roll", 0, "initial roll (rad)")
}

// initLogging takes the logging section from the config file unless the
// flags were set explicitly.
func initLogging(cmd *cobra.Command) error {
	logging := config.LoggingConfig{Level: logLevel, Format: logFormat}
	if configFile != "" {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		logging = cfg.Logging
	}
	logger.Init(logging.LoggerConfig())
	return nil
}
