package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/spinsim/internal/config"
	"github.com/san-kum/spinsim/internal/session"
	"github.com/san-kum/spinsim/internal/store"
	"github.com/san-kum/spinsim/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	power      float64
	seed       int64
	// Physics overrides
	outerFriction float64
	outerInertia  float64
	clutchRatio   float64
)

// main registers the spinsim commands. Running with no subcommand
// launches the interactive wheel.
func main() {
	rootCmd := &cobra.Command{
		Use:   "spinsim",
		Short: "spinner wheel physics lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spinsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "preset configuration")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	spinCmd := &cobra.Command{
		Use:   "spin",
		Short: "run one headless spin to rest",
		RunE:  runSpin,
	}
	spinCmd.Flags().Float64Var(&power, "power", 0.75, "power meter release value [0,1]")
	spinCmd.Flags().Float64Var(&outerFriction, "friction", config.DefaultOuterFriction, "outer wheel friction coefficient")
	spinCmd.Flags().Float64Var(&outerInertia, "inertia", config.DefaultOuterInertia, "outer wheel moment of inertia")
	spinCmd.Flags().Float64Var(&clutchRatio, "clutch", config.DefaultClutchRatio, "inner wheel clutch ratio")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive wheel with live visualization",
		RunE:  runLive,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored spins",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a spin's trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export spin metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a spin's trace as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(spinCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig layers preset, config file, and CLI overrides, in that
// order of increasing precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("friction") {
		cfg.Outer.Friction = outerFriction
	}
	if cmd.Flags().Changed("inertia") {
		cfg.Outer.Inertia = outerInertia
	}
	if cmd.Flags().Changed("clutch") {
		cfg.Inner.ClutchRatio = clutchRatio
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}

	return cfg, nil
}

func runSpin(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sess, err := session.New(cfg.SessionOptions())
	if err != nil {
		return err
	}

	fmt.Printf("spinning at power %.2f...\n", power)
	start := time.Now()

	res, err := sess.Spin(context.Background(), power)
	if err != nil {
		return err
	}

	runID, err := st.Save(preset, cfg.Seed, res)
	if err != nil {
		return err
	}

	fmt.Printf("settled in %.2fs of wheel time (%v wall)\n", res.Duration, time.Since(start).Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("substeps: %d\n", res.Steps)
	fmt.Printf("final angle: %.4f rad\n", res.FinalAngle)
	fmt.Printf("landed: %s\n", res.Landed.Label)
	fmt.Printf("drawn: %s (payout x%d)\n", res.Drawn.Label, res.Drawn.Payout)
	if !res.Completed {
		fmt.Println("warning: wheel did not settle before the time cap")
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sess, err := session.New(cfg.SessionOptions())
	if err != nil {
		return err
	}

	return tui.Run(sess, cfg.Seed)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no spins found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPOWER\tDURATION\tLANDED\tDRAWN\tPAYOUT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2fs\t%s\t%s\tx%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Power,
			run.Duration,
			run.Landed,
			run.Drawn,
			run.Payout,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no trace data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("power: %.2f  landed: %s  drawn: %s\n", meta.Power, meta.Landed, meta.Drawn)
	fmt.Printf("samples: %d\n\n", len(frames))

	series := []struct {
		caption string
		value   func(f session.Frame) float64
	}{
		{"outer angular velocity (rad/s)", func(f session.Frame) float64 { return f.OuterVelocity }},
		{"inner angular velocity (rad/s)", func(f session.Frame) float64 { return f.InnerVelocity }},
		{"outer angle (rad)", func(f session.Frame) float64 { return f.OuterAngle }},
	}

	for _, s := range series {
		data := make([]float64, len(frames))
		for i, f := range frames {
			data[i] = s.value(f)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	frames, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "outer_angle", "outer_velocity", "inner_angle", "inner_velocity"}); err != nil {
		return err
	}
	for _, f := range frames {
		row := []string{
			strconv.FormatFloat(f.Time, 'f', 6, 64),
			strconv.FormatFloat(f.OuterAngle, 'f', 6, 64),
			strconv.FormatFloat(f.OuterVelocity, 'f', 6, 64),
			strconv.FormatFloat(f.InnerAngle, 'f', 6, 64),
			strconv.FormatFloat(f.InnerVelocity, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
