package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/tvcsim/internal/config"
	"github.com/san-kum/tvcsim/internal/export"
	"github.com/san-kum/tvcsim/internal/flight"
	"github.com/san-kum/tvcsim/internal/integrators"
	"github.com/san-kum/tvcsim/internal/recorder"
	"github.com/san-kum/tvcsim/internal/storage"
	"github.com/san-kum/tvcsim/internal/tui"
	"github.com/san-kum/tvcsim/internal/vehicle"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	throttle   float64
	gimbalXDeg float64
	gimbalYDeg float64
	stageAt    float64
	outPath    string
	svgPath    string
	replayFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tvcsim",
		Short: "thrust-vector control flight simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			// default to the interactive session
			return runLive(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".tvcsim", "data directory")

	flyCmd := &cobra.Command{
		Use:   "fly",
		Short: "run a scripted flight and archive it",
		RunE:  runFly,
	}
	flyCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	flyCmd.Flags().StringVar(&preset, "preset", "", "preset configuration ("+strings.Join(config.ListPresets(), ", ")+")")
	flyCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	flyCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "flight duration")
	flyCmd.Flags().Float64Var(&throttle, "throttle", 1.0, "throttle [0..1]")
	flyCmd.Flags().Float64Var(&gimbalXDeg, "gimbal-x", 0, "gimbal x deflection (degrees)")
	flyCmd.Flags().Float64Var(&gimbalYDeg, "gimbal-y", 0, "gimbal y deflection (degrees)")
	flyCmd.Flags().Float64Var(&stageAt, "stage-at", -1, "stage separation time (seconds, <0 disables)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive flight with live HUD",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list archived flights",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot altitude and speed of an archived flight",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay an archived flight from its log (no re-simulation)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  replayRun,
	}
	replayCmd.Flags().StringVar(&replayFile, "file", "", "replay a CSV file instead of an archived run")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export an archived flight log",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "CSV output path")
	exportCmd.Flags().StringVar(&svgPath, "svg", "", "trajectory SVG output path")

	rootCmd.AddCommand(flyCmd, liveCmd, listCmd, plotCmd, replayCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (have: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override preset and config file
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("throttle") {
		cfg.Control.Throttle = throttle
	}
	if cmd.Flags().Changed("gimbal-x") {
		cfg.Control.GimbalXDeg = gimbalXDeg
	}
	if cmd.Flags().Changed("gimbal-y") {
		cfg.Control.GimbalYDeg = gimbalYDeg
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildController(cfg *config.Config) (*flight.Controller, error) {
	ctrl := flight.New(cfg.BuildVehicle(), integrators.NewRK4(), cfg.FlightOptions())
	ctrl.SetThrottle(cfg.Control.Throttle)
	gx := cfg.Control.GimbalXDeg * math.Pi / 180
	gy := cfg.Control.GimbalYDeg * math.Pi / 180
	if err := ctrl.SetGimbal(gx, gy); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func runFly(cmd *cobra.Command, args []string) error {
	logger := zap.Must(zap.NewDevelopment())
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctrl, err := buildController(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if err := ctrl.Start(); err != nil {
		return err
	}

	log.Infow("flight started",
		"dt", cfg.Dt,
		"duration", cfg.Duration,
		"throttle", cfg.Control.Throttle,
		"gimbal_x_deg", cfg.Control.GimbalXDeg,
		"gimbal_y_deg", cfg.Control.GimbalYDeg,
	)

	steps := int(cfg.Duration / cfg.Dt)
	staged := false
	for i := 0; i < steps; i++ {
		if !staged && stageAt >= 0 && ctrl.Snapshot().T >= stageAt {
			ctrl.Stage()
			staged = true
			log.Infow("stage separation", "t", ctrl.Snapshot().T)
		}
		if err := ctrl.Tick(); err != nil {
			log.Warnw("step rejected", "error", err)
			break
		}
		if ctrl.Phase() != flight.PhaseRunning {
			break
		}
	}

	snap := ctrl.Snapshot()
	if snap.Contact != nil && snap.Contact.Hard {
		log.Warnw("hard landing", "impact_speed", snap.Contact.Speed)
	}

	veh := cfg.BuildVehicle()
	runID, err := st.Save(preset, cfg.Dt, veh.GetParams(), snap.Stats, historyRecorder(ctrl))
	if err != nil {
		return err
	}

	log.Infow("flight archived",
		"run_id", runID,
		"steps", snap.Stats.Steps,
		"elapsed", snap.Stats.Elapsed,
		"max_altitude", snap.Stats.MaxAltitude,
		"max_speed", snap.Stats.MaxSpeed,
		"distance", snap.Stats.Distance,
		"mass_spent", snap.Stats.MassSpent,
	)
	return nil
}

// historyRecorder rebuilds a recorder from the controller's log so the
// archive writes exactly what was recorded in flight.
func historyRecorder(ctrl *flight.Controller) *recorder.Recorder {
	rec := recorder.New()
	for _, e := range ctrl.History() {
		rec.Append(e.T, e.State)
	}
	for _, ev := range ctrl.StageEvents() {
		s := make([]float64, vehicle.StateSize)
		s[vehicle.PosX], s[vehicle.PosY], s[vehicle.PosZ] = ev.Position[0], ev.Position[1], ev.Position[2]
		rec.MarkStage(ev.T, s)
	}
	return rec
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctrl, err := buildController(cfg)
	if err != nil {
		return err
	}

	return tui.Run(ctrl)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no archived flights")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPRESET\tSTEPS\tMAX ALT\tMAX SPEED\tDISTANCE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f\t%.1f\t%.1f\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Preset,
			r.Steps,
			r.Stats.MaxAltitude,
			r.Stats.MaxSpeed,
			r.Stats.Distance,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	rec, err := st.LoadFlight(args[0])
	if err != nil {
		return err
	}

	entries := rec.History()
	if len(entries) < 2 {
		return fmt.Errorf("run %s has too few entries to plot", args[0])
	}

	altitude := make([]float64, len(entries))
	speed := make([]float64, len(entries))
	for i, e := range entries {
		altitude[i] = vehicle.Altitude(e.State)
		speed[i] = vehicle.Speed(e.State)
	}

	fmt.Println(asciigraph.Plot(altitude, asciigraph.Height(12), asciigraph.Width(72), asciigraph.Caption("altitude (m)")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(speed, asciigraph.Height(12), asciigraph.Width(72), asciigraph.Caption("speed (m/s)")))
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	var rec *recorder.Recorder
	var err error

	switch {
	case replayFile != "":
		rec, err = recorder.ImportFile(replayFile)
	case len(args) == 1:
		rec, err = storage.New(dataDir).LoadFlight(args[0])
	default:
		return fmt.Errorf("provide a run id or --file")
	}
	if err != nil {
		return err
	}

	pb := recorder.NewPlayback(rec.History())
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "T\tALT\tSPEED\tMASS")

	// print every tenth snapshot plus the final one
	i := 0
	for {
		e, ok := pb.Next()
		if !ok {
			break
		}
		if i%10 == 0 || pb.Done() {
			fmt.Fprintf(w, "%.2f\t%.2f\t%.2f\t%.2f\n",
				e.T,
				vehicle.Altitude(e.State),
				vehicle.Speed(e.State),
				e.State[vehicle.Mass],
			)
		}
		i++
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("replayed %d snapshots\n", pb.Len())
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	rec, err := st.LoadFlight(args[0])
	if err != nil {
		return err
	}

	if outPath == "" && svgPath == "" {
		return fmt.Errorf("provide --out and/or --svg")
	}

	if outPath != "" {
		if err := rec.ExportFile(outPath); err != nil {
			return err
		}
		fmt.Printf("exported %d snapshots to %s\n", rec.Len(), outPath)
	}

	if svgPath != "" {
		if err := export.WriteTrajectorySVG(svgPath, rec.History(), rec.StageEvents(), 800, 600); err != nil {
			return err
		}
		fmt.Printf("wrote trajectory to %s\n", svgPath)
	}

	return nil
}
