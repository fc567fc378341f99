package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/signalsfoundry/fov-simulator/core"
	"github.com/signalsfoundry/fov-simulator/internal/logging"
	"github.com/signalsfoundry/fov-simulator/internal/observability"
	"github.com/signalsfoundry/fov-simulator/kb"
	"github.com/signalsfoundry/fov-simulator/model"
	"github.com/signalsfoundry/fov-simulator/timectrl"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a JSON scenario file (empty = built-in scenario)")
	mode := flag.String("mode", "default", "built-in scenario when no file is given: default | random-walk")
	steps := flag.Int("steps", 300, "number of steps for the random-walk scenario")
	maxStep := flag.Float64("max-step", 0.5, "maximum per-axis step for the random-walk scenario")
	fovAngle := flag.Float64("fov-angle", 70, "sensor declination from horizontal, degrees")
	fovRadius := flag.Float64("fov-radius", 1.0, "radius of the sensor ground footprint")
	runs := flag.Int("runs", 1, "number of runs to execute")
	seed := flag.Int64("seed", 1, "base random seed; run i uses seed+i")
	tick := flag.Duration("tick", 100*time.Millisecond, "tick interval for the replay")
	accelerated := flag.Bool("accelerated", true, "replay in accelerated mode (vs real-time)")
	replay := flag.Bool("replay", true, "replay the last run step by step")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics (empty = disabled)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewSimCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	scn, err := buildScenario(*scenarioPath, *mode, *steps, *maxStep, core.FOVConfig{
		AngleDegrees: *fovAngle,
		Radius:       *fovRadius,
	})
	if err != nil {
		log.Error(ctx, "failed to build scenario", logging.String("error", err.Error()))
		os.Exit(1)
	}

	store := kb.NewKnowledgeBase()
	engine := core.NewSimulationEngine(store,
		core.WithLogger(log),
		core.WithRunRecorder(collector),
	)

	fmt.Printf("Starting simulation: scenario=%s runs=%d seed=%d fov-angle=%.1f° fov-radius=%.2f\n",
		scn.Name, *runs, *seed, scn.FOV.AngleDegrees, scn.FOV.Radius)

	var last *model.RunData
	for i := 0; i < *runs; i++ {
		run, err := engine.Run(ctx, scn, *seed+int64(i))
		if err != nil {
			fmt.Fprintf(os.Stderr, "run %d failed: %v\n", i, err)
			os.Exit(1)
		}
		rec := run.Record
		fmt.Printf("Run %s: steps=%d hits=%d (%.1f%%) mean-dist=%.2f height=[%.2f, %.2f]\n",
			run.RunID, rec.Steps(), rec.HitCount, rec.HitRatio()*100,
			rec.MeanEuclidean, rec.MinHeight, rec.MaxHeight)
		last = run
	}

	if *replay && last != nil {
		replayRun(last, *tick, *accelerated)
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	fmt.Println("Simulation complete.")
}

// buildScenario resolves the scenario from a file path or the built-in
// presets, applying the FOV flags to presets.
func buildScenario(path, mode string, steps int, maxStep float64, fov core.FOVConfig) (*core.Scenario, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open scenario %q: %w", path, err)
		}
		defer f.Close()
		return core.LoadScenario(f)
	}

	switch mode {
	case "default":
		scn := core.DefaultScenario()
		scn.FOV = fov
		return scn, scn.Validate()
	case "random-walk", "random_walk":
		scn := core.RandomWalkScenario(steps, maxStep, fov)
		return scn, scn.Validate()
	default:
		return nil, fmt.Errorf("unknown built-in scenario mode %q", mode)
	}
}

// replayRun walks a completed run step by step through the tick
// controller, printing each step's poses and detection outcome.
func replayRun(run *model.RunData, tick time.Duration, accelerated bool) {
	mode := timectrl.RealTime
	if accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(run.CompletedAt, tick, mode)

	tc.AddListener(func(step int, simTime time.Time) {
		uav := run.UAVRoute[step]
		target := run.TargetRoute[step]
		fov := run.FOVRoute[step]
		outcome := "miss"
		if run.Record.Hits[step] {
			outcome = "HIT"
		}
		fmt.Printf("[%s] step=%-4d uav=(%.2f, %.2f, %.2f) target=(%.2f, %.2f) fov=(%.2f, %.2f) dist=%.2f %s\n",
			simTime.Format(time.RFC3339), step,
			uav.X, uav.Y, uav.Z,
			target.X, target.Y,
			fov.X, fov.Y,
			run.Record.Euclidean[step], outcome)
	})

	done := tc.Start(run.Record.Steps())
	<-done
}

func serveMetrics(addr string, collector *observability.SimCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()
	return srv
}
