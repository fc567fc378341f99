package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/fov-simulator/model"
)

// SimCollector bundles Prometheus metrics for the simulation engine and
// provides a ready-to-use /metrics handler.
type SimCollector struct {
	gatherer prometheus.Gatherer

	RunsTotal      *prometheus.CounterVec
	RunDurations   prometheus.Histogram
	DetectionSteps *prometheus.CounterVec
	RouteSteps     prometheus.Histogram

	ScenarioAgents  prometheus.Gauge
	LastRunHitRatio prometheus.Gauge
}

// NewSimCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_runs_total",
		Help: "Total number of simulation runs, labeled by outcome.",
	}, []string{"status"})
	runs, err := registerCounterVec(reg, runs, "sim_runs_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_run_duration_seconds",
		Help:    "Wall-clock duration of a simulation run in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}), "sim_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	detections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_detection_steps_total",
		Help: "Total number of evaluated detection steps, labeled hit or miss.",
	}, []string{"result"})
	detections, err = registerCounterVec(reg, detections, "sim_detection_steps_total")
	if err != nil {
		return nil, err
	}

	routeSteps, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_route_steps",
		Help:    "Number of steps in generated routes.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	}), "sim_route_steps")
	if err != nil {
		return nil, err
	}

	agents, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_scenario_agents",
		Help: "Current number of agents in the knowledge base.",
	}), "sim_scenario_agents")
	if err != nil {
		return nil, err
	}
	hitRatio, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_last_run_hit_ratio",
		Help: "Fraction of steps with the target inside the FOV on the most recent run.",
	}), "sim_last_run_hit_ratio")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:        gatherer,
		RunsTotal:       runs,
		RunDurations:    durations,
		DetectionSteps:  detections,
		RouteSteps:      routeSteps,
		ScenarioAgents:  agents,
		LastRunHitRatio: hitRatio,
	}, nil
}

// ObserveRun records the outcome of a completed run. Satisfies the
// RunRecorder interface the simulation engine accepts, so the engine can
// drive metrics without depending on Prometheus directly.
func (c *SimCollector) ObserveRun(d time.Duration, rec *model.DetectionRecord) {
	if c == nil || rec == nil {
		return
	}
	if c.RunsTotal != nil {
		c.RunsTotal.WithLabelValues("completed").Inc()
	}
	if c.RunDurations != nil {
		c.RunDurations.Observe(d.Seconds())
	}
	if c.DetectionSteps != nil {
		misses := rec.Steps() - rec.HitCount
		c.DetectionSteps.WithLabelValues("hit").Add(float64(rec.HitCount))
		c.DetectionSteps.WithLabelValues("miss").Add(float64(misses))
	}
	if c.RouteSteps != nil {
		c.RouteSteps.Observe(float64(rec.Steps()))
	}
	if c.LastRunHitRatio != nil {
		c.LastRunHitRatio.Set(rec.HitRatio())
	}
}

// ObserveRunFailure records a run that errored before producing a record.
func (c *SimCollector) ObserveRunFailure() {
	if c == nil || c.RunsTotal == nil {
		return
	}
	c.RunsTotal.WithLabelValues("failed").Inc()
}

// SetAgentCount drives the agent gauge from KB mutations.
func (c *SimCollector) SetAgentCount(n int) {
	if c == nil || c.ScenarioAgents == nil {
		return
	}
	c.ScenarioAgents.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
