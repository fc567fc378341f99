package model

import "time"

// DetectionRecord is the per-run detection output: one hit flag and two
// distance samples per step, plus run summary scalars. It is produced once
// per completed run and never mutated afterwards.
type DetectionRecord struct {
	// Per-step series, all of equal length.
	Hits      []bool    `json:"hits"`
	Euclidean []float64 `json:"euclidean"`
	Manhattan []float64 `json:"manhattan"`

	// FOV parameters the record was computed against.
	FOVRadius       float64 `json:"fov_radius"`
	FOVAngleDegrees float64 `json:"fov_angle_degrees"`

	// Altitude bounds of the airborne route over the whole run.
	MinHeight float64 `json:"min_height"`
	MaxHeight float64 `json:"max_height"`

	// Summary statistics over the per-step series.
	HitCount      int     `json:"hit_count"`
	MeanEuclidean float64 `json:"mean_euclidean"`
	MeanManhattan float64 `json:"mean_manhattan"`
}

// Steps returns the number of simulated steps covered by the record.
func (r *DetectionRecord) Steps() int { return len(r.Hits) }

// HitRatio returns the fraction of steps on which the target was inside
// the FOV footprint, or 0 for an empty record.
func (r *DetectionRecord) HitRatio() float64 {
	if len(r.Hits) == 0 {
		return 0
	}
	return float64(r.HitCount) / float64(len(r.Hits))
}

// RunData bundles everything a completed run produced: the four routes and
// the detection record. It mirrors what the presentation layer consumes.
type RunData struct {
	RunID       string    `json:"run_id"`
	CompletedAt time.Time `json:"completed_at"`

	UAVRoute    Route `json:"uav_route"`
	TargetRoute Route `json:"target_route"`
	GroundTrace Route `json:"ground_trace"`
	FOVRoute    Route `json:"fov_route"`

	Record *DetectionRecord `json:"record"`
}
