package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProgressEvent is one point of a phase's progress stream. Fraction is in [0,1] and never
// decreases within a phase; a new phase starts again from 0.
type ProgressEvent struct {
	RunID    string        `json:"run_id"`
	Phase    PipelineState `json:"phase"`
	Fraction float64       `json:"fraction"`
	Message  string        `json:"message,omitempty"`
}

// Run is the persisted record of one pipeline execution, successful or not.
type Run struct {
	ID                       string          `json:"id"`
	AssetPath                string          `json:"asset_path"`
	AssetDuration            float64         `json:"asset_duration"`
	TargetSegmentDuration    float64         `json:"target_segment_duration"`
	EffectiveSegmentDuration float64         `json:"effective_segment_duration"`
	NumSegments              int             `json:"num_segments"`
	Sequential               ExecutionReport `json:"sequential"`
	Parallel                 ExecutionReport `json:"parallel"`
	Metrics                  Metrics         `json:"metrics"`
	Insight                  Insight         `json:"insight"`
	OutputPath               string          `json:"output_path"`
	OutputDuration           float64         `json:"output_duration"`
	OutputSize               int64           `json:"output_size"`
	Equivalent               bool            `json:"equivalent"`
	Mismatches               []int           `json:"mismatches,omitempty"`
	State                    PipelineState   `json:"state"`
	ErrorMessage             string          `json:"error_message,omitempty"`
	StartedAt                time.Time       `json:"started_at"`
	FinishedAt               time.Time       `json:"finished_at"`
}

func NewRun(assetPath string, targetSegmentDuration float64) *Run {
	return &Run{
		ID:                    uuid.NewString(),
		AssetPath:             assetPath,
		TargetSegmentDuration: targetSegmentDuration,
		State:                 StateIdle,
		StartedAt:             time.Now(),
	}
}

// MarkAsReported stores the final artifact and the derived metrics.
func (r *Run) MarkAsReported(outputPath string, outputDuration float64, outputSize int64) {
	r.State = StateReported
	r.OutputPath = outputPath
	r.OutputDuration = outputDuration
	r.OutputSize = outputSize
	r.Metrics = ComputeMetrics(r.Sequential, r.Parallel)
	r.Insight = r.Metrics.Interpret()
	r.FinishedAt = time.Now()
}

func (r *Run) MarkAsFailed(err error) {
	r.State = StateFailed
	r.ErrorMessage = err.Error()
	r.FinishedAt = time.Now()
}

func (r *Run) Succeeded() bool {
	return r.State == StateReported
}

// DurationDrift is the absolute difference between merged output and source durations.
func (r *Run) DurationDrift() float64 {
	d := r.OutputDuration - r.AssetDuration
	if d < 0 {
		return -d
	}
	return d
}
