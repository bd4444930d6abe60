package domain

import "time"

// Asset is a source media reference and its total duration in seconds.
type Asset struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration"`
}

// Segment is a contiguous time slice [Start, End) of an asset.
type Segment struct {
	Index      int     `json:"index"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	SourcePath string  `json:"source_path"`
	Path       string  `json:"path"`
}

func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Job is a unit of work submitted to an executor, 1:1 with a Segment.
type Job struct {
	Segment    Segment
	OutputPath string
}

type ProcessingResult struct {
	Index      int    `json:"index"`
	OutputPath string `json:"output_path"`
	Err        error  `json:"-"`
}

func (r ProcessingResult) Succeeded() bool {
	return r.Err == nil
}

type ExecutionMode string

const (
	ExecutionModeSequential ExecutionMode = "sequential"
	ExecutionModeParallel   ExecutionMode = "parallel"
)

// ExecutionReport records one executor run. It is not mutated after the executor returns it.
type ExecutionReport struct {
	Mode    ExecutionMode `json:"mode"`
	Elapsed time.Duration `json:"elapsed"`
	Workers int           `json:"workers"`
	Jobs    int           `json:"jobs"`
}

// Seconds returns the elapsed time as float seconds.
func (r ExecutionReport) Seconds() float64 {
	return r.Elapsed.Seconds()
}

// NewJobs pairs every segment with its output path inside outDir.
func NewJobs(segments []Segment, outDir, ext string) []Job {
	jobs := make([]Job, len(segments))
	for i, seg := range segments {
		jobs[i] = Job{
			Segment:    seg,
			OutputPath: SegmentPath(outDir, seg.Index, ext),
		}
	}
	return jobs
}
