package domain

import "fmt"

// Metrics compares a sequential and a parallel execution of the same segment set.
// Times are in seconds.
type Metrics struct {
	SeqTime       float64 `json:"seq_time"`
	ParTime       float64 `json:"par_time"`
	Workers       int     `json:"workers"`
	NumSegments   int     `json:"num_segments"`
	Speedup       float64 `json:"speedup"`
	TimeSaved     float64 `json:"time_saved"`
	PercentFaster float64 `json:"percent_faster"`
	Efficiency    float64 `json:"efficiency"`
	SeqPerSegment float64 `json:"seq_per_segment"`
	ParPerSegment float64 `json:"par_per_segment"`
}

// ComputeMetrics derives the benchmark numbers from two reports. Every division is
// guarded and yields 0 instead of Inf/NaN.
func ComputeMetrics(seq, par ExecutionReport) Metrics {
	seqTime := seq.Seconds()
	parTime := par.Seconds()

	numSegments := par.Jobs
	if numSegments == 0 {
		numSegments = seq.Jobs
	}

	m := Metrics{
		SeqTime:     seqTime,
		ParTime:     parTime,
		Workers:     par.Workers,
		NumSegments: numSegments,
		TimeSaved:   seqTime - parTime,
	}

	if parTime > 0 {
		m.Speedup = seqTime / parTime
	}
	if seqTime > 0 {
		m.PercentFaster = m.TimeSaved / seqTime * 100
	}
	if par.Workers > 0 {
		m.Efficiency = m.Speedup / float64(par.Workers) * 100
	}
	if numSegments > 0 {
		m.SeqPerSegment = seqTime / float64(numSegments)
		m.ParPerSegment = parTime / float64(numSegments)
	}
	return m
}

type InsightLevel string

const (
	InsightExcellent InsightLevel = "excellent"
	InsightGood      InsightLevel = "good"
	InsightLimited   InsightLevel = "limited"
)

type Insight struct {
	Level   InsightLevel `json:"level"`
	Message string       `json:"message"`
}

// Interpret classifies a speedup: above 1.5x is excellent, above 1x good, anything else limited.
func (m Metrics) Interpret() Insight {
	switch {
	case m.Speedup > 1.5:
		return Insight{
			Level: InsightExcellent,
			Message: fmt.Sprintf("parallel run was %.2fx faster, saving %.2fs (%.1f%% improvement)",
				m.Speedup, m.TimeSaved, m.PercentFaster),
		}
	case m.Speedup > 1:
		return Insight{
			Level: InsightGood,
			Message: fmt.Sprintf("parallel run was %.2fx faster, saving %.2fs; longer assets or more segments should scale better",
				m.Speedup, m.TimeSaved),
		}
	default:
		return Insight{
			Level: InsightLimited,
			Message: fmt.Sprintf("minimal improvement (speedup %.2fx): the asset is short, there are too few segments, or process overhead dominates",
				m.Speedup),
		}
	}
}
