package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func report(mode ExecutionMode, seconds float64, workers, jobs int) ExecutionReport {
	return ExecutionReport{
		Mode:    mode,
		Elapsed: time.Duration(seconds * float64(time.Second)),
		Workers: workers,
		Jobs:    jobs,
	}
}

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(
		report(ExecutionModeSequential, 40, 1, 10),
		report(ExecutionModeParallel, 10, 8, 10),
	)

	assert.InDelta(t, 40.0, m.SeqTime, 1e-9)
	assert.InDelta(t, 10.0, m.ParTime, 1e-9)
	assert.InDelta(t, 4.0, m.Speedup, 1e-9)
	assert.InDelta(t, 30.0, m.TimeSaved, 1e-9)
	assert.InDelta(t, 75.0, m.PercentFaster, 1e-9)
	assert.InDelta(t, 50.0, m.Efficiency, 1e-9)
	assert.InDelta(t, 4.0, m.SeqPerSegment, 1e-9)
	assert.InDelta(t, 1.0, m.ParPerSegment, 1e-9)
	assert.Equal(t, 8, m.Workers)
	assert.Equal(t, 10, m.NumSegments)
}

func TestComputeMetrics_Guards(t *testing.T) {
	tests := []struct {
		name string
		seq  ExecutionReport
		par  ExecutionReport
		want Metrics
	}{
		{
			name: "zero parallel time reports zero speedup",
			seq:  report(ExecutionModeSequential, 5, 1, 5),
			par:  report(ExecutionModeParallel, 0, 4, 5),
			want: Metrics{SeqTime: 5, Workers: 4, NumSegments: 5, TimeSaved: 5, PercentFaster: 100, SeqPerSegment: 1},
		},
		{
			name: "zero sequential time reports zero percent",
			seq:  report(ExecutionModeSequential, 0, 1, 2),
			par:  report(ExecutionModeParallel, 2, 2, 2),
			want: Metrics{ParTime: 2, Workers: 2, NumSegments: 2, TimeSaved: -2, ParPerSegment: 1},
		},
		{
			name: "zero workers reports zero efficiency",
			seq:  report(ExecutionModeSequential, 4, 1, 2),
			par:  report(ExecutionModeParallel, 2, 0, 2),
			want: Metrics{SeqTime: 4, ParTime: 2, NumSegments: 2, Speedup: 2, TimeSaved: 2, PercentFaster: 50, SeqPerSegment: 2, ParPerSegment: 1},
		},
		{
			name: "zero jobs reports zero per-segment times",
			seq:  report(ExecutionModeSequential, 0, 1, 0),
			par:  report(ExecutionModeParallel, 0, 0, 0),
			want: Metrics{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeMetrics(tt.seq, tt.par))
		})
	}
}

func TestMetrics_Interpret(t *testing.T) {
	tests := []struct {
		speedup float64
		want    InsightLevel
	}{
		{speedup: 3.2, want: InsightExcellent},
		{speedup: 1.51, want: InsightExcellent},
		{speedup: 1.5, want: InsightGood},
		{speedup: 1.01, want: InsightGood},
		{speedup: 1, want: InsightLimited},
		{speedup: 0, want: InsightLimited},
	}

	for _, tt := range tests {
		insight := Metrics{Speedup: tt.speedup}.Interpret()
		assert.Equal(t, tt.want, insight.Level, "speedup %v", tt.speedup)
		assert.NotEmpty(t, insight.Message)
	}
}
