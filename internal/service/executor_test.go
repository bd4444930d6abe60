package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/port/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSequentialExecutor_Run(t *testing.T) {
	dir := t.TempDir()
	segments, err := materialize(dir, 4)
	require.NoError(t, err)
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0755))

	codec := newFakeCodec(4)
	rec := &recorder{}
	exec := NewSequentialExecutor(codec, codec.Extension())

	results, report, err := exec.Run(context.Background(), segments, outDir, phaseProgress(rec, "run", domain.StateSequentialRun))
	require.NoError(t, err)

	require.Len(t, results, 4)
	for i, res := range results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, domain.SegmentPath(outDir, i, ".mp4"), res.OutputPath)
		assert.FileExists(t, res.OutputPath)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, codec.completionOrder())
	assert.Equal(t, domain.ExecutionModeSequential, report.Mode)
	assert.Equal(t, 1, report.Workers)
	assert.Equal(t, 4, report.Jobs)
	assert.Positive(t, report.Elapsed)

	events := rec.phase(domain.StateSequentialRun)
	require.Len(t, events, 4)
	assert.Equal(t, 0.25, events[0].Fraction)
	assert.Equal(t, 1.0, events[3].Fraction)
}

func TestSequentialExecutor_TransformFailure(t *testing.T) {
	dir := t.TempDir()
	segments, err := materialize(dir, 5)
	require.NoError(t, err)

	codec := mocks.NewMediaCodecMock(t)
	codec.EXPECT().Transform(mock.Anything, segments[0].Path, mock.Anything).Return(nil).Once()
	codec.EXPECT().Transform(mock.Anything, segments[1].Path, mock.Anything).Return(nil).Once()
	codec.EXPECT().Transform(mock.Anything, segments[2].Path, mock.Anything).Return(errors.New("exit status 1")).Once()

	exec := NewSequentialExecutor(codec, ".mp4")
	results, _, err := exec.Run(context.Background(), segments, dir, nil)

	assert.Nil(t, results)
	assert.ErrorIs(t, err, domain.ErrTransform)
	var segErr *domain.SegmentError
	require.ErrorAs(t, err, &segErr)
	assert.Equal(t, 2, segErr.Index)
}

func TestParallelExecutor_OrderedUnderShuffledCompletion(t *testing.T) {
	dir := t.TempDir()
	segments, err := materialize(dir, 8)
	require.NoError(t, err)
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0755))

	codec := newFakeCodec(8)
	// reversed and interleaved delays
	delays := []int{40, 5, 30, 0, 25, 10, 35, 15}
	codec.delay = func(i int) time.Duration { return time.Duration(delays[i]) * time.Millisecond }

	rec := &recorder{}
	exec := NewParallelExecutor(codec, codec.Extension(), 8)
	results, report, err := exec.Run(context.Background(), segments, outDir, phaseProgress(rec, "run", domain.StateParallelRun))
	require.NoError(t, err)

	require.Len(t, results, 8)
	for i, res := range results {
		assert.Equal(t, i, res.Index, "results follow submission order")
		assert.Equal(t, domain.SegmentPath(outDir, i, ".mp4"), res.OutputPath)
	}
	assert.NotEqual(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, codec.completionOrder(), "completion order was shuffled")

	assert.Equal(t, domain.ExecutionModeParallel, report.Mode)
	assert.Equal(t, 8, report.Workers)
	assert.Equal(t, 8, report.Jobs)
	assert.LessOrEqual(t, codec.maxActive.Load(), int32(8))

	events := rec.phase(domain.StateParallelRun)
	require.NotEmpty(t, events)
	assert.Equal(t, 1.0, events[len(events)-1].Fraction)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Fraction, events[i-1].Fraction)
	}
}

func TestParallelExecutor_WorkerCount(t *testing.T) {
	tests := []struct {
		name       string
		maxWorkers int
		jobs       int
		want       int
	}{
		{name: "capped by jobs", maxWorkers: 8, jobs: 3, want: 3},
		{name: "capped by workers", maxWorkers: 2, jobs: 10, want: 2},
		{name: "equal", maxWorkers: 4, jobs: 4, want: 4},
		{name: "no jobs", maxWorkers: 4, jobs: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := NewParallelExecutor(nil, ".mp4", tt.maxWorkers)
			assert.Equal(t, tt.want, exec.WorkerCount(tt.jobs))
		})
	}

	t.Run("auto detects cpus", func(t *testing.T) {
		exec := NewParallelExecutor(nil, ".mp4", 0)
		available := AvailableParallelism()
		assert.GreaterOrEqual(t, available, 1)
		assert.Equal(t, min(available, 1000), exec.WorkerCount(1000))
		assert.Equal(t, 1, exec.WorkerCount(1))
	})
}

func TestParallelExecutor_FailFast(t *testing.T) {
	for _, workers := range []int{1, 3} {
		t.Run("workers", func(t *testing.T) {
			dir := t.TempDir()
			segments, err := materialize(dir, 5)
			require.NoError(t, err)
			outDir := filepath.Join(dir, "out")
			require.NoError(t, os.Mkdir(outDir, 0755))

			codec := newFakeCodec(5)
			codec.failAt = 2
			codec.blockAfterFail = true

			exec := NewParallelExecutor(codec, codec.Extension(), workers)
			results, _, err := exec.Run(context.Background(), segments, outDir, nil)

			assert.Nil(t, results)
			assert.ErrorIs(t, err, domain.ErrTransform)
			var segErr *domain.SegmentError
			require.ErrorAs(t, err, &segErr)
			assert.Equal(t, 2, segErr.Index)

			for _, i := range []int{2, 3, 4} {
				assert.NoFileExists(t, domain.SegmentPath(outDir, i, ".mp4"))
			}
		})
	}
}

func TestParallelExecutor_NoSegments(t *testing.T) {
	exec := NewParallelExecutor(newFakeCodec(0), ".mp4", 4)
	results, report, err := exec.Run(context.Background(), nil, t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, report.Workers)
}
