package service

import (
	"context"
	"runtime"
	"time"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/infrastructure/logger"
	"github.com/bnema/segbench/internal/port"
	"github.com/shirou/gopsutil/v4/cpu"
)

// Executor transforms every materialized segment into outDir.
type Executor interface {
	Run(ctx context.Context, segments []domain.Segment, outDir string, progress ProgressFunc) ([]domain.ProcessingResult, domain.ExecutionReport, error)
}

// transformJob runs the workload for one job and attributes a failure to its index.
func transformJob(ctx context.Context, t port.Transformer, job domain.Job) (domain.ProcessingResult, error) {
	if err := t.Transform(ctx, job.Segment.Path, job.OutputPath); err != nil {
		return domain.ProcessingResult{}, domain.SegmentFailure(job.Segment.Index, domain.ErrTransform, err)
	}
	return domain.ProcessingResult{Index: job.Segment.Index, OutputPath: job.OutputPath}, nil
}

type SequentialExecutor struct {
	transformer port.Transformer
	ext         string
}

func NewSequentialExecutor(transformer port.Transformer, ext string) *SequentialExecutor {
	return &SequentialExecutor{transformer: transformer, ext: ext}
}

// Run processes segments one at a time in index order and stops at the first failure.
func (e *SequentialExecutor) Run(ctx context.Context, segments []domain.Segment, outDir string, progress ProgressFunc) ([]domain.ProcessingResult, domain.ExecutionReport, error) {
	jobs := domain.NewJobs(segments, outDir, e.ext)
	report := domain.ExecutionReport{Mode: domain.ExecutionModeSequential, Workers: 1, Jobs: len(jobs)}
	results := make([]domain.ProcessingResult, 0, len(jobs))

	start := time.Now()
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, report, domain.SegmentFailure(job.Segment.Index, domain.ErrTransform, err)
		}
		res, err := transformJob(ctx, e.transformer, job)
		if err != nil {
			return nil, report, err
		}
		results = append(results, res)
		progress.report(float64(i+1)/float64(len(jobs)), domain.SegmentFileName(job.Segment.Index, e.ext))
	}
	report.Elapsed = time.Since(start)

	logger.Debug.Printf("sequential: %d segments in %s", len(results), report.Elapsed)
	return results, report, nil
}

type ParallelExecutor struct {
	transformer port.Transformer
	ext         string
	maxWorkers  int
}

// NewParallelExecutor caps the pool at maxWorkers; 0 means AvailableParallelism.
func NewParallelExecutor(transformer port.Transformer, ext string, maxWorkers int) *ParallelExecutor {
	return &ParallelExecutor{transformer: transformer, ext: ext, maxWorkers: maxWorkers}
}

// AvailableParallelism is the number of logical CPUs.
func AvailableParallelism() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// WorkerCount is min(available parallelism, jobs).
func (e *ParallelExecutor) WorkerCount(jobs int) int {
	available := e.maxWorkers
	if available <= 0 {
		available = AvailableParallelism()
	}
	return min(available, jobs)
}

// Run fans segments out to a worker pool. Results come back in index order whatever the
// completion order was. Progress is only guaranteed to reach 1.0 at the end of the batch.
func (e *ParallelExecutor) Run(ctx context.Context, segments []domain.Segment, outDir string, progress ProgressFunc) ([]domain.ProcessingResult, domain.ExecutionReport, error) {
	jobs := domain.NewJobs(segments, outDir, e.ext)
	workers := e.WorkerCount(len(jobs))
	report := domain.ExecutionReport{Mode: domain.ExecutionModeParallel, Workers: workers, Jobs: len(jobs)}
	if len(jobs) == 0 {
		return []domain.ProcessingResult{}, report, nil
	}

	pool := NewWorkerPool(workers, func(ctx context.Context, _ int, job domain.Job) (domain.ProcessingResult, error) {
		return transformJob(ctx, e.transformer, job)
	}).OnDone(func(completed, total int) {
		progress.report(float64(completed)/float64(total), "")
	})

	start := time.Now()
	results, err := pool.Run(ctx, jobs)
	if err != nil {
		return nil, report, err
	}
	report.Elapsed = time.Since(start)
	progress.report(1, "")

	logger.Debug.Printf("parallel: %d segments on %d workers in %s", len(results), workers, report.Elapsed)
	return results, report, nil
}

var (
	_ Executor = (*SequentialExecutor)(nil)
	_ Executor = (*ParallelExecutor)(nil)
)
