package service

import (
	"context"
	"errors"
	"os"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/infrastructure/logger"
	"github.com/bnema/segbench/internal/port"
)

// RunObserver is notified once per finished run, successful or not.
type RunObserver interface {
	ObserveRun(run *domain.Run)
}

type PipelineOptions struct {
	WorkDir         string
	OutputPath      string
	SegmentDuration float64
	// Workers caps the parallel executor; 0 uses every logical CPU.
	Workers int

	Validator port.SourceValidator
	Store     port.RunStore
	Publisher port.ArtifactPublisher
	Events    ProgressPublisher
	Observer  RunObserver
}

// Pipeline benchmarks sequential against parallel processing of one asset. An instance
// runs exactly once.
type Pipeline struct {
	opts       PipelineOptions
	codec      port.MediaCodec
	segmenter  *Segmenter
	sequential Executor
	parallel   Executor
	merger     *Merger
	sm         *domain.StateMachine
	run        *domain.Run
}

func NewPipeline(codec port.MediaCodec, assetPath string, opts PipelineOptions) *Pipeline {
	ext := codec.Extension()
	return &Pipeline{
		opts:       opts,
		codec:      codec,
		segmenter:  NewSegmenter(codec, opts.Validator),
		sequential: NewSequentialExecutor(codec, ext),
		parallel:   NewParallelExecutor(codec, ext, opts.Workers),
		merger:     NewMerger(codec),
		sm:         domain.NewStateMachine(),
		run:        domain.NewRun(assetPath, opts.SegmentDuration),
	}
}

// ID is known before Run so progress subscribers can attach first.
func (p *Pipeline) ID() string {
	return p.run.ID
}

func (p *Pipeline) State() domain.PipelineState {
	return p.sm.State()
}

// Run drives Split, SequentialRun, ParallelRun and Merge. It returns the run record in
// every case; on failure the error is a *domain.PhaseError. The workspace is released on
// every exit path.
func (p *Pipeline) Run(ctx context.Context) (*domain.Run, error) {
	if err := p.advance(domain.StateSplit); err != nil {
		return p.run, err
	}
	defer p.finish(ctx)
	p.checkpoint()

	logger.Info.Printf("run %s: asset=%s target=%.2fs", p.run.ID, logger.SanitizeForLog(p.run.AssetPath), p.opts.SegmentDuration)

	ws, err := AcquireWorkspace(p.opts.WorkDir)
	if err != nil {
		return p.run, p.fail(domain.StateSplit, err)
	}
	defer func() {
		if err := ws.Release(); err != nil {
			logger.Warn.Printf("run %s: workspace cleanup: %v", p.run.ID, err)
		}
	}()

	segments, total, err := p.segmenter.Split(ctx, p.run.AssetPath, p.opts.SegmentDuration, ws, p.progress(domain.StateSplit))
	p.run.AssetDuration = total
	if err != nil {
		return p.run, p.fail(domain.StateSplit, err)
	}
	if len(segments) == 0 {
		return p.run, p.fail(domain.StateSplit, domain.ErrEmptySource)
	}
	p.run.NumSegments = len(segments)
	p.run.EffectiveSegmentDuration = domain.EffectiveSegmentDuration(total, p.opts.SegmentDuration)

	if err := p.advance(domain.StateSequentialRun); err != nil {
		return p.run, p.fail(domain.StateSequentialRun, err)
	}
	seqResults, seqReport, err := p.sequential.Run(ctx, segments, ws.SequentialDir, p.progress(domain.StateSequentialRun))
	if err != nil {
		return p.run, p.fail(domain.StateSequentialRun, err)
	}
	p.run.Sequential = seqReport
	logger.Info.Printf("run %s: sequential %.3fs", p.run.ID, seqReport.Seconds())

	if err := p.advance(domain.StateParallelRun); err != nil {
		return p.run, p.fail(domain.StateParallelRun, err)
	}
	parResults, parReport, err := p.parallel.Run(ctx, segments, ws.ParallelDir, p.progress(domain.StateParallelRun))
	if err != nil {
		return p.run, p.fail(domain.StateParallelRun, err)
	}
	p.run.Parallel = parReport
	logger.Info.Printf("run %s: parallel %.3fs on %d workers", p.run.ID, parReport.Seconds(), parReport.Workers)

	p.verify(seqResults, parResults)

	if err := p.advance(domain.StateMerge); err != nil {
		return p.run, p.fail(domain.StateMerge, err)
	}
	mergeProgress := p.progress(domain.StateMerge)
	finalPath, err := p.merger.Merge(ctx, parResults, p.opts.OutputPath)
	if err != nil {
		return p.run, p.fail(domain.StateMerge, err)
	}
	mergeProgress(1, finalPath)

	outputDuration, outputSize := p.describeOutput(ctx, finalPath)

	if err := p.advance(domain.StateReported); err != nil {
		return p.run, p.fail(domain.StateReported, err)
	}
	p.run.MarkAsReported(finalPath, outputDuration, outputSize)
	p.progress(domain.StateReported)(1, finalPath)

	m := p.run.Metrics
	logger.Info.Printf("run %s: speedup %.2fx, efficiency %.1f%%, saved %.3fs (%s)",
		p.run.ID, m.Speedup, m.Efficiency, m.TimeSaved, p.run.Insight.Level)
	return p.run, nil
}

// advance moves the state machine and mirrors the phase onto the run record.
func (p *Pipeline) advance(next domain.PipelineState) error {
	if err := p.sm.Advance(next); err != nil {
		return err
	}
	p.run.State = next
	return nil
}

// checkpoint records the run as in progress so the history can show it before it ends.
func (p *Pipeline) checkpoint() {
	if p.opts.Store == nil {
		return
	}
	if err := p.opts.Store.Save(p.run); err != nil {
		logger.Warn.Printf("run %s: save in-progress run: %v", p.run.ID, err)
	}
}

func (p *Pipeline) progress(phase domain.PipelineState) ProgressFunc {
	return phaseProgress(p.opts.Events, p.run.ID, phase)
}

func (p *Pipeline) fail(phase domain.PipelineState, err error) error {
	perr := domain.NewPhaseError(phase, err)
	if smErr := p.sm.Fail(perr); smErr != nil {
		logger.Error.Printf("run %s: %v", p.run.ID, smErr)
	}
	p.run.MarkAsFailed(perr)
	p.progress(domain.StateFailed)(1, perr.Error())
	logger.Error.Printf("run %s: %v", p.run.ID, perr)
	return perr
}

// verify compares both executors' artifacts. A difference is a finding, not a failure.
func (p *Pipeline) verify(seq, par []domain.ProcessingResult) {
	eq, err := VerifyEquivalence(seq, par)
	if err != nil {
		logger.Warn.Printf("run %s: equivalence check skipped: %v", p.run.ID, err)
		return
	}
	p.run.Equivalent = eq.Equivalent
	p.run.Mismatches = eq.Mismatches
	if !eq.Equivalent {
		logger.Warn.Printf("run %s: sequential and parallel outputs differ for segments %v", p.run.ID, eq.Mismatches)
	}
}

func (p *Pipeline) describeOutput(ctx context.Context, finalPath string) (float64, int64) {
	var size int64
	if info, err := os.Stat(finalPath); err == nil {
		size = info.Size()
	}

	probe, err := p.codec.Probe(ctx, finalPath)
	if err != nil {
		logger.Warn.Printf("run %s: probe merged output: %v", p.run.ID, err)
		return 0, size
	}
	return probe.DurationSeconds(), size
}

// finish persists the run and hands it to the observer and publisher.
func (p *Pipeline) finish(ctx context.Context) {
	if p.opts.Store != nil {
		if err := p.opts.Store.Save(p.run); err != nil {
			logger.Error.Printf("run %s: save run: %v", p.run.ID, err)
		}
	}
	if p.opts.Observer != nil {
		p.opts.Observer.ObserveRun(p.run)
	}
	if p.opts.Publisher != nil && p.run.Succeeded() {
		uri, err := p.opts.Publisher.Publish(ctx, p.run)
		if err != nil {
			logger.Error.Printf("run %s: publish: %v", p.run.ID, err)
			return
		}
		logger.Info.Printf("run %s: published to %s", p.run.ID, uri)
	}
}

// IsPhaseError reports whether err came out of a pipeline phase, returning it if so.
func IsPhaseError(err error) (*domain.PhaseError, bool) {
	var perr *domain.PhaseError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
