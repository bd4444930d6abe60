package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/segbench/config"
	"github.com/bnema/segbench/internal/adapter/converter/ffmpeg"
	HTTPAdapter "github.com/bnema/segbench/internal/adapter/http"
	"github.com/bnema/segbench/internal/adapter/publish"
	"github.com/bnema/segbench/internal/adapter/storage/jsonfile"
	sqlitestore "github.com/bnema/segbench/internal/adapter/storage/sqlite"
	"github.com/bnema/segbench/internal/adapter/validation"
	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/infrastructure/logger"
	"github.com/bnema/segbench/internal/metrics"
	"github.com/bnema/segbench/internal/port"
	"github.com/bnema/segbench/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		return 1
	}
	logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if len(os.Args) > 1 {
		cfg.InputPath = os.Args[1]
	}
	if cfg.InputPath == "" {
		logger.Error.Printf("no input: pass a video path or set INPUT_PATH")
		return 1
	}
	if cfg.SegmentDurationOutsideSuggested() {
		logger.Warn.Printf("segment duration %.1fs is outside the suggested %d-%ds range",
			cfg.SegmentDuration, config.MinSuggestedSegmentDuration, config.MaxSuggestedSegmentDuration)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		logger.Error.Printf("failed to open run history: %v", err)
		return 1
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	var publisher port.ArtifactPublisher
	if cfg.PublishURL != "" {
		bp, err := publish.NewBlobPublisher(ctx, cfg.PublishURL)
		if err != nil {
			logger.Error.Printf("failed to open publish bucket: %v", err)
			return 1
		}
		defer func() { _ = bp.Close() }()
		publisher = bp
	}

	converter := ffmpeg.NewConverter(ffmpeg.Options{
		FFmpegPath:  cfg.FFmpeg.FFmpegPath,
		FFprobePath: cfg.FFmpeg.FFprobePath,
		Preset:      cfg.FFmpeg.Preset,
		CRF:         cfg.FFmpeg.CRF,
		Threads:     cfg.FFmpeg.Threads,
	})
	eventBus := service.NewEventBus()
	m := metrics.New("segbench")

	opts := service.PipelineOptions{
		WorkDir:         cfg.WorkDir,
		OutputPath:      cfg.OutputPath,
		SegmentDuration: cfg.SegmentDuration,
		Workers:         cfg.Workers,
		Validator:       validation.NewMagicBytesValidator(),
		Store:           store,
		Publisher:       publisher,
		Events:          eventBus,
		Observer:        m,
	}
	pipeline := service.NewPipeline(converter, cfg.InputPath, opts)

	if cfg.StatusAddr != "" && store != nil {
		server := HTTPAdapter.NewServer(store, eventBus, m.Handler())
		go func() {
			if err := server.ListenAndServe(ctx, cfg.StatusAddr); err != nil {
				logger.Error.Printf("status server failed: %v", err)
			}
		}()
		logger.Info.Printf("follow run %s at http://%s/events/%s", pipeline.ID(), cfg.StatusAddr, pipeline.ID())
	}

	logger.Info.Printf("run %s: benchmarking %s with %.1fs segments",
		pipeline.ID(), logger.SanitizeForLog(cfg.InputPath), cfg.SegmentDuration)

	result, err := pipeline.Run(ctx)
	printSummary(result, err)
	if err != nil {
		return 1
	}
	return 0
}

// openStore returns nil when history is disabled.
func openStore(cfg *config.Config) (port.RunStore, error) {
	switch cfg.HistoryBackend {
	case "sqlite":
		s, err := sqlitestore.NewStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "json":
		s, err := jsonfile.NewStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}

func printSummary(run *domain.Run, err error) {
	if err != nil {
		if perr, ok := service.IsPhaseError(err); ok && perr.Index != domain.NoIndex {
			fmt.Fprintf(os.Stderr, "run failed in %s at segment %d: %v\n", perr.Phase, perr.Index, err)
		} else if errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "run interrupted: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		}
		return
	}

	fmt.Printf("Asset:            %s (%s)\n", run.AssetPath, domain.FormatDuration(run.AssetDuration))
	fmt.Printf("Segments:         %d x %.2fs\n", run.NumSegments, run.EffectiveSegmentDuration)
	fmt.Printf("Sequential:       %.2fs\n", run.Sequential.Elapsed.Seconds())
	fmt.Printf("Parallel:         %.2fs (%d workers)\n", run.Parallel.Elapsed.Seconds(), run.Parallel.Workers)
	fmt.Printf("Speedup:          %.2fx\n", run.Metrics.Speedup)
	fmt.Printf("Efficiency:       %.1f%%\n", run.Metrics.Efficiency)
	fmt.Printf("Assessment:       %s\n", run.Insight.Message)
	if !run.Equivalent {
		fmt.Printf("Mismatched segments: %v\n", run.Mismatches)
	}
	fmt.Printf("Output:           %s (%s, %s)\n", run.OutputPath,
		domain.FormatDuration(run.OutputDuration), domain.FormatSize(run.OutputSize))
}
