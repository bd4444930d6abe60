package service

import (
	"context"
	"fmt"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/infrastructure/logger"
	"github.com/bnema/segbench/internal/port"
)

type Segmenter struct {
	codec     port.MediaCodec
	validator port.SourceValidator
}

// NewSegmenter builds a segmenter; validator may be nil to skip content sniffing.
func NewSegmenter(codec port.MediaCodec, validator port.SourceValidator) *Segmenter {
	return &Segmenter{codec: codec, validator: validator}
}

// Probe reads the asset's duration, mapping every failure to ErrSourceUnreadable.
func (s *Segmenter) Probe(ctx context.Context, assetPath string) (domain.Asset, error) {
	if s.validator != nil {
		if err := s.validator.ValidateSource(assetPath); err != nil {
			return domain.Asset{}, fmt.Errorf("%w: %w", domain.ErrSourceUnreadable, err)
		}
	}

	probe, err := s.codec.Probe(ctx, assetPath)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("%w: %w", domain.ErrSourceUnreadable, err)
	}
	if !probe.HasMedia() {
		return domain.Asset{}, fmt.Errorf("%w: %s has no audio or video stream", domain.ErrSourceUnreadable, assetPath)
	}

	total := probe.DurationSeconds()
	if total <= 0 {
		return domain.Asset{}, fmt.Errorf("%w: %s reports no duration", domain.ErrEmptySource, assetPath)
	}
	return domain.Asset{Path: assetPath, Duration: total}, nil
}

// Split cuts the asset into contiguous segments materialized in ws.SegmentsDir. On any
// failure no segments are returned.
func (s *Segmenter) Split(ctx context.Context, assetPath string, target float64, ws *Workspace, progress ProgressFunc) ([]domain.Segment, float64, error) {
	asset, err := s.Probe(ctx, assetPath)
	if err != nil {
		return nil, 0, err
	}

	segments, err := domain.PlanSegments(asset, target)
	if err != nil {
		return nil, asset.Duration, err
	}

	if err := ws.ResetDir(ws.SegmentsDir); err != nil {
		return nil, asset.Duration, err
	}

	ext := s.codec.Extension()
	for i := range segments {
		seg := &segments[i]
		if err := ctx.Err(); err != nil {
			return nil, asset.Duration, domain.SegmentFailure(seg.Index, domain.ErrEncode, err)
		}

		path := domain.SegmentPath(ws.SegmentsDir, seg.Index, ext)
		if err := s.codec.ExtractSegment(ctx, *seg, path); err != nil {
			return nil, asset.Duration, domain.SegmentFailure(seg.Index, domain.ErrEncode, err)
		}
		seg.Path = path
		progress.report(float64(i+1)/float64(len(segments)), domain.SegmentFileName(seg.Index, ext))
	}

	logger.Info.Printf("split %s into %d segments of %.2fs",
		logger.SanitizeForLog(assetPath), len(segments), domain.EffectiveSegmentDuration(asset.Duration, target))
	return segments, asset.Duration, nil
}
