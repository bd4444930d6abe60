package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/port"
)

type Merger struct {
	codec port.MediaCodec
}

func NewMerger(codec port.MediaCodec) *Merger {
	return &Merger{codec: codec}
}

// Merge concatenates the artifacts in index order into outputPath. Results are sorted
// again here, so callers may pass them in any order. Every failure wraps ErrMerge and
// leaves no output behind.
func (m *Merger) Merge(ctx context.Context, results []domain.ProcessingResult, outputPath string) (finalPath string, err error) {
	if len(results) == 0 {
		return "", fmt.Errorf("%w: no artifacts to merge", domain.ErrMerge)
	}

	ordered := slices.Clone(results)
	slices.SortFunc(ordered, func(a, b domain.ProcessingResult) int { return a.Index - b.Index })

	inputs := make([]string, len(ordered))
	for i, res := range ordered {
		if err := checkArtifact(res); err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrMerge, err)
		}
		inputs[i] = res.OutputPath
	}

	out, err := filepath.Abs(outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: resolve output: %w", domain.ErrMerge, err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", fmt.Errorf("%w: create output directory: %w", domain.ErrMerge, err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(out)
		}
	}()
	if err := m.codec.Concat(ctx, inputs, out); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMerge, err)
	}
	return out, nil
}

// checkArtifact verifies that a result succeeded, is named after its index and can be opened.
func checkArtifact(res domain.ProcessingResult) error {
	if !res.Succeeded() {
		return fmt.Errorf("segment %d did not complete: %w", res.Index, res.Err)
	}
	idx, err := domain.ParseSegmentIndex(res.OutputPath)
	if err != nil {
		return err
	}
	if idx != res.Index {
		return fmt.Errorf("artifact %s does not belong to segment %d", filepath.Base(res.OutputPath), res.Index)
	}

	f, err := os.Open(res.OutputPath)
	if err != nil {
		return fmt.Errorf("open artifact %d: %w", res.Index, err)
	}
	return f.Close()
}
