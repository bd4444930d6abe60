package port

import (
	"context"

	"github.com/bnema/segbench/internal/domain"
)

type Prober interface {
	Probe(ctx context.Context, inputPath string) (*domain.ProbeResult, error)
}

// Transformer is the per-segment workload. Implementations must be safe to call from
// many goroutines at once and must write exactly one artifact at outputPath.
type Transformer interface {
	Transform(ctx context.Context, inputPath, outputPath string) error
}

type MediaCodec interface {
	Prober
	Transformer
	ExtractSegment(ctx context.Context, seg domain.Segment, outputPath string) error
	Concat(ctx context.Context, inputPaths []string, outputPath string) error
	// Extension is the container extension used for every artifact, including the dot.
	Extension() string
}

// SourceValidator rejects inputs that are not media before they reach the prober.
type SourceValidator interface {
	ValidateSource(path string) error
}
