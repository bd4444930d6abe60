package port

import (
	"context"

	"github.com/bnema/segbench/internal/domain"
)

type ArtifactPublisher interface {
	// Publish uploads the run's merged artifact and its report, returning the artifact URI.
	Publish(ctx context.Context, run *domain.Run) (string, error)
	Close() error
}
