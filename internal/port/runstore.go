package port

import "github.com/bnema/segbench/internal/domain"

type RunStore interface {
	Save(r *domain.Run) error
	Get(id string) (*domain.Run, error)
	List(limit int) ([]*domain.Run, error)
	Close() error
}
