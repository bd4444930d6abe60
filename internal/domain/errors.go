package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrSourceUnreadable  = errors.New("source unreadable")
	ErrEncode            = errors.New("encode failed")
	ErrTransform         = errors.New("transform failed")
	ErrMerge             = errors.New("merge failed")
	ErrEmptySource       = errors.New("empty source")
	ErrInvalidTransition = errors.New("invalid pipeline state transition")
)

// NoIndex marks a PhaseError that is not attributable to a single segment.
const NoIndex = -1

// PhaseError is the single terminating failure value that leaves the pipeline.
// It carries the phase that failed and, for per-segment failures, the segment index.
type PhaseError struct {
	Phase PipelineState
	Index int
	Err   error
}

func (e *PhaseError) Error() string {
	if e.Index != NoIndex {
		return fmt.Sprintf("%s phase failed on segment %d: %v", e.Phase, e.Index, e.Err)
	}
	return fmt.Sprintf("%s phase failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// NewPhaseError wraps err for phase. Index is NoIndex unless err already identifies a segment.
func NewPhaseError(phase PipelineState, err error) *PhaseError {
	index := NoIndex
	var segErr *SegmentError
	if errors.As(err, &segErr) {
		index = segErr.Index
	}
	return &PhaseError{Phase: phase, Index: index, Err: err}
}

// SegmentError attributes a failure to the job that produced it.
type SegmentError struct {
	Index int
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d: %v", e.Index, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// SegmentFailure builds a SegmentError whose chain includes both kind and cause.
func SegmentFailure(index int, kind error, cause error) error {
	return &SegmentError{Index: index, Err: fmt.Errorf("%w: %w", kind, cause)}
}
