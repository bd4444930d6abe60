package service

import (
	"sync"

	"github.com/bnema/segbench/internal/domain"
)

// ProgressPublisher receives the progress stream of a run.
type ProgressPublisher interface {
	Publish(runID string, event domain.ProgressEvent)
}

type EventBus struct {
	subscribers map[string][]chan domain.ProgressEvent
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan domain.ProgressEvent),
	}
}

func (eb *EventBus) Subscribe(runID string) chan domain.ProgressEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan domain.ProgressEvent, 64)
	eb.subscribers[runID] = append(eb.subscribers[runID], ch)
	return ch
}

func (eb *EventBus) Unsubscribe(runID string, ch chan domain.ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[runID]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[runID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(eb.subscribers[runID]) == 0 {
		delete(eb.subscribers, runID)
	}
}

// Publish never blocks the pipeline: events for a slow subscriber are dropped.
func (eb *EventBus) Publish(runID string, event domain.ProgressEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, ch := range eb.subscribers[runID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// ProgressFunc reports the completed fraction of the current phase.
type ProgressFunc func(fraction float64, message string)

func (f ProgressFunc) report(fraction float64, message string) {
	if f != nil {
		f(fraction, message)
	}
}

// phaseProgress turns raw fractions into a clamped, non-decreasing stream for one phase.
func phaseProgress(pub ProgressPublisher, runID string, phase domain.PipelineState) ProgressFunc {
	var (
		mu   sync.Mutex
		last float64
	)
	return func(fraction float64, message string) {
		mu.Lock()
		defer mu.Unlock()

		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		if fraction < last {
			fraction = last
		}
		last = fraction

		if pub != nil {
			pub.Publish(runID, domain.ProgressEvent{
				RunID:    runID,
				Phase:    phase,
				Fraction: fraction,
				Message:  message,
			})
		}
	}
}
