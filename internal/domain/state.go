package domain

import (
	"fmt"
	"sync"
)

type PipelineState string

const (
	StateIdle          PipelineState = "idle"
	StateSplit         PipelineState = "split"
	StateSequentialRun PipelineState = "sequential"
	StateParallelRun   PipelineState = "parallel"
	StateMerge         PipelineState = "merge"
	StateReported      PipelineState = "reported"
	StateFailed        PipelineState = "failed"
)

var pipelineOrder = []PipelineState{
	StateIdle,
	StateSplit,
	StateSequentialRun,
	StateParallelRun,
	StateMerge,
	StateReported,
}

func (s PipelineState) IsTerminal() bool {
	return s == StateReported || s == StateFailed
}

// next returns the only state reachable from s on success.
func (s PipelineState) next() (PipelineState, bool) {
	for i, st := range pipelineOrder {
		if st == s && i+1 < len(pipelineOrder) {
			return pipelineOrder[i+1], true
		}
	}
	return "", false
}

// StateMachine enforces the linear Idle → Split → SequentialRun → ParallelRun → Merge → Reported
// progression. Any phase may fail into Failed; terminal states are never left.
type StateMachine struct {
	mu    sync.Mutex
	state PipelineState
	err   error
}

func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateIdle}
}

func (sm *StateMachine) State() PipelineState {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.state
}

// Err returns the error carried by the Failed state, nil otherwise.
func (sm *StateMachine) Err() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.err
}

// Advance moves to the next state, which must be exactly to.
func (sm *StateMachine) Advance(to PipelineState) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	next, ok := sm.state.next()
	if !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sm.state, to)
	}
	sm.state = to
	return nil
}

// Fail moves to Failed from any non-terminal state and records err.
func (sm *StateMachine) Fail(err error) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.state.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sm.state, StateFailed)
	}
	sm.state = StateFailed
	sm.err = err
	return nil
}
