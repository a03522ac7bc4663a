package validation

import (
	"fmt"
	"sync"

	"github.com/veranemoloko/task-observer/internal/domain"
)

type phase uint8

const (
	phaseIdle phase = iota
	phaseActive
	phaseDone
)

// OrderingError describes an event that breaks the per-task lifecycle order.
type OrderingError struct {
	Task   domain.TaskID
	Event  string
	Reason string
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("task %s: %s %s", e.Task, e.Event, e.Reason)
}

// SequenceChecker tracks the lifecycle phase of every task it has seen.
// Started is optional but must come first, progress and partial results
// need an active task, and at most one terminal event is allowed.
// It is safe for concurrent use.
type SequenceChecker struct {
	mu     sync.Mutex
	phases map[domain.TaskID]phase
}

// NewSequenceChecker creates an empty checker.
func NewSequenceChecker() *SequenceChecker {
	return &SequenceChecker{phases: make(map[domain.TaskID]phase)}
}

// Observe advances the phase of task and reports a violation, if any.
// A violating event does not move the task out of its terminal phase.
func (c *SequenceChecker) Observe(task domain.TaskID, ev domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.phases[task]
	next, reason := advance(current, ev)
	if reason != "" {
		name := "<nil>"
		if ev != nil {
			name = ev.Name()
		}
		if current == phaseDone {
			next = phaseDone
		}
		c.phases[task] = next
		return &OrderingError{Task: task, Event: name, Reason: reason}
	}
	c.phases[task] = next
	return nil
}

// Tracked returns the number of tasks seen so far.
func (c *SequenceChecker) Tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.phases)
}

func advance(current phase, ev domain.Event) (phase, string) {
	if ev == nil {
		return current, "is nil"
	}

	switch {
	case domain.EqualEvents(ev, domain.Started{}):
		switch current {
		case phaseActive:
			return phaseActive, "occurred twice"
		case phaseDone:
			return phaseDone, "occurred after a terminal event"
		}
		return phaseActive, ""

	case domain.IsTerminal(ev):
		if current == phaseDone {
			return phaseDone, "occurred after a terminal event"
		}
		return phaseDone, ""

	default:
		switch current {
		case phaseIdle:
			return phaseActive, "occurred before started"
		case phaseDone:
			return phaseDone, "occurred after a terminal event"
		}
		return phaseActive, ""
	}
}

// CheckTaskEvents validates the event subsequence of a single task.
func CheckTaskEvents(task domain.TaskID, events []domain.Event) error {
	c := NewSequenceChecker()
	for _, ev := range events {
		if err := c.Observe(task, ev); err != nil {
			return err
		}
	}
	return nil
}
