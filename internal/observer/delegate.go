package observer

import "github.com/veranemoloko/task-observer/internal/domain"

// Delegate is the set of lifecycle callbacks a pipeline invokes.
//
// The pipeline serializes callbacks for one task, but callbacks for
// different tasks may arrive concurrently, so implementations must be safe
// for concurrent use.
type Delegate interface {
	// OnTaskStart is called once, when the task is admitted for execution.
	OnTaskStart(task domain.TaskID)
	// OnTaskCancel is called at most once, instead of OnComplete.
	OnTaskCancel(task domain.TaskID)
	// OnProgress reports cumulative progress; total is 0 when unknown.
	OnProgress(task domain.TaskID, completed, total int64)
	// OnIntermediateResult reports a non-terminal partial result.
	OnIntermediateResult(task domain.TaskID, response domain.Response)
	// OnComplete is called once for every task that is not cancelled.
	OnComplete(task domain.TaskID, outcome domain.Outcome)
}

// Nop is a Delegate that ignores every callback.
type Nop struct{}

func (Nop) OnTaskStart(domain.TaskID)                           {}
func (Nop) OnTaskCancel(domain.TaskID)                          {}
func (Nop) OnProgress(domain.TaskID, int64, int64)              {}
func (Nop) OnIntermediateResult(domain.TaskID, domain.Response) {}
func (Nop) OnComplete(domain.TaskID, domain.Outcome)            {}

type multi []Delegate

// Multi returns a Delegate that forwards every callback to each delegate
// in order. Nil delegates are skipped.
func Multi(delegates ...Delegate) Delegate {
	out := make(multi, 0, len(delegates))
	for _, d := range delegates {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

func (m multi) OnTaskStart(task domain.TaskID) {
	for _, d := range m {
		d.OnTaskStart(task)
	}
}

func (m multi) OnTaskCancel(task domain.TaskID) {
	for _, d := range m {
		d.OnTaskCancel(task)
	}
}

func (m multi) OnProgress(task domain.TaskID, completed, total int64) {
	for _, d := range m {
		d.OnProgress(task, completed, total)
	}
}

func (m multi) OnIntermediateResult(task domain.TaskID, response domain.Response) {
	for _, d := range m {
		d.OnIntermediateResult(task, response)
	}
}

func (m multi) OnComplete(task domain.TaskID, outcome domain.Outcome) {
	for _, d := range m {
		d.OnComplete(task, outcome)
	}
}
