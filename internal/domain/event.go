package domain

// Event is one entry of a task lifecycle. The set of implementations is
// closed: Started, Cancelled, ProgressUpdated, IntermediateResultReceived
// and Completed. The recorder only produces value forms; comparison helpers
// also accept pointers to a variant and treat them as the value they point to.
type Event interface {
	// Name returns a stable identifier of the variant.
	Name() string
	isEvent()
}

// Started marks admission of a task into the pipeline.
type Started struct{}

// Cancelled is a terminal event for a task cancelled before completion.
type Cancelled struct{}

// ProgressUpdated carries cumulative progress of an active task.
type ProgressUpdated struct {
	Progress Progress
}

// IntermediateResultReceived carries a non-terminal partial result.
type IntermediateResultReceived struct {
	Response Response
}

// Completed is the terminal event carrying the final outcome.
type Completed struct {
	Outcome Outcome
}

func (Started) Name() string                    { return "started" }
func (Cancelled) Name() string                  { return "cancelled" }
func (ProgressUpdated) Name() string            { return "progress_updated" }
func (IntermediateResultReceived) Name() string { return "intermediate_result_received" }
func (Completed) Name() string                  { return "completed" }

func (Started) isEvent()                    {}
func (Cancelled) isEvent()                  {}
func (ProgressUpdated) isEvent()            {}
func (IntermediateResultReceived) isEvent() {}
func (Completed) isEvent()                  {}

// IsTerminal reports whether ev ends a task lifecycle.
func IsTerminal(ev Event) bool {
	switch deref(ev).(type) {
	case Cancelled, Completed:
		return true
	}
	return false
}

// EqualEvents reports whether a and b are the same variant with equal
// payloads. Pointer and value forms of the same variant compare equal.
func EqualEvents(a, b Event) bool {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case Started:
		_, ok := b.(Started)
		return ok
	case Cancelled:
		_, ok := b.(Cancelled)
		return ok
	case ProgressUpdated:
		y, ok := b.(ProgressUpdated)
		return ok && x.Progress.Completed == y.Progress.Completed && x.Progress.Total == y.Progress.Total
	case IntermediateResultReceived:
		y, ok := b.(IntermediateResultReceived)
		return ok && x.Response.Equal(y.Response)
	case Completed:
		y, ok := b.(Completed)
		return ok && x.Outcome.Equal(y.Outcome)
	}
	return false
}

// EqualEventSequences compares two logs element by element.
func EqualEventSequences(a, b []Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualEvents(a[i], b[i]) {
			return false
		}
	}
	return true
}

// deref maps a pointer variant to its value form. A nil pointer maps to nil.
func deref(ev Event) Event {
	switch x := ev.(type) {
	case *Started:
		return derefPtr(x)
	case *Cancelled:
		return derefPtr(x)
	case *ProgressUpdated:
		return derefPtr(x)
	case *IntermediateResultReceived:
		return derefPtr(x)
	case *Completed:
		return derefPtr(x)
	}
	return ev
}

func derefPtr[T Event](p *T) Event {
	if p == nil {
		return nil
	}
	return *p
}
