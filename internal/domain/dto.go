package domain

import "time"

// CreateTaskRequest represents the request body for submitting downloads.
// Every URL becomes its own task. The per-request URL limit is configured
// on the service.
type CreateTaskRequest struct {
	URLs []string `json:"urls" validate:"required,min=1,dive,url"`
}

// CreateTaskResponse lists the tasks created for a request.
type CreateTaskResponse struct {
	TaskIDs []TaskID `json:"task_ids"`
}

// EventView is the JSON shape of a recorded lifecycle event.
type EventView struct {
	Seq        uint64    `json:"seq"`
	Type       string    `json:"type"`
	RecordedAt time.Time `json:"recorded_at"`
	Progress   *Progress `json:"progress,omitempty"`
	Response   *Response `json:"response,omitempty"`
	Outcome    *Outcome  `json:"outcome,omitempty"`
}

// NewEventView flattens ev into its JSON shape.
func NewEventView(seq uint64, at time.Time, ev Event) EventView {
	view := EventView{Seq: seq, RecordedAt: at}
	if ev = deref(ev); ev == nil {
		return view
	}
	view.Type = ev.Name()

	switch x := ev.(type) {
	case ProgressUpdated:
		p := x.Progress
		view.Progress = &p
	case IntermediateResultReceived:
		r := x.Response
		view.Response = &r
	case Completed:
		o := x.Outcome
		view.Outcome = &o
	}
	return view
}

// TaskResponse is returned for a single task, including its recorded events.
type TaskResponse struct {
	Task
	Events []EventView `json:"events"`
}

// TaskListResponse lists task views filtered by status.
type TaskListResponse struct {
	Status TaskStatus `json:"status"`
	Tasks  []*Task    `json:"tasks"`
}

// StatsResponse reports the recorder counters.
type StatsResponse struct {
	Source    string `json:"source"`
	Started   int    `json:"started"`
	Cancelled int    `json:"cancelled"`
	Completed int    `json:"completed"`
	Events    int    `json:"events"`
}
