package notify

import (
	"time"

	"github.com/veranemoloko/task-observer/internal/domain"
)

// Kind names a broadcast signal. Convention: "task.action".
type Kind string

const (
	KindTaskStarted      Kind = "task.started"
	KindTaskCancelled    Kind = "task.cancelled"
	KindTaskCompleted    Kind = "task.completed"
	KindTaskProgressed   Kind = "task.progressed"
	KindTaskIntermediate Kind = "task.intermediate"

	kindAll Kind = "*"
)

// Signal is implemented by every broadcast message.
type Signal interface {
	Kind() Kind
	// Source identifies the recorder that published the signal.
	Source() string
	Task() domain.TaskID
	Timestamp() time.Time
}

// base carries the fields shared by every signal.
// Embed it in concrete signal types to satisfy the Signal interface.
type base struct {
	kind      Kind
	source    string
	task      domain.TaskID
	timestamp time.Time
}

func (b base) Kind() Kind           { return b.kind }
func (b base) Source() string       { return b.source }
func (b base) Task() domain.TaskID  { return b.task }
func (b base) Timestamp() time.Time { return b.timestamp }

func newBase(kind Kind, source string, task domain.TaskID) base {
	return base{
		kind:      kind,
		source:    source,
		task:      task,
		timestamp: time.Now(),
	}
}

// TaskStarted is published when a task is admitted by the pipeline.
type TaskStarted struct {
	base
}

// NewTaskStarted creates a TaskStarted signal.
func NewTaskStarted(source string, task domain.TaskID) TaskStarted {
	return TaskStarted{base: newBase(KindTaskStarted, source, task)}
}

// TaskCancelled is published when a task is cancelled.
type TaskCancelled struct {
	base
}

// NewTaskCancelled creates a TaskCancelled signal.
func NewTaskCancelled(source string, task domain.TaskID) TaskCancelled {
	return TaskCancelled{base: newBase(KindTaskCancelled, source, task)}
}

// TaskCompleted is published when a task reaches success or failure.
type TaskCompleted struct {
	base
	Outcome domain.Outcome
}

// NewTaskCompleted creates a TaskCompleted signal.
func NewTaskCompleted(source string, task domain.TaskID, outcome domain.Outcome) TaskCompleted {
	return TaskCompleted{base: newBase(KindTaskCompleted, source, task), Outcome: outcome}
}

// TaskProgressed is published on every progress update.
type TaskProgressed struct {
	base
	Progress domain.Progress
}

// NewTaskProgressed creates a TaskProgressed signal.
func NewTaskProgressed(source string, task domain.TaskID, progress domain.Progress) TaskProgressed {
	return TaskProgressed{base: newBase(KindTaskProgressed, source, task), Progress: progress}
}

// TaskIntermediate is published for every partial result.
type TaskIntermediate struct {
	base
	Response domain.Response
}

// NewTaskIntermediate creates a TaskIntermediate signal.
func NewTaskIntermediate(source string, task domain.TaskID, response domain.Response) TaskIntermediate {
	return TaskIntermediate{base: newBase(KindTaskIntermediate, source, task), Response: response}
}
