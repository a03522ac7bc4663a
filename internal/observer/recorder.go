package observer

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veranemoloko/task-observer/internal/domain"
	"github.com/veranemoloko/task-observer/internal/notify"
	"github.com/veranemoloko/task-observer/internal/validation"
)

// Counts holds the recorder counters.
type Counts struct {
	Started   int `json:"started"`
	Cancelled int `json:"cancelled"`
	Completed int `json:"completed"`
}

// Record is one entry of the recorder log.
type Record struct {
	Seq        uint64
	Task       domain.TaskID
	Event      domain.Event
	RecordedAt time.Time
}

// Snapshot is a consistent copy of the recorder state.
type Snapshot struct {
	Counts     Counts
	Records    []Record
	Violations int
}

// Recorder is a Delegate that counts lifecycle transitions and keeps an
// ordered log of every event it receives. Counter updates and log appends
// happen under one lock, so readers never see one without the other.
// Signals are published to the bus after the lock is released.
type Recorder struct {
	id     string
	name   string
	bus    *notify.Bus
	logger *slog.Logger

	mu         sync.Mutex
	counts     Counts
	records    []Record
	checker    *validation.SequenceChecker
	violations int
}

var _ Delegate = (*Recorder)(nil)

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithBus publishes every recorded event to bus.
func WithBus(bus *notify.Bus) RecorderOption {
	return func(r *Recorder) { r.bus = bus }
}

// WithLogger sets the recorder logger.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithName sets a human readable name used in logs.
func WithName(name string) RecorderOption {
	return func(r *Recorder) { r.name = name }
}

// WithStrictOrdering checks every event against the per-task lifecycle
// order. Violations are logged and counted; the event is recorded anyway.
func WithStrictOrdering() RecorderOption {
	return func(r *Recorder) { r.checker = validation.NewSequenceChecker() }
}

// NewRecorder creates an empty recorder with a fresh source ID.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		id:     uuid.NewString(),
		name:   "recorder",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("recorder_id", r.id, "recorder", r.name)
	return r
}

// ID returns the source identity attached to published signals.
func (r *Recorder) ID() string { return r.id }

// Name returns the recorder name.
func (r *Recorder) Name() string { return r.name }

// OnTaskStart implements Delegate.
func (r *Recorder) OnTaskStart(task domain.TaskID) {
	r.record(task, domain.Started{}, func(c *Counts) { c.Started++ })
	r.publish(notify.NewTaskStarted(r.id, task))
}

// OnTaskCancel implements Delegate.
func (r *Recorder) OnTaskCancel(task domain.TaskID) {
	r.record(task, domain.Cancelled{}, func(c *Counts) { c.Cancelled++ })
	r.publish(notify.NewTaskCancelled(r.id, task))
}

// OnProgress implements Delegate.
func (r *Recorder) OnProgress(task domain.TaskID, completed, total int64) {
	progress := domain.Progress{Completed: completed, Total: total}
	r.record(task, domain.ProgressUpdated{Progress: progress}, nil)
	r.publish(notify.NewTaskProgressed(r.id, task, progress))
}

// OnIntermediateResult implements Delegate.
func (r *Recorder) OnIntermediateResult(task domain.TaskID, response domain.Response) {
	r.record(task, domain.IntermediateResultReceived{Response: response}, nil)
	r.publish(notify.NewTaskIntermediate(r.id, task, response))
}

// OnComplete implements Delegate.
func (r *Recorder) OnComplete(task domain.TaskID, outcome domain.Outcome) {
	r.record(task, domain.Completed{Outcome: outcome}, func(c *Counts) { c.Completed++ })
	r.publish(notify.NewTaskCompleted(r.id, task, outcome))
}

func (r *Recorder) record(task domain.TaskID, ev domain.Event, bump func(*Counts)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.checker != nil {
		if err := r.checker.Observe(task, ev); err != nil {
			r.violations++
			r.logger.Warn("lifecycle order violated", "task_id", task, "error", err)
		}
	}

	if bump != nil {
		bump(&r.counts)
	}
	r.records = append(r.records, Record{
		Seq:        uint64(len(r.records)) + 1,
		Task:       task,
		Event:      ev,
		RecordedAt: time.Now(),
	})
}

func (r *Recorder) publish(s notify.Signal) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(s)
}

// Counts returns the current counters.
func (r *Recorder) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Totals returns the counters and the log length read under one lock.
func (r *Recorder) Totals() (Counts, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts, len(r.records)
}

// Events returns a copy of the log across all tasks, in delivery order.
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]domain.Event, len(r.records))
	for i, rec := range r.records {
		events[i] = rec.Event
	}
	return events
}

// Records returns a copy of the log including task IDs and sequence numbers.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// RecordsFor returns the log entries of a single task.
func (r *Recorder) RecordsFor(task domain.TaskID) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Record
	for _, rec := range r.records {
		if rec.Task == task {
			out = append(out, rec)
		}
	}
	return out
}

// EventsFor returns the event subsequence of a single task.
func (r *Recorder) EventsFor(task domain.TaskID) []domain.Event {
	records := r.RecordsFor(task)
	events := make([]domain.Event, len(records))
	for i, rec := range records {
		events[i] = rec.Event
	}
	return events
}

// Snapshot returns counters and log captured atomically.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]Record, len(r.records))
	copy(records, r.records)
	return Snapshot{
		Counts:     r.counts,
		Records:    records,
		Violations: r.violations,
	}
}
