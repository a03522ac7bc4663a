package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/veranemoloko/task-observer/internal/domain"
	errpkg "github.com/veranemoloko/task-observer/internal/errors"
	"github.com/veranemoloko/task-observer/internal/notify"
)

// TaskStorage is an in-memory index of task views. Callers always receive
// copies, so views can be read while lifecycle signals keep updating them.
type TaskStorage struct {
	mu     sync.RWMutex
	tasks  map[domain.TaskID]*domain.Task
	logger *slog.Logger
}

var _ TaskRepo = (*TaskStorage)(nil)

// NewTaskStorage creates an empty TaskStorage.
func NewTaskStorage(logger *slog.Logger) *TaskStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStorage{
		tasks:  make(map[domain.TaskID]*domain.Task),
		logger: logger,
	}
}

func cloneTask(t *domain.Task) *domain.Task {
	out := *t
	if t.Result != nil {
		r := *t.Result
		out.Result = &r
	}
	if t.Error != nil {
		e := *t.Error
		out.Error = &e
	}
	return &out
}

// CreateTask adds a new task.
func (r *TaskStorage) CreateTask(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[task.ID]; exists {
		return fmt.Errorf("%w: %s", errpkg.ErrTaskExists, task.ID)
	}
	now := time.Now()
	stored := cloneTask(task)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.tasks[task.ID] = stored

	r.logger.Debug("task indexed", "task_id", task.ID, "status", task.Status)
	return nil
}

// GetTask retrieves a copy of a task by ID.
func (r *TaskStorage) GetTask(ctx context.Context, id domain.TaskID) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	task, exists := r.tasks[id]
	if !exists {
		return nil, errpkg.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

// replace stores a copy of task. Stored views are never mutated in place.
// Callers hold r.mu for writing.
func (r *TaskStorage) replace(task *domain.Task, at time.Time) {
	stored := cloneTask(task)
	stored.UpdatedAt = at
	r.tasks[task.ID] = stored
}

// GetTasksByStatus returns all tasks with the specified status, oldest first.
func (r *TaskStorage) GetTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	var filtered []*domain.Task
	for _, task := range r.tasks {
		if task.Status == status {
			filtered = append(filtered, cloneTask(task))
		}
	}
	r.mu.RUnlock()

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// Attach keeps the index current from lifecycle signals published on bus.
// It returns the subscription ID.
func (r *TaskStorage) Attach(bus *notify.Bus) string {
	return bus.SubscribeAll(r.apply)
}

func (r *TaskStorage) apply(s notify.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var task *domain.Task
	if stored, exists := r.tasks[s.Task()]; exists {
		task = cloneTask(stored)
	} else {
		if s.Kind() != notify.KindTaskStarted {
			return fmt.Errorf("%w: %s", errpkg.ErrTaskNotFound, s.Task())
		}
		task = &domain.Task{ID: s.Task(), CreatedAt: s.Timestamp()}
	}

	switch sig := s.(type) {
	case notify.TaskStarted:
		task.Status = domain.TaskStatusInProgress
	case notify.TaskProgressed:
		task.Progress = sig.Progress
	case notify.TaskIntermediate:
		resp := sig.Response
		task.Result = &resp
	case notify.TaskCancelled:
		task.Status = domain.TaskStatusCancelled
	case notify.TaskCompleted:
		if resp, ok := sig.Outcome.Response(); ok {
			task.Status = domain.TaskStatusCompleted
			task.Result = &resp
			task.Error = nil
		} else {
			kind, _ := sig.Outcome.Failure()
			task.Status = domain.TaskStatusFailed
			task.Error = &kind
		}
	}
	r.replace(task, s.Timestamp())
	return nil
}
