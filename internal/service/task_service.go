package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veranemoloko/task-observer/internal/domain"
	errpkg "github.com/veranemoloko/task-observer/internal/errors"
	"github.com/veranemoloko/task-observer/internal/observer"
	repo "github.com/veranemoloko/task-observer/internal/repository"
	"github.com/veranemoloko/task-observer/internal/validation"
)

// Downloader runs one task to a terminal state, reporting to its delegate.
type Downloader interface {
	Download(ctx context.Context, task *domain.Task) (domain.Outcome, error)
}

// EventSource is the read side of the recorder.
type EventSource interface {
	ID() string
	RecordsFor(task domain.TaskID) []observer.Record
	Totals() (observer.Counts, int)
}

// Options configures a TaskService.
type Options struct {
	Workers   int
	QueueSize int
}

type downloadJob struct {
	ctx  context.Context
	task *domain.Task
}

// TaskService accepts download requests, schedules one task per URL on a
// fixed worker pool and answers queries from the task index and recorder.
type TaskService struct {
	taskRepo   repo.TaskRepo
	downloader Downloader
	events     EventSource
	validator  *validation.URLValidator
	logger     *slog.Logger

	queue  chan downloadJob
	group  errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	// lifecycle guards closed; Submit holds it for reading while enqueueing.
	lifecycle sync.RWMutex
	closed    bool

	mu      sync.Mutex
	cancels map[domain.TaskID]context.CancelFunc
}

// NewTaskService starts the worker pool.
func NewTaskService(
	taskRepo repo.TaskRepo,
	downloader Downloader,
	events EventSource,
	validator *validation.URLValidator,
	logger *slog.Logger,
	opts Options,
) *TaskService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &TaskService{
		taskRepo:   taskRepo,
		downloader: downloader,
		events:     events,
		validator:  validator,
		logger:     logger,
		queue:      make(chan downloadJob, opts.QueueSize),
		ctx:        ctx,
		cancel:     cancel,
		cancels:    make(map[domain.TaskID]context.CancelFunc),
	}

	for i := 0; i < opts.Workers; i++ {
		workerID := i + 1
		s.group.Go(func() error {
			s.runWorker(workerID)
			return nil
		})
	}

	logger.Info("task service started", "workers", opts.Workers, "queue_size", opts.QueueSize)
	return s
}

func (s *TaskService) runWorker(workerID int) {
	for {
		select {
		case <-s.ctx.Done():
			s.drain()
			return
		case job := <-s.queue:
			s.process(workerID, job)
		}
	}
}

// drain finishes queued jobs. Their contexts are already cancelled, so each
// one is reported as cancelled without touching the network.
func (s *TaskService) drain() {
	for {
		select {
		case job := <-s.queue:
			s.process(0, job)
		default:
			return
		}
	}
}

func (s *TaskService) process(workerID int, job downloadJob) {
	defer s.forget(job.task.ID)

	outcome, err := s.downloader.Download(job.ctx, job.task)
	if err != nil {
		s.logger.Debug("task ended without completion", "worker_id", workerID, "task_id", job.task.ID, "reason", err)
		return
	}
	s.logger.Debug("task finished", "worker_id", workerID, "task_id", job.task.ID, "outcome", outcome.String())
}

func (s *TaskService) forget(id domain.TaskID) {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	delete(s.cancels, id)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// Submit validates urls, indexes one pending task per URL and queues them.
// On error the IDs queued so far are returned alongside it.
func (s *TaskService) Submit(ctx context.Context, urls []string) ([]domain.TaskID, error) {
	if err := s.validator.ValidateURLs(urls); err != nil {
		return nil, fmt.Errorf("%w: %w", errpkg.ErrInvalidRequest, err)
	}

	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	if s.closed {
		return nil, errpkg.ErrServiceClosed
	}

	ids := make([]domain.TaskID, 0, len(urls))
	for _, url := range urls {
		task := &domain.Task{
			ID:        domain.NewTaskID(),
			URL:       url,
			Status:    domain.TaskStatusPending,
			CreatedAt: time.Now(),
		}
		if err := s.taskRepo.CreateTask(ctx, task); err != nil {
			return ids, fmt.Errorf("index task: %w", err)
		}

		taskCtx, cancel := context.WithCancel(s.ctx)
		s.mu.Lock()
		s.cancels[task.ID] = cancel
		s.mu.Unlock()

		job := downloadJob{ctx: taskCtx, task: task}
		select {
		case s.queue <- job:
		case <-ctx.Done():
			cancel()
			s.process(0, job)
			return ids, ctx.Err()
		case <-s.ctx.Done():
			cancel()
			s.process(0, job)
			return ids, errpkg.ErrServiceClosed
		}

		ids = append(ids, task.ID)
		s.logger.Info("task queued", "task_id", task.ID, "url", url)
	}
	return ids, nil
}

// Get returns the indexed view of a task together with its recorded events.
func (s *TaskService) Get(ctx context.Context, id domain.TaskID) (*domain.TaskResponse, error) {
	task, err := s.taskRepo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	records := s.events.RecordsFor(id)
	views := make([]domain.EventView, 0, len(records))
	for _, rec := range records {
		views = append(views, domain.NewEventView(rec.Seq, rec.RecordedAt, rec.Event))
	}
	return &domain.TaskResponse{Task: *task, Events: views}, nil
}

// List returns the indexed views of every task in status, oldest first.
func (s *TaskService) List(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", errpkg.ErrInvalidRequest, status)
	}
	return s.taskRepo.GetTasksByStatus(ctx, status)
}

// Cancel stops a pending or running task. The pipeline reports the
// cancellation through its delegate once the task notices it.
func (s *TaskService) Cancel(ctx context.Context, id domain.TaskID) error {
	task, err := s.taskRepo.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if task.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", errpkg.ErrTaskFinished, id, task.Status)
	}

	s.mu.Lock()
	cancel, ok := s.cancels[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", errpkg.ErrTaskFinished, id)
	}

	cancel()
	s.logger.Info("task cancellation requested", "task_id", id)
	return nil
}

// Stats reports the recorder counters.
func (s *TaskService) Stats() domain.StatsResponse {
	counts, events := s.events.Totals()
	return domain.StatsResponse{
		Source:    s.events.ID(),
		Started:   counts.Started,
		Cancelled: counts.Cancelled,
		Completed: counts.Completed,
		Events:    events,
	}
}

// Shutdown stops accepting work, cancels every task and waits for the
// workers to report them.
func (s *TaskService) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down task service")

	s.cancel()

	s.lifecycle.Lock()
	alreadyClosed := s.closed
	s.closed = true
	s.lifecycle.Unlock()
	if alreadyClosed {
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = s.group.Wait()
		s.drain()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("task service shutdown completed")
		return nil
	case <-ctx.Done():
		s.logger.Warn("task service shutdown timed out")
		return ctx.Err()
	}
}
