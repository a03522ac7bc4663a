package repository

import (
	"context"

	"github.com/veranemoloko/task-observer/internal/domain"
)

// TaskRepo defines the interface for task index operations.
type TaskRepo interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id domain.TaskID) (*domain.Task, error)
	GetTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)
}
