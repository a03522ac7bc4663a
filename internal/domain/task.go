package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskID identifies one in-flight unit of work. It is minted by the pipeline
// and only referenced by observers.
type TaskID string

// NewTaskID returns a fresh random TaskID.
func NewTaskID() TaskID {
	return TaskID(uuid.NewString())
}

func (id TaskID) String() string { return string(id) }

// Progress is a cumulative (completed, total) pair. A zero Total means the
// pipeline could not predict the final size.
type Progress struct {
	Completed int64 `json:"completed"`
	Total     int64 `json:"total"`
}

// Known reports whether the total size is known.
func (p Progress) Known() bool { return p.Total > 0 }

// Response is a partial or final successful result of a task.
type Response struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	BytesRead   int64  `json:"bytes_read"`
}

// Equal reports whether two responses carry the same values.
func (r Response) Equal(other Response) bool {
	return r.URL == other.URL &&
		r.FileName == other.FileName &&
		r.ContentType == other.ContentType &&
		r.BytesRead == other.BytesRead
}

// Task is the indexed view of a single download task.
type Task struct {
	ID        TaskID     `json:"id"`
	URL       string     `json:"url"`
	Status    TaskStatus `json:"status"`
	Progress  Progress   `json:"progress"`
	Result    *Response  `json:"result,omitempty"`
	Error     *ErrorKind `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
