package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskExists     = errors.New("task already exists")
	ErrTaskFinished   = errors.New("task already finished")
	ErrServiceClosed  = errors.New("service is shutting down")
)
