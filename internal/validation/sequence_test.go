package validation

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/task-observer/internal/domain"
)

func TestCheckTaskEvents(t *testing.T) {
	progress := domain.ProgressUpdated{Progress: domain.Progress{Completed: 1, Total: 2}}
	partial := domain.IntermediateResultReceived{Response: domain.Response{URL: "u"}}
	done := domain.Completed{Outcome: domain.Success(domain.Response{URL: "u"})}

	tests := []struct {
		name    string
		events  []domain.Event
		wantErr bool
	}{
		{name: "empty", events: nil},
		{name: "start then complete", events: []domain.Event{domain.Started{}, done}},
		{name: "full lifecycle", events: []domain.Event{domain.Started{}, progress, partial, progress, done}},
		{name: "cancel without start", events: []domain.Event{domain.Cancelled{}}},
		{name: "started twice", events: []domain.Event{domain.Started{}, domain.Started{}}, wantErr: true},
		{name: "progress before start", events: []domain.Event{progress}, wantErr: true},
		{name: "complete twice", events: []domain.Event{domain.Started{}, done, done}, wantErr: true},
		{name: "cancel then complete", events: []domain.Event{domain.Started{}, domain.Cancelled{}, done}, wantErr: true},
		{name: "progress after cancel", events: []domain.Event{domain.Started{}, domain.Cancelled{}, progress}, wantErr: true},
		{name: "start after complete", events: []domain.Event{done, domain.Started{}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTaskEvents("task", tt.events)
			if tt.wantErr {
				var orderErr *OrderingError
				require.Error(t, err)
				assert.True(t, errors.As(err, &orderErr))
				assert.Equal(t, domain.TaskID("task"), orderErr.Task)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSequenceChecker_TasksAreIndependent(t *testing.T) {
	c := NewSequenceChecker()

	require.NoError(t, c.Observe("a", domain.Started{}))
	require.NoError(t, c.Observe("b", domain.Started{}))
	require.NoError(t, c.Observe("a", domain.Cancelled{}))

	assert.Error(t, c.Observe("a", domain.Cancelled{}))
	assert.NoError(t, c.Observe("b", domain.Completed{Outcome: domain.Failure(domain.ErrorKind{Code: domain.ErrorCodeNetwork})}))
	assert.Equal(t, 2, c.Tracked())
}

func TestSequenceChecker_Concurrent(t *testing.T) {
	c := NewSequenceChecker()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := domain.NewTaskID()
			for _, ev := range []domain.Event{domain.Started{}, domain.ProgressUpdated{}, domain.Completed{}} {
				if err := c.Observe(id, ev); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected ordering error: %v", err)
	}
	assert.Equal(t, 64, c.Tracked())
}
