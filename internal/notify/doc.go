// Package notify re-publishes recorded task lifecycle events as typed
// signals so that components with no reference to the recorder can react.
//
// # Signals
//
//   - [TaskStarted]: "task.started"
//   - [TaskCancelled]: "task.cancelled"
//   - [TaskCompleted]: "task.completed", carries the [domain.Outcome]
//   - [TaskProgressed]: "task.progressed", carries the [domain.Progress]
//   - [TaskIntermediate]: "task.intermediate", carries the partial [domain.Response]
//
// Every signal carries the source recorder ID and the task ID.
//
// # Delivery
//
// [Bus.Publish] runs handlers synchronously on the publisher's goroutine,
// after the recorder has stored the event, so a handler may query the
// recorder and observe the update. The subscriber list is snapshotted at
// publish time: a handler registered later never sees an earlier signal.
// A handler that returns an error or panics is logged and reported to the
// [FailureHook]; the remaining handlers still run.
//
//	bus := notify.NewBus(notify.WithLogger(logger))
//	id := bus.Subscribe(notify.KindTaskCompleted, func(s notify.Signal) error {
//	    done := s.(notify.TaskCompleted)
//	    log.Printf("task %s finished: %s", done.Task(), done.Outcome)
//	    return nil
//	})
//	defer bus.Unsubscribe(id)
package notify
