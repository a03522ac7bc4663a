package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/veranemoloko/task-observer/internal/domain"
	"github.com/veranemoloko/task-observer/internal/notify"
)

func TestCollector_CountsSignals(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("test", reg)
	bus := notify.NewBus()
	c.Attach(bus)

	bus.Publish(notify.NewTaskStarted("rec", "a"))
	bus.Publish(notify.NewTaskProgressed("rec", "a", domain.Progress{Completed: 1, Total: 4}))
	bus.Publish(notify.NewTaskIntermediate("rec", "a", domain.Response{URL: "u", BytesRead: 1}))
	bus.Publish(notify.NewTaskCompleted("rec", "a", domain.Success(domain.Response{URL: "u", BytesRead: 4})))
	bus.Publish(notify.NewTaskStarted("rec", "b"))
	bus.Publish(notify.NewTaskCompleted("rec", "b", domain.Failure(domain.ErrorKind{Code: domain.ErrorCodeBadStatus})))
	bus.Publish(notify.NewTaskCancelled("rec", "c"))

	assert.Equal(t, float64(2), testutil.ToFloat64(c.tasksStarted))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.tasksCancelled))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.progressUpdates))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.intermediates))
	assert.Equal(t, float64(4), testutil.ToFloat64(c.downloadBytes))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.tasksCompleted.WithLabelValues("success", "")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.tasksCompleted.WithLabelValues("failure", "bad_status")))
}

func TestCollector_Detach(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())
	bus := notify.NewBus()
	c.Attach(bus)
	c.Detach(bus)

	bus.Publish(notify.NewTaskStarted("rec", "a"))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.tasksStarted))
	assert.Equal(t, 0, bus.SubscriptionCount())
}

func TestCollector_SubscriberFailures(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())
	bus := notify.NewBus(notify.WithFailureHook(c.RecordSubscriberFailure))
	bus.Subscribe(notify.KindTaskCompleted, func(notify.Signal) error {
		return errors.New("broken subscriber")
	})

	bus.Publish(notify.NewTaskCompleted("rec", "a", domain.Success(domain.Response{})))

	assert.Equal(t, float64(1), testutil.ToFloat64(c.subscriberFailures.WithLabelValues("task.completed")))
}
