package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/veranemoloko/task-observer/internal/domain"
	"github.com/veranemoloko/task-observer/internal/notify"
)

// Collector turns lifecycle signals into Prometheus metrics. It only talks
// to the bus and never to the recorder that produced the signals.
type Collector struct {
	tasksStarted       prometheus.Counter
	tasksCancelled     prometheus.Counter
	tasksCompleted     *prometheus.CounterVec
	progressUpdates    prometheus.Counter
	intermediates      prometheus.Counter
	downloadBytes      prometheus.Counter
	subscriberFailures *prometheus.CounterVec

	subscriptions []string
}

// NewCollector registers the collectors on reg. A nil reg uses the default registerer.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = "task_observer"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		tasksStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_started_total",
			Help:      "Total number of tasks started",
		}),
		tasksCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_cancelled_total",
			Help:      "Total number of tasks cancelled",
		}),
		tasksCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Total number of tasks completed, by result and error code",
		}, []string{"result", "code"}),
		progressUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_updates_total",
			Help:      "Total number of progress updates",
		}),
		intermediates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intermediate_results_total",
			Help:      "Total number of intermediate results",
		}),
		downloadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Total bytes of successfully completed tasks",
		}),
		subscriberFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriber_failures_total",
			Help:      "Total number of failed signal handler invocations",
		}, []string{"signal"}),
	}
}

// Attach subscribes the collector to bus.
func (c *Collector) Attach(bus *notify.Bus) {
	c.subscriptions = append(c.subscriptions, bus.SubscribeAll(c.handle))
}

// Detach removes every subscription made by Attach.
func (c *Collector) Detach(bus *notify.Bus) {
	for _, id := range c.subscriptions {
		bus.Unsubscribe(id)
	}
	c.subscriptions = nil
}

// RecordSubscriberFailure matches notify.FailureHook.
func (c *Collector) RecordSubscriberFailure(kind notify.Kind, _ string, _ error) {
	c.subscriberFailures.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) handle(s notify.Signal) error {
	switch sig := s.(type) {
	case notify.TaskStarted:
		c.tasksStarted.Inc()
	case notify.TaskCancelled:
		c.tasksCancelled.Inc()
	case notify.TaskProgressed:
		c.progressUpdates.Inc()
	case notify.TaskIntermediate:
		c.intermediates.Inc()
	case notify.TaskCompleted:
		c.observeCompletion(sig.Outcome)
	}
	return nil
}

func (c *Collector) observeCompletion(outcome domain.Outcome) {
	if resp, ok := outcome.Response(); ok {
		c.tasksCompleted.WithLabelValues("success", "").Inc()
		c.downloadBytes.Add(float64(resp.BytesRead))
		return
	}
	kind, _ := outcome.Failure()
	c.tasksCompleted.WithLabelValues("failure", string(kind.Code)).Inc()
}
