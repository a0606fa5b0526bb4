package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	queueSize   = 1000
	sinkTimeout = 5 * time.Second
)

// Worker fans stored security events out to prometheus and the configured
// sinks on a bounded queue. Tasks are dropped when the queue is full.
type Worker interface {
	Dispatch(event *security.Event)
	StartWorkers(n int)
	Shutdown()
}

type worker struct {
	logger   *logrus.Logger
	sinks    []security.EventSink
	taskChan chan func()
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

func NewWorker(logger *logrus.Logger, sinks ...security.EventSink) Worker {
	return &worker{
		logger:   logger,
		sinks:    sinks,
		taskChan: make(chan func(), queueSize),
	}
}

func (w *worker) Dispatch(event *security.Event) {
	if event == nil {
		return
	}
	w.enqueueTask(func() {
		w.recordPrometheus(event)
	}, event)
	for _, sink := range w.sinks {
		sink := sink
		w.enqueueTask(func() {
			w.handleSink(sink, event)
		}, event)
	}
}

func (w *worker) recordPrometheus(event *security.Event) {
	prometheus.InspectionsTotal.WithLabelValues(string(event.Type), string(event.Severity)).Inc()
	for _, hit := range event.Detections {
		prometheus.DetectionsTotal.WithLabelValues(string(hit.Category)).Inc()
	}
}

func (w *worker) handleSink(sink security.EventSink, event *security.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := sink.Handle(ctx, event); err != nil {
		w.logger.WithFields(logrus.Fields{
			"sink":     sink.Name(),
			"event_id": event.ID,
			"type":     event.Type,
		}).WithError(err).Error("event sink failed")
	}
}

func (w *worker) StartWorkers(n int) {
	if n < 1 {
		n = 1
	}
	w.logger.WithField("workers", n).Info("starting event dispatch workers")
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for task := range w.taskChan {
				task()
			}
		}()
	}
}

// Shutdown stops accepting events, drains the queue and closes the sinks.
func (w *worker) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.taskChan)
	w.mu.Unlock()

	w.logger.Info("shutting down event dispatch workers")
	w.wg.Wait()
	for _, sink := range w.sinks {
		sink.Close()
	}
	w.logger.Info("event dispatch workers stopped")
}

func (w *worker) enqueueTask(task func(), event *security.Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.taskChan <- task:
	default:
		w.logger.WithFields(logrus.Fields{
			"event_id": event.ID,
			"type":     event.Type,
		}).Warn("dispatch queue is full, dropping event task")
	}
}
