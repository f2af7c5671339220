package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/telemetry"
	"github.com/sirupsen/logrus"
)

const (
	defaultQueueSize     = 1000
	defaultExportTimeout = 10 * time.Second
)

// Worker exports session events from a bounded queue so session open and
// close never wait on an exporter. Events are dropped when the queue is full.
type Worker struct {
	telemetry.Exporter
	logger   *logrus.Logger
	taskChan chan *telemetry.SessionEvent
	timeout  time.Duration
	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
}

func NewWorker(logger *logrus.Logger, exporter telemetry.Exporter, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Worker{
		Exporter: exporter,
		logger:   logger,
		taskChan: make(chan *telemetry.SessionEvent, queueSize),
		timeout:  defaultExportTimeout,
	}
}

func (w *Worker) StartWorkers(n int) {
	if n <= 0 {
		n = 1
	}
	w.logger.WithField("workers", n).Info("starting telemetry workers")
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for evt := range w.taskChan {
				w.export(evt)
			}
		}()
	}
}

// Handle queues evt. The caller's context is not used for delivery since it
// usually ends with the session.
func (w *Worker) Handle(_ context.Context, evt *telemetry.SessionEvent) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil
	}
	select {
	case w.taskChan <- evt:
	default:
		w.logger.WithFields(logrus.Fields{
			"session_id": evt.SessionID.String(),
			"event":      evt.Type,
		}).Warn("telemetry queue is full, dropping session event")
	}
	return nil
}

// Close drains queued events and closes the wrapped exporter.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.taskChan)
	w.mu.Unlock()

	w.wg.Wait()
	w.Exporter.Close()
	w.logger.Info("telemetry workers stopped")
}

func (w *Worker) export(evt *telemetry.SessionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.Exporter.Handle(ctx, evt); err != nil {
		w.logger.WithFields(logrus.Fields{
			"session_id": evt.SessionID.String(),
			"event":      evt.Type,
			"exporter":   w.Exporter.Name(),
		}).WithError(err).Error("exporter failed")
	}
}
