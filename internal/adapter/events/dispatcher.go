package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ryotak125/parts-market/internal/core/domain"
	"github.com/ryotak125/parts-market/internal/port"
)

const publishTimeout = 5 * time.Second

// Dispatcher decouples the order path from broker latency: Publish
// only enqueues, a worker pool drains the queue into the sink. Events
// are best-effort; a failed delivery is logged, not retried.
type Dispatcher struct {
	sink   port.EventPublisher
	queue  chan domain.OrderEvent
	wg     sync.WaitGroup
	logger *zap.Logger
}

func NewDispatcher(sink port.EventPublisher, workers, queueSize int, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		sink:   sink,
		queue:  make(chan domain.OrderEvent, queueSize),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.workerLoop(i)
	}
	return d
}

func (d *Dispatcher) workerLoop(id int) {
	defer d.wg.Done()
	for event := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := d.sink.Publish(ctx, event); err != nil {
			d.logger.Warn("event delivery failed",
				zap.Int("worker", id),
				zap.String("order_id", event.OrderID),
				zap.String("type", event.Type),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (d *Dispatcher) Publish(ctx context.Context, event domain.OrderEvent) error {
	select {
	case d.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue, stops the workers and closes the sink.
func (d *Dispatcher) Close() error {
	close(d.queue)
	d.wg.Wait()
	return d.sink.Close()
}
