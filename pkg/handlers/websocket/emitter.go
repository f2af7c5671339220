package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/protocol"
)

var errWriterStopped = errors.New("websocket writer stopped")

// connEmitter queues stamped events for the connection writer. Emit blocks
// while the queue is full so a slow client slows its own session down.
type connEmitter struct {
	out  chan []byte
	done <-chan struct{}
}

func newConnEmitter(size int, done <-chan struct{}) *connEmitter {
	if size <= 0 {
		size = 256
	}
	return &connEmitter{
		out:  make(chan []byte, size),
		done: done,
	}
}

func (e *connEmitter) Emit(ctx context.Context, ev protocol.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", protocol.TypeOf(ev), err)
	}
	select {
	case <-e.done:
		return errWriterStopped
	default:
	}
	select {
	case e.out <- b:
		return nil
	case <-e.done:
		return errWriterStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
