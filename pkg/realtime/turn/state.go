package turn

import (
	"context"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/ratelimit"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/orchestrator"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/protocol"
	"github.com/google/uuid"
)

type State int32

const (
	StateIdle State = iota
	StateListening
	StateCommitting
	StateResponding
	StateError
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateCommitting:
		return "committing"
	case StateResponding:
		return "responding"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	ErrBackpressure     = domain.NewError(domain.CodeProtocol, "too many pending events, slow down")
	ErrControllerClosed = domain.NewError(domain.CodeSessionClosed, "session is closed")
)

//go:generate mockery --name=Orchestrator --dir=. --output=./mocks --filename=orchestrator_mock.go --case=underscore --with-expecter
type Orchestrator interface {
	Run(ctx context.Context, turn orchestrator.Turn, out chan<- orchestrator.Result)
}

// Emitter delivers stamped server events to the client connection. It must
// be safe for concurrent use.
//
//go:generate mockery --name=Emitter --dir=. --output=./mocks --filename=emitter_mock.go --case=underscore --with-expecter
type Emitter interface {
	Emit(ctx context.Context, ev protocol.Event) error
}

// RateLimiter consumes cost units of the named limit for a client. A zero
// cost only reads the current status.
//
//go:generate mockery --name=RateLimiter --dir=. --output=./mocks --filename=rate_limiter_mock.go --case=underscore --with-expecter
type RateLimiter interface {
	Allow(ctx context.Context, clientID string, sessionID uuid.UUID, name string, cost int) (*ratelimit.RateLimit, bool, error)
}

type Metrics interface {
	EventSent(eventType string)
	EventReceived(eventType string)
	ErrorEmitted(code domain.Code)
	TurnFinished(status string)
}

type noopMetrics struct{}

func (noopMetrics) EventSent(string) {}
func (noopMetrics) EventReceived(string) {}
func (noopMetrics) ErrorEmitted(domain.Code) {}
func (noopMetrics) TurnFinished(string) {}
