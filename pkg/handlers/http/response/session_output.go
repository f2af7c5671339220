package response

import "github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"

type SessionOutput struct {
	Session   *session.Session `json:"session"`
	Live      bool             `json:"live"`
	TurnState string           `json:"turn_state,omitempty"`
	Busy      bool             `json:"busy"`
	State     *session.State   `json:"state,omitempty"`
}

type ListOutput[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

func NewListOutput[T any](items []T) ListOutput[T] {
	if items == nil {
		items = []T{}
	}
	return ListOutput[T]{Data: items, Count: len(items)}
}
