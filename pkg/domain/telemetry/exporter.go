package telemetry

import (
	"context"
)

//go:generate mockery --name=Exporter --dir=. --output=./mocks --filename=exporter_mock.go --case=underscore --with-expecter
type Exporter interface {
	Name() string
	ValidateConfig(settings map[string]interface{}) error
	Handle(ctx context.Context, evt *SessionEvent) error
	WithSettings(settings map[string]interface{}) (Exporter, error)
	Close()
}
