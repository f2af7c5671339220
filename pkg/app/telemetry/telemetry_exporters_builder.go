package telemetry

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	domain "github.com/NeuralTrust/RealtimeGateway/pkg/domain/telemetry"
	factory "github.com/NeuralTrust/RealtimeGateway/pkg/infra/telemetry"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/telemetry/kafka"
)

// ExportersBuilder turns the telemetry section of the configuration into the
// exporter the session registry publishes lifecycle events to.
type ExportersBuilder interface {
	Build(cfg config.TelemetryConfig) (domain.Exporter, error)
}

type exportersBuilder struct {
	locator   *factory.ExporterLocator
	validator ExportersValidator
}

func NewTelemetryExportersBuilder(locator *factory.ExporterLocator) ExportersBuilder {
	return &exportersBuilder{
		locator:   locator,
		validator: NewTelemetryExportersValidator(locator),
	}
}

func (b *exportersBuilder) Build(cfg config.TelemetryConfig) (domain.Exporter, error) {
	configs := ExporterConfigs(cfg)
	if err := b.validator.Validate(configs); err != nil {
		return nil, err
	}
	return b.locator.Build(configs)
}

// ExporterConfigs lists the enabled exporters of cfg.
func ExporterConfigs(cfg config.TelemetryConfig) []domain.ExporterConfig {
	var configs []domain.ExporterConfig
	if cfg.Kafka.Enabled {
		configs = append(configs, domain.ExporterConfig{
			Name: kafka.ExporterName,
			Settings: map[string]interface{}{
				"host":  cfg.Kafka.Host,
				"port":  cfg.Kafka.Port,
				"topic": cfg.Kafka.Topic,
			},
		})
	}
	return configs
}
