package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/telemetry"
)

type ExporterLocator struct {
	exporters map[string]telemetry.Exporter
}

func NewProviderLocator(opts ...ExporterLocatorOption) *ExporterLocator {
	el := &ExporterLocator{
		exporters: make(map[string]telemetry.Exporter),
	}
	for _, opt := range opts {
		opt(el)
	}
	return el
}

func (p *ExporterLocator) GetExporter(exporter telemetry.ExporterConfig) (telemetry.Exporter, error) {
	base, ok := p.exporters[exporter.Name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", exporter.Name)
	}
	if err := base.ValidateConfig(exporter.Settings); err != nil {
		return nil, err
	}
	provider, err := base.WithSettings(exporter.Settings)
	if err != nil {
		return nil, err
	}
	return provider, nil
}

func (p *ExporterLocator) ValidateExporter(exporter telemetry.ExporterConfig) error {
	base, ok := p.exporters[exporter.Name]
	if !ok {
		return fmt.Errorf("unknown provider: %s", exporter.Name)
	}
	return base.ValidateConfig(exporter.Settings)
}

// Build configures every exporter in cfgs and joins them into one. An empty
// list yields the noop exporter.
func (p *ExporterLocator) Build(cfgs []telemetry.ExporterConfig) (telemetry.Exporter, error) {
	if len(cfgs) == 0 {
		return telemetry.NoopExporter(), nil
	}
	multi := &MultiExporter{}
	for _, cfg := range cfgs {
		exp, err := p.GetExporter(cfg)
		if err != nil {
			multi.Close()
			return nil, fmt.Errorf("telemetry exporter %s: %w", cfg.Name, err)
		}
		multi.exporters = append(multi.exporters, exp)
	}
	return multi, nil
}

// MultiExporter fans an event out to several exporters.
type MultiExporter struct {
	exporters []telemetry.Exporter
}

func NewMultiExporter(exporters ...telemetry.Exporter) *MultiExporter {
	return &MultiExporter{exporters: exporters}
}

func (m *MultiExporter) Name() string {
	return "multi"
}

func (m *MultiExporter) ValidateConfig(map[string]interface{}) error {
	return nil
}

func (m *MultiExporter) WithSettings(map[string]interface{}) (telemetry.Exporter, error) {
	return m, nil
}

func (m *MultiExporter) Handle(ctx context.Context, evt *telemetry.SessionEvent) error {
	var errs []error
	for _, exp := range m.exporters {
		if err := exp.Handle(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", exp.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiExporter) Close() {
	for _, exp := range m.exporters {
		exp.Close()
	}
}
