package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExporter is a test mock for telemetry.Exporter
type mockExporter struct {
	name                 string
	validateErr          error
	withSettingsErr      error
	handleErr            error
	withSettingsExporter telemetry.Exporter
	handled              []*telemetry.SessionEvent
	closed               bool
}

func newMockExporter(name string) *mockExporter {
	return &mockExporter{name: name}
}

func (m *mockExporter) Name() string {
	return m.name
}

func (m *mockExporter) ValidateConfig(settings map[string]interface{}) error {
	return m.validateErr
}

func (m *mockExporter) Handle(ctx context.Context, evt *telemetry.SessionEvent) error {
	m.handled = append(m.handled, evt)
	return m.handleErr
}

func (m *mockExporter) WithSettings(settings map[string]interface{}) (telemetry.Exporter, error) {
	if m.withSettingsErr != nil {
		return nil, m.withSettingsErr
	}
	if m.withSettingsExporter != nil {
		return m.withSettingsExporter, nil
	}
	return m, nil
}

func (m *mockExporter) Close() {
	m.closed = true
}

func TestNewProviderLocator_NoOptions(t *testing.T) {
	locator := NewProviderLocator()

	assert.NotNil(t, locator)
	assert.NotNil(t, locator.exporters)
	assert.Empty(t, locator.exporters)
}

func TestNewProviderLocator_WithExporter_OverwritesSameName(t *testing.T) {
	exporter1 := newMockExporter("exporter")
	exporter2 := newMockExporter("exporter")

	locator := NewProviderLocator(
		WithExporter("exporter", exporter1),
		WithExporter("exporter", exporter2),
	)

	assert.Len(t, locator.exporters, 1)
	assert.Equal(t, exporter2, locator.exporters["exporter"])
}

func TestGetExporter(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		configured := newMockExporter("kafka")
		base := newMockExporter("kafka")
		base.withSettingsExporter = configured
		locator := NewProviderLocator(WithExporter("kafka", base))

		result, err := locator.GetExporter(telemetry.ExporterConfig{
			Name:     "kafka",
			Settings: map[string]interface{}{"host": "localhost"},
		})

		require.NoError(t, err)
		assert.Equal(t, configured, result)
	})

	t.Run("unknown provider", func(t *testing.T) {
		result, err := NewProviderLocator().GetExporter(telemetry.ExporterConfig{Name: "unknown"})

		assert.Nil(t, result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider: unknown")
	})

	t.Run("validation error", func(t *testing.T) {
		exporter := newMockExporter("kafka")
		exporter.validateErr = errors.New("kafka host is required")
		locator := NewProviderLocator(WithExporter("kafka", exporter))

		result, err := locator.GetExporter(telemetry.ExporterConfig{Name: "kafka"})

		assert.Nil(t, result)
		assert.EqualError(t, err, "kafka host is required")
	})

	t.Run("with settings error", func(t *testing.T) {
		exporter := newMockExporter("kafka")
		exporter.withSettingsErr = errors.New("failed to create kafka producer")
		locator := NewProviderLocator(WithExporter("kafka", exporter))

		result, err := locator.GetExporter(telemetry.ExporterConfig{Name: "kafka"})

		assert.Nil(t, result)
		assert.EqualError(t, err, "failed to create kafka producer")
	})
}

func TestValidateExporter(t *testing.T) {
	exporter := newMockExporter("kafka")
	locator := NewProviderLocator(WithExporter("kafka", exporter))

	assert.NoError(t, locator.ValidateExporter(telemetry.ExporterConfig{Name: "kafka"}))
	assert.Error(t, locator.ValidateExporter(telemetry.ExporterConfig{Name: "unknown"}))
}

func TestBuild(t *testing.T) {
	t.Run("empty config yields noop", func(t *testing.T) {
		exp, err := NewProviderLocator().Build(nil)

		require.NoError(t, err)
		assert.Equal(t, "noop", exp.Name())
		assert.NoError(t, exp.Handle(context.Background(), &telemetry.SessionEvent{}))
	})

	t.Run("fans out to every exporter", func(t *testing.T) {
		first := newMockExporter("first")
		second := newMockExporter("second")
		second.handleErr = errors.New("broker down")
		locator := NewProviderLocator(WithExporter("first", first), WithExporter("second", second))

		exp, err := locator.Build([]telemetry.ExporterConfig{{Name: "first"}, {Name: "second"}})
		require.NoError(t, err)

		evt := &telemetry.SessionEvent{Type: telemetry.EventSessionClosed, SessionID: uuid.New()}
		err = exp.Handle(context.Background(), evt)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "second: broker down")
		assert.Equal(t, []*telemetry.SessionEvent{evt}, first.handled)
		assert.Equal(t, []*telemetry.SessionEvent{evt}, second.handled)

		exp.Close()
		assert.True(t, first.closed)
		assert.True(t, second.closed)
	})

	t.Run("closes configured exporters on failure", func(t *testing.T) {
		first := newMockExporter("first")
		locator := NewProviderLocator(WithExporter("first", first))

		_, err := locator.Build([]telemetry.ExporterConfig{{Name: "first"}, {Name: "missing"}})

		require.Error(t, err)
		assert.True(t, first.closed)
	})
}
