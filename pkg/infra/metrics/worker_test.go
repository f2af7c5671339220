package metrics_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/telemetry"
	telemetrymocks "github.com/NeuralTrust/RealtimeGateway/pkg/domain/telemetry/mocks"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sessionEvent(typ string) *telemetry.SessionEvent {
	return &telemetry.SessionEvent{Type: typ, SessionID: uuid.New(), ClientID: "client-1"}
}

func TestWorker_ExportsQueuedEventsOnClose(t *testing.T) {
	exporter := telemetrymocks.NewExporter(t)
	opened := sessionEvent(telemetry.EventSessionOpened)
	closed := sessionEvent(telemetry.EventSessionClosed)

	var got []string
	exporter.EXPECT().Handle(mock.Anything, mock.Anything).
		Run(func(_ context.Context, evt *telemetry.SessionEvent) { got = append(got, evt.Type) }).
		Return(nil).Twice()
	exporter.EXPECT().Close().Return().Once()

	w := metrics.NewWorker(testLogger(), exporter, 8)
	require.NoError(t, w.Handle(context.Background(), opened))
	require.NoError(t, w.Handle(context.Background(), closed))
	w.StartWorkers(1)
	w.Close()

	assert.Equal(t, []string{telemetry.EventSessionOpened, telemetry.EventSessionClosed}, got)
}

func TestWorker_DropsWhenFull(t *testing.T) {
	exporter := telemetrymocks.NewExporter(t)
	exporter.EXPECT().Handle(mock.Anything, mock.Anything).Return(nil).Once()
	exporter.EXPECT().Close().Return().Once()

	w := metrics.NewWorker(testLogger(), exporter, 1)
	require.NoError(t, w.Handle(context.Background(), sessionEvent(telemetry.EventSessionOpened)))
	require.NoError(t, w.Handle(context.Background(), sessionEvent(telemetry.EventSessionClosed)))
	w.StartWorkers(2)
	w.Close()
}

func TestWorker_ExporterErrorIsLogged(t *testing.T) {
	exporter := telemetrymocks.NewExporter(t)
	exporter.EXPECT().Handle(mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	exporter.EXPECT().Name().Return("kafka").Once()
	exporter.EXPECT().Close().Return().Once()

	w := metrics.NewWorker(testLogger(), exporter, 4)
	w.StartWorkers(1)
	require.NoError(t, w.Handle(context.Background(), sessionEvent(telemetry.EventSessionClosed)))
	w.Close()
}

func TestWorker_HandleAfterCloseIsIgnored(t *testing.T) {
	exporter := telemetrymocks.NewExporter(t)
	exporter.EXPECT().Close().Return().Once()

	w := metrics.NewWorker(testLogger(), exporter, 4)
	w.StartWorkers(1)
	w.Close()
	w.Close()

	assert.NoError(t, w.Handle(context.Background(), sessionEvent(telemetry.EventSessionOpened)))
}
