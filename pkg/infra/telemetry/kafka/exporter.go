package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/telemetry"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/mitchellh/mapstructure"
)

const (
	ExporterName = "kafka"

	clientID     = "realtime-gateway"
	flushTimeout = 5 * time.Second
)

type Config struct {
	Host  string `mapstructure:"host"`
	Port  string `mapstructure:"port"`
	Topic string `mapstructure:"topic"`
}

func decodeConfig(settings map[string]interface{}) (Config, error) {
	var conf Config
	if err := mapstructure.Decode(settings, &conf); err != nil {
		return conf, fmt.Errorf("invalid kafka config: %w", err)
	}
	switch {
	case conf.Host == "":
		return conf, errors.New("kafka host is required")
	case conf.Port == "":
		return conf, errors.New("kafka port is required")
	case conf.Topic == "":
		return conf, errors.New("kafka topic is required")
	}
	return conf, nil
}

// producer is the subset of *kafka.Producer the exporter uses.
type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// Exporter publishes session lifecycle events, one record per event, keyed
// by session id so both events of a session land on the same partition.
type Exporter struct {
	cfg      Config
	producer producer
}

func NewKafkaExporter() *Exporter {
	return &Exporter{}
}

func (p *Exporter) Name() string {
	return ExporterName
}

func (p *Exporter) ValidateConfig(settings map[string]interface{}) error {
	_, err := decodeConfig(settings)
	return err
}

func (p *Exporter) WithSettings(settings map[string]interface{}) (telemetry.Exporter, error) {
	conf, err := decodeConfig(settings)
	if err != nil {
		return nil, err
	}
	kp, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": fmt.Sprintf("%s:%s", conf.Host, conf.Port),
		"client.id":         clientID,
		"acks":              "all",
		"linger.ms":         5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Exporter{cfg: conf, producer: kp}, nil
}

func (p *Exporter) message(evt *telemetry.SessionEvent) (*kafka.Message, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session event: %w", err)
	}
	ts := evt.EndedAt
	if ts.IsZero() {
		ts = evt.StartedAt
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.cfg.Topic, Partition: kafka.PartitionAny},
		Key:            []byte(evt.SessionID.String()),
		Value:          data,
		Timestamp:      ts,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
			{Key: "client_id", Value: []byte(evt.ClientID)},
		},
	}, nil
}

// Handle publishes evt and waits for the broker acknowledgement or ctx.
func (p *Exporter) Handle(ctx context.Context, evt *telemetry.SessionEvent) error {
	if p.producer == nil {
		return errors.New("kafka producer is not initialized")
	}
	msg, err := p.message(evt)
	if err != nil {
		return err
	}

	deliveryChan := make(chan kafka.Event, 1)
	if err := p.producer.Produce(msg, deliveryChan); err != nil {
		return fmt.Errorf("failed to produce session event: %w", err)
	}

	select {
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %T", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Exporter) Close() {
	if p.producer == nil {
		return
	}
	p.producer.Flush(int(flushTimeout.Milliseconds()))
	p.producer.Close()
}
