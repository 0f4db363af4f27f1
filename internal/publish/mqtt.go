// Package publish pushes finished estimates to an MQTT broker so ground
// dashboards can follow runs live without polling the result artifact.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/signalsfoundry/groundtrack-estimator/internal/logging"
	"github.com/signalsfoundry/groundtrack-estimator/model"
)

// Message is the JSON payload published per run.
type Message struct {
	RunID                string  `json:"run_id"`
	AverageSpeedKmPerSec float64 `json:"average_speed_km_per_sec"`
	SampleCount          int     `json:"sample_count"`
	Source               string  `json:"source"`
	ProducedAt           string  `json:"produced_at"` // RFC 3339
}

// Publisher publishes estimates to a fixed topic on one broker.
type Publisher struct {
	client mqtt.Client
	topic  string
	log    logging.Logger
}

// Connect dials the broker, e.g. "tcp://localhost:1883", and returns a
// ready publisher.
func Connect(broker, clientID, topic string, log logging.Logger) (*Publisher, error) {
	if log == nil {
		log = logging.Noop()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt broker %s: %w", broker, token.Error())
	}
	log.Info(context.Background(), "connected to mqtt broker", logging.String("broker", broker), logging.String("topic", topic))

	return &Publisher{client: client, topic: topic, log: log}, nil
}

// Publish sends one estimate. QoS 1: ground stations care about every run,
// and duplicates are harmless for an idempotent payload.
func (p *Publisher) Publish(ctx context.Context, runID, source string, estimate model.SpeedEstimate) error {
	payload, err := json.Marshal(Message{
		RunID:                runID,
		AverageSpeedKmPerSec: estimate.AverageSpeedKmPerSec,
		SampleCount:          estimate.SampleCount,
		Source:               source,
		ProducedAt:           time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal estimate: %w", err)
	}

	token := p.client.Publish(p.topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish estimate: %w", err)
	}
	p.log.Debug(ctx, "estimate published", logging.String("topic", p.topic), logging.Int("bytes", len(payload)))
	return nil
}

// Close disconnects from the broker, allowing in-flight messages to drain.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
