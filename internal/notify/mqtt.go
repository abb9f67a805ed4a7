package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-times/internal/schedule"
)

// DefaultTopic is the topic prefix triggers are published under.
const DefaultTopic = "prayer-times/triggers"

// disconnectQuiesce is how long Close waits for in-flight work, in ms.
const disconnectQuiesce = 250

// MQTT publishes each trigger as a retained JSON message on
// "<topic>/<identifier>" so late subscribers see the current schedule.
type MQTT struct {
	client mqtt.Client
	topic  string
	qos    byte
	log    zerolog.Logger
}

// DialMQTT connects to broker (e.g. "tcp://localhost:1883").
func DialMQTT(broker, clientID, topic string, log zerolog.Logger) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		log.Debug().Str("broker", broker).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, token.Error())
	}
	return NewMQTT(client, topic, log), nil
}

// NewMQTT wraps an existing client. An empty topic uses DefaultTopic.
func NewMQTT(client mqtt.Client, topic string, log zerolog.Logger) *MQTT {
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTT{client: client, topic: strings.TrimSuffix(topic, "/"), qos: 1, log: log}
}

// Topic returns the topic a trigger identifier is published on.
func (m *MQTT) Topic(identifier string) string {
	return m.topic + "/" + identifier
}

// RemoveAll clears the retained message of every known identifier.
func (m *MQTT) RemoveAll(ctx context.Context) error {
	var errs []error
	for _, id := range schedule.Identifiers() {
		if err := m.publish(ctx, m.Topic(id), []byte{}); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Add publishes t as a retained message.
func (m *MQTT) Add(ctx context.Context, t schedule.Trigger) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode trigger %s: %w", t.Identifier, err)
	}
	if err := m.publish(ctx, m.Topic(t.Identifier), payload); err != nil {
		return fmt.Errorf("failed to publish trigger %s: %w", t.Identifier, err)
	}
	m.log.Debug().Str("topic", m.Topic(t.Identifier)).Msg("trigger published")
	return nil
}

func (m *MQTT) publish(ctx context.Context, topic string, payload []byte) error {
	token := m.client.Publish(topic, m.qos, true, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects the client.
func (m *MQTT) Close() {
	m.client.Disconnect(disconnectQuiesce)
}
