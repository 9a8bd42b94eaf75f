package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	mqttQoS             = 1
	mqttDisconnectQuiet = 250 // ms
	mqttTimeout         = 10 * time.Second
)

// MQTT carries notifications over an MQTT broker. The broker keeps a single
// callback per topic, so handlers are fanned out locally and the broker
// subscription lives as long as any local handler does.
type MQTT struct {
	client mqtt.Client
	local  *Local

	mu   sync.Mutex
	refs map[string]int
}

var _ Bus = (*MQTT)(nil)

// NewMQTT connects to brokerURL with the given client id.
func NewMQTT(brokerURL, clientID string) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", brokerURL).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if err := wait(client.Connect()); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return &MQTT{client: client, local: NewLocal(), refs: make(map[string]int)}, nil
}

func (m *MQTT) Publish(_ context.Context, topic string, payload []byte) error {
	if err := wait(m.client.Publish(topic, mqttQoS, false, payload)); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

func (m *MQTT) Subscribe(ctx context.Context, topic string, h Handler) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refs[topic] == 0 {
		cb := func(_ mqtt.Client, msg mqtt.Message) {
			_ = m.local.Publish(context.Background(), msg.Topic(), msg.Payload())
		}
		if err := wait(m.client.Subscribe(topic, mqttQoS, cb)); err != nil {
			return nil, fmt.Errorf("mqtt subscribe %s: %w", topic, err)
		}
	}
	m.refs[topic]++

	cancelLocal, _ := m.local.Subscribe(ctx, topic, h)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancelLocal()

			m.mu.Lock()
			defer m.mu.Unlock()
			m.refs[topic]--
			if m.refs[topic] > 0 {
				return
			}
			delete(m.refs, topic)
			if err := wait(m.client.Unsubscribe(topic)); err != nil {
				log.Warn().Err(err).Str("topic", topic).Msg("failed to unsubscribe")
			}
		})
	}, nil
}

func (m *MQTT) Close() error {
	m.client.Disconnect(mqttDisconnectQuiet)
	_ = m.local.Close()
	return nil
}

func wait(token mqtt.Token) error {
	if !token.WaitTimeout(mqttTimeout) {
		return fmt.Errorf("timed out after %s", mqttTimeout)
	}
	return token.Error()
}
