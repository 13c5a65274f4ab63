// Package mqtt is the push channel. The backend publishes change events on
// fieldops/changes/<entity>; the Subscriber decodes them and fans them out on
// the in-process event bus. There is no replay on reconnect: the
// reconciliation poll closes any gap.
package mqtt

import (
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/mjoly/fieldops/core/events"
	"github.com/mjoly/fieldops/core/model"
	"github.com/mjoly/fieldops/infra/logger"
	"github.com/mjoly/fieldops/internal/eventbus"
)

// pahoClient is the subset of the Paho client the Subscriber uses.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// changeEnvelope is the wire format of a change event.
type changeEnvelope struct {
	Entity    string          `json:"entity"`
	EventType string          `json:"event_type"`
	Job       *model.Job      `json:"job,omitempty"`
	Provider  *model.Provider `json:"provider,omitempty"`
}

// Subscriber bridges broker change events onto the event bus.
type Subscriber struct {
	cli    pahoClient
	bus    eventbus.EventBus
	topic  string
	qos    map[string]byte
	logger logger.Logger
}

// NewSubscriber connects to the MQTT broker and subscribes to the change
// topic. The subscription is re-established on every reconnect.
func NewSubscriber(cfg Config, bus eventbus.EventBus) (*Subscriber, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_subscriber")
	s := &Subscriber{
		bus:    bus,
		topic:  cfg.ChangesTopic,
		qos:    cfg.QoS,
		logger: log,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		qos := byte(0)
		if q, ok := s.qos["changes"]; ok {
			qos = q
		}
		if token := c.Subscribe(s.topic, qos, s.onChange); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	s.cli = c
	return s, nil
}

func (s *Subscriber) onChange(_ paho.Client, msg paho.Message) {
	var env changeEnvelope
	if err := json.Unmarshal(msg.Payload(), &env); err != nil {
		s.logger.Errorf("failed to decode change event on %s: %v", msg.Topic(), err)
		return
	}
	typ, ok := changeType(env.EventType)
	if !ok {
		s.logger.Warnf("unknown event_type %q on %s", env.EventType, msg.Topic())
		return
	}
	switch env.Entity {
	case "job":
		if env.Job == nil {
			s.logger.Warnf("job change event without job payload on %s", msg.Topic())
			return
		}
		s.bus.Publish(events.JobEvent{Type: typ, Job: *env.Job})
	case "provider":
		if env.Provider == nil {
			s.logger.Warnf("provider change event without provider payload on %s", msg.Topic())
			return
		}
		s.bus.Publish(events.ProviderEvent{Type: typ, Provider: *env.Provider})
	default:
		s.logger.Warnf("unknown entity %q on %s", env.Entity, msg.Topic())
	}
}

func changeType(s string) (events.ChangeType, bool) {
	switch s {
	case string(events.ChangeInsert):
		return events.ChangeInsert, true
	case string(events.ChangeUpdate):
		return events.ChangeUpdate, true
	}
	return "", false
}

// Disconnect gracefully closes the MQTT connection.
func (s *Subscriber) Disconnect() {
	if s.cli != nil && s.cli.IsConnected() {
		s.cli.Disconnect(250)
	}
}
