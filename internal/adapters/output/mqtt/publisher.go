package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Broker      string
	TopicPrefix string
	ClientID    string
	Username    string
	Password    string
}

type client interface {
	Connect() paho.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Publisher mirrors the selected room and power state to an MQTT broker. It
// is used from the control loop only.
type Publisher struct {
	client  client
	prefix  string
	timeout time.Duration
	asleep  bool
}

type roomState struct {
	Index int    `json:"index"`
	Room  string `json:"room"`
}

func Connect(cfg Config) (*Publisher, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "speaker-remote-" + uuid.NewString()[:8]
	}
	statusTopic := cfg.TopicPrefix + "/status"

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetWill(statusTopic, "offline", 0, true)
	opts.SetOnConnectHandler(func(c paho.Client) {
		log.WithField("broker", cfg.Broker).Info("MQTT connected")
		c.Publish(statusTopic, 0, true, "online")
	})

	c := paho.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connection failed: %w", token.Error())
	}
	return newPublisher(c, cfg.TopicPrefix), nil
}

func newPublisher(c client, prefix string) *Publisher {
	return &Publisher{client: c, prefix: prefix, timeout: 2 * time.Second}
}

func (p *Publisher) PublishRoom(index int, name string) error {
	payload, err := json.Marshal(roomState{Index: index, Room: name})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.publish(p.prefix+"/room", payload)
}

// PublishAsleep marks the remote asleep and disconnects cleanly so the broker
// does not fire the offline will.
func (p *Publisher) PublishAsleep() error {
	err := p.publish(p.prefix+"/status", []byte("asleep"))
	p.client.Disconnect(250)
	p.asleep = true
	return err
}

// Resume reconnects after PublishAsleep. The connect handler republishes
// the online status.
func (p *Publisher) Resume() error {
	if !p.asleep {
		return nil
	}
	token := p.client.Connect()
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("MQTT reconnect timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT reconnect failed: %w", err)
	}
	p.asleep = false
	return nil
}

func (p *Publisher) publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish %s: timed out", topic)
	}
	return token.Error()
}
