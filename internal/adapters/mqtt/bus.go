// Package mqtt adapts the Eclipse Paho client to ports.Bus.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/parttimehacker/diystatus/internal/ports"
)

// ErrTimeout is returned when the broker does not acknowledge in time.
var ErrTimeout = errors.New("mqtt: timed out")

// Config holds broker connection details.
type Config struct {
	Address        string        `yaml:"address"`
	Port           int           `yaml:"port"`
	KeepAlive      time.Duration `yaml:"keepalive"`
	ClientID       string        `yaml:"client_id"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.Address == "" {
		c.Address = "localhost"
	}
	if c.Port == 0 {
		c.Port = 1883
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = 60 * time.Second
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 30 * time.Second
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 5 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// BrokerURL is the tcp:// URL handed to paho.
func (c Config) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", c.Address, c.Port)
}

// Bus is a ports.Bus backed by paho. Subscriptions given to Connect are
// registered from the client's on-connect handler, so they are restored
// after every automatic reconnect.
type Bus struct {
	cfg Config
	obs ports.Observability

	newClient func(*paho.ClientOptions) paho.Client

	mu     sync.Mutex
	client paho.Client
	subs   []ports.Subscription
}

// NewBus prepares a bus; clientSuffix (usually the host name) is folded into
// the generated client id when none is configured.
func NewBus(cfg Config, clientSuffix string, obs ports.Observability) *Bus {
	cfg.ApplyDefaults()
	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("diystatus-%s-%s", clientSuffix, uuid.NewString()[:8])
	}
	return &Bus{
		cfg:       cfg,
		obs:       obs,
		newClient: paho.NewClient,
	}
}

func (b *Bus) options() *paho.ClientOptions {
	opts := paho.NewClientOptions().
		AddBroker(b.cfg.BrokerURL()).
		SetClientID(b.cfg.ClientID).
		SetKeepAlive(b.cfg.KeepAlive).
		SetConnectTimeout(b.cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetOrderMatters(false)
	if b.cfg.Username != "" {
		opts.SetUsername(b.cfg.Username)
		opts.SetPassword(b.cfg.Password)
	}

	opts.SetOnConnectHandler(func(c paho.Client) {
		b.obs.LogInfo("bus_connected", ports.Field{Key: "broker", Value: b.cfg.BrokerURL()})
		b.subscribeAll(c)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		b.obs.LogError("bus_connection_lost", err, ports.Field{Key: "broker", Value: b.cfg.BrokerURL()})
	})
	opts.SetReconnectingHandler(func(paho.Client, *paho.ClientOptions) {
		b.obs.LogInfo("bus_reconnecting", ports.Field{Key: "broker", Value: b.cfg.BrokerURL()})
	})
	return opts
}

// Connect dials the broker and blocks until the first connection succeeds,
// the connect timeout passes, or ctx is done.
func (b *Bus) Connect(ctx context.Context, subs []ports.Subscription) error {
	b.mu.Lock()
	if b.client != nil {
		b.mu.Unlock()
		return errors.New("mqtt: already connected")
	}
	b.subs = append([]ports.Subscription(nil), subs...)
	client := b.newClient(b.options())
	b.client = client
	b.mu.Unlock()

	if err := wait(ctx, client.Connect(), b.cfg.ConnectTimeout); err != nil {
		b.mu.Lock()
		b.client = nil
		b.mu.Unlock()
		return fmt.Errorf("connect %s: %w", b.cfg.BrokerURL(), err)
	}
	return nil
}

func (b *Bus) subscribeAll(c paho.Client) {
	b.mu.Lock()
	subs := append([]ports.Subscription(nil), b.subs...)
	b.mu.Unlock()

	for _, sub := range subs {
		handler := sub.Handler
		token := c.Subscribe(sub.Topic, sub.QoS, func(_ paho.Client, m paho.Message) {
			if handler != nil {
				handler(ports.Message{Topic: m.Topic(), Payload: m.Payload()})
			}
		})
		if err := wait(context.Background(), token, b.cfg.ConnectTimeout); err != nil {
			b.obs.LogError("bus_subscribe_failed", err, ports.Field{Key: "topic", Value: sub.Topic})
			continue
		}
		b.obs.LogInfo("bus_subscribed", ports.Field{Key: "topic", Value: sub.Topic}, ports.Field{Key: "qos", Value: sub.QoS})
	}
}

// Publish hands the message to paho and waits for it to be written. It never
// retries; paho owns delivery and reconnection.
func (b *Bus) Publish(topic, payload string, qos byte, retained bool) error {
	b.mu.Lock()
	client := b.client
	b.mu.Unlock()
	if client == nil {
		return errors.New("mqtt: not connected")
	}
	if err := wait(context.Background(), client.Publish(topic, qos, retained, payload), b.cfg.PublishTimeout); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) Close() {
	b.mu.Lock()
	client := b.client
	b.client = nil
	b.mu.Unlock()
	if client != nil {
		client.Disconnect(250)
	}
}

func wait(ctx context.Context, token paho.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ ports.Bus = (*Bus)(nil)
