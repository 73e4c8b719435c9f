package ports

import "context"

// QoS levels used on the bus.
const (
	AtMostOnce  byte = 0
	AtLeastOnce byte = 1
)

// Message is an inbound bus message.
type Message struct {
	Topic   string
	Payload []byte
}

// MessageHandler is invoked on the bus client's own goroutine and must not block.
type MessageHandler func(Message)

// Subscription is a topic the bus must (re-)subscribe on every connect.
type Subscription struct {
	Topic   string
	QoS     byte
	Handler MessageHandler
}

// Bus is the minimal publish/subscribe surface the agent needs from a message
// broker. Implementations own reconnection and must re-establish every
// subscription passed to Connect after a reconnect.
type Bus interface {
	Connect(ctx context.Context, subs []Subscription) error
	Publish(topic, payload string, qos byte, retained bool) error
	Close()
}
