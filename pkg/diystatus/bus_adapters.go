package diystatus

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrBusClosed is returned when a local bus is published to after being closed.
var ErrBusClosed = errors.New("diystatus: bus closed")

// Publication is one outbound message as seen by a local bus.
type Publication struct {
	Topic    string
	Payload  string
	QoS      byte
	Retained bool
}

// PublishFunc receives every publication sent through a callback bus.
type PublishFunc func(Publication) error

// LocalBus is an in-process Bus that hands publications to a callback or a
// channel instead of a broker. Deliver feeds control messages back in.
type LocalBus struct {
	name    string
	publish PublishFunc

	mu     sync.RWMutex
	subs   map[string]Subscription
	closed bool
	onStop func()
}

// NewCallbackBus adapts a PublishFunc into a Bus so callers can plug arbitrary
// functions without defining structs.
func NewCallbackBus(name string, fn PublishFunc) *LocalBus {
	if name == "" {
		name = "callback"
	}
	return &LocalBus{name: name, publish: fn}
}

// NewChannelBus exposes publications via a channel; it returns the bus, the
// read-only channel and a close function the caller should invoke during
// shutdown.
func NewChannelBus(name string, buffer int) (*LocalBus, <-chan Publication, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Publication, buffer)
	done := make(chan struct{})
	var (
		once    sync.Once
		sending sync.RWMutex
	)

	b := &LocalBus{name: name}
	b.publish = func(p Publication) error {
		sending.RLock()
		defer sending.RUnlock()
		select {
		case <-done:
			return ErrBusClosed
		default:
		}
		select {
		case <-done:
			return ErrBusClosed
		case ch <- p:
			return nil
		}
	}
	// Senders are released through done before ch is closed under the write lock.
	b.onStop = func() {
		once.Do(func() {
			close(done)
			sending.Lock()
			close(ch)
			sending.Unlock()
		})
	}
	return b, ch, b.Close
}

func (b *LocalBus) Name() string { return b.name }

// Connect records the subscriptions that Deliver routes to.
func (b *LocalBus) Connect(_ context.Context, subs []Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	b.subs = make(map[string]Subscription, len(subs))
	for _, s := range subs {
		b.subs[s.Topic] = s
	}
	return nil
}

func (b *LocalBus) Publish(topic, payload string, qos byte, retained bool) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrBusClosed
	}
	if b.publish == nil {
		return fmt.Errorf("callback bus %q: nil handler", b.name)
	}
	return b.publish(Publication{Topic: topic, Payload: payload, QoS: qos, Retained: retained})
}

// Deliver routes an inbound message to the subscription for its topic and
// reports whether one existed.
func (b *LocalBus) Deliver(topic string, payload []byte) bool {
	b.mu.RLock()
	sub, ok := b.subs[topic]
	closed := b.closed
	b.mu.RUnlock()
	if !ok || closed || sub.Handler == nil {
		return false
	}
	sub.Handler(Message{Topic: topic, Payload: payload})
	return true
}

func (b *LocalBus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	if b.onStop != nil {
		b.onStop()
	}
}

var _ Bus = (*LocalBus)(nil)
