package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/parttimehacker/diystatus/internal/ports"
)

// ControlTopic identifies one of the broadcast control actions.
type ControlTopic int

const (
	Fire ControlTopic = iota
	Panic
	Who
)

// ControlTopics lists every control topic in subscription order.
var ControlTopics = []ControlTopic{Fire, Panic, Who}

func (c ControlTopic) String() string {
	switch c {
	case Fire:
		return "fire"
	case Panic:
		return "panic"
	case Who:
		return "who"
	default:
		return fmt.Sprintf("control(%d)", int(c))
	}
}

// Control queue overflow policies.
const (
	OnControlQueueFullDrop  = "drop"
	OnControlQueueFullBlock = "block"
)

// ControlHandler reacts to one control message.
type ControlHandler func(ctx context.Context, topic ControlTopic, payload []byte)

// Controller subscribes to the control topics and dispatches inbound
// messages to their handlers off the bus goroutine.
type Controller struct {
	topics   Topics
	queue    ports.ControlQueue
	pol      ports.Policy
	obs      ports.Observability
	handlers map[string]dispatch
}

type dispatch struct {
	topic   ControlTopic
	handler ControlHandler
}

// NewController installs NoticeHandler for every control topic; use Handle to
// replace one.
func NewController(topics Topics, queue ports.ControlQueue, pol ports.Policy, obs ports.Observability) *Controller {
	c := &Controller{
		topics:   topics,
		queue:    queue,
		pol:      pol,
		obs:      obs,
		handlers: make(map[string]dispatch, len(ControlTopics)),
	}
	for _, ct := range ControlTopics {
		c.Handle(ct, NoticeHandler(obs))
	}
	return c
}

// Handle sets the handler for a control topic. A nil handler ignores the topic.
func (c *Controller) Handle(ct ControlTopic, h ControlHandler) {
	c.handlers[c.topics.Control(ct)] = dispatch{topic: ct, handler: h}
}

// Subscriptions returns the QoS 1 subscriptions the bus must hold.
func (c *Controller) Subscriptions() []ports.Subscription {
	subs := make([]ports.Subscription, 0, len(ControlTopics))
	for _, ct := range ControlTopics {
		subs = append(subs, ports.Subscription{
			Topic:   c.topics.Control(ct),
			QoS:     ports.AtLeastOnce,
			Handler: c.enqueue,
		})
	}
	return subs
}

func (c *Controller) enqueue(m ports.Message) {
	if !enqueueWithPolicy(c.queue, m, c.pol, c.obs) {
		c.obs.IncCounter(ports.MetricControlDroppedTotal, 1)
	}
}

func enqueueWithPolicy(q ports.ControlQueue, m ports.Message, pol ports.Policy, obs ports.Observability) bool {
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		if ok := q.Enqueue(m); ok {
			return true
		}

		switch pol.OnControlQueueFull {
		case OnControlQueueFullBlock:
			time.Sleep(sleep)
		case OnControlQueueFullDrop, "":
			obs.LogError("control_queue_full_drop", fmt.Errorf("queue full at %d messages", q.Len()),
				ports.Field{Key: "topic", Value: m.Topic})
			return false
		default:
			obs.LogError("control_queue_policy_invalid", fmt.Errorf("policy=%s", pol.OnControlQueueFull))
			return false
		}
	}
}

// Run dispatches queued control messages until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.queue.Ready():
			for _, m := range c.queue.DequeueBatch(0) {
				c.Dispatch(ctx, m)
			}
		}
	}
}

// Dispatch routes one message to its handler. Messages on topics without a
// handler are ignored.
func (c *Controller) Dispatch(ctx context.Context, m ports.Message) bool {
	d, ok := c.handlers[m.Topic]
	if !ok || d.handler == nil {
		return false
	}
	c.obs.IncCounter(ports.MetricControlMessagesTotal, 1)
	d.handler(ctx, d.topic, m.Payload)
	return true
}

// NoticeHandler logs "<topic> message" for an ON payload and ignores anything else.
func NoticeHandler(obs ports.Observability) ControlHandler {
	return func(_ context.Context, topic ControlTopic, payload []byte) {
		if string(payload) != "ON" {
			return
		}
		obs.LogInfo(topic.String()+" message", ports.Field{Key: "control", Value: topic.String()})
	}
}
