package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/parttimehacker/diystatus/internal/adapters/queue"
	"github.com/parttimehacker/diystatus/internal/ports"
)

func TestTopicsLayout(t *testing.T) {
	cases := map[string]string{
		testTopics.CPU():          "diy/pi/cpu",
		testTopics.CPUCelsius():   "diy/pi/cpucelsius",
		testTopics.Disk():         "diy/pi/disk",
		testTopics.OS():           "diy/pi/os",
		testTopics.Pi():           "diy/pi/pi",
		testTopics.Control(Fire):  "diy/system/fire",
		testTopics.Control(Panic): "diy/system/panic",
		testTopics.Control(Who):   "diy/system/who",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestControllerSubscriptionsAreQoS1(t *testing.T) {
	c := NewController(testTopics, queue.NewMemQueue(4), ports.Policy{}, newMockObs())

	subs := c.Subscriptions()
	if len(subs) != 3 {
		t.Fatalf("expected 3 subscriptions, got %d", len(subs))
	}
	for i, ct := range ControlTopics {
		if subs[i].Topic != testTopics.Control(ct) || subs[i].QoS != ports.AtLeastOnce || subs[i].Handler == nil {
			t.Fatalf("unexpected subscription %d: %+v", i, subs[i])
		}
	}
}

func TestNoticeHandlerOnlyReactsToON(t *testing.T) {
	obs := newMockObs()
	c := NewController(testTopics, queue.NewMemQueue(4), ports.Policy{}, obs)
	ctx := context.Background()

	c.Dispatch(ctx, ports.Message{Topic: "diy/system/panic", Payload: []byte("OFF")})
	if obs.logged("panic message") {
		t.Fatalf("OFF must not trigger the notice")
	}

	for _, ct := range ControlTopics {
		c.Dispatch(ctx, ports.Message{Topic: testTopics.Control(ct), Payload: []byte("ON")})
		if !obs.logged(ct.String() + " message") {
			t.Fatalf("expected %q to be logged", ct.String()+" message")
		}
	}
}

func TestControllerIgnoresUnknownTopics(t *testing.T) {
	obs := newMockObs()
	c := NewController(testTopics, queue.NewMemQueue(4), ports.Policy{}, obs)

	if c.Dispatch(context.Background(), ports.Message{Topic: "diy/system/reboot", Payload: []byte("ON")}) {
		t.Fatalf("unknown topic must not be dispatched")
	}
	if obs.counter(ports.MetricControlMessagesTotal) != 0 {
		t.Fatalf("unknown topic must not be counted")
	}
}

func TestControllerRunDispatchesQueuedMessages(t *testing.T) {
	obs := newMockObs()
	q := queue.NewMemQueue(4)
	c := NewController(testTopics, q, ports.Policy{}, obs)

	got := make(chan ControlTopic, 1)
	c.Handle(Who, func(_ context.Context, ct ControlTopic, payload []byte) {
		if string(payload) == "ON" {
			got <- ct
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// Deliver through the subscription handler, as the bus would.
	c.Subscriptions()[2].Handler(ports.Message{Topic: "diy/system/who", Payload: []byte("ON")})

	select {
	case ct := <-got:
		if ct != Who {
			t.Fatalf("expected who, got %s", ct)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for dispatch")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func TestEnqueueWithPolicyBlock(t *testing.T) {
	q := &mockQueue{failures: 1}
	pol := ports.Policy{OnControlQueueFull: OnControlQueueFullBlock, IdleSleep: time.Millisecond}

	if ok := enqueueWithPolicy(q, ports.Message{Topic: "diy/system/fire"}, pol, newMockObs()); !ok {
		t.Fatalf("expected enqueue to eventually succeed")
	}
	if q.calls != 2 {
		t.Fatalf("expected two enqueue attempts, got %d", q.calls)
	}
}

func TestEnqueueWithPolicyDrop(t *testing.T) {
	obs := newMockObs()
	c := NewController(testTopics, &mockQueue{failAlways: true}, ports.Policy{OnControlQueueFull: OnControlQueueFullDrop}, obs)

	c.Subscriptions()[0].Handler(ports.Message{Topic: "diy/system/fire", Payload: []byte("ON")})
	if len(obs.errors) == 0 {
		t.Fatalf("expected drop to log an error")
	}
	if obs.counter(ports.MetricControlDroppedTotal) != 1 {
		t.Fatalf("expected dropped message counted")
	}
}

type mockQueue struct {
	failures   int32
	failAlways bool
	calls      int
}

func (m *mockQueue) Enqueue(ports.Message) bool {
	m.calls++
	if m.failAlways {
		return false
	}
	if atomic.LoadInt32(&m.failures) > 0 {
		atomic.AddInt32(&m.failures, -1)
		return false
	}
	return true
}

func (m *mockQueue) DequeueBatch(int) []ports.Message { return nil }
func (m *mockQueue) Len() int                         { return 0 }
func (m *mockQueue) Ready() <-chan struct{}           { return nil }
