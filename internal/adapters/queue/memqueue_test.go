package queue

import (
	"testing"

	"github.com/parttimehacker/diystatus/internal/ports"
)

func TestMemQueueEnqueueDequeueOrder(t *testing.T) {
	q := NewMemQueue(4)

	fire := ports.Message{Topic: "diy/system/fire", Payload: []byte("ON")}
	who := ports.Message{Topic: "diy/system/who", Payload: []byte("ON")}

	if !q.Enqueue(fire) || !q.Enqueue(who) {
		t.Fatalf("expected successful enqueue")
	}

	batch := q.DequeueBatch(1)
	if len(batch) != 1 || batch[0].Topic != fire.Topic {
		t.Fatalf("unexpected first batch: %+v", batch)
	}

	remaining := q.DequeueBatch(10)
	if len(remaining) != 1 || remaining[0].Topic != who.Topic {
		t.Fatalf("unexpected second batch: %+v", remaining)
	}

	if q.Len() != 0 {
		t.Fatalf("queue should be empty, got %d", q.Len())
	}
	if q.DequeueBatch(1) != nil {
		t.Fatalf("expected nil batch from empty queue")
	}
}

func TestMemQueueCapacity(t *testing.T) {
	q := NewMemQueue(2)

	msg := ports.Message{Topic: "diy/system/panic", Payload: []byte("ON")}

	if !q.Enqueue(msg) || !q.Enqueue(msg) {
		t.Fatalf("expected enqueue within capacity")
	}
	if q.Enqueue(msg) {
		t.Fatalf("enqueue should fail when capacity exceeded")
	}

	q.DequeueBatch(1)
	if !q.Enqueue(msg) {
		t.Fatalf("expected enqueue to succeed after dequeue")
	}
}

func TestMemQueueSignalsReady(t *testing.T) {
	q := NewMemQueue(4)

	select {
	case <-q.Ready():
		t.Fatalf("empty queue must not be ready")
	default:
	}

	q.Enqueue(ports.Message{Topic: "a"})
	q.Enqueue(ports.Message{Topic: "b"})

	select {
	case <-q.Ready():
	default:
		t.Fatalf("expected ready signal after enqueue")
	}
	if got := q.DequeueBatch(0); len(got) != 2 {
		t.Fatalf("expected both messages in one drain, got %d", len(got))
	}
}
