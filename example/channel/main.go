package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/parttimehacker/diystatus"
)

func main() {
	flow, err := diystatus.Conf("./config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus, pubs, closeBus := diystatus.NewChannelBus("fanout", 32)
	defer closeBus()

	go fanoutWorker("dashboard", pubs)

	// Simulate a panic broadcast a minute after startup.
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(time.Minute):
			bus.Deliver(flow.Config().Topics.Prefix+"/system/panic", []byte("ON"))
		}
	}()

	if err := flow.Run(ctx, diystatus.StreamOutBus(bus)); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("agent error: %v", err)
	}
}

func fanoutWorker(name string, pubs <-chan diystatus.Publication) {
	for p := range pubs {
		fmt.Printf("[%s] %s -> %s at %s\n", name, p.Topic, p.Payload, time.Now().Format(time.RFC3339))
	}
}
