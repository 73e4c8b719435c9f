package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/parttimehacker/diystatus/pkg/diystatus"
)

// Prints every publication instead of sending it to a broker.
func main() {
	flow, err := diystatus.Conf("./config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	flow.Config().Metrics.Disabled = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	callback := func(p diystatus.Publication) error {
		fmt.Printf("%s %s = %s (qos=%d retained=%t)\n",
			time.Now().Format(time.RFC3339), p.Topic, p.Payload, p.QoS, p.Retained)
		return nil
	}

	if err := flow.Run(ctx, diystatus.StreamOutCallback("stdout", callback)); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("agent error: %v", err)
	}
}
