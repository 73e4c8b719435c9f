package pipeline

import (
	"context"

	"github.com/parttimehacker/diystatus/internal/ports"
)

// PublishHostFacts publishes the OS version and hardware model as retained
// messages. A fact that cannot be read or sent is logged and skipped. It
// returns the number of facts published.
func PublishHostFacts(ctx context.Context, bus ports.Bus, topics Topics, src ports.FactSource, obs ports.Observability) int {
	facts := []struct {
		name  string
		topic string
		read  func(context.Context) (string, error)
	}{
		{"os", topics.OS(), src.OSVersion},
		{"pi", topics.Pi(), src.HardwareModel},
	}

	published := 0
	for _, f := range facts {
		value, err := f.read(ctx)
		if err != nil {
			obs.LogError("host_fact_unavailable", err, ports.Field{Key: "fact", Value: f.name})
			continue
		}
		if err := bus.Publish(f.topic, value, ports.AtMostOnce, true); err != nil {
			obs.IncCounter(ports.MetricPublishErrorsTotal, 1)
			obs.LogError("bus_publish_failed", err, ports.Field{Key: "topic", Value: f.topic})
			continue
		}
		obs.LogInfo("host_fact_published", ports.Field{Key: "fact", Value: f.name}, ports.Field{Key: "value", Value: value})
		published++
	}
	return published
}
