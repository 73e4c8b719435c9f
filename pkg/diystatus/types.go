package diystatus

import (
	"github.com/parttimehacker/diystatus/internal/app/pipeline"
	"github.com/parttimehacker/diystatus/internal/domain"
	"github.com/parttimehacker/diystatus/internal/ports"
)

// Sample is one reading of CPU load, CPU temperature and free disk space.
type Sample = domain.Sample

// Averages is what gets published at each slot.
type Averages = domain.Averages

// Sampler reads the host; swap it for simulators or other platforms.
type Sampler = ports.Sampler

// FactSource reads the OS version and hardware model published at startup.
type FactSource = ports.FactSource

// Bus is the publish/subscribe transport (MQTT by default).
type Bus = ports.Bus

// Message is an inbound bus message.
type Message = ports.Message

// Subscription binds a topic to a handler on the bus.
type Subscription = ports.Subscription

// Archive keeps a copy of every published set of averages.
type Archive = ports.Archive

// ControlQueue buffers control messages between the bus and the dispatcher.
type ControlQueue = ports.ControlQueue

// Observability emits logs and metrics.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Clock supplies wall-clock time to the schedule.
type Clock = pipeline.Clock

// ControlTopic identifies a broadcast control action.
type ControlTopic = pipeline.ControlTopic

// ControlHandler reacts to one control message.
type ControlHandler = pipeline.ControlHandler

// Control topics.
const (
	Fire  = pipeline.Fire
	Panic = pipeline.Panic
	Who   = pipeline.Who
)
