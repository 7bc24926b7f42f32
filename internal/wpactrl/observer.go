package wpactrl

import (
	"time"

	"github.com/rbright/wpactrl/internal/event"
)

// Observer receives engine activity, typically to export metrics.
// Calls are made synchronously from the goroutine driving the Client.
type Observer interface {
	// ObserveRequest is called once per exchange with the command verb.
	ObserveRequest(verb string, elapsed time.Duration, err error)
	// ObserveEvent is called for each event accepted from the channel.
	ObserveEvent(ev event.Event)
	// ObserveDroppedEvent is called when the queue evicts an event.
	ObserveDroppedEvent()
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) ObserveRequest(string, time.Duration, error) {}
func (NopObserver) ObserveEvent(event.Event)                    {}
func (NopObserver) ObserveDroppedEvent()                        {}
