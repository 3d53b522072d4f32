package messaging

import (
	"encoding/json"
	"log"
	"time"

	"supplyline/config"
	"supplyline/engine"
)

// ChangeReporter publishes a change notice for every local mutation the
// engine commits, so peer nodes can reload.
type ChangeReporter struct {
	client *Client
	cfg    *config.Config
	subID  engine.SubscriberID
	bus    *engine.EventBus
}

// NewChangeReporter creates a reporter wired to the engine's event bus.
func NewChangeReporter(client *Client, cfg *config.Config, bus *engine.EventBus) *ChangeReporter {
	return &ChangeReporter{client: client, cfg: cfg, bus: bus}
}

// Start subscribes to data-change events.
func (r *ChangeReporter) Start() {
	r.subID = r.bus.SubscribeTypes(func(evt engine.Event) {
		changed := evt.Payload.(engine.DataChangedEvent)
		r.publish(changed.Table)
	}, engine.EventDataChanged)
}

// Stop unsubscribes from the bus.
func (r *ChangeReporter) Stop() {
	r.bus.Unsubscribe(r.subID)
}

func (r *ChangeReporter) publish(table string) {
	if !r.client.IsConnected() {
		return
	}
	notice := ChangeNotice{
		Table:  table,
		NodeID: r.cfg.NodeID(),
		At:     time.Now(),
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		log.Printf("encode change notice: %v", err)
		return
	}
	if err := r.client.Publish(r.cfg.Messaging.ChangesTopic, payload); err != nil {
		log.Printf("publish change notice for %s: %v", table, err)
	}
}
