package messaging

import (
	"encoding/json"
	"log"

	"supplyline/config"
	"supplyline/engine"
)

// Subscriber listens for change notices from other nodes and feeds them into
// the engine's debounced refresh path.
type Subscriber struct {
	client *Client
	cfg    *config.Config
	eng    *engine.Engine
}

// NewSubscriber creates a new change-notice subscriber.
func NewSubscriber(client *Client, cfg *config.Config, eng *engine.Engine) *Subscriber {
	return &Subscriber{
		client: client,
		cfg:    cfg,
		eng:    eng,
	}
}

// Start subscribes to the changes topic and begins processing notices.
func (s *Subscriber) Start() error {
	return s.client.Subscribe(s.cfg.Messaging.ChangesTopic, s.handleNotice)
}

func (s *Subscriber) handleNotice(payload []byte) {
	var notice ChangeNotice
	if err := json.Unmarshal(payload, &notice); err != nil {
		log.Printf("unmarshal change notice: %v", err)
		return
	}

	// Our own notices already triggered a local reload.
	if notice.NodeID == s.cfg.NodeID() {
		return
	}

	s.eng.NotifyChange(notice.Table)
}
