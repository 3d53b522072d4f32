package messaging

import "time"

// ChangeNotice announces that a table changed on some node. It carries no
// diff payload: receivers always reload fully.
type ChangeNotice struct {
	Table  string    `json:"table"`
	NodeID string    `json:"node_id"`
	At     time.Time `json:"at"`
}
