package engine

import "time"

// EventType identifies the kind of event emitted by the Engine.
type EventType int

const (
	// Refresh cycle events
	EventRefreshCompleted EventType = iota + 1
	EventRefreshFailed

	// Data mutation events
	EventDataChanged

	// Batch events
	EventBatchQueued
)

// Event is the envelope emitted by the Engine's EventBus.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   interface{}
}

// RefreshCompletedEvent is emitted after every successful load cycle.
type RefreshCompletedEvent struct {
	Groups      int       `json:"groups"`
	Unresolved  int       `json:"unresolved"`
	Issues      int       `json:"issues"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// RefreshFailedEvent is emitted when a load cycle fails. The previous
// snapshot stays in place.
type RefreshFailedEvent struct {
	Error string `json:"error"`
}

// DataChangedEvent is emitted after a local mutation commits, naming only the
// table that changed. Consumers reload fully; no diff payload exists.
type DataChangedEvent struct {
	Table string `json:"table"`
}

// BatchQueuedEvent is emitted when a supplier batch lands in the outbox.
type BatchQueuedEvent struct {
	BatchID      string `json:"batch_id"`
	SupplierID   string `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	RegularItems int    `json:"regular_items"`
	DecidedItems int    `json:"decided_items"`
}
