package engine

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"supplyline/fulfill"
	"supplyline/store"
)

// SupplierOrderMessage is the frozen batch written to the outbox and drained
// to the batches topic. Once enqueued it is never re-derived.
type SupplierOrderMessage struct {
	BatchID      string                  `json:"batch_id"`
	NodeID       string                  `json:"node_id"`
	SupplierID   string                  `json:"supplier_id"`
	SupplierName string                  `json:"supplier_name"`
	SentBy       string                  `json:"sent_by"`
	SentAt       time.Time               `json:"sent_at"`
	Regular      []fulfill.RegularItem   `json:"regular_items"`
	Decided      []fulfill.RemainingItem `json:"decided_items"`
}

// SendSupplierBatch freezes and queues one supplier's batch: it re-derives
// the confirmation from a fresh load, writes the message to the outbox, marks
// the contributing lines fulfilled, and retires the sent drafts. A status
// conflict rolls the outbox row back and forces a reload.
func (e *Engine) SendSupplierBatch(supplierID, sentBy string, overrides map[string]float64) (*SupplierOrderMessage, error) {
	if supplierID == "" {
		return nil, fmt.Errorf("%w: supplier is required", ErrValidation)
	}

	set, err := fulfill.LoadPending(e.db, fulfill.LoadOptions{})
	if err != nil {
		return nil, fmt.Errorf("load pending orders: %w", err)
	}
	drafts, err := e.db.ListSupplierDraftsBySupplier(supplierID)
	if err != nil {
		return nil, fmt.Errorf("load drafts: %w", err)
	}
	conf := fulfill.BuildConfirmation(supplierID, set, drafts, overrides)

	// Only decided remaining-mode lines ship; undecided ones stay pending.
	var decided []fulfill.RemainingItem
	var lineIDs []string
	for _, r := range conf.Regular {
		lineIDs = append(lineIDs, r.SourceLineIDs...)
	}
	for _, r := range conf.Remaining {
		if r.DecidedQuantity != nil && *r.DecidedQuantity > 0 {
			decided = append(decided, r)
			lineIDs = append(lineIDs, r.LineID)
		}
	}
	if len(conf.Regular) == 0 && len(decided) == 0 {
		return nil, ErrEmptyBatch
	}

	sentDraftIDs := map[string]struct{}{}
	for _, r := range conf.Regular {
		for _, id := range r.DraftIDs {
			sentDraftIDs[id] = struct{}{}
		}
	}

	supplierName := supplierID
	if s, ok := set.Lookup.ByID(supplierID); ok {
		supplierName = s.Name
	}

	msg := &SupplierOrderMessage{
		BatchID:      uuid.New().String(),
		NodeID:       e.cfg.NodeID(),
		SupplierID:   supplierID,
		SupplierName: supplierName,
		SentBy:       sentBy,
		SentAt:       time.Now(),
		Regular:      conf.Regular,
		Decided:      decided,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	err = e.locks.Do(lineIDs, func() error {
		outboxID, err := e.db.EnqueueOutbox(e.cfg.Messaging.BatchesTopic, payload, "supplier_order")
		if err != nil {
			return fmt.Errorf("enqueue batch: %w", err)
		}

		if len(lineIDs) > 0 {
			n, err := e.db.UpdateOrderItemStatusIf(lineIDs, store.LineStatusPending, store.LineStatusFulfilled)
			if err == nil && n != int64(len(lineIDs)) {
				err = fmt.Errorf("%w: %d of %d lines fulfilled", ErrConflict, n, len(lineIDs))
			}
			if err != nil {
				if rbErr := e.db.DeleteOutbox(outboxID); rbErr != nil {
					log.Printf("rollback outbox %d: %v", outboxID, rbErr)
				}
				e.coordinator.Request()
				return err
			}
		}

		for _, d := range drafts {
			if _, ok := sentDraftIDs[d.ID]; !ok {
				continue
			}
			if err := e.db.DeleteSupplierDraft(d.ID); err != nil {
				log.Printf("delete sent draft %s: %v", d.ID, err)
				continue
			}
			if err := e.db.DeleteDeferredItem(d.DeferredItemID); err != nil {
				log.Printf("delete deferred item %s: %v", d.DeferredItemID, err)
			}
		}

		e.Events.Emit(Event{Type: EventBatchQueued, Payload: BatchQueuedEvent{
			BatchID:      msg.BatchID,
			SupplierID:   supplierID,
			SupplierName: supplierName,
			RegularItems: len(conf.Regular),
			DecidedItems: len(decided),
		}})
		e.dataChanged("orders")
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logFn("batch queued: supplier=%s regular=%d decided=%d", supplierName, len(conf.Regular), len(decided))
	return msg, nil
}
