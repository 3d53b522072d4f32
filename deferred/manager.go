package deferred

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"supplyline/fulfill"
	"supplyline/store"
)

// ErrValidation marks a request rejected before any store call.
var ErrValidation = errors.New("validation failed")

// ErrConflict marks a concurrent-modification mismatch. Callers must discard
// local state and reload.
var ErrConflict = errors.New("conflicting concurrent modification")

// Store is the slice of the data store the bridge needs.
type Store interface {
	GetDeferredItem(id string) (*store.DeferredItem, error)
	CreateDeferredItem(d *store.DeferredItem) error
	UpdateDeferredItemStatus(id, status string) error
	RescheduleDeferredItem(id string, at time.Time) error
	DeleteDeferredItem(id string) error

	CreateSupplierDraft(d *store.SupplierDraftItem) error
	DeleteSupplierDraft(id string) error
	DeleteSupplierDraftsByDeferredItem(deferredItemID string) error

	UpdateOrderItemStatusIf(ids []string, from, to string) (int64, error)
}

// Manager owns the Order Later lifecycle: queued items, their promotion into
// supplier drafts, and the status handshake with the source order lines.
type Manager struct {
	store Store
}

func NewManager(s Store) *Manager {
	return &Manager{store: s}
}

// runPaired is the optimistic-concurrency helper: create a local record,
// confirm the paired remote transition, and undo the creation when the
// confirmation does not go through. Every create-then-transition flow in this
// package runs through it.
func runPaired(create func() error, confirm func() error, rollback func() error) error {
	if err := create(); err != nil {
		return err
	}
	if err := confirm(); err != nil {
		if rbErr := rollback(); rbErr != nil {
			log.Printf("deferred: rollback failed: %v", rbErr)
		}
		return err
	}
	return nil
}

// consumeLines transitions the given order lines from pending to the target
// status. A row count mismatch means another manager got there first.
func (m *Manager) consumeLines(ids []string, to string) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := m.store.UpdateOrderItemStatusIf(ids, store.LineStatusPending, to)
	if err != nil {
		return fmt.Errorf("transition order lines: %w", err)
	}
	if n != int64(len(ids)) {
		return fmt.Errorf("%w: %d of %d lines transitioned", ErrConflict, n, len(ids))
	}
	return nil
}

// Promote turns a queued deferred item into a supplier draft. The draft is
// created first; if consuming the source lines fails, the draft is deleted
// and the caller must reload.
func (m *Manager) Promote(deferredID, supplierID, locationGroup string) (*store.SupplierDraftItem, error) {
	if supplierID == "" {
		return nil, fmt.Errorf("%w: supplier is required", ErrValidation)
	}
	if locationGroup != fulfill.GroupSushi && locationGroup != fulfill.GroupPoki {
		return nil, fmt.Errorf("%w: unknown location group %q", ErrValidation, locationGroup)
	}

	d, err := m.store.GetDeferredItem(deferredID)
	if err != nil {
		return nil, fmt.Errorf("load deferred item: %w", err)
	}
	if d.Status != store.DeferredStatusQueued {
		return nil, fmt.Errorf("%w: deferred item is %s", ErrConflict, d.Status)
	}

	draft := &store.SupplierDraftItem{
		ID:              uuid.New().String(),
		DeferredItemID:  d.ID,
		SupplierID:      supplierID,
		InventoryItemID: d.ItemID,
		Name:            d.ItemName,
		Quantity:        d.Quantity,
		UnitType:        store.UnitTypeBase,
		UnitLabel:       d.Unit,
		LocationGroup:   locationGroup,
		LocationID:      d.LocationID,
		LocationName:    d.LocationName,
		Note:            d.Note,
	}

	err = runPaired(
		func() error { return m.store.CreateSupplierDraft(draft) },
		func() error { return m.consumeLines(d.SourceOrderItemIDs, store.LineStatusConsumed) },
		func() error { return m.store.DeleteSupplierDraft(draft.ID) },
	)
	if err != nil {
		return nil, err
	}

	if err := m.store.UpdateDeferredItemStatus(d.ID, store.DeferredStatusAdded); err != nil {
		return nil, fmt.Errorf("mark deferred item added: %w", err)
	}
	return draft, nil
}

// Remove deletes a deferred item and any drafts promoted from it. Source
// order lines keep their status: restoring them is an explicit manager
// action, never a side effect of removal.
func (m *Manager) Remove(deferredID string) error {
	if err := m.store.DeleteSupplierDraftsByDeferredItem(deferredID); err != nil {
		return fmt.Errorf("delete drafts: %w", err)
	}
	if err := m.store.DeleteDeferredItem(deferredID); err != nil {
		return fmt.Errorf("delete deferred item: %w", err)
	}
	return nil
}

// Reschedule updates only the scheduled time.
func (m *Manager) Reschedule(deferredID string, at time.Time) error {
	if at.IsZero() {
		return fmt.Errorf("%w: schedule time is required", ErrValidation)
	}
	return m.store.RescheduleDeferredItem(deferredID, at)
}

// MoveToLaterRequest captures one "move to Order Later" action from the
// aggregated view.
type MoveToLaterRequest struct {
	SourceOrderItemIDs     []string
	PreferredSupplierID    *string
	PreferredLocationGroup *string
	LocationID             string
	LocationName           string
	ItemID                 *string
	ItemName               string
	Unit                   string
	Quantity               float64
	Note                   string
	ScheduledAt            *time.Time
}

// MoveToLater creates a deferred item recording its source order lines and
// transitions those lines to order_later. A transition mismatch deletes the
// just-created item and reports a conflict.
func (m *Manager) MoveToLater(req MoveToLaterRequest) (*store.DeferredItem, error) {
	if req.ItemName == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrValidation)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	d := &store.DeferredItem{
		ID:                     uuid.New().String(),
		Status:                 store.DeferredStatusQueued,
		ScheduledAt:            req.ScheduledAt,
		SourceOrderItemIDs:     req.SourceOrderItemIDs,
		PreferredSupplierID:    req.PreferredSupplierID,
		PreferredLocationGroup: req.PreferredLocationGroup,
		LocationID:             req.LocationID,
		LocationName:           req.LocationName,
		ItemID:                 req.ItemID,
		ItemName:               req.ItemName,
		Unit:                   req.Unit,
		Quantity:               req.Quantity,
		Note:                   req.Note,
	}

	err := runPaired(
		func() error { return m.store.CreateDeferredItem(d) },
		func() error { return m.consumeLines(req.SourceOrderItemIDs, store.LineStatusOrderLater) },
		func() error { return m.store.DeleteDeferredItem(d.ID) },
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}
