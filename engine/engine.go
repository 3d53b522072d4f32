package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"supplyline/config"
	"supplyline/deferred"
	"supplyline/fulfill"
	"supplyline/store"
	"supplyline/supplier"
)

// LogFunc is the logging callback signature.
type LogFunc func(format string, args ...interface{})

// ErrValidation marks a request rejected before touching the store.
var ErrValidation = errors.New("validation failed")

// ErrConflict means rows changed concurrently; callers must reload rather
// than trust local state.
var ErrConflict = errors.New("conflicting concurrent modification")

// ErrEmptyBatch means a supplier batch had zero eligible items at send time.
var ErrEmptyBatch = errors.New("supplier batch is empty")

// Snapshot is the result of one completed load cycle. The whole value is
// replaced atomically on refresh; nothing inside it is patched in place.
type Snapshot struct {
	Set         *fulfill.PendingSet
	Groups      []fulfill.SupplierGroup
	Unresolved  []fulfill.AggregatedItem
	Issues      []supplier.Issue
	RefreshedAt time.Time
}

// Engine centralizes the fulfillment business logic: it owns the load cycle,
// the current snapshot, the deferred-queue bridge, and every mutating action
// the presentation layer can issue.
type Engine struct {
	cfg        *config.Config
	configPath string
	db         *store.DB
	logFn      LogFunc
	debugFn    LogFunc

	deferredMgr *deferred.Manager
	coordinator *Coordinator
	locks       *ActionLocks

	snapMu sync.RWMutex
	snap   Snapshot

	Events   *EventBus
	stopChan chan struct{}
}

// Config holds the parameters needed to create an Engine.
type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	DB         *store.DB
	LogFunc    LogFunc
	Debug      bool
}

// New creates a new Engine. Call Start() to wire subsystems and run the first
// load cycle.
func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = func(string, ...interface{}) {}
	}
	debugFn := LogFunc(func(string, ...interface{}) {})
	if c.Debug {
		debugFn = logFn
	}
	return &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		db:         c.DB,
		logFn:      logFn,
		debugFn:    debugFn,
		Events:     NewEventBus(),
		locks:      NewActionLocks(),
		stopChan:   make(chan struct{}),
	}
}

// Start creates the managers and runs the initial load.
func (e *Engine) Start() {
	e.deferredMgr = deferred.NewManager(e.db)
	e.coordinator = NewCoordinator(e.cfg.Refresh.Debounce, e.reload)
	e.coordinator.Request()
	e.logFn("Engine started: node=%s debounce=%s", e.cfg.NodeID(), e.cfg.Refresh.Debounce)
}

// Stop shuts down the engine.
func (e *Engine) Stop() {
	select {
	case <-e.stopChan:
	default:
		close(e.stopChan)
	}
	if e.coordinator != nil {
		e.coordinator.Stop()
	}
	e.logFn("Engine stopped")
}

// DB returns the database handle.
func (e *Engine) DB() *store.DB { return e.db }

// AppConfig returns the app config.
func (e *Engine) AppConfig() *config.Config { return e.cfg }

// ConfigPath returns the config file path.
func (e *Engine) ConfigPath() string { return e.configPath }

// Snapshot returns the current aggregated state. Safe for concurrent use;
// callers must treat the contents as read-only.
func (e *Engine) Snapshot() Snapshot {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snap
}

// Refresh requests an immediate reload (manual pull-to-refresh path).
func (e *Engine) Refresh() {
	e.coordinator.Request()
}

// NotifyChange feeds a change notice into the debounced refresh path. Used by
// the messaging subscriber for foreign-node changes.
func (e *Engine) NotifyChange(table string) {
	e.debugFn("change notice: table=%s", table)
	e.coordinator.Notify()
}

// reload runs one full load cycle. On failure the previous snapshot stays in
// place and the failure is surfaced on the bus.
func (e *Engine) reload() {
	set, err := fulfill.LoadPending(e.db, fulfill.LoadOptions{})
	if err != nil {
		e.logFn("refresh failed: %v", err)
		e.Events.Emit(Event{Type: EventRefreshFailed, Payload: RefreshFailedEvent{Error: err.Error()}})
		return
	}
	drafts, err := e.db.ListSupplierDrafts()
	if err != nil {
		e.logFn("refresh failed: list drafts: %v", err)
		e.Events.Emit(Event{Type: EventRefreshFailed, Payload: RefreshFailedEvent{Error: err.Error()}})
		return
	}

	result := fulfill.Aggregate(set, drafts)
	snap := Snapshot{
		Set:         set,
		Groups:      result.Groups,
		Unresolved:  result.Unresolved,
		Issues:      set.Issues.List(),
		RefreshedAt: time.Now(),
	}

	e.snapMu.Lock()
	e.snap = snap
	e.snapMu.Unlock()

	e.Events.Emit(Event{Type: EventRefreshCompleted, Payload: RefreshCompletedEvent{
		Groups:      len(snap.Groups),
		Unresolved:  len(snap.Unresolved),
		Issues:      len(snap.Issues),
		RefreshedAt: snap.RefreshedAt,
	}})
}

// dataChanged announces a committed local mutation and schedules a reload.
func (e *Engine) dataChanged(table string) {
	e.Events.Emit(Event{Type: EventDataChanged, Payload: DataChangedEvent{Table: table}})
	e.coordinator.Notify()
}

// DataChanged is the public entry for mutations committed outside the engine
// (the order intake path and catalog administration).
func (e *Engine) DataChanged(table string) {
	e.dataChanged(table)
}

// MoveSupplier sets a supplier override on a set of order lines. All-or-
// nothing per batch; the aggregation key depends on the effective supplier,
// so callers see the result only through the forced reload.
func (e *Engine) MoveSupplier(ids []string, supplierID string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no order lines given", ErrValidation)
	}
	if supplierID == "" {
		return fmt.Errorf("%w: supplier is required", ErrValidation)
	}
	return e.locks.Do(ids, func() error {
		if err := e.db.SetSupplierOverride(ids, &supplierID); err != nil {
			return fmt.Errorf("set supplier override: %w", err)
		}
		e.dataChanged("order_items")
		return nil
	})
}

// MoveBack clears the supplier override on a set of order lines, reverting
// them to their resolved primary.
func (e *Engine) MoveBack(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no order lines given", ErrValidation)
	}
	return e.locks.Do(ids, func() error {
		if err := e.db.SetSupplierOverride(ids, nil); err != nil {
			return fmt.Errorf("clear supplier override: %w", err)
		}
		e.dataChanged("order_items")
		return nil
	})
}

// CancelLines transitions a set of pending order lines to cancelled. A row
// count mismatch means concurrent modification; nothing is assumed about
// which rows changed.
func (e *Engine) CancelLines(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no order lines given", ErrValidation)
	}
	return e.locks.Do(ids, func() error {
		n, err := e.db.UpdateOrderItemStatusIf(ids, store.LineStatusPending, store.LineStatusCancelled)
		if err != nil {
			return fmt.Errorf("cancel order lines: %w", err)
		}
		if n != int64(len(ids)) {
			e.coordinator.Request()
			return fmt.Errorf("%w: %d of %d lines cancelled", ErrConflict, n, len(ids))
		}
		e.dataChanged("order_items")
		return nil
	})
}

// DecideQuantity records a manager's decision on a remaining-mode line.
func (e *Engine) DecideQuantity(lineID string, qty float64, decidedBy string) error {
	if lineID == "" {
		return fmt.Errorf("%w: order line is required", ErrValidation)
	}
	if qty < 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return fmt.Errorf("%w: quantity must be a non-negative number", ErrValidation)
	}
	if err := e.db.SetDecidedQuantity(lineID, qty, decidedBy); err != nil {
		return fmt.Errorf("set decided quantity: %w", err)
	}
	e.dataChanged("order_items")
	return nil
}

// UpdateNote edits the free-text note on an order line.
func (e *Engine) UpdateNote(lineID, note string) error {
	if lineID == "" {
		return fmt.Errorf("%w: order line is required", ErrValidation)
	}
	if err := e.db.UpdateOrderItemNote(lineID, note); err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	e.dataChanged("order_items")
	return nil
}

// MoveToLater creates a deferred item from the aggregated view.
func (e *Engine) MoveToLater(req deferred.MoveToLaterRequest) (*store.DeferredItem, error) {
	d, err := e.deferredMgr.MoveToLater(req)
	if err != nil {
		if errors.Is(err, deferred.ErrConflict) {
			e.coordinator.Request()
		}
		return nil, err
	}
	e.dataChanged("deferred_items")
	return d, nil
}

// PromoteDeferred promotes a deferred item into a supplier draft.
func (e *Engine) PromoteDeferred(deferredID, supplierID, locationGroup string) (*store.SupplierDraftItem, error) {
	draft, err := e.deferredMgr.Promote(deferredID, supplierID, locationGroup)
	if err != nil {
		if errors.Is(err, deferred.ErrConflict) {
			e.coordinator.Request()
		}
		return nil, err
	}
	e.dataChanged("deferred_items")
	return draft, nil
}

// RemoveDeferred deletes a deferred item and its drafts.
func (e *Engine) RemoveDeferred(deferredID string) error {
	if err := e.deferredMgr.Remove(deferredID); err != nil {
		return err
	}
	e.dataChanged("deferred_items")
	return nil
}

// RescheduleDeferred updates a deferred item's scheduled time.
func (e *Engine) RescheduleDeferred(deferredID string, at time.Time) error {
	if err := e.deferredMgr.Reschedule(deferredID, at); err != nil {
		return err
	}
	e.dataChanged("deferred_items")
	return nil
}

// LocationSplit returns the per-location-group rows for one supplier in the
// current snapshot.
func (e *Engine) LocationSplit(supplierID string) ([]fulfill.LocationGroupedItem, error) {
	snap := e.Snapshot()
	for _, g := range snap.Groups {
		if g.SupplierID == supplierID {
			return fulfill.SplitByLocation(g), nil
		}
	}
	return nil, fmt.Errorf("%w: supplier %s not in current view", ErrValidation, supplierID)
}

// BuildConfirmation re-derives the review/send view for one supplier from a
// fresh load, never from the cached snapshot.
func (e *Engine) BuildConfirmation(supplierID string, overrides map[string]float64) (fulfill.Confirmation, error) {
	if supplierID == "" {
		return fulfill.Confirmation{}, fmt.Errorf("%w: supplier is required", ErrValidation)
	}
	set, err := fulfill.LoadPending(e.db, fulfill.LoadOptions{})
	if err != nil {
		return fulfill.Confirmation{}, fmt.Errorf("load pending orders: %w", err)
	}
	drafts, err := e.db.ListSupplierDraftsBySupplier(supplierID)
	if err != nil {
		return fulfill.Confirmation{}, fmt.Errorf("load drafts: %w", err)
	}
	return fulfill.BuildConfirmation(supplierID, set, drafts, overrides), nil
}
