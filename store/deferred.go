package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Deferred item statuses.
const (
	DeferredStatusQueued = "queued"
	DeferredStatusAdded  = "added"
)

// DeferredItem is an "Order Later" entry. It may originate from real order
// lines (SourceOrderItemIDs non-empty) or be created from scratch.
type DeferredItem struct {
	ID                     string     `json:"id"`
	Status                 string     `json:"status"`
	ScheduledAt            *time.Time `json:"scheduled_at"`
	SourceOrderItemIDs     []string   `json:"source_order_item_ids"`
	PreferredSupplierID    *string    `json:"preferred_supplier_id"`
	PreferredLocationGroup *string    `json:"preferred_location_group"`
	LocationID             string     `json:"location_id"`
	LocationName           string     `json:"location_name"`
	ItemID                 *string    `json:"item_id"`
	ItemName               string     `json:"item_name"`
	Unit                   string     `json:"unit"`
	Quantity               float64    `json:"quantity"`
	Note                   string     `json:"note"`
	CreatedAt              string     `json:"created_at"`
	UpdatedAt              string     `json:"updated_at"`
}

// SupplierDraftItem is a deferred item promoted into a supplier's working
// draft set. It participates in aggregation like an order line but has no
// source order line of its own.
type SupplierDraftItem struct {
	ID              string  `json:"id"`
	DeferredItemID  string  `json:"deferred_item_id"`
	SupplierID      string  `json:"supplier_id"`
	InventoryItemID *string `json:"inventory_item_id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Quantity        float64 `json:"quantity"`
	UnitType        string  `json:"unit_type"`
	UnitLabel       string  `json:"unit_label"`
	LocationGroup   string  `json:"location_group"`
	LocationID      string  `json:"location_id"`
	LocationName    string  `json:"location_name"`
	Note            string  `json:"note"`
	CreatedAt       string  `json:"created_at"`
}

const deferredCols = `id, status, scheduled_at, source_order_item_ids,
	preferred_supplier_id, preferred_location_group, location_id, location_name,
	item_id, item_name, unit, quantity, note, created_at, updated_at`

func scanDeferredItem(scan func(dest ...interface{}) error) (*DeferredItem, error) {
	d := &DeferredItem{}
	var sched, psi, plg, itemID sql.NullString
	var srcIDs string
	err := scan(&d.ID, &d.Status, &sched, &srcIDs,
		&psi, &plg, &d.LocationID, &d.LocationName,
		&itemID, &d.ItemName, &d.Unit, &d.Quantity, &d.Note, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.ScheduledAt = scanTimePtr(sched)
	d.PreferredSupplierID = strPtr(psi)
	d.PreferredLocationGroup = strPtr(plg)
	d.ItemID = strPtr(itemID)
	if srcIDs != "" {
		json.Unmarshal([]byte(srcIDs), &d.SourceOrderItemIDs)
	}
	return d, nil
}

func (db *DB) ListDeferredItems() ([]DeferredItem, error) {
	rows, err := db.Query(`SELECT ` + deferredCols + ` FROM deferred_items ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DeferredItem
	for rows.Next() {
		d, err := scanDeferredItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (db *DB) GetDeferredItem(id string) (*DeferredItem, error) {
	row := db.QueryRow(`SELECT `+deferredCols+` FROM deferred_items WHERE id = ?`, id)
	return scanDeferredItem(row.Scan)
}

func (db *DB) CreateDeferredItem(d *DeferredItem) error {
	src, err := json.Marshal(d.SourceOrderItemIDs)
	if err != nil {
		return err
	}
	var sched *string
	if d.ScheduledAt != nil {
		s := d.ScheduledAt.Format(timeLayout)
		sched = &s
	}
	_, err = db.Exec(`INSERT INTO deferred_items
		(id, status, scheduled_at, source_order_item_ids, preferred_supplier_id,
		 preferred_location_group, location_id, location_name, item_id, item_name,
		 unit, quantity, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Status, sched, string(src), d.PreferredSupplierID,
		d.PreferredLocationGroup, d.LocationID, d.LocationName, d.ItemID, d.ItemName,
		d.Unit, d.Quantity, d.Note)
	return err
}

func (db *DB) UpdateDeferredItemStatus(id, status string) error {
	_, err := db.Exec(`UPDATE deferred_items SET status=?, updated_at=datetime('now','localtime') WHERE id=?`,
		status, id)
	return err
}

// RescheduleDeferredItem updates only the scheduled time.
func (db *DB) RescheduleDeferredItem(id string, at time.Time) error {
	_, err := db.Exec(`UPDATE deferred_items SET scheduled_at=?, updated_at=datetime('now','localtime') WHERE id=?`,
		at.Format(timeLayout), id)
	return err
}

func (db *DB) DeleteDeferredItem(id string) error {
	_, err := db.Exec(`DELETE FROM deferred_items WHERE id = ?`, id)
	return err
}

// ListConsumedOrderItemIDs returns the ids of order lines already referenced
// by an active deferred entry, so the loader can exclude them from the live
// aggregation.
func (db *DB) ListConsumedOrderItemIDs() (map[string]struct{}, error) {
	rows, err := db.Query(`SELECT source_order_item_ids FROM deferred_items WHERE status IN (?, ?)`,
		DeferredStatusQueued, DeferredStatusAdded)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	consumed := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var ids []string
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			continue
		}
		for _, id := range ids {
			consumed[id] = struct{}{}
		}
	}
	return consumed, rows.Err()
}

const draftCols = `id, deferred_item_id, supplier_id, inventory_item_id, name, category,
	quantity, unit_type, unit_label, location_group, location_id, location_name, note, created_at`

func scanDraft(scan func(dest ...interface{}) error) (*SupplierDraftItem, error) {
	d := &SupplierDraftItem{}
	var invID sql.NullString
	err := scan(&d.ID, &d.DeferredItemID, &d.SupplierID, &invID, &d.Name, &d.Category,
		&d.Quantity, &d.UnitType, &d.UnitLabel, &d.LocationGroup, &d.LocationID, &d.LocationName,
		&d.Note, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.InventoryItemID = strPtr(invID)
	return d, nil
}

func (db *DB) ListSupplierDrafts() ([]SupplierDraftItem, error) {
	rows, err := db.Query(`SELECT ` + draftCols + ` FROM supplier_drafts ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SupplierDraftItem
	for rows.Next() {
		d, err := scanDraft(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (db *DB) ListSupplierDraftsBySupplier(supplierID string) ([]SupplierDraftItem, error) {
	rows, err := db.Query(`SELECT `+draftCols+` FROM supplier_drafts WHERE supplier_id = ? ORDER BY created_at`, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SupplierDraftItem
	for rows.Next() {
		d, err := scanDraft(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (db *DB) CreateSupplierDraft(d *SupplierDraftItem) error {
	_, err := db.Exec(`INSERT INTO supplier_drafts
		(id, deferred_item_id, supplier_id, inventory_item_id, name, category,
		 quantity, unit_type, unit_label, location_group, location_id, location_name, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.DeferredItemID, d.SupplierID, d.InventoryItemID, d.Name, d.Category,
		d.Quantity, d.UnitType, d.UnitLabel, d.LocationGroup, d.LocationID, d.LocationName, d.Note)
	return err
}

func (db *DB) DeleteSupplierDraft(id string) error {
	_, err := db.Exec(`DELETE FROM supplier_drafts WHERE id = ?`, id)
	return err
}

func (db *DB) DeleteSupplierDraftsBySupplier(supplierID string) error {
	_, err := db.Exec(`DELETE FROM supplier_drafts WHERE supplier_id = ?`, supplierID)
	return err
}

func (db *DB) DeleteSupplierDraftsByDeferredItem(deferredItemID string) error {
	_, err := db.Exec(`DELETE FROM supplier_drafts WHERE deferred_item_id = ?`, deferredItemID)
	return err
}
