package store

import (
	"database/sql"
	"time"
)

// Order statuses read or written by this service.
const (
	OrderStatusSubmitted = "submitted"
	OrderStatusClosed    = "closed"
)

// Order line statuses.
const (
	LineStatusPending    = "pending"
	LineStatusCancelled  = "cancelled"
	LineStatusOrderLater = "order_later"
	LineStatusConsumed   = "consumed"
	LineStatusFulfilled  = "fulfilled"
)

// Input modes for an order line.
const (
	InputModeQuantity  = "quantity"
	InputModeRemaining = "remaining"
)

// Unit types for an order line.
const (
	UnitTypeBase = "base"
	UnitTypePack = "pack"
)

// Order is one employee submission for one location.
type Order struct {
	ID         string `json:"id"`
	LocationID string `json:"location_id"`
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`

	// Joined fields
	LocationName      string `json:"location_name"`
	LocationShortCode string `json:"location_short_code"`
	UserName          string `json:"user_name"`

	Lines []OrderLine `json:"lines"`
}

// OrderLine is one requested item on an order. Item carries the joined
// inventory row and is nil when the catalog entry no longer exists.
type OrderLine struct {
	ID                 string     `json:"id"`
	OrderID            string     `json:"order_id"`
	InventoryItemID    string     `json:"inventory_item_id"`
	UnitType           string     `json:"unit_type"`
	InputMode          string     `json:"input_mode"`
	Quantity           float64    `json:"quantity"`
	RemainingReported  *float64   `json:"remaining_reported"`
	DecidedQuantity    *float64   `json:"decided_quantity"`
	DecidedBy          *string    `json:"decided_by"`
	DecidedAt          *time.Time `json:"decided_at"`
	Note               string     `json:"note"`
	SupplierOverrideID *string    `json:"supplier_override_id"`
	Status             string     `json:"status"`
	CreatedAt          string     `json:"created_at"`
	UpdatedAt          string     `json:"updated_at"`

	Item *InventoryItem `json:"item"`
}

// ListSubmittedOrders fetches submitted orders with joined location/user data
// and their lines with joined inventory data, optionally scoped to locations.
func (db *DB) ListSubmittedOrders(locationIDs []string) ([]Order, error) {
	q := `SELECT o.id, o.location_id, o.user_id, o.status, o.created_at,
		COALESCE(l.name, ''), COALESCE(l.short_code, ''), COALESCE(u.name, '')
		FROM orders o
		LEFT JOIN locations l ON l.id = o.location_id
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.status = ?`
	args := []interface{}{OrderStatusSubmitted}
	if len(locationIDs) > 0 {
		q += ` AND o.location_id IN (` + placeholders(len(locationIDs)) + `)`
		args = append(args, idArgs(locationIDs)...)
	}
	q += ` ORDER BY o.created_at`

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	index := map[string]int{}
	var orderIDs []string
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.LocationID, &o.UserID, &o.Status, &o.CreatedAt,
			&o.LocationName, &o.LocationShortCode, &o.UserName); err != nil {
			return nil, err
		}
		index[o.ID] = len(orders)
		orderIDs = append(orderIDs, o.ID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	lq := `SELECT oi.id, oi.order_id, oi.inventory_item_id, oi.unit_type, oi.input_mode,
		oi.quantity, oi.remaining_reported, oi.decided_quantity, oi.decided_by, oi.decided_at,
		oi.note, oi.supplier_override_id, oi.status, oi.created_at, oi.updated_at,
		ii.id, ii.name, ii.category, ii.base_unit, ii.pack_unit, ii.pack_size,
		ii.supplier_category, ii.default_supplier_id, ii.default_supplier_name,
		ii.supplier_name, ii.vendor_name, ii.secondary_supplier_id, ii.secondary_supplier_name,
		ii.active, ii.created_at
		FROM order_items oi
		LEFT JOIN inventory_items ii ON ii.id = oi.inventory_item_id
		WHERE oi.order_id IN (` + placeholders(len(orderIDs)) + `)
		ORDER BY oi.created_at`
	lrows, err := db.Query(lq, idArgs(orderIDs)...)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()

	for lrows.Next() {
		var ln OrderLine
		var rr, dq sql.NullFloat64
		var db2, da, note, ovr sql.NullString
		var itID, itName, itCat, itBase, itPack sql.NullString
		var itPackSize sql.NullFloat64
		var sc, dsi, dsn, sn, vn, ssi, ssn sql.NullString
		var itActive sql.NullBool
		var itCreated sql.NullString
		if err := lrows.Scan(&ln.ID, &ln.OrderID, &ln.InventoryItemID, &ln.UnitType, &ln.InputMode,
			&ln.Quantity, &rr, &dq, &db2, &da,
			&note, &ovr, &ln.Status, &ln.CreatedAt, &ln.UpdatedAt,
			&itID, &itName, &itCat, &itBase, &itPack, &itPackSize,
			&sc, &dsi, &dsn, &sn, &vn, &ssi, &ssn,
			&itActive, &itCreated); err != nil {
			return nil, err
		}
		ln.RemainingReported = floatPtr(rr)
		ln.DecidedQuantity = floatPtr(dq)
		ln.DecidedBy = strPtr(db2)
		ln.DecidedAt = scanTimePtr(da)
		ln.Note = note.String
		ln.SupplierOverrideID = strPtr(ovr)
		if itID.Valid {
			ln.Item = &InventoryItem{
				ID:                    itID.String,
				Name:                  itName.String,
				Category:              itCat.String,
				BaseUnit:              itBase.String,
				PackUnit:              itPack.String,
				PackSize:              itPackSize.Float64,
				SupplierCategory:      strPtr(sc),
				DefaultSupplierID:     strPtr(dsi),
				DefaultSupplierName:   strPtr(dsn),
				SupplierName:          strPtr(sn),
				VendorName:            strPtr(vn),
				SecondarySupplierID:   strPtr(ssi),
				SecondarySupplierName: strPtr(ssn),
				Active:                itActive.Bool,
				CreatedAt:             itCreated.String,
			}
		}
		if i, ok := index[ln.OrderID]; ok {
			orders[i].Lines = append(orders[i].Lines, ln)
		}
	}
	if err := lrows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (db *DB) CreateOrder(o *Order) error {
	_, err := db.Exec(`INSERT INTO orders (id, location_id, user_id, status) VALUES (?, ?, ?, ?)`,
		o.ID, o.LocationID, o.UserID, o.Status)
	return err
}

func (db *DB) AddOrderLine(ln *OrderLine) error {
	_, err := db.Exec(`INSERT INTO order_items
		(id, order_id, inventory_item_id, unit_type, input_mode, quantity,
		 remaining_reported, note, supplier_override_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ln.ID, ln.OrderID, ln.InventoryItemID, ln.UnitType, ln.InputMode, ln.Quantity,
		ln.RemainingReported, ln.Note, ln.SupplierOverrideID, ln.Status)
	return err
}

// UpdateOrderItemStatusIf transitions the given lines from one status to
// another and reports how many rows actually changed. Callers compare the
// count to len(ids) to detect concurrent modification.
func (db *DB) UpdateOrderItemStatusIf(ids []string, from, to string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]interface{}{to, from}, idArgs(ids)...)
	res, err := db.Exec(`UPDATE order_items SET status=?, updated_at=datetime('now','localtime')
		WHERE status=? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetSupplierOverride sets (or clears, when supplierID is nil) the manual
// supplier reassignment for a batch of lines, all-or-nothing.
func (db *DB) SetSupplierOverride(ids []string, supplierID *string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	args := append([]interface{}{supplierID}, idArgs(ids)...)
	if _, err := tx.Exec(`UPDATE order_items SET supplier_override_id=?, updated_at=datetime('now','localtime')
		WHERE id IN (`+placeholders(len(ids))+`)`, args...); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SetDecidedQuantity records the manager's decision for a remaining-mode line.
func (db *DB) SetDecidedQuantity(id string, qty float64, decidedBy string) error {
	_, err := db.Exec(`UPDATE order_items SET decided_quantity=?, decided_by=?,
		decided_at=datetime('now','localtime'), updated_at=datetime('now','localtime')
		WHERE id=?`, qty, decidedBy, id)
	return err
}

func (db *DB) UpdateOrderItemNote(id, note string) error {
	_, err := db.Exec(`UPDATE order_items SET note=?, updated_at=datetime('now','localtime') WHERE id=?`, note, id)
	return err
}
