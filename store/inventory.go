package store

import "database/sql"

// InventoryItem is a catalog entry. Supplier assignment lives across several
// generations of columns; the resolver decides which one wins.
type InventoryItem struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Category              string  `json:"category"`
	BaseUnit              string  `json:"base_unit"`
	PackUnit              string  `json:"pack_unit"`
	PackSize              float64 `json:"pack_size"`
	SupplierCategory      *string `json:"supplier_category"`
	DefaultSupplierID     *string `json:"default_supplier_id"`
	DefaultSupplierName   *string `json:"default_supplier_name"`
	SupplierName          *string `json:"supplier_name"`
	VendorName            *string `json:"vendor_name"`
	SecondarySupplierID   *string `json:"secondary_supplier_id"`
	SecondarySupplierName *string `json:"secondary_supplier_name"`
	Active                bool    `json:"active"`
	CreatedAt             string  `json:"created_at"`
}

const inventoryCols = `id, name, category, base_unit, pack_unit, pack_size,
	supplier_category, default_supplier_id, default_supplier_name,
	supplier_name, vendor_name, secondary_supplier_id, secondary_supplier_name,
	active, created_at`

func scanInventoryItem(scan func(dest ...interface{}) error) (*InventoryItem, error) {
	it := &InventoryItem{}
	var sc, dsi, dsn, sn, vn, ssi, ssn sql.NullString
	err := scan(&it.ID, &it.Name, &it.Category, &it.BaseUnit, &it.PackUnit, &it.PackSize,
		&sc, &dsi, &dsn, &sn, &vn, &ssi, &ssn, &it.Active, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	it.SupplierCategory = strPtr(sc)
	it.DefaultSupplierID = strPtr(dsi)
	it.DefaultSupplierName = strPtr(dsn)
	it.SupplierName = strPtr(sn)
	it.VendorName = strPtr(vn)
	it.SecondarySupplierID = strPtr(ssi)
	it.SecondarySupplierName = strPtr(ssn)
	return it, nil
}

func (db *DB) ListInventoryItems() ([]InventoryItem, error) {
	rows, err := db.Query(`SELECT ` + inventoryCols + ` FROM inventory_items ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (db *DB) GetInventoryItem(id string) (*InventoryItem, error) {
	row := db.QueryRow(`SELECT `+inventoryCols+` FROM inventory_items WHERE id = ?`, id)
	return scanInventoryItem(row.Scan)
}

func (db *DB) CreateInventoryItem(it *InventoryItem) error {
	_, err := db.Exec(`INSERT INTO inventory_items
		(id, name, category, base_unit, pack_unit, pack_size, supplier_category,
		 default_supplier_id, default_supplier_name, supplier_name, vendor_name,
		 secondary_supplier_id, secondary_supplier_name, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.Name, it.Category, it.BaseUnit, it.PackUnit, it.PackSize, it.SupplierCategory,
		it.DefaultSupplierID, it.DefaultSupplierName, it.SupplierName, it.VendorName,
		it.SecondarySupplierID, it.SecondarySupplierName, it.Active)
	return err
}

func (db *DB) UpdateInventoryItem(it *InventoryItem) error {
	_, err := db.Exec(`UPDATE inventory_items SET
		name=?, category=?, base_unit=?, pack_unit=?, pack_size=?, supplier_category=?,
		default_supplier_id=?, default_supplier_name=?, supplier_name=?, vendor_name=?,
		secondary_supplier_id=?, secondary_supplier_name=?, active=?
		WHERE id=?`,
		it.Name, it.Category, it.BaseUnit, it.PackUnit, it.PackSize, it.SupplierCategory,
		it.DefaultSupplierID, it.DefaultSupplierName, it.SupplierName, it.VendorName,
		it.SecondarySupplierID, it.SecondarySupplierName, it.Active, it.ID)
	return err
}

func (db *DB) DeleteInventoryItem(id string) error {
	_, err := db.Exec(`DELETE FROM inventory_items WHERE id = ?`, id)
	return err
}
