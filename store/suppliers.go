package store

import "database/sql"

// Supplier is one row of the supplier master table.
type Supplier struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	SupplierType *string `json:"supplier_type"`
	IsDefault    bool    `json:"is_default"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"created_at"`
}

// ListSupplierLookup loads the supplier lookup table. Optional columns may be
// missing on older databases, so it degrades to narrower column sets, down to
// the minimal id+name contract.
func (db *DB) ListSupplierLookup() ([]Supplier, error) {
	rows, err := db.Query(`SELECT id, name, supplier_type, is_default, active FROM suppliers`)
	if err == nil {
		defer rows.Close()
		return scanSupplierLookup(rows, true, true)
	}

	rows, err = db.Query(`SELECT id, name, active FROM suppliers`)
	if err == nil {
		defer rows.Close()
		return scanSupplierLookup(rows, false, true)
	}

	rows, err = db.Query(`SELECT id, name FROM suppliers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSupplierLookup(rows, false, false)
}

func scanSupplierLookup(rows *sql.Rows, full, hasActive bool) ([]Supplier, error) {
	var out []Supplier
	for rows.Next() {
		s := Supplier{Active: true}
		var err error
		switch {
		case full:
			var st sql.NullString
			err = rows.Scan(&s.ID, &s.Name, &st, &s.IsDefault, &s.Active)
			s.SupplierType = strPtr(st)
		case hasActive:
			err = rows.Scan(&s.ID, &s.Name, &s.Active)
		default:
			err = rows.Scan(&s.ID, &s.Name)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) ListSuppliers() ([]Supplier, error) {
	rows, err := db.Query(`SELECT id, name, supplier_type, is_default, active, created_at FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Supplier
	for rows.Next() {
		var s Supplier
		var st sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &st, &s.IsDefault, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.SupplierType = strPtr(st)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) GetSupplier(id string) (*Supplier, error) {
	s := &Supplier{}
	var st sql.NullString
	err := db.QueryRow(`SELECT id, name, supplier_type, is_default, active, created_at FROM suppliers WHERE id = ?`, id).
		Scan(&s.ID, &s.Name, &st, &s.IsDefault, &s.Active, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.SupplierType = strPtr(st)
	return s, nil
}

func (db *DB) CreateSupplier(s *Supplier) error {
	_, err := db.Exec(`INSERT INTO suppliers (id, name, supplier_type, is_default, active) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.SupplierType, s.IsDefault, s.Active)
	return err
}

func (db *DB) UpdateSupplier(s *Supplier) error {
	_, err := db.Exec(`UPDATE suppliers SET name=?, supplier_type=?, is_default=?, active=? WHERE id=?`,
		s.Name, s.SupplierType, s.IsDefault, s.Active, s.ID)
	return err
}

func (db *DB) DeleteSupplier(id string) error {
	_, err := db.Exec(`DELETE FROM suppliers WHERE id = ?`, id)
	return err
}
