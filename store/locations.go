package store

// Location is a restaurant location.
type Location struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortCode string `json:"short_code"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// User is an employee who submits orders.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func (db *DB) ListLocations() ([]Location, error) {
	rows, err := db.Query(`SELECT id, name, short_code, active, created_at FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.ShortCode, &l.Active, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (db *DB) CreateLocation(l *Location) error {
	_, err := db.Exec(`INSERT INTO locations (id, name, short_code, active) VALUES (?, ?, ?, ?)`,
		l.ID, l.Name, l.ShortCode, l.Active)
	return err
}

func (db *DB) UpdateLocation(l *Location) error {
	_, err := db.Exec(`UPDATE locations SET name=?, short_code=?, active=? WHERE id=?`,
		l.Name, l.ShortCode, l.Active, l.ID)
	return err
}

func (db *DB) DeleteLocation(id string) error {
	_, err := db.Exec(`DELETE FROM locations WHERE id = ?`, id)
	return err
}

func (db *DB) CreateUser(u *User) error {
	_, err := db.Exec(`INSERT INTO users (id, name) VALUES (?, ?)`, u.ID, u.Name)
	return err
}

func (db *DB) ListUsers() ([]User, error) {
	rows, err := db.Query(`SELECT id, name, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
