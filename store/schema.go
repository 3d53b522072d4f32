package store

const schema = `
CREATE TABLE IF NOT EXISTS admin_users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS suppliers (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    supplier_type TEXT,
    is_default    INTEGER NOT NULL DEFAULT 0,
    active        INTEGER NOT NULL DEFAULT 1,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS locations (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    short_code TEXT NOT NULL DEFAULT '',
    active     INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS inventory_items (
    id                      TEXT PRIMARY KEY,
    name                    TEXT NOT NULL,
    category                TEXT NOT NULL DEFAULT 'dry',
    base_unit               TEXT NOT NULL DEFAULT '',
    pack_unit               TEXT NOT NULL DEFAULT '',
    pack_size               REAL NOT NULL DEFAULT 0,
    supplier_category       TEXT,
    default_supplier_id     TEXT,
    default_supplier_name   TEXT,
    supplier_name           TEXT,
    vendor_name             TEXT,
    secondary_supplier_id   TEXT,
    secondary_supplier_name TEXT,
    active                  INTEGER NOT NULL DEFAULT 1,
    created_at              TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS orders (
    id          TEXT PRIMARY KEY,
    location_id TEXT NOT NULL REFERENCES locations(id),
    user_id     TEXT NOT NULL REFERENCES users(id),
    status      TEXT NOT NULL DEFAULT 'submitted',
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

CREATE TABLE IF NOT EXISTS order_items (
    id                   TEXT PRIMARY KEY,
    order_id             TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    inventory_item_id    TEXT NOT NULL,
    unit_type            TEXT NOT NULL DEFAULT 'base',
    input_mode           TEXT NOT NULL DEFAULT 'quantity',
    quantity             REAL NOT NULL DEFAULT 0,
    remaining_reported   REAL,
    decided_quantity     REAL,
    decided_by           TEXT,
    decided_at           TEXT,
    note                 TEXT NOT NULL DEFAULT '',
    supplier_override_id TEXT,
    status               TEXT NOT NULL DEFAULT 'pending',
    created_at           TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at           TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_status ON order_items(status);

CREATE TABLE IF NOT EXISTS deferred_items (
    id                       TEXT PRIMARY KEY,
    status                   TEXT NOT NULL DEFAULT 'queued',
    scheduled_at             TEXT,
    source_order_item_ids    TEXT NOT NULL DEFAULT '[]',
    preferred_supplier_id    TEXT,
    preferred_location_group TEXT,
    location_id              TEXT NOT NULL DEFAULT '',
    location_name            TEXT NOT NULL DEFAULT '',
    item_id                  TEXT,
    item_name                TEXT NOT NULL,
    unit                     TEXT NOT NULL DEFAULT '',
    quantity                 REAL NOT NULL DEFAULT 0,
    note                     TEXT NOT NULL DEFAULT '',
    created_at               TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at               TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_deferred_status ON deferred_items(status);

CREATE TABLE IF NOT EXISTS supplier_drafts (
    id                TEXT PRIMARY KEY,
    deferred_item_id  TEXT NOT NULL REFERENCES deferred_items(id) ON DELETE CASCADE,
    supplier_id       TEXT NOT NULL,
    inventory_item_id TEXT,
    name              TEXT NOT NULL,
    category          TEXT NOT NULL DEFAULT 'dry',
    quantity          REAL NOT NULL DEFAULT 0,
    unit_type         TEXT NOT NULL DEFAULT 'base',
    unit_label        TEXT NOT NULL DEFAULT '',
    location_group    TEXT NOT NULL DEFAULT 'sushi',
    location_id       TEXT NOT NULL DEFAULT '',
    location_name     TEXT NOT NULL DEFAULT '',
    note              TEXT NOT NULL DEFAULT '',
    created_at        TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_drafts_supplier ON supplier_drafts(supplier_id);

CREATE TABLE IF NOT EXISTS outbox (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    topic      TEXT NOT NULL,
    payload    BLOB NOT NULL,
    msg_type   TEXT NOT NULL DEFAULT '',
    retries    INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    sent_at    TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;
`

func (db *DB) migrate() error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	// Graceful migrations for existing DBs
	db.Exec("ALTER TABLE suppliers ADD COLUMN supplier_type TEXT")
	db.Exec("ALTER TABLE suppliers ADD COLUMN is_default INTEGER NOT NULL DEFAULT 0")
	db.Exec("ALTER TABLE inventory_items ADD COLUMN secondary_supplier_id TEXT")
	db.Exec("ALTER TABLE inventory_items ADD COLUMN secondary_supplier_name TEXT")
	db.Exec("ALTER TABLE order_items ADD COLUMN supplier_override_id TEXT")
	db.Exec("ALTER TABLE deferred_items ADD COLUMN preferred_location_group TEXT")

	return nil
}
