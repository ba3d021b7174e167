package database

import "database/sql"

// Schema is the full relational layout. Applied by cmd/migrate and by
// test fixtures against :memory: databases.
const Schema = `
CREATE TABLE IF NOT EXISTS owners (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	corporation_id INTEGER UNIQUE NOT NULL,
	corporation_name TEXT NOT NULL DEFAULT '',
	credential_ref TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1,
	is_included_in_service_status INTEGER NOT NULL DEFAULT 1,
	structures_last_sync TEXT,
	structures_last_error INTEGER NOT NULL DEFAULT 0,
	notifications_last_sync TEXT,
	notifications_last_error INTEGER NOT NULL DEFAULT 0,
	forwarding_last_sync TEXT,
	forwarding_last_error INTEGER NOT NULL DEFAULT 0,
	assets_last_sync TEXT,
	assets_last_error INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS structures (
	structure_id INTEGER PRIMARY KEY,
	owner_id INTEGER NOT NULL REFERENCES owners(id),
	category TEXT NOT NULL,
	type_id INTEGER NOT NULL,
	solar_system_id INTEGER NOT NULL,
	planet_id INTEGER,
	moon_id INTEGER,
	name TEXT NOT NULL DEFAULT '',
	position_x REAL,
	position_y REAL,
	position_z REAL,
	state TEXT NOT NULL DEFAULT 'unknown',
	state_timer_start TEXT,
	state_timer_end TEXT,
	fuel_expires_at TEXT,
	unanchors_at TEXT,
	reinforce_hour INTEGER,
	created_at TEXT NOT NULL,
	last_updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_structures_owner ON structures(owner_id, category);

CREATE TABLE IF NOT EXISTS structure_services (
	structure_id INTEGER NOT NULL REFERENCES structures(structure_id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	name_variants TEXT NOT NULL DEFAULT '{}',
	state TEXT NOT NULL,
	UNIQUE(structure_id, name)
);

CREATE TABLE IF NOT EXISTS poco_details (
	structure_id INTEGER PRIMARY KEY REFERENCES structures(structure_id) ON DELETE CASCADE,
	alliance_tax_rate REAL,
	corporation_tax_rate REAL,
	excellent_standing_tax_rate REAL,
	good_standing_tax_rate REAL,
	neutral_standing_tax_rate REAL,
	bad_standing_tax_rate REAL,
	terrible_standing_tax_rate REAL,
	allow_alliance_access INTEGER NOT NULL DEFAULT 0,
	allow_access_with_standings INTEGER NOT NULL DEFAULT 0,
	standing_level INTEGER NOT NULL DEFAULT 0,
	reinforce_exit_start INTEGER NOT NULL DEFAULT 0,
	reinforce_exit_end INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS owner_assets (
	item_id INTEGER PRIMARY KEY,
	owner_id INTEGER NOT NULL REFERENCES owners(id),
	type_id INTEGER NOT NULL,
	location_id INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL DEFAULT 1,
	last_updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_owner_assets_owner ON owner_assets(owner_id);

CREATE TABLE IF NOT EXISTS notifications (
	notification_id INTEGER NOT NULL,
	owner_id INTEGER NOT NULL REFERENCES owners(id),
	sender_id INTEGER NOT NULL DEFAULT 0,
	timestamp TEXT NOT NULL,
	type TEXT NOT NULL,
	text TEXT NOT NULL DEFAULT '',
	is_read INTEGER,
	is_sent INTEGER NOT NULL DEFAULT 0,
	is_timer_added INTEGER NOT NULL DEFAULT 0,
	created TEXT NOT NULL,
	last_updated TEXT NOT NULL,
	UNIQUE(notification_id, owner_id)
);
CREATE INDEX IF NOT EXISTS idx_notifications_unsent ON notifications(owner_id, is_sent);

CREATE TABLE IF NOT EXISTS notification_deliveries (
	notification_id INTEGER NOT NULL,
	owner_id INTEGER NOT NULL,
	webhook_id TEXT NOT NULL,
	sent_at TEXT NOT NULL,
	UNIQUE(notification_id, owner_id, webhook_id)
);

CREATE TABLE IF NOT EXISTS webhooks (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	url TEXT UNIQUE NOT NULL,
	secret TEXT NOT NULL DEFAULT '',
	notification_types TEXT NOT NULL DEFAULT '[]',
	is_active INTEGER NOT NULL DEFAULT 1,
	is_default INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS owner_webhooks (
	owner_id INTEGER NOT NULL REFERENCES owners(id),
	webhook_id TEXT NOT NULL REFERENCES webhooks(id),
	UNIQUE(owner_id, webhook_id)
);

CREATE TABLE IF NOT EXISTS structure_timers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL REFERENCES owners(id),
	structure_id INTEGER NOT NULL,
	notification_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	at TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE(notification_id, owner_id)
);

CREATE TABLE IF NOT EXISTS structure_tags (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	style TEXT NOT NULL DEFAULT 'default',
	is_default INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS structure_tag_links (
	structure_id INTEGER NOT NULL REFERENCES structures(structure_id) ON DELETE CASCADE,
	tag_id TEXT NOT NULL REFERENCES structure_tags(id),
	UNIQUE(structure_id, tag_id)
);
`

// ApplySchema creates all tables and indexes.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
