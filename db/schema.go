// ABOUTME: Database schema definitions and initialization
// ABOUTME: Creates projects, contacts, memberships and activities tables
package db

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	channels TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	company TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	linkedin_urls TEXT NOT NULL DEFAULT '',
	stage TEXT NOT NULL DEFAULT 'New',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);

CREATE TABLE IF NOT EXISTS project_contacts (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE(project_id, contact_id),
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_project_contacts_project ON project_contacts(project_id);

CREATE TABLE IF NOT EXISTS activities (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	contact_id TEXT,
	type TEXT NOT NULL CHECK(type IN ('call', 'email', 'linkedin')),
	created_at TEXT NOT NULL,
	activity_date TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	next_action TEXT NOT NULL DEFAULT '',
	next_action_date TEXT NOT NULL DEFAULT '',
	call_status TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	ln_request_sent INTEGER NOT NULL DEFAULT 0,
	connected INTEGER NOT NULL DEFAULT 0,
	linkedin_account_name TEXT NOT NULL DEFAULT '',
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_activities_project ON activities(project_id);
CREATE INDEX IF NOT EXISTS idx_activities_contact ON activities(contact_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
