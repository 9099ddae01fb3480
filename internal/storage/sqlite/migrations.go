package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// Emails and (name, owner) pairs are deliberately NOT unique-indexed: the
// find-or-create paths match on them but concurrent duplicate submissions
// are an accepted limitation of this flow.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    auth_id TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS funds (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    byline TEXT NOT NULL DEFAULT '',
    street TEXT NOT NULL DEFAULT '',
    city_state_zip TEXT NOT NULL DEFAULT '',
    investor_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (investor_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS companies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    street TEXT NOT NULL DEFAULT '',
    city_state_zip TEXT NOT NULL DEFAULT '',
    state_of_incorporation TEXT NOT NULL DEFAULT '',
    founder_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (founder_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS investments (
    id TEXT PRIMARY KEY,
    investor_id TEXT,
    fund_id TEXT,
    founder_id TEXT,
    company_id TEXT,
    purchase_amount TEXT NOT NULL DEFAULT '',
    investment_type TEXT NOT NULL DEFAULT '',
    valuation_cap TEXT NOT NULL DEFAULT '',
    discount TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (investor_id) REFERENCES users(id),
    FOREIGN KEY (fund_id) REFERENCES funds(id),
    FOREIGN KEY (founder_id) REFERENCES users(id),
    FOREIGN KEY (company_id) REFERENCES companies(id)
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE INDEX IF NOT EXISTS idx_users_auth_id ON users(auth_id);
CREATE INDEX IF NOT EXISTS idx_funds_investor_id ON funds(investor_id);
CREATE INDEX IF NOT EXISTS idx_companies_founder_id ON companies(founder_id);
CREATE INDEX IF NOT EXISTS idx_investments_created_by ON investments(created_by);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
