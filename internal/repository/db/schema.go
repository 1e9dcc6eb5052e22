package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Column types that differ between dialects are written as placeholders.
var dialectTypes = map[string]*strings.Replacer{
	DriverSQLite: strings.NewReplacer(
		"{{serial}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{ts}}", "TIMESTAMP",
		"{{money}}", "REAL",
	),
	DriverPostgres: strings.NewReplacer(
		"{{serial}}", "BIGSERIAL PRIMARY KEY",
		"{{ts}}", "TIMESTAMPTZ",
		"{{money}}", "NUMERIC(12,2)",
	),
}

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id {{serial}},
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

const schemaSessions = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    user_id INTEGER NOT NULL,
    is_simulation BOOLEAN NOT NULL DEFAULT FALSE,
    sim_start {{ts}},
    sim_end {{ts}},
    range_start {{ts}},
    range_end {{ts}},
    created_at {{ts}} NOT NULL,
    expires_at {{ts}} NOT NULL
);
`

const schemaSessionsExpiry = `CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at);`

const schemaTimetables = `
CREATE TABLE IF NOT EXISTS employee_timetables (
    id {{serial}},
    employee_id INTEGER NOT NULL,
    rest_day_number INTEGER NOT NULL,
    effective_startdate {{ts}} NOT NULL,
    effective_enddate {{ts}},
    created_at {{ts}} NOT NULL
);
`

const schemaAppointments = `
CREATE TABLE IF NOT EXISTS appointments (
    id {{serial}},
    member_id INTEGER NOT NULL,
    employee_id INTEGER NOT NULL,
    starttime {{ts}} NOT NULL,
    endtime {{ts}} NOT NULL,
    remarks TEXT NOT NULL DEFAULT '',
    created_at {{ts}} NOT NULL
);
`

const schemaMemberVouchers = `
CREATE TABLE IF NOT EXISTS member_vouchers (
    id {{serial}},
    member_name TEXT NOT NULL,
    voucher_name TEXT NOT NULL,
    balance {{money}} NOT NULL DEFAULT 0,
    created_at {{ts}} NOT NULL
);
`

const schemaMemberVouchersKeyset = `CREATE INDEX IF NOT EXISTS idx_member_vouchers_keyset ON member_vouchers (created_at DESC, id DESC);`

// EnsureSchema creates missing tables for the given dialect in one transaction.
func EnsureSchema(db *sqlx.DB, driver string) error {
	types, ok := dialectTypes[driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", driver)
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaUsers,
		schemaSessions,
		schemaSessionsExpiry,
		schemaTimetables,
		schemaAppointments,
		schemaMemberVouchers,
		schemaMemberVouchersKeyset,
	} {
		if _, err := tx.Exec(types.Replace(stmt)); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
