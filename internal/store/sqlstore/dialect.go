package sqlstore

import (
	"fmt"
	"strings"

	"github.com/BartekS5/legacysync/pkg/database"
)

// dialect captures the few places the supported SQL engines disagree:
// bind variables, identity columns, and how an insert returns its id.
type dialect struct {
	name     string
	driver   string
	identity string
	text     string
	keyText  string
	boolean  string
	stamp    string
	bigint   string
	integer  string
}

var dialects = map[string]dialect{
	"sqlite": {
		name: "sqlite", driver: database.DriverSQLite,
		identity: "INTEGER PRIMARY KEY AUTOINCREMENT",
		text:     "TEXT", keyText: "TEXT", boolean: "INTEGER",
		stamp: "TIMESTAMP", bigint: "INTEGER", integer: "INTEGER",
	},
	"postgres": {
		name: "postgres", driver: database.DriverPostgres,
		identity: "BIGSERIAL PRIMARY KEY",
		text:     "TEXT", keyText: "TEXT", boolean: "BOOLEAN",
		stamp: "TIMESTAMPTZ", bigint: "BIGINT", integer: "INTEGER",
	},
	"sqlserver": {
		name: "sqlserver", driver: database.DriverSQLServer,
		identity: "BIGINT IDENTITY(1,1) PRIMARY KEY",
		text:     "NVARCHAR(MAX)", keyText: "NVARCHAR(400)", boolean: "BIT",
		stamp: "DATETIME2", bigint: "BIGINT", integer: "INT",
	},
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported sql store driver '%s'", name)
	}
	return d, nil
}

// rebind rewrites '?' placeholders into the engine's bind syntax.
func (d dialect) rebind(query string) string {
	if d.name == "sqlite" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		switch d.name {
		case "postgres":
			fmt.Fprintf(&b, "$%d", n)
		case "sqlserver":
			fmt.Fprintf(&b, "@p%d", n)
		}
	}
	return b.String()
}

// insert builds an INSERT that yields the generated id as a single row.
func (d dialect) insert(table string, cols []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	names := strings.Join(cols, ", ")
	if d.name == "sqlserver" {
		return d.rebind(fmt.Sprintf("INSERT INTO %s (%s) OUTPUT INSERTED.id VALUES (%s)", table, names, marks))
	}
	return d.rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id", table, names, marks))
}

func (d dialect) createTable(table, body string) string {
	if d.name == "sqlserver" {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)", table, table, body)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, body)
}

func (d dialect) createUniqueIndex(name, table, cols string) string {
	if d.name == "sqlserver" {
		return fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'%s') CREATE UNIQUE INDEX %s ON %s (%s)", name, name, table, cols)
	}
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)", name, table, cols)
}

func (d dialect) schema() []string {
	return []string{
		d.createTable("environments", fmt.Sprintf(`
			id %[1]s,
			name %[3]s NOT NULL,
			description %[2]s,
			type %[6]s NOT NULL,
			server %[3]s,
			port %[6]s,
			cics_region %[3]s,
			active %[4]s NOT NULL,
			created_at %[5]s NOT NULL,
			updated_at %[5]s,
			created_by %[3]s,
			updated_by %[3]s`, d.identity, d.text, d.keyText, d.boolean, d.stamp, d.integer)),
		d.createTable("users", fmt.Sprintf(`
			id %[1]s,
			login %[3]s NOT NULL,
			name %[3]s NOT NULL,
			email %[3]s NOT NULL,
			email_key %[3]s NOT NULL,
			area %[3]s,
			title %[3]s,
			phone %[3]s,
			is_admin %[4]s NOT NULL,
			can_approve %[4]s NOT NULL,
			active %[4]s NOT NULL,
			created_at %[5]s NOT NULL,
			updated_at %[5]s,
			created_by %[3]s,
			updated_by %[3]s`, d.identity, d.text, d.keyText, d.boolean, d.stamp)),
		d.createUniqueIndex("ux_users_login", "users", "login"),
		d.createUniqueIndex("ux_users_email_key", "users", "email_key"),
		d.createTable("requests", fmt.Sprintf(`
			id %[1]s,
			number %[3]s NOT NULL,
			title %[2]s NOT NULL,
			description %[2]s,
			justification %[2]s,
			classification %[3]s NOT NULL,
			status %[3]s NOT NULL,
			priority %[7]s NOT NULL,
			requester %[3]s NOT NULL,
			requester_area %[3]s,
			environment_id %[6]s NOT NULL,
			user_id %[6]s,
			active %[4]s NOT NULL,
			created_at %[5]s NOT NULL,
			updated_at %[5]s,
			created_by %[3]s,
			updated_by %[3]s`, d.identity, d.text, d.keyText, d.boolean, d.stamp, d.bigint, d.integer)),
		d.createUniqueIndex("ux_requests_number", "requests", "number"),
		d.createTable("config_entries", fmt.Sprintf(`
			id %[1]s,
			file_name %[3]s NOT NULL,
			section %[3]s NOT NULL,
			entry_key %[3]s NOT NULL,
			value %[2]s,
			description %[2]s,
			type %[3]s NOT NULL,
			critical %[4]s NOT NULL,
			active %[4]s NOT NULL,
			created_at %[5]s NOT NULL,
			updated_at %[5]s,
			created_by %[3]s,
			updated_by %[3]s`, d.identity, d.text, d.keyText, d.boolean, d.stamp)),
		d.createUniqueIndex("ux_config_entries_key", "config_entries", "file_name, section, entry_key"),
	}
}
