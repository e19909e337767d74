// Package migrations holds the bun migrations for the Postgres backend. Migration
// names come from the registering file names.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
