// Package migrations holds the embedded schema migrations applied with bun/migrate.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
