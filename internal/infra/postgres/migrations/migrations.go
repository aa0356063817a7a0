package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema change, applied in filename order.
var Migrations = migrate.NewMigrations()
