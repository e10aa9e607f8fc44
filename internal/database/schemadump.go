package database

import (
	"context"
	"fmt"
	"strings"

	"syncmeta-go/internal/database/migrations"
)

const schemaHeader = `-- This file is auto-generated from migration files.
-- DO NOT EDIT MANUALLY. Run 'go generate ./internal/database' to regenerate.
-- Source: internal/database/migrations/files/*.sql

`

// selectUserSchema lists the CREATE statements of user tables and their
// indexes, tables first. Migration bookkeeping is left out.
const selectUserSchema = `
	SELECT sql || ';'
	FROM sqlite_master
	WHERE type IN ('table', 'index')
	  AND sql IS NOT NULL
	  AND name NOT LIKE 'sqlite_%'
	  AND tbl_name != 'schema_migrations'
	ORDER BY type = 'index', name`

// DumpSchema migrates a scratch in-memory database to the latest version and
// renders its schema in the form embedded as Schema.
func DumpSchema(ctx context.Context) (string, error) {
	db, err := OpenConnection(":memory:")
	if err != nil {
		return "", err
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return "", fmt.Errorf("migrating scratch database: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectUserSchema)
	if err != nil {
		return "", fmt.Errorf("listing schema: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString(schemaHeader)
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scanning schema row: %w", err)
		}
		b.WriteString(stmt)
		b.WriteString("\n\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterating schema: %w", err)
	}
	return b.String(), nil
}
