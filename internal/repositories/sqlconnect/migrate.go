package sqlconnect

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"finance_io/pkg/utils"
)

//go:embed schema.sql
var schema string

// statements splits the embedded schema on ';'. The schema holds no
// procedures or string literals containing semicolons.
func statements() []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Migrate creates any missing tables. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	utils.Logger.Info("database schema is up to date")
	return nil
}
