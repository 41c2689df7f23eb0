package sqlconnect

import (
	"database/sql"
	"errors"

	"finance_io/internal/repositories"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

// Store implements every repository on one *sql.DB.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// mapErr translates driver errors into repository sentinels.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return repositories.ErrNotFound
	case isDuplicate(err):
		return repositories.ErrDuplicate
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
