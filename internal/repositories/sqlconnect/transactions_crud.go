package sqlconnect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"finance_io/internal/models"
	"finance_io/internal/repositories"
)

const transactionColumns = "id, user_id, description, amount, type, category, date, client_ref, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var t models.Transaction
	var ref sql.NullString
	err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Type, &t.Category, &t.Date, &ref, &t.CreatedAt, &t.UpdatedAt)
	t.ClientRef = ref.String
	return t, err
}

// ListTransactions returns the user's transactions, newest date first.
// A zero filter.Limit returns every matching row.
func (s *Store) ListTransactions(ctx context.Context, userID int, filter models.TransactionFilter) ([]models.Transaction, error) {
	var b strings.Builder
	b.WriteString("SELECT " + transactionColumns + " FROM transactions WHERE user_id = ?")
	args := []any{userID}

	if filter.Type != "" {
		b.WriteString(" AND type = ?")
		args = append(args, filter.Type)
	}
	if !filter.From.IsZero() {
		b.WriteString(" AND date >= ?")
		args = append(args, filter.From.Format("2006-01-02"))
	}
	if !filter.To.IsZero() {
		b.WriteString(" AND date <= ?")
		args = append(args, filter.To.Format("2006-01-02"))
	}
	b.WriteString(" ORDER BY date DESC, id DESC")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("error fetching transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *Store) GetTransaction(ctx context.Context, userID, id int) (models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	t, err := scanTransaction(row)
	if err != nil {
		return t, mapErr(err)
	}
	return t, nil
}

func (s *Store) transactionByRef(ctx context.Context, userID int, ref string) (models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? AND client_ref = ?", userID, ref)
	t, err := scanTransaction(row)
	return t, mapErr(err)
}

// CreateTransaction inserts t for its user. When t.ClientRef was already used
// by that user the stored row is returned and created is false.
func (s *Store) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, bool, error) {
	if t.ClientRef != "" {
		existing, err := s.transactionByRef(ctx, t.UserID, t.ClientRef)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return t, false, fmt.Errorf("error checking idempotency key: %w", err)
		}
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions (user_id, description, amount, type, category, date, client_ref) VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.UserID, t.Description, t.Amount, t.Type, t.Category, t.Date.Format("2006-01-02"), nullString(t.ClientRef))
	if err != nil {
		if isDuplicate(err) && t.ClientRef != "" {
			// lost the race against a concurrent replay of the same key
			existing, lookupErr := s.transactionByRef(ctx, t.UserID, t.ClientRef)
			if lookupErr == nil {
				return existing, false, nil
			}
		}
		return t, false, fmt.Errorf("error inserting transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return t, false, fmt.Errorf("error reading transaction id: %w", err)
	}

	created, err := s.GetTransaction(ctx, t.UserID, int(id))
	if err != nil {
		return t, false, err
	}
	return created, true, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	_, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET description = ?, amount = ?, type = ?, category = ?, date = ? WHERE id = ? AND user_id = ?",
		t.Description, t.Amount, t.Type, t.Category, t.Date.Format("2006-01-02"), t.ID, t.UserID)
	if err != nil {
		return t, fmt.Errorf("error updating transaction: %w", err)
	}

	// MySQL reports 0 affected rows for an unchanged row, so existence is
	// checked by reading it back.
	return s.GetTransaction(ctx, t.UserID, t.ID)
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("error deleting transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
