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

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func selectCategories(ctx context.Context, q queryer, userID int, lock bool) ([]models.Category, error) {
	query := "SELECT id, user_id, name, type, is_default FROM categories WHERE user_id = ? ORDER BY type, name"
	if lock {
		query += " FOR UPDATE"
	}

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListCategories returns the user's categories, seeding the default set the
// first time the user asks for them. users.categories_seeded records the
// seeding, so a user who later deletes every category gets an empty list.
func (s *Store) ListCategories(ctx context.Context, userID int) ([]models.Category, error) {
	categories, err := selectCategories(ctx, s.db, userID, false)
	if err != nil || len(categories) > 0 {
		return categories, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// the user row lock serializes concurrent first requests
	var seeded bool
	err = tx.QueryRowContext(ctx, "SELECT categories_seeded FROM users WHERE id = ? FOR UPDATE", userID).Scan(&seeded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading seeding state: %w", err)
	}

	categories, err = selectCategories(ctx, tx, userID, false)
	if err != nil {
		return nil, err
	}
	if seeded || len(categories) > 0 {
		return categories, tx.Commit()
	}

	defaults := models.DefaultCategories(userID)
	placeholders := make([]string, 0, len(defaults))
	args := make([]any, 0, len(defaults)*4)
	for _, c := range defaults {
		placeholders = append(placeholders, "(?, ?, ?, ?)")
		args = append(args, c.UserID, c.Name, c.Type, c.IsDefault)
	}
	query := "INSERT INTO categories (user_id, name, type, is_default) VALUES " + strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("error seeding default categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE users SET categories_seeded = TRUE WHERE id = ?", userID); err != nil {
		return nil, fmt.Errorf("error marking categories seeded: %w", err)
	}

	categories, err = selectCategories(ctx, tx, userID, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return categories, nil
}

// CreateCategory validates c against the user's set and inserts it.
// Validation failures are the models sentinels.
func (s *Store) CreateCategory(ctx context.Context, c models.Category) (models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return c, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := selectCategories(ctx, tx, c.UserID, true)
	if err != nil {
		return c, err
	}
	if err := models.ValidateCategory(existing, c.Name, c.Type, 0); err != nil {
		return c, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO categories (user_id, name, type, is_default) VALUES (?, ?, ?, ?)",
		c.UserID, c.Name, c.Type, false)
	if err != nil {
		return c, fmt.Errorf("error inserting category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return c, fmt.Errorf("error reading category id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return c, fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.ID = int(id)
	c.IsDefault = false
	return c, nil
}

// UpdateCategory renames or retypes a category of the user.
func (s *Store) UpdateCategory(ctx context.Context, c models.Category) (models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return c, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := selectCategories(ctx, tx, c.UserID, true)
	if err != nil {
		return c, err
	}

	var current *models.Category
	for i := range existing {
		if existing[i].ID == c.ID {
			current = &existing[i]
			break
		}
	}
	if current == nil {
		return c, repositories.ErrNotFound
	}

	if err := models.ValidateCategory(existing, c.Name, c.Type, c.ID); err != nil {
		return c, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE categories SET name = ?, type = ? WHERE id = ? AND user_id = ?",
		c.Name, c.Type, c.ID, c.UserID); err != nil {
		return c, fmt.Errorf("error updating category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return c, fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.IsDefault = current.IsDefault
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("error deleting category: %w", err)
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
