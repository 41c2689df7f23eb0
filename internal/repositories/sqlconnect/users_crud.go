package sqlconnect

import (
	"context"
	"fmt"

	"finance_io/internal/models"
	"finance_io/internal/repositories"
)

const userColumns = "id, email, username, password, role, is_pro, created_at"

func (s *Store) scanUser(ctx context.Context, query string, args ...any) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Email, &u.Username, &u.Password, &u.Role, &u.IsPro, &u.CreatedAt)
	return u, mapErr(err)
}

// CreateUser inserts u with an already hashed password. A taken e-mail or
// username yields repositories.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.Role == "" {
		u.Role = "user"
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, username, password, role) VALUES (?, ?, ?, ?)",
		u.Email, u.Username, u.Password, u.Role)
	if err != nil {
		if isDuplicate(err) {
			return u, repositories.ErrDuplicate
		}
		return u, fmt.Errorf("error inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return u, fmt.Errorf("error reading user id: %w", err)
	}
	u.ID = int(id)
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int) (models.User, error) {
	return s.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetUserByLogin looks a user up by e-mail or username.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (models.User, error) {
	return s.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = ? OR username = ? LIMIT 1", login, login)
}

func (s *Store) UpdatePassword(ctx context.Context, userID int, hashed string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET password = ? WHERE id = ?", hashed, userID)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (s *Store) SetPro(ctx context.Context, userID int, isPro bool) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE users SET is_pro = ? WHERE id = ?", isPro, userID); err != nil {
		return fmt.Errorf("error updating pro status: %w", err)
	}
	return nil
}

// ListProUsers is used by the monthly digest job.
func (s *Store) ListProUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users WHERE is_pro = TRUE ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("error fetching pro users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.Password, &u.Role, &u.IsPro, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
