package sqlconnect

import (
	"context"
	"fmt"

	"finance_io/internal/models"
	"finance_io/pkg/utils"

	"github.com/sirupsen/logrus"
)

// ApplyBillingEvent records ev and sets the user's Pro flag in one SQL
// transaction. A reference that was already processed is skipped and
// applied is false.
func (s *Store) ApplyBillingEvent(ctx context.Context, ev models.BillingEvent, isPro bool) (applied bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM billing_events WHERE provider = ? AND reference = ?", ev.Provider, ev.Reference).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate billing event: %w", err)
	}
	if exists > 0 {
		utils.Logger.WithFields(logrus.Fields{"provider": ev.Provider, "reference": ev.Reference}).
			Info("duplicate billing event ignored")
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO billing_events (provider, reference, user_id, kind, amount, currency, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		ev.Provider, ev.Reference, ev.UserID, ev.Kind, ev.Amount, ev.Currency, ev.Status)
	if err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record billing event: %w", err)
	}

	res, err := tx.ExecContext(ctx, "UPDATE users SET is_pro = ? WHERE id = ?", isPro, ev.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to update pro status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		utils.Logger.WithField("user_id", ev.UserID).Warn("billing event for unknown or unchanged user")
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit billing event: %w", err)
	}
	return true, nil
}
