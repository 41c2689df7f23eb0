package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finance_io/internal/models"
	"finance_io/internal/report"
	"finance_io/pkg/utils"

	"github.com/robfig/cron/v3"
)

const (
	DefaultDigestSchedule = "0 8 1 * *"
	pruneSchedule         = "30 3 * * *"

	// usageRetentionMonths is how many past quota periods are kept.
	usageRetentionMonths = 12
)

type DigestStore interface {
	ListProUsers(ctx context.Context) ([]models.User, error)
	ListTransactions(ctx context.Context, userID int, filter models.TransactionFilter) ([]models.Transaction, error)
}

type UsageStore interface {
	PruneReportUsage(ctx context.Context, before string) (int64, error)
}

type Store interface {
	DigestStore
	UsageStore
}

// Jobs carries the dependencies of the scheduled tasks.
type Jobs struct {
	Store     Store
	Generator report.Generator
	Mailer    utils.Mailer
	Now       func() time.Time
}

func (j *Jobs) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func StartCronJob(j *Jobs) *cron.Cron {
	c := cron.New()

	digestSchedule := utils.GetEnv("DIGEST_SCHEDULE", DefaultDigestSchedule)

	// Monthly report digest for Pro users
	_, err := c.AddFunc(digestSchedule, func() {
		if err := j.SendMonthlyDigests(); err != nil {
			utils.Logger.Errorf("Cron job failed to send monthly digests: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule monthly digest job: %v", err)
	}

	// Daily cleanup of old report quota counters
	_, err = c.AddFunc(pruneSchedule, func() {
		if err := j.PruneReportUsage(); err != nil {
			utils.Logger.Errorf("Cron job failed to prune report usage: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule report usage pruning job: %v", err)
	}

	c.Start()
	utils.Logger.Infof("Cron jobs started (digest %q, usage pruning daily)", digestSchedule)
	return c
}

// PruneReportUsage drops quota counters older than the retention window.
func (j *Jobs) PruneReportUsage() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	before := models.UsagePeriod(j.now().AddDate(0, -usageRetentionMonths, 0))
	n, err := j.Store.PruneReportUsage(ctx, before)
	if err != nil {
		return err
	}
	if n > 0 {
		utils.Logger.Infof("Pruned %d report usage rows before %s", n, before)
	}
	return nil
}

// SendMonthlyDigests mails every Pro user a report of the previous calendar month.
func (j *Jobs) SendMonthlyDigests() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	users, err := j.Store.ListProUsers(ctx)
	if err != nil {
		return err
	}

	now := j.now()
	// any instant inside the previous month
	ref := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Add(-time.Nanosecond)
	from, to := report.Month.Bounds(ref)

	var wg sync.WaitGroup
	errChan := make(chan error, len(users))

	for _, u := range users {
		txs, err := j.Store.ListTransactions(ctx, u.ID, models.TransactionFilter{From: from, To: to})
		if err != nil {
			errChan <- fmt.Errorf("failed to load transactions for user %d: %w", u.ID, err)
			continue
		}
		if len(txs) == 0 {
			continue
		}

		data := report.BuildData(txs, report.Month, ref)
		text, err := j.Generator.Generate(ctx, data)
		if err != nil {
			errChan <- fmt.Errorf("failed to generate digest for user %d: %w", u.ID, err)
			continue
		}

		wg.Add(1)
		go func(u models.User, text string) {
			defer wg.Done()

			subject, body := utils.ReportEmail(u.Username, ref.Format("01/2006"), text)
			if err := j.Mailer.Send(u.Email, subject, body); err != nil {
				errChan <- fmt.Errorf("failed to send digest to %s: %w", u.Email, err)
				return
			}
			utils.Logger.Infof("Sent monthly digest to %s", u.Email)
		}(u, text)
	}

	wg.Wait()
	close(errChan)

	failed := 0
	for e := range errChan {
		utils.Logger.Error(e)
		failed++
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d digests failed", failed, len(users))
	}
	return nil
}
