package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"finance_io/internal/models"
	"finance_io/pkg/offline"
	"finance_io/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const usage = `usage: financecli [flags] <command> [args]

commands:
  login <account> <password>   print a token for FINANCE_TOKEN
  list                         list transactions (cached when offline)
  add [flags]                  record a transaction (queued when offline)
  pending                      number of queued writes
  sync                         replay queued writes now
  watch                        replay queued writes on a schedule until interrupted
`

type app struct {
	client *offline.Client
	out    io.Writer
}

func main() {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("financecli", flag.ExitOnError)
	apiURL := fs.String("api", utils.GetEnv("FINANCE_API_URL", "http://localhost:3000"), "API base URL")
	token := fs.String("token", os.Getenv("FINANCE_TOKEN"), "login token")
	storePath := fs.String("store", utils.GetEnv("FINANCE_OFFLINE_STORE", offline.DefaultPath()), "offline store file")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	a := &app{
		client: offline.NewClient(*apiURL, *token, offline.NewFileStore(*storePath)),
		out:    os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		if len(args) != 2 {
			return errors.New("login needs <account> <password>")
		}
		if err := a.client.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, a.client.Token)
		return nil
	case "list":
		return a.list(ctx)
	case "add":
		return a.add(ctx, args)
	case "pending":
		n, err := a.client.Transport.Pending()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d queued\n", n)
		return nil
	case "sync":
		if err := a.client.Sync(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "queue synced")
		return nil
	case "watch":
		c, err := offline.StartSyncer(a.client.Transport, utils.GetEnv("FINANCE_SYNC_SCHEDULE", offline.DefaultSyncSchedule))
		if err != nil {
			return err
		}
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (a *app) list(ctx context.Context) error {
	txs, cached, err := a.client.ListTransactions(ctx)
	if err != nil {
		return err
	}
	if cached {
		fmt.Fprintln(a.out, "(offline: showing cached data)")
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, t := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Date.Format("2006-01-02"), t.Type, t.Category, t.Amount.StringFixed(2), t.Description)
	}
	return tw.Flush()
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.out)
	desc := fs.String("desc", "", "description")
	amount := fs.String("amount", "", "amount, e.g. 42.90")
	kind := fs.String("type", string(models.Expense), "income or expense")
	category := fs.String("category", "", "category name")
	date := fs.String("date", time.Now().Format("2006-01-02"), "date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	value, err := decimal.NewFromString(*amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q", *amount)
	}

	t, err := a.client.CreateTransaction(ctx, offline.TransactionInput{
		Description: *desc,
		Amount:      value,
		Type:        models.TransactionType(*kind),
		Category:    *category,
		Date:        *date,
	})
	if errors.Is(err, offline.ErrQueued) {
		fmt.Fprintln(a.out, "offline: transaction queued, run `financecli sync` when back online")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "transaction %d recorded\n", t.ID)
	return nil
}
