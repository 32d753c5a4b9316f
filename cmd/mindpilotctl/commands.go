package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/spf13/cobra"
)

// accountAdmin is the slice of service.AccountService the CLI drives.
type accountAdmin interface {
	Get(ctx context.Context, id string) (*domain.Account, error)
	GrantPremium(ctx context.Context, id string, until *time.Time) (*domain.Account, error)
	RevokePremium(ctx context.Context, id string) (*domain.Account, error)
	ResetUsage(ctx context.Context, id string) (*domain.Account, error)
}

type statusReader interface {
	Status(ctx context.Context, accountID string) (*domain.QuotaUsage, error)
}

// app is what every command runs against. open builds it lazily so --help
// and flag errors never touch the database.
type app struct {
	accounts accountAdmin
	status   statusReader
	migrate  func(ctx context.Context, action string) error
	logger   *slog.Logger
	close    func()
}

type appOpener func(ctx context.Context, opts globalOptions) (*app, error)

type globalOptions struct {
	databaseURL string
	timezone    string
	timeout     time.Duration
}

func newRootCmd(open appOpener) *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:   "mindpilotctl",
		Short: "MindPilot operator tool",
		Long: `mindpilotctl manages MindPilot accounts directly in the database:
schema migrations, premium grants and the daily AI counter.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "Postgres connection string (default $DATABASE_URL)")
	root.PersistentFlags().StringVar(&opts.timezone, "timezone", "", "IANA zone for the AI day boundary (default $TIMEZONE)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall command timeout")

	// withApp opens the app, runs fn and always releases it.
	withApp := func(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			a, err := open(ctx, opts)
			if err != nil {
				return err
			}
			if a.close != nil {
				defer a.close()
			}
			return fn(ctx, a, cmd, args)
		}
	}

	root.AddCommand(
		newMigrateCmd(withApp),
		newAccountCmd(withApp),
		newPremiumCmd(withApp),
		newUsageCmd(withApp),
	)
	return root
}

type runWithApp func(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error

// =============================================================================
// migrate
// =============================================================================

func newMigrateCmd(withApp runWithApp) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Apply or inspect schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			if err := a.migrate(ctx, action); err != nil {
				return fmt.Errorf("migrate %s: %w", action, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok\n", action)
			return nil
		}),
	}
}

// =============================================================================
// account
// =============================================================================

func newAccountCmd(withApp runWithApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <account-id>",
		Short: "Show an account and its entitlement status",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			account, err := a.accounts.Get(ctx, args[0])
			if err != nil {
				return describe(err)
			}
			status, err := a.status.Status(ctx, args[0])
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"account":      account,
				"subscription": status,
			})
		}),
	})
	return cmd
}

// =============================================================================
// premium
// =============================================================================

func newPremiumCmd(withApp runWithApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "premium",
		Short: "Grant or revoke premium",
		Long:  `Sets the premium flag that the entitlement checks read. Billing systems call this seam.`,
	}

	var until string
	grant := &cobra.Command{
		Use:   "grant <account-id>",
		Short: "Mark an account premium",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			expiry, err := parseUntil(until)
			if err != nil {
				return err
			}
			account, err := a.accounts.GrantPremium(ctx, args[0], expiry)
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd.OutOrStdout(), account)
		}),
	}
	grant.Flags().StringVar(&until, "until", "", "expiry as RFC3339 (default: no expiry)")

	revoke := &cobra.Command{
		Use:   "revoke <account-id>",
		Short: "Remove premium from an account",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			account, err := a.accounts.RevokePremium(ctx, args[0])
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd.OutOrStdout(), account)
		}),
	}

	cmd.AddCommand(grant, revoke)
	return cmd
}

func parseUntil(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("--until must be RFC3339 (e.g. 2026-01-31T00:00:00Z): %w", err)
	}
	return &t, nil
}

// =============================================================================
// usage
// =============================================================================

func newUsageCmd(withApp runWithApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Manage the daily AI counter",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset <account-id>",
		Short: "Zero today's AI usage for an account",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			account, err := a.accounts.ResetUsage(ctx, args[0])
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd.OutOrStdout(), account)
		}),
	})
	return cmd
}

// =============================================================================
// Helpers
// =============================================================================

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describe turns a domain error into operator-facing text. Internal errors
// keep their cause, unlike API responses.
func describe(err error) error {
	switch domain.ErrorCode(err) {
	case domain.ENOTFOUND, domain.EINVALID:
		return errors.New(domain.ErrorMessage(err))
	default:
		return err
	}
}
