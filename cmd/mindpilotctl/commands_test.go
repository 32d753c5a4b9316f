package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	accounts map[string]*domain.Account
	granted  *time.Time
	today    domain.Date
}

func (f *fakeAccounts) lookup(op, id string) (*domain.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, domain.NotFound(op, "Account", id)
	}
	return a, nil
}

func (f *fakeAccounts) Get(ctx context.Context, id string) (*domain.Account, error) {
	return f.lookup("account.get", id)
}

func (f *fakeAccounts) GrantPremium(ctx context.Context, id string, until *time.Time) (*domain.Account, error) {
	a, err := f.lookup("account.grant_premium", id)
	if err != nil {
		return nil, err
	}
	f.granted = until
	a.IsPremium = true
	a.PremiumExpiresAt = until
	return a, nil
}

func (f *fakeAccounts) RevokePremium(ctx context.Context, id string) (*domain.Account, error) {
	a, err := f.lookup("account.revoke_premium", id)
	if err != nil {
		return nil, err
	}
	a.IsPremium = false
	a.PremiumExpiresAt = nil
	return a, nil
}

func (f *fakeAccounts) ResetUsage(ctx context.Context, id string) (*domain.Account, error) {
	a, err := f.lookup("account.reset_usage", id)
	if err != nil {
		return nil, err
	}
	a.AIResponsesUsedToday = 0
	if a.LastAIResetDate == nil || a.LastAIResetDate.Before(f.today) {
		today := f.today
		a.LastAIResetDate = &today
	}
	return a, nil
}

type fakeStatus struct{}

func (fakeStatus) Status(ctx context.Context, accountID string) (*domain.QuotaUsage, error) {
	return &domain.QuotaUsage{
		AIResponsesUsedToday: 3,
		AILimit:              domain.Limited(domain.DailyAILimit),
		AIRemaining:          domain.Limited(domain.DailyAILimit - 3),
	}, nil
}

type cliHarness struct {
	accounts   *fakeAccounts
	migrations []string
	opened     int
	closed     int
	opts       globalOptions
}

func mustDate(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newCLIHarness() *cliHarness {
	lastReset := mustDate("2026-03-10")
	return &cliHarness{
		accounts: &fakeAccounts{
			accounts: map[string]*domain.Account{
				"acct-1": {ID: "acct-1", Email: "ada@example.com", AIResponsesUsedToday: 9, LastAIResetDate: &lastReset},
			},
			today: mustDate("2026-03-10"),
		},
	}
}

func (h *cliHarness) open(ctx context.Context, opts globalOptions) (*app, error) {
	h.opened++
	h.opts = opts
	return &app{
		accounts: h.accounts,
		status:   fakeStatus{},
		migrate: func(ctx context.Context, action string) error {
			h.migrations = append(h.migrations, action)
			return nil
		},
		close: func() { h.closed++ },
	}, nil
}

func (h *cliHarness) run(args ...string) (string, error) {
	root := newRootCmd(h.open)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPremiumGrant(t *testing.T) {
	h := newCLIHarness()

	out, err := h.run("premium", "grant", "acct-1", "--until", "2030-01-31T00:00:00Z")
	require.NoError(t, err)

	var account domain.Account
	require.NoError(t, json.Unmarshal([]byte(out), &account))
	assert.True(t, account.IsPremium)
	require.NotNil(t, h.accounts.granted)
	assert.Equal(t, 2030, h.accounts.granted.Year())
	assert.Equal(t, 1, h.closed, "app is released after the command")
}

func TestPremiumGrant_NoExpiry(t *testing.T) {
	h := newCLIHarness()

	_, err := h.run("premium", "grant", "acct-1")
	require.NoError(t, err)
	assert.Nil(t, h.accounts.granted)
	assert.True(t, h.accounts.accounts["acct-1"].IsPremium)
}

func TestPremiumGrant_BadUntil(t *testing.T) {
	h := newCLIHarness()

	_, err := h.run("premium", "grant", "acct-1", "--until", "next tuesday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RFC3339")
	assert.False(t, h.accounts.accounts["acct-1"].IsPremium)
}

func TestPremiumRevoke(t *testing.T) {
	h := newCLIHarness()
	h.accounts.accounts["acct-1"].IsPremium = true

	_, err := h.run("premium", "revoke", "acct-1")
	require.NoError(t, err)
	assert.False(t, h.accounts.accounts["acct-1"].IsPremium)
}

func TestUsageReset(t *testing.T) {
	h := newCLIHarness()

	out, err := h.run("usage", "reset", "acct-1")
	require.NoError(t, err)

	var account domain.Account
	require.NoError(t, json.Unmarshal([]byte(out), &account))
	assert.Zero(t, account.AIResponsesUsedToday)
	require.NotNil(t, account.LastAIResetDate, "reset keeps the counter dated")
	assert.Equal(t, "2026-03-10", account.LastAIResetDate.String())
}

func TestAccountShow(t *testing.T) {
	h := newCLIHarness()

	out, err := h.run("account", "show", "acct-1", "--timezone", "Europe/Berlin")
	require.NoError(t, err)

	var shown struct {
		Account      domain.Account `json:"account"`
		Subscription map[string]any `json:"subscription"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "ada@example.com", shown.Account.Email)
	assert.Equal(t, float64(12), shown.Subscription["aiRemaining"])
	assert.Equal(t, "Europe/Berlin", h.opts.timezone)
}

func TestUnknownAccountIsReadable(t *testing.T) {
	h := newCLIHarness()

	_, err := h.run("account", "show", "ghost")
	require.Error(t, err)
	assert.Equal(t, `Account with ID "ghost" not found`, err.Error())
}

func TestMigrate(t *testing.T) {
	h := newCLIHarness()

	out, err := h.run("migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrate up: ok")

	_, err = h.run("migrate", "status")
	require.NoError(t, err)
	assert.Equal(t, []string{"up", "status"}, h.migrations)

	_, err = h.run("migrate", "sideways")
	assert.Error(t, err)
}

func TestArgumentErrorsDoNotOpenTheDatabase(t *testing.T) {
	h := newCLIHarness()

	_, err := h.run("usage", "reset")
	require.Error(t, err)
	assert.Zero(t, h.opened)
}

func TestOpenErrorIsReturned(t *testing.T) {
	root := newRootCmd(func(ctx context.Context, opts globalOptions) (*app, error) {
		return nil, errors.New("database ping failed")
	})
	root.SetArgs([]string{"usage", "reset", "acct-1"})
	root.SetOut(&bytes.Buffer{})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database ping failed")
}
