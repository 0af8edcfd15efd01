// ABOUTME: Account CLI commands
// ABOUTME: List, add, toggle readiness and delete key accounts
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/viz"
)

// AccountsListCommand prints accounts, optionally filtered.
func AccountsListCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("accounts list", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status (Active, Prospect, At Risk)")
	priority := fs.String("priority", "", "Filter by priority (High, Medium, Low)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var wantStatus models.AccountStatus
	if *status != "" {
		s, err := models.ParseAccountStatus(*status)
		if err != nil {
			return err
		}
		wantStatus = s
	}
	var wantPriority models.AccountPriority
	if *priority != "" {
		p, err := models.ParseAccountPriority(*priority)
		if err != nil {
			return err
		}
		wantPriority = p
	}

	candidates, err := listAccounts(context.Background(), a, wantStatus, wantPriority)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	var rows []models.Account
	for _, acct := range candidates {
		if wantStatus != "" && acct.Status != wantStatus {
			continue
		}
		if wantPriority != "" && acct.Priority != wantPriority {
			continue
		}
		rows = append(rows, acct)
	}

	if len(rows) == 0 {
		a.println("No accounts found")
		return nil
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tINDUSTRY\tARR\tSTATUS\tPRIORITY\tREADY\tID")
	_, _ = fmt.Fprintln(w, "----\t--------\t---\t------\t--------\t-----\t--")
	for _, acct := range rows {
		ready := "-"
		if acct.TransformationReadiness {
			ready = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			acct.Name, acct.Industry, viz.FormatMoney(acct.ARR), acct.Status, acct.Priority, ready, acct.ID)
	}
	_ = w.Flush()

	a.printf("\nTotal: %d accounts\n", len(rows))
	return nil
}

// listAccounts asks the remote for the narrowest filtered list it supports,
// falling back to a full refresh. Callers still apply both filters.
func listAccounts(ctx context.Context, a *App, status models.AccountStatus, priority models.AccountPriority) ([]models.Account, error) {
	switch {
	case a.queries != nil && status != "":
		return a.queries.GetByStatus(ctx, status)
	case a.queries != nil && priority != "":
		return a.queries.GetByPriority(ctx, priority)
	}
	if err := a.Accounts.Refresh(ctx); err != nil {
		return nil, err
	}
	return a.Accounts.Snapshot().Accounts, nil
}

// AccountsAddCommand creates an account.
func AccountsAddCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("accounts add", flag.ContinueOnError)
	name := fs.String("name", "", "Account name (required)")
	industry := fs.String("industry", "", "Industry (required)")
	ticker := fs.String("ticker", "", "Stock ticker")
	arr := fs.Float64("arr", 0, "Annual recurring revenue in dollars")
	status := fs.String("status", string(models.AccountProspect), "Status (Active, Prospect, At Risk)")
	priority := fs.String("priority", string(models.PriorityMedium), "Priority (High, Medium, Low)")
	ready := fs.Bool("ready", false, "Mark as transformation-ready")
	notes := fs.String("notes", "", "Notes about the account")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := models.ParseAccountStatus(*status)
	if err != nil {
		return err
	}
	p, err := models.ParseAccountPriority(*priority)
	if err != nil {
		return err
	}

	acct := models.Account{
		Name:                    *name,
		Industry:                *industry,
		Ticker:                  *ticker,
		ARR:                     *arr,
		Status:                  s,
		Priority:                p,
		TransformationReadiness: *ready,
		Notes:                   *notes,
	}
	if err := models.Validate(acct); err != nil {
		return err
	}

	id, err := a.Accounts.Add(context.Background(), acct)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	a.printf("✓ Account created: %s (ID: %s)\n", acct.Name, id)
	a.printf("  Industry: %s\n", acct.Industry)
	if acct.ARR > 0 {
		a.printf("  ARR: %s\n", viz.FormatMoney(acct.ARR))
	}
	return nil
}

// loadAccount makes sure id is cached before a cached-record operation.
func loadAccount(a *App, id string) (models.Account, error) {
	if acct, ok := a.Accounts.Snapshot().Find(id); ok {
		return acct, nil
	}
	if err := a.Accounts.Refresh(context.Background()); err != nil {
		return models.Account{}, fmt.Errorf("failed to load accounts: %w", err)
	}
	acct, ok := a.Accounts.Snapshot().Find(id)
	if !ok {
		return models.Account{}, fmt.Errorf("account not found: %s", id)
	}
	return acct, nil
}

// AccountsToggleCommand flips transformation readiness for an account.
func AccountsToggleCommand(a *App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("account ID required")
	}
	if _, err := loadAccount(a, args[0]); err != nil {
		return err
	}

	acct, err := a.Accounts.ToggleReadiness(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to toggle readiness: %w", err)
	}

	state := "not ready"
	if acct.TransformationReadiness {
		state = "ready"
	}
	a.printf("✓ %s is now %s for transformation\n", acct.Name, state)
	return nil
}

// AccountsDeleteCommand removes an account.
func AccountsDeleteCommand(a *App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("account ID required")
	}
	if err := a.Accounts.Remove(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	a.printf("✓ Account deleted: %s\n", args[0])
	return nil
}
