// ABOUTME: Initiative CLI commands
// ABOUTME: List, show, add, update and delete account initiatives
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/viz"
)

const dateLayout = "2006-01-02"

// InitiativesListCommand prints initiatives, optionally for one account.
func InitiativesListCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("initiatives list", flag.ContinueOnError)
	account := fs.String("account", "", "Only initiatives for this account ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	var err error
	if *account != "" {
		err = a.Portfolio.LoadInitiativesByAccount(ctx, *account)
	} else {
		err = a.Portfolio.Refresh(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load initiatives: %w", err)
	}

	rows := a.Portfolio.Snapshot().Initiatives
	if len(rows) == 0 {
		a.println("No initiatives found")
		return nil
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTATUS\tPROGRESS\tOUTCOME\tACCOUNT\tID")
	_, _ = fmt.Fprintln(w, "----\t------\t--------\t-------\t-------\t--")
	for _, in := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%s\t%s\t%s\n",
			in.Name, in.Status, in.Progress, in.BusinessOutcome, in.AccountID, in.ID)
	}
	_ = w.Flush()

	a.printf("\nTotal: %d initiatives\n", len(rows))
	return nil
}

// InitiativesShowCommand prints one initiative with its linked contacts and opportunities.
func InitiativesShowCommand(a *App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("initiative ID required")
	}
	d, err := a.Portfolio.InitiativeDetail(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load initiative: %w", err)
	}

	in := d.Initiative
	a.printf("%s (%s)\n", in.Name, in.ID)
	a.printf("  Status:   %s, %.0f%% complete\n", in.Status, in.Progress)
	a.printf("  Outcome:  %s\n", in.BusinessOutcome)
	a.printf("  Account:  %s\n", in.AccountID)
	if !in.StartDate.IsZero() || !in.EndDate.IsZero() {
		a.printf("  Dates:    %s to %s\n", formatDate(in.StartDate), formatDate(in.EndDate))
	}
	if in.Budget != nil {
		a.printf("  Budget:   %s\n", viz.FormatMoney(*in.Budget))
	}
	if in.Description != "" {
		a.printf("  %s\n", in.Description)
	}

	a.printf("\nContacts (%d)\n", len(d.Contacts))
	for _, c := range d.Contacts {
		a.printf("  %s, %s [%s]\n", c.Name, c.Title, c.Role)
	}
	a.printf("\nOpportunities (%d)\n", len(d.Opportunities))
	for _, o := range d.Opportunities {
		a.printf("  %s  %s  %s\n", o.Name, o.Stage, viz.FormatMoney(o.Value))
	}
	return nil
}

type initiativeFlags struct {
	fs          *flag.FlagSet
	name        *string
	description *string
	outcome     *string
	status      *string
	progress    *float64
	start       *string
	end         *string
	budget      *float64
	account     *string
}

func newInitiativeFlags(name string) initiativeFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return initiativeFlags{
		fs:          fs,
		name:        fs.String("name", "", "Initiative name"),
		description: fs.String("description", "", "Description"),
		outcome:     fs.String("outcome", string(models.OutcomeIncreaseRevenue), "Business outcome (Increase Revenue, Cut Costs, Manage Risk)"),
		status:      fs.String("status", string(models.InitiativeNotStarted), "Status (Not Started, In Progress, Completed, On Hold)"),
		progress:    fs.Float64("progress", 0, "Progress percent"),
		start:       fs.String("start", "", "Start date (YYYY-MM-DD)"),
		end:         fs.String("end", "", "End date (YYYY-MM-DD)"),
		budget:      fs.Float64("budget", 0, "Budget in dollars"),
		account:     fs.String("account", "", "Account ID"),
	}
}

// set reports which flags were given on the command line.
func (f initiativeFlags) set() map[string]bool {
	given := map[string]bool{}
	f.fs.Visit(func(fl *flag.Flag) { given[fl.Name] = true })
	return given
}

func parseDateFlag(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", name, raw)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	return t.Format(dateLayout)
}

// InitiativesAddCommand creates an initiative.
func InitiativesAddCommand(a *App, args []string) error {
	f := newInitiativeFlags("initiatives add")
	if err := f.fs.Parse(args); err != nil {
		return err
	}

	outcome, err := models.ParseBusinessOutcome(*f.outcome)
	if err != nil {
		return err
	}
	status, err := models.ParseInitiativeStatus(*f.status)
	if err != nil {
		return err
	}
	start, err := parseDateFlag("start", *f.start)
	if err != nil {
		return err
	}
	end, err := parseDateFlag("end", *f.end)
	if err != nil {
		return err
	}

	in := models.Initiative{
		Name:            *f.name,
		Description:     *f.description,
		BusinessOutcome: outcome,
		Status:          status,
		Progress:        *f.progress,
		StartDate:       start,
		EndDate:         end,
		AccountID:       *f.account,
	}
	if f.set()["budget"] {
		budget := *f.budget
		in.Budget = &budget
	}
	if err := models.Validate(in); err != nil {
		return err
	}

	created, err := a.Portfolio.AddInitiative(context.Background(), in)
	if err != nil {
		return fmt.Errorf("failed to create initiative: %w", err)
	}
	a.printf("✓ Initiative created: %s (ID: %s)\n", created.Name, created.ID)
	return nil
}

// InitiativesUpdateCommand changes only the flags that were given.
// Flags must come before the initiative ID.
func InitiativesUpdateCommand(a *App, args []string) error {
	f := newInitiativeFlags("initiatives update")
	if err := f.fs.Parse(args); err != nil {
		return err
	}
	if f.fs.NArg() < 1 {
		return fmt.Errorf("initiative ID required")
	}

	given := f.set()
	if len(given) == 0 {
		return fmt.Errorf("nothing to update")
	}

	var patch models.InitiativePatch
	if given["name"] {
		patch.Name = f.name
	}
	if given["description"] {
		patch.Description = f.description
	}
	if given["outcome"] {
		outcome, err := models.ParseBusinessOutcome(*f.outcome)
		if err != nil {
			return err
		}
		patch.BusinessOutcome = &outcome
	}
	if given["status"] {
		status, err := models.ParseInitiativeStatus(*f.status)
		if err != nil {
			return err
		}
		patch.Status = &status
	}
	if given["progress"] {
		patch.Progress = f.progress
	}
	if given["start"] {
		start, err := parseDateFlag("start", *f.start)
		if err != nil {
			return err
		}
		patch.StartDate = &start
	}
	if given["end"] {
		end, err := parseDateFlag("end", *f.end)
		if err != nil {
			return err
		}
		patch.EndDate = &end
	}
	if given["budget"] {
		patch.Budget = f.budget
	}
	if given["account"] {
		patch.AccountID = f.account
	}

	in, err := a.Portfolio.UpdateInitiative(context.Background(), f.fs.Arg(0), patch)
	if err != nil {
		return fmt.Errorf("failed to update initiative: %w", err)
	}
	a.printf("✓ Initiative updated: %s (%s, %.0f%%)\n", in.Name, in.Status, in.Progress)
	return nil
}

// InitiativesDeleteCommand removes an initiative.
func InitiativesDeleteCommand(a *App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("initiative ID required")
	}
	if err := a.Portfolio.DeleteInitiative(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete initiative: %w", err)
	}
	a.printf("✓ Initiative deleted: %s\n", args[0])
	return nil
}
