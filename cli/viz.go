// ABOUTME: Visualization CLI commands
// ABOUTME: Pipeline dashboard and GraphViz exports of the maps and pipeline
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/harperreed/keyaccounts/graph"
	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/viz"
)

// PipelineCommand prints the terminal dashboard.
func PipelineCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	if err := a.Accounts.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	if err := a.Portfolio.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load portfolio: %w", err)
	}

	stats := viz.GenerateDashboardStats(a.Accounts.Snapshot(), a.Portfolio.Snapshot(), time.Now())
	a.printf("%s", viz.RenderDashboard(stats))
	return nil
}

func (a *App) writeOutput(path, dot string) error {
	if path != "" {
		return os.WriteFile(path, []byte(dot), 0644)
	}
	a.println(dot)
	return nil
}

// VizTerritoryCommand exports the account territory map.
func VizTerritoryCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("viz territory", flag.ContinueOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	status := fs.String("status", "", "Only accounts with this status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var want models.AccountStatus
	if *status != "" {
		s, err := models.ParseAccountStatus(*status)
		if err != nil {
			return err
		}
		want = s
	}

	ctx := context.Background()
	if err := a.Accounts.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	var accounts []models.Account
	for _, acct := range a.Accounts.Snapshot().Accounts {
		if want == "" || acct.Status == want {
			accounts = append(accounts, acct)
		}
	}

	editor, err := graph.TerritoryFromAccounts(accounts)
	if err != nil {
		return err
	}
	dot, err := viz.RenderMap(ctx, editor.Snapshot())
	if err != nil {
		return err
	}
	return a.writeOutput(*output, dot)
}

// VizStakeholdersCommand exports a stakeholder map of contacts.
func VizStakeholdersCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("viz stakeholders", flag.ContinueOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	initiative := fs.String("initiative", "", "Only contacts linked to this initiative")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	if err := a.Portfolio.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	snap := a.Portfolio.Snapshot()
	contacts := snap.Contacts
	if *initiative != "" {
		in, ok := snap.Initiative(*initiative)
		if !ok {
			return fmt.Errorf("initiative not found: %s", *initiative)
		}
		contacts = nil
		for _, id := range in.ContactIDs {
			if c, ok := snap.Contact(id); ok {
				contacts = append(contacts, c)
			}
		}
	}

	editor, err := graph.StakeholdersFromContacts(contacts)
	if err != nil {
		return err
	}
	dot, err := viz.RenderMap(ctx, editor.Snapshot())
	if err != nil {
		return err
	}
	return a.writeOutput(*output, dot)
}

// VizPipelineCommand exports the opportunity pipeline graph.
func VizPipelineCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("viz pipeline", flag.ContinueOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	account := fs.String("account", "", "Only opportunities for this account")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	if err := a.Portfolio.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load opportunities: %w", err)
	}

	snap := a.Portfolio.Snapshot()
	opps := snap.Opportunities
	if *account != "" {
		opps = snap.OpportunitiesForAccount(*account)
	}

	dot, err := viz.RenderPipeline(ctx, opps)
	if err != nil {
		return err
	}
	return a.writeOutput(*output, dot)
}
