// ABOUTME: Opportunity and initiative CLI commands
// ABOUTME: List and move opportunities, link and unlink initiative members
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/viz"
)

// OpportunitiesListCommand prints opportunities grouped in board order.
func OpportunitiesListCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("opportunities list", flag.ContinueOnError)
	account := fs.String("account", "", "Filter by account ID")
	stage := fs.String("stage", "", "Filter by stage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var wantStage models.OpportunityStage
	if *stage != "" {
		s, err := models.ParseOpportunityStage(*stage)
		if err != nil {
			return err
		}
		wantStage = s
	}

	if err := a.Portfolio.Refresh(context.Background()); err != nil {
		return fmt.Errorf("failed to load opportunities: %w", err)
	}

	snap := a.Portfolio.Snapshot()
	opps := snap.Opportunities
	if *account != "" {
		opps = snap.OpportunitiesForAccount(*account)
	}
	columns := models.ByStage(opps)

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STAGE\tNAME\tVALUE\tPROB\tWEIGHTED\tID")
	_, _ = fmt.Fprintln(w, "-----\t----\t-----\t----\t--------\t--")
	count := 0
	for _, st := range models.Stages() {
		if wantStage != "" && st != wantStage {
			continue
		}
		for _, o := range columns[st] {
			count++
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.0f%%\t%s\t%s\n",
				st, o.Name, viz.FormatMoney(o.Value), o.Probability, viz.FormatMoney(o.WeightedValue()), o.ID)
		}
	}
	_ = w.Flush()

	a.printf("\nTotal: %d opportunities\n", count)
	return nil
}

// OpportunitiesMoveCommand moves an opportunity to another stage.
// Flags must come before the opportunity ID.
func OpportunitiesMoveCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("opportunities move", flag.ContinueOnError)
	stage := fs.String("stage", "", "Target stage (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("opportunity ID required")
	}
	target, err := models.ParseOpportunityStage(*stage)
	if err != nil {
		return err
	}

	o, err := a.Portfolio.UpdateOpportunity(context.Background(), fs.Arg(0), models.OpportunityPatch{Stage: &target})
	if err != nil {
		return fmt.Errorf("failed to move opportunity: %w", err)
	}
	a.printf("✓ %s moved to %s\n", o.Name, o.Stage)
	return nil
}

type linkFlags struct {
	contact     *string
	opportunity *string
}

func parseLinkArgs(name string, args []string) (string, linkFlags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	lf := linkFlags{
		contact:     fs.String("contact", "", "Contact ID"),
		opportunity: fs.String("opportunity", "", "Opportunity ID"),
	}
	if err := fs.Parse(args); err != nil {
		return "", lf, err
	}
	if fs.NArg() < 1 {
		return "", lf, fmt.Errorf("initiative ID required")
	}
	if (*lf.contact == "") == (*lf.opportunity == "") {
		return "", lf, fmt.Errorf("exactly one of --contact or --opportunity is required")
	}
	return fs.Arg(0), lf, nil
}

// InitiativesLinkCommand adds a contact or opportunity to an initiative.
func InitiativesLinkCommand(a *App, args []string) error {
	initiativeID, lf, err := parseLinkArgs("initiatives link", args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if *lf.contact != "" {
		err = a.Portfolio.AddContactToInitiative(ctx, initiativeID, *lf.contact)
	} else {
		err = a.Portfolio.AddOpportunityToInitiative(ctx, initiativeID, *lf.opportunity)
	}
	if err != nil {
		return fmt.Errorf("failed to link initiative: %w", err)
	}
	a.printf("✓ Linked to initiative %s\n", initiativeID)
	return nil
}

// InitiativesUnlinkCommand removes a contact or opportunity from an initiative.
func InitiativesUnlinkCommand(a *App, args []string) error {
	initiativeID, lf, err := parseLinkArgs("initiatives unlink", args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if *lf.contact != "" {
		err = a.Portfolio.RemoveContactFromInitiative(ctx, initiativeID, *lf.contact)
	} else {
		err = a.Portfolio.RemoveOpportunityFromInitiative(ctx, initiativeID, *lf.opportunity)
	}
	if err != nil {
		return fmt.Errorf("failed to unlink initiative: %w", err)
	}
	a.printf("✓ Unlinked from initiative %s\n", initiativeID)
	return nil
}
