// ABOUTME: Charm KV sync CLI commands
// ABOUTME: Status, manual sync and wipe for the synced account store
package cli

import (
	"flag"
	"fmt"
)

func (a *App) requireCharm() error {
	if a.Charm == nil {
		return fmt.Errorf("sync requires the kv store (set KEYACCOUNTS_STORE=kv)")
	}
	return nil
}

// SyncStatusCommand shows current sync configuration and status.
func SyncStatusCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireCharm(); err != nil {
		return err
	}

	cfg := a.Charm.Config()
	a.println("Charm Sync Status")
	a.println("─────────────────")
	a.printf("Server:    %s\n", cfg.Host)
	a.printf("Auto-sync: %v\n", cfg.AutoSync)

	id, err := a.Charm.ID()
	if err != nil {
		a.println("\nStatus: Not connected")
	} else {
		a.println("\nStatus: Connected")
		a.printf("ID:        %s\n", id)
	}

	if keys, err := a.Charm.Keys(); err == nil {
		a.printf("Keys:      %d\n", len(keys))
	}
	return nil
}

// SyncNowCommand pushes and pulls account changes immediately.
func SyncNowCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireCharm(); err != nil {
		return err
	}

	if err := a.Charm.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	a.println("✓ Synced")
	return nil
}

// SyncWipeCommand completely resets the local KV store.
func SyncWipeCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ContinueOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireCharm(); err != nil {
		return err
	}

	if !*confirm {
		a.println("WARNING: This will delete ALL local account data!")
		a.println()
		a.println("To confirm, run:")
		a.println("  keyaccounts sync wipe --confirm")
		return nil
	}

	if err := a.Charm.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}
	a.println("✓ All local account data wiped")
	return nil
}
