// ABOUTME: Interactive terminal UI subcommand
// ABOUTME: Signs the local user in so both stores load before the first frame
package cli

import (
	"context"

	"github.com/harperreed/keyaccounts/tui"
)

// TUICommand runs the full-screen interface until the user quits.
func TUICommand(a *App) error {
	unbind := a.SignIn(context.Background())
	defer unbind()

	return tui.Run(a.Accounts, a.Portfolio)
}
