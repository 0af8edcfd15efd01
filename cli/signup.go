// ABOUTME: Password policy check used before creating an account
// ABOUTME: Reads the password without echo when stdin is a terminal
package cli

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/harperreed/keyaccounts/models"
)

// readSecret prompts for a value, hiding input on a terminal.
func (a *App) readSecret(prompt string) (string, error) {
	a.printf("%s", prompt)
	if f, ok := a.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		a.println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	return a.readLine()
}

// SignupCheckCommand checks a password and its confirmation against the
// sign-up policy.
func SignupCheckCommand(a *App, args []string) error {
	fs := flag.NewFlagSet("signup-check", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := a.readSecret("Password: ")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm password: ")
	if err != nil {
		return err
	}

	if err := models.ValidatePassword(password, confirm); err != nil {
		return err
	}
	a.println("✓ Password meets requirements")
	return nil
}
