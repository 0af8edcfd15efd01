// ABOUTME: Wires configuration into remotes and shared stores for every command
// ABOUTME: Chooses the account store backend and owns the resources to close
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/keyaccounts/charm"
	"github.com/harperreed/keyaccounts/config"
	"github.com/harperreed/keyaccounts/db"
	"github.com/harperreed/keyaccounts/docstore"
	"github.com/harperreed/keyaccounts/models"
	"github.com/harperreed/keyaccounts/remote"
	"github.com/harperreed/keyaccounts/state"
)

// App bundles the stores a command operates on.
type App struct {
	Session   *state.Session
	Accounts  *state.AccountStore
	Portfolio *state.PortfolioStore
	// Charm is set only when accounts live in the charm KV store.
	Charm *charm.Client

	Out io.Writer
	In  io.Reader

	// queries is set when the account remote can filter server-side.
	queries accountQueries
	reader  *bufio.Reader
	closers []func() error
}

type accountQueries interface {
	GetByStatus(ctx context.Context, status models.AccountStatus) ([]models.Account, error)
	GetByPriority(ctx context.Context, priority models.AccountPriority) ([]models.Account, error)
}

// NewApp assembles an App from already-built remotes.
func NewApp(accounts state.AccountsRemote, portfolio *state.PortfolioStore) *App {
	a := &App{
		Session:   state.NewSession(),
		Accounts:  state.NewAccountStore(accounts),
		Portfolio: portfolio,
		Out:       os.Stdout,
		In:        os.Stdin,
	}
	if q, ok := accounts.(accountQueries); ok {
		a.queries = q
	}
	return a
}

// Open builds an App from cfg.
func Open(cfg *config.Config) (*App, error) {
	var opts []remote.Option
	if cfg.APIToken != "" {
		opts = append(opts, remote.WithToken(cfg.APIToken))
	}
	client, err := remote.NewClient(cfg.APIURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	var (
		coll    docstore.Collection
		kv      *charm.Client
		closers []func() error
	)
	switch cfg.Store {
	case config.StoreSQL:
		var database *sql.DB
		database, err = db.OpenDatabase(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		closers = append(closers, database.Close)
		coll = docstore.NewSQLCollection(database, remote.AccountsCollection)
	default:
		kv, err = charm.NewClient(&charm.Config{Host: cfg.CharmHost, AutoSync: cfg.AutoSync})
		if err != nil {
			return nil, fmt.Errorf("failed to open charm store: %w", err)
		}
		closers = append(closers, kv.Close)
		coll = docstore.NewKVCollection(kv, remote.AccountsCollection)
	}

	log.Debug("opened stores", "api", client.BaseURL(), "store", cfg.Store)

	portfolio := state.NewPortfolioStore(client.Contacts(), client.Opportunities(), client.Initiatives())
	app := NewApp(remote.NewAccountsAPI(coll, time.Now), portfolio)
	app.Charm = kv
	app.closers = closers
	return app, nil
}

// Close releases every resource opened by Open, newest first.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// SignIn binds both stores to the session and signs the local user in,
// which triggers the initial load. The returned func unbinds.
func (a *App) SignIn(ctx context.Context) func() {
	unbindAccounts := a.Accounts.Bind(ctx, a.Session)
	unbindPortfolio := a.Portfolio.Bind(ctx, a.Session)
	a.Session.SignIn(a.localUser())
	return func() {
		unbindAccounts()
		unbindPortfolio()
	}
}

func (a *App) localUser() state.User {
	if a.Charm != nil {
		if id, err := a.Charm.ID(); err == nil && id != "" {
			return state.User{ID: id}
		}
	}
	return state.User{ID: "local"}
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}

func (a *App) println(args ...any) {
	_, _ = fmt.Fprintln(a.Out, args...)
}

// readLine reads one line from In without the trailing newline.
func (a *App) readLine() (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}
