// ABOUTME: Migration utility that moves the accounts collection between store backends.
// ABOUTME: Provides dry-run and backup capabilities so a workspace can switch kv <-> sql safely.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/keyaccounts/charm"
	"github.com/harperreed/keyaccounts/config"
	"github.com/harperreed/keyaccounts/db"
	"github.com/harperreed/keyaccounts/docstore"
	"github.com/harperreed/keyaccounts/remote"
)

func main() {
	defaults := config.Default()

	from := flag.String("from", config.StoreKV, "Source backend (kv or sql)")
	to := flag.String("to", config.StoreSQL, "Destination backend (kv or sql)")
	dbPath := flag.String("db", defaults.DBPath, "Path to the SQLite database")
	charmHost := flag.String("charm-host", defaults.CharmHost, "Charm server host for the kv backend")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Back up the database file before writing to it")
	flag.Parse()

	if *from == *to {
		log.Fatal("-from and -to must differ")
	}

	opts := options{
		from:      *from,
		to:        *to,
		dbPath:    *dbPath,
		charmHost: *charmHost,
		dryRun:    *dryRun,
		backup:    *backup,
	}
	if err := migrate(context.Background(), opts); err != nil {
		log.Fatal("migration failed", "err", err)
	}

	log.Info("migration completed successfully")
}

type options struct {
	from, to  string
	dbPath    string
	charmHost string
	dryRun    bool
	backup    bool
}

func migrate(ctx context.Context, opts options) error {
	if opts.to == config.StoreSQL && opts.backup && !opts.dryRun {
		if err := backupFile(opts.dbPath); err != nil {
			return err
		}
	}

	src, closeSrc, err := openCollection(opts.from, opts)
	if err != nil {
		return err
	}
	defer closeSrc()

	dst, closeDst, err := openCollection(opts.to, opts)
	if err != nil {
		return err
	}
	defer closeDst()

	res, err := docstore.Copy(ctx, src, dst, opts.dryRun)
	if err != nil {
		return err
	}

	if opts.dryRun {
		log.Info("[DRY RUN] would copy accounts", "from", opts.from, "to", opts.to, "count", res.Copied, "replace", res.Replaced)
		return nil
	}
	log.Info("copied accounts", "from", opts.from, "to", opts.to, "count", res.Copied, "replaced", res.Replaced)
	return nil
}

func openCollection(backend string, opts options) (docstore.Collection, func(), error) {
	switch backend {
	case config.StoreSQL:
		database, err := db.OpenDatabase(opts.dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return docstore.NewSQLCollection(database, remote.AccountsCollection), func() { _ = database.Close() }, nil
	case config.StoreKV:
		// Sync is explicit here so a dry run never pushes.
		client, err := charm.NewClient(&charm.Config{Host: opts.charmHost})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open charm store: %w", err)
		}
		if err := client.Sync(); err != nil {
			log.Warn("charm sync before migration failed", "host", opts.charmHost, "err", err)
		}
		return docstore.NewKVCollection(client, remote.AccountsCollection), func() {
			if !opts.dryRun {
				if err := client.Sync(); err != nil {
					log.Warn("sync after migration failed", "err", err)
				}
			}
			_ = client.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func backupFile(path string) error {
	input, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Info("no database yet, skipping backup", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405"))
	log.Info("creating backup", "path", backupPath)
	if err := os.WriteFile(backupPath, input, 0600); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	return nil
}
