// ABOUTME: Entry point for the keyaccounts CLI, TUI and MCP server
// ABOUTME: Loads configuration, opens the stores and routes to a subcommand
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/harperreed/keyaccounts/cli"
	"github.com/harperreed/keyaccounts/config"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	envFile := flag.String("env-file", "", "Load environment variables from this file")
	apiURL := flag.String("api-url", "", "REST API base URL (overrides KEYACCOUNTS_API_URL)")
	store := flag.String("store", "", "Account store backend: kv or sql")
	dbPath := flag.String("db-path", "", "SQLite database path for the sql store")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("keyaccounts version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if *store != "" {
		cfg.Store = *store
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config", "err", err)
	}

	setupLogging(cfg.LogLevel)

	command := args[0]
	commandArgs := args[1:]

	// signup-check needs no stores
	if command == "signup-check" {
		app := cli.NewApp(nil, nil)
		exitOn(cli.SignupCheckCommand(app, commandArgs))
		return
	}

	app, err := cli.Open(cfg)
	if err != nil {
		log.Fatal("Failed to open stores", "err", err)
	}
	defer func() { _ = app.Close() }()

	switch command {
	case "mcp":
		if err := cli.MCPCommand(app, version); err != nil {
			log.Fatal("MCP server failed", "err", err)
		}

	case "tui":
		exitOn(cli.TUICommand(app))

	case "accounts":
		sub, subArgs := subcommand("accounts", commandArgs)
		switch sub {
		case "list":
			exitOn(cli.AccountsListCommand(app, subArgs))
		case "add":
			exitOn(cli.AccountsAddCommand(app, subArgs))
		case "toggle":
			exitOn(cli.AccountsToggleCommand(app, subArgs))
		case "delete":
			exitOn(cli.AccountsDeleteCommand(app, subArgs))
		default:
			unknown("accounts", sub)
		}

	case "opportunities":
		sub, subArgs := subcommand("opportunities", commandArgs)
		switch sub {
		case "list":
			exitOn(cli.OpportunitiesListCommand(app, subArgs))
		case "move":
			exitOn(cli.OpportunitiesMoveCommand(app, subArgs))
		default:
			unknown("opportunities", sub)
		}

	case "initiatives":
		sub, subArgs := subcommand("initiatives", commandArgs)
		switch sub {
		case "list":
			exitOn(cli.InitiativesListCommand(app, subArgs))
		case "show":
			exitOn(cli.InitiativesShowCommand(app, subArgs))
		case "add":
			exitOn(cli.InitiativesAddCommand(app, subArgs))
		case "update":
			exitOn(cli.InitiativesUpdateCommand(app, subArgs))
		case "delete":
			exitOn(cli.InitiativesDeleteCommand(app, subArgs))
		case "link":
			exitOn(cli.InitiativesLinkCommand(app, subArgs))
		case "unlink":
			exitOn(cli.InitiativesUnlinkCommand(app, subArgs))
		default:
			unknown("initiatives", sub)
		}

	case "pipeline":
		exitOn(cli.PipelineCommand(app, commandArgs))

	case "viz":
		sub, subArgs := subcommand("viz", commandArgs)
		switch sub {
		case "territory":
			exitOn(cli.VizTerritoryCommand(app, subArgs))
		case "stakeholders":
			exitOn(cli.VizStakeholdersCommand(app, subArgs))
		case "pipeline":
			exitOn(cli.VizPipelineCommand(app, subArgs))
		default:
			unknown("viz", sub)
		}

	case "sync":
		sub, subArgs := subcommand("sync", commandArgs)
		switch sub {
		case "status":
			exitOn(cli.SyncStatusCommand(app, subArgs))
		case "now":
			exitOn(cli.SyncNowCommand(app, subArgs))
		case "wipe":
			exitOn(cli.SyncWipeCommand(app, subArgs))
		default:
			unknown("sync", sub)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func setupLogging(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(true)
}

func subcommand(command string, args []string) (string, []string) {
	if len(args) == 0 {
		fmt.Printf("Error: %s requires a subcommand\n\n", command)
		printUsage()
		os.Exit(1)
	}
	return args[0], args[1:]
}

func unknown(command, sub string) {
	fmt.Printf("Unknown %s command: %s\n\n", command, sub)
	printUsage()
	os.Exit(1)
}

func exitOn(err error) {
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`keyaccounts v%s - Enterprise key account management

USAGE:
  keyaccounts [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --env-file <path>      Load environment variables from a file (default: ./.env if present)
  --api-url <url>        REST API base URL (default: http://localhost:3001/api)
  --store <kv|sql>       Account store backend (default: kv)
  --db-path <path>       SQLite path for the sql store
  --log-level <level>    debug, info, warn or error

COMMANDS:
  accounts list          List accounts
    --status <status>      Active, Prospect or At Risk
    --priority <priority>  High, Medium or Low
  accounts add           Add an account
    --name <name>          Account name (required)
    --industry <industry>  Industry (required)
    --ticker, --arr, --status, --priority, --ready, --notes
  accounts toggle <id>   Flip transformation readiness
  accounts delete <id>   Delete an account

  opportunities list     List opportunities by stage
    --account <id>, --stage <stage>
  opportunities move --stage <stage> <id>
                         Move an opportunity to another stage

  initiatives list   [--account <id>]
  initiatives show   <initiative-id>
  initiatives add    --name <name> --account <id> [--outcome <o>] [--status <s>]
                     [--progress <n>] [--start YYYY-MM-DD] [--end YYYY-MM-DD] [--budget <n>]
  initiatives update [same flags as add] <initiative-id>
  initiatives delete <initiative-id>
  initiatives link   [--contact <id> | --opportunity <id>] <initiative-id>
  initiatives unlink [--contact <id> | --opportunity <id>] <initiative-id>

  pipeline               Show the pipeline dashboard

  viz territory          Account territory map (DOT)
    --status <status>, --output <file>
  viz stakeholders       Stakeholder map of contacts (DOT)
    --initiative <id>, --output <file>
  viz pipeline           Opportunity pipeline graph (DOT)
    --account <id>, --output <file>

  tui                    Interactive terminal UI
  mcp                    Start MCP server on stdio
  signup-check           Check a password against the sign-up policy

  sync status            Show charm sync status (kv store)
  sync now               Sync with the charm server
  sync wipe --confirm    Delete all local account data

ENVIRONMENT:
  KEYACCOUNTS_API_URL, KEYACCOUNTS_API_TOKEN, KEYACCOUNTS_STORE,
  KEYACCOUNTS_DB_PATH, KEYACCOUNTS_CHARM_HOST, KEYACCOUNTS_AUTO_SYNC,
  KEYACCOUNTS_LOG_LEVEL

EXAMPLES:
  keyaccounts accounts add --name "Acme Corp" --industry Manufacturing --arr 1200000
  keyaccounts opportunities move --stage Negotiation 01J...
  keyaccounts viz territory --status "At Risk" --output risk.dot

`, version)
}
