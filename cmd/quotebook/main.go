package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/quotebook/internal/config"
	"github.com/hpungsan/quotebook/internal/db"
	"github.com/hpungsan/quotebook/internal/logger"
	"github.com/hpungsan/quotebook/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// HomeEnv overrides the base directory holding the database and config.json.
const HomeEnv = "QUOTEBOOK_HOME"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "mcp": true,
	"select": true, "list": true, "get": true,
	"remove": true, "tag": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false
	}
	arg := args[1]
	if cliCommands[arg] {
		return true
	}
	// Global flags come before the subcommand
	if len(arg) > 1 && arg[0] == '-' {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	arg := args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// resolveBaseDir returns $QUOTEBOOK_HOME, or ~/.quotebook.
func resolveBaseDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".quotebook"), nil
}

func printBanner() {
	fmt.Println(`
  quotebook: chat quote capture and recall

  Usage: quotebook <command> [options]
         quotebook --help

  MCP server mode requires piped input.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion(os.Args) {
		if err := newCLIApp(nil).Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	baseDir, err := resolveBaseDir()
	if err != nil {
		fatal("%v", err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fatal("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	e, err := newEnv(database, cfg)
	if err != nil {
		fatal("%v", err)
	}

	if isCLIMode(os.Args) {
		if err := newCLIApp(e).Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			database.Close()
			os.Exit(1)
		}
		return
	}

	if isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'quotebook --help' for usage.\n")
		database.Close()
		os.Exit(1)
	}

	// MCP server mode (default). stdout carries the protocol, so logs stay
	// on stderr as JSON.
	logger.Init(false, false)
	if err := mcp.Run(database, cfg, e.selector, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		database.Close()
		os.Exit(1)
	}
}
