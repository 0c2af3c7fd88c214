package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if len(os.Args) < 2 {
		runList(nil)
		return
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "help", "--help", "-h":
		printHelp()
	case "install":
		runInstall(args)
	case "list", "ls":
		runList(args)
	case "next":
		runNext(args)
	case "prev", "previous":
		runPrev(args)
	case "switch", "sw":
		runSwitch(args)
	case "add":
		runAdd(args)
	case "rename", "mv":
		runRename(args)
	case "rm":
		runRemove(args)
	case "pick":
		runPick(args)
	case "yank":
		runYank(args)
	case "check":
		runCheck(args)
	case "import":
		runImport(args)
	case "export":
		runExport(args)
	case "host":
		runHost(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		printHelp()
		os.Exit(2)
	}
}

func printHelp() {
	help := `bars - switch between named bookmark bars

Usage:
  bars                       List bars, active one marked
  bars install               Create the toolbar, bar directory and default bar
  bars list                  List bars, active one marked
  bars next | prev           Show the next / previous bar (wraps around)
  bars switch <1-9|name>     Show a bar by position or fuzzy name
  bars add <name>            Create an empty bar
  bars rename <name> <new>   Rename a bar
  bars rm <name>             Delete a bar and its bookmarks
  bars rm --directory        Delete the whole bar directory (reinstalls)
  bars pick                  Choose a bar interactively
  bars yank                  Copy the URLs of the shown bar to the clipboard
  bars check [name]          Find dead links in the shown bar or a named bar
  bars import <file.html>    Import bars from browser bookmark HTML
  bars export [path]         Export all bars to bookmark HTML
  bars host                  Run as the browser's native messaging host
  bars help                  Show this help

Flags (all commands):
  --config <path>            Config file (default $BARS_CONFIG or ~/.config/bars/config.json)
  --log-level <level>        Override the configured log level

Check flags:
  --concurrency <n>          Parallel requests (default 8)
  --timeout <duration>       Per-request timeout (default 10s)

Host flags:
  --idle-monitor             Poll system idle time instead of relying on browser events

Data Storage:
  ~/.config/bars/bars.db (sqlite) or ~/.config/bars/bars.json
`
	fmt.Print(help)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// fail prints an error in the CLI's format and exits.
func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	os.Exit(1)
}
