package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/1broseidon/cornerfix/internal/ipc"
	"github.com/joho/godotenv"
)

func main() {
	// DISPLAY and CORNERFIX_CONFIG may come from a .env next to the binary's
	// working directory.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "tick":
		os.Exit(runTick(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cornerfix <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Run the corner overlay daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  tick                Force a classification pass now")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'cornerfix <command> --help' for command-specific options.")
}

// parseNoArgs parses a flag set for a command that takes no positional
// arguments. It returns -1 to continue or an exit code.
func parseNoArgs(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		fs.Usage()
		return 2
	}
	return -1
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: cornerfix status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(status)
	}

	fmt.Printf("daemon_running:   %v\n", status.DaemonRunning)
	fmt.Printf("pid:              %d\n", status.PID)
	fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)
	fmt.Printf("poll_interval:    %s\n", status.PollInterval)
	fmt.Printf("ticks:            %d\n", status.Ticks)
	printTick(status.LastTick)
	fmt.Printf("surfaces:         %d (size %d, visible %v)\n", status.SurfaceCount, status.SurfaceSize, status.SurfacesVisible)
	return 0
}

func runTick(args []string) int {
	fs := flag.NewFlagSet("tick", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output the tick result as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: cornerfix tick [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run one classification pass in the daemon and print the result.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	tick, err := ipc.NewClient().Tick()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(tick)
	}
	printTick(*tick)
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: cornerfix reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to re-read its configuration file.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func printTick(tick ipc.TickData) {
	fmt.Printf("last_outcome:     %s\n", tick.Outcome)
	if tick.Reason != "" {
		fmt.Printf("reason:           %s\n", tick.Reason)
	}
	if tick.App != "" {
		fmt.Printf("app:              %s\n", tick.App)
	}
	if tick.Window != nil {
		fmt.Printf("window:           %dx%d at (%d,%d)\n", tick.Window.Width, tick.Window.Height, tick.Window.X, tick.Window.Y)
	}
	if tick.Visible != nil {
		fmt.Printf("visible_area:     %dx%d at (%d,%d)\n", tick.Visible.Width, tick.Visible.Height, tick.Visible.X, tick.Visible.Y)
	}
	if tick.Size > 0 {
		fmt.Printf("corner_size:      %d\n", tick.Size)
	}
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
