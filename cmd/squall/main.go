// Package main is the entry point for the Squall demo application.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/squall/internal/app"
	"github.com/dshills/squall/internal/display"
	"github.com/dshills/squall/internal/dom"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultFPS = 30

type options struct {
	logLevel string
	logFile  string
	headless int
	fps      int
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	// Interactive mode owns the terminal, so logs go to a file or nowhere.
	logWriter := io.Writer(io.Discard)
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logWriter = f
	} else if opts.headless > 0 {
		logWriter = os.Stderr
	}

	application := app.New(app.Options{
		LogLevel:  opts.logLevel,
		LogWriter: logWriter,
	})
	defer application.Shutdown()

	if err := seedState(application.Store()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to seed state: %v\n", err)
		return 1
	}

	var err error
	if opts.headless > 0 {
		err = runHeadless(application, opts.headless)
	} else {
		err = runInteractive(application, opts.fps)
	}
	if err != nil {
		// Check if it's a normal quit using errors.Is for wrapped errors
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

// runInteractive drives the demo on a tcell terminal until the user quits.
func runInteractive(application *app.App, fps int) error {
	term, err := display.NewTerminal()
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}
	if err := term.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer term.Close()

	host := dom.NewHost("main")
	if _, err := application.Mount(host, rootView()); err != nil {
		return fmt.Errorf("mount root: %w", err)
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	if fps <= 0 {
		fps = defaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	if err := term.Present(host); err != nil {
		return err
	}

	store := application.Store()
	for {
		select {
		case <-signals:
			return app.ErrQuit
		case ev, ok := <-term.Events():
			if !ok {
				return app.ErrQuit
			}
			switch ev.Kind {
			case display.EventInterrupt:
				return app.ErrQuit
			case display.EventKey:
				quit, err := handleKey(store, ev.Rune)
				if err != nil {
					return err
				}
				if quit {
					return app.ErrQuit
				}
			case display.EventResize:
				if err := term.Present(host); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if application.Frames().Pending() == 0 {
				continue
			}
			application.Frames().Flush()
			if err := term.Present(host); err != nil {
				return err
			}
		}
	}
}

// runHeadless renders the requested number of frames to stdout, stepping a
// scripted key sequence between frames.
func runHeadless(application *app.App, frames int) error {
	host := dom.NewHost("main")
	if _, err := application.Mount(host, rootView()); err != nil {
		return fmt.Errorf("mount root: %w", err)
	}

	pres := display.NewText(os.Stdout)
	store := application.Store()

	script := []rune{'+', '+', 'j', 'x', 'r', '-'}
	for i := 0; i < frames; i++ {
		if i > 0 {
			if _, err := handleKey(store, script[(i-1)%len(script)]); err != nil {
				return err
			}
			application.Frames().Flush()
		}
		if err := pres.Present(host); err != nil {
			return err
		}
	}
	return nil
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level (disabled, error, warn, info, debug, trace)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write JSON logs to a file")
	flag.IntVar(&opts.headless, "headless", 0, "Render N frames to stdout and exit")
	flag.IntVar(&opts.headless, "n", 0, "Render N frames to stdout and exit (shorthand)")
	flag.IntVar(&opts.fps, "fps", defaultFPS, "Frame rate for the interactive loop")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Squall - reactive document runtime demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: squall [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  + / -    adjust the counter\n")
		fmt.Fprintf(os.Stderr, "  j / k    move the todo selection\n")
		fmt.Fprintf(os.Stderr, "  x        toggle the selected todo\n")
		fmt.Fprintf(os.Stderr, "  r        rotate the todo list\n")
		fmt.Fprintf(os.Stderr, "  a / d    add or delete a todo\n")
		fmt.Fprintf(os.Stderr, "  q / esc  quit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Squall %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// Validate log level
	switch opts.logLevel {
	case "disabled", "error", "warn", "info", "debug", "trace":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be disabled, error, warn, info, debug, or trace)\n", opts.logLevel)
		os.Exit(1)
	}

	return opts
}
