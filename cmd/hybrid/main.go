// Package main is the entry point for the hybrid JSON editor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/peterh/liner"

	"github.com/dshills/hybrid/internal/app"
	"github.com/dshills/hybrid/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	historyFile = ".hybrid_history"
	prompt      = "hybrid> "
)

type options struct {
	configPath string
	logLevel   string
	watch      bool
	file       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	var cleanup shutdown
	defer cleanup.run()

	var loadOpts []config.LoadOption
	if opts.configPath == "" {
		opts.configPath = defaultConfigPath()
		loadOpts = append(loadOpts, config.Optional())
	}
	settings, err := config.Load(opts.configPath, loadOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		settings.Logging.Level = opts.logLevel
	}

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	session, err := app.New(app.Options{
		Settings: settings,
		Logger:   logger,
		Level:    level,
		Out:      os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	cleanup.add(session.Close)

	if opts.watch && fileExists(opts.configPath) {
		w, err := config.NewWatcher(opts.configPath, func(next *config.Settings, err error) {
			if err != nil {
				logger.Warn("config reload failed", "error", err)
				return
			}
			if opts.logLevel != "" {
				next.Logging.Level = opts.logLevel
			}
			session.ApplySettings(next)
		}, config.WithWatchLogger(logger), config.WithLoadOptions(loadOpts...))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: watching config: %v\n", err)
			return 1
		}
		cleanup.add(func() { _ = w.Close() })
	}

	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := session.Load(string(data)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", opts.file, err)
			return 1
		}
	}

	return repl(session, &cleanup)
}

// defaultConfigPath returns the settings file under the user config
// directory, or "" when there is none.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "hybrid", "config.toml")
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func repl(session *app.Session, cleanup *shutdown) int {
	fmt.Printf("hybrid %s\nType :help for commands, Ctrl+D or :quit to exit.\n", version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	cleanup.add(func() { _ = ln.Close() })
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(session.LineCompletions)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	cleanup.add(func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	})

	// Prompt does not return on a signal; release everything here.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)
	go func() {
		sig := <-signals
		cleanup.run()
		code := 1
		if n, ok := sig.(syscall.Signal); ok {
			code = 128 + int(n)
		}
		os.Exit(code)
	}()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if line != "" {
			ln.AppendHistory(line)
		}

		if err := session.Exec(line); err != nil {
			if errors.Is(err, app.ErrQuit) {
				return 0
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.BoolVar(&opts.watch, "watch", true, "Reload the configuration file when it changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "hybrid - structured JSON editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: hybrid [options] [file.json]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  %s*  overrides settings, e.g. %sEDITOR_MAX_UNDO=50\n",
			config.DefaultEnvPrefix, config.DefaultEnvPrefix)
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("hybrid %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.logLevel != "" {
		if _, err := config.ParseLevel(opts.logLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	switch flag.NArg() {
	case 0:
	case 1:
		opts.file = flag.Arg(0)
	default:
		flag.Usage()
		os.Exit(2)
	}
	return opts
}
