// Package main is the entry point for the langkit language server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dshills/langkit/internal/bootstrap"
	"github.com/dshills/langkit/internal/config"
	"github.com/dshills/langkit/internal/loader"
	"github.com/dshills/langkit/internal/lsp"
	"github.com/dshills/langkit/internal/watcher"
	"github.com/dshills/langkit/internal/workspace"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	logLevel   string
	logFile    string
	libDir     string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Logging.File = opts.logFile
	}
	if opts.libDir != "" {
		cfg.Libraries.Dir = opts.libDir
	}

	verbosity, err := cfg.Verbosity()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	var logPath *string
	if cfg.Logging.File != "" {
		logPath = &cfg.Logging.File
	}
	commonlog.Configure(verbosity, logPath)
	log := commonlog.GetLogger("langkit")
	for _, name := range cfg.IgnoredEnv {
		log.Warningf("ignoring %s: no such setting", name)
	}

	compilerOptions, err := cfg.CompilerOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	b := bootstrap.New(
		loader.NewAssetLoader(cfg.LoaderConfig()),
		bootstrap.WithCompilerOptions(compilerOptions),
		bootstrap.WithEagerModelSync(cfg.TypeScript.EagerModelSync),
	)
	bootstrap.SetDefault(b)
	registry := workspace.New(b)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Libraries.Dir != "" {
		libs := watcher.New(cfg.Libraries.Dir, registry)
		defer func() {
			if err := libs.Close(); err != nil {
				log.Warningf("closing library watcher: %v", err)
			}
			log.Infof("libraries: %d injected, %d failed", libs.Injected(), libs.Failures())
		}()

		// Watch before scanning so files written during the scan are not missed.
		if cfg.Libraries.Watch {
			if err := libs.Start(ctx); err != nil {
				log.Errorf("watching libraries: %v", err)
			}
		}
		go func() {
			n, err := libs.Scan(ctx)
			if err != nil {
				log.Errorf("scanning libraries: %v", err)
				return
			}
			log.Infof("injected %d libraries from %s", n, cfg.Libraries.Dir)
		}()
	}

	log.Infof("langkit %s starting", version)
	return serve(ctx, lsp.New(registry, cfg.Server.Name, version).RunStdio, log)
}

// serve runs fn until it returns or ctx ends, and returns the exit code.
// fn is not stopped when ctx ends; the caller is expected to exit.
func serve(ctx context.Context, fn func() error, log commonlog.Logger) int {
	served := make(chan error, 1)
	go func() {
		served <- fn()
	}()

	select {
	case <-ctx.Done():
		log.Info("signal received, exiting")
	case err := <-served:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")
	flag.StringVar(&opts.libDir, "lib-dir", "", "Directory of .d.ts libraries to inject")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "langkit - language services for contract and script editors\n\n")
		fmt.Fprintf(os.Stderr, "Usage: langkit [options]\n\n")
		fmt.Fprintf(os.Stderr, "Serves the Language Server Protocol on stdin/stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("langkit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}

	return opts
}
