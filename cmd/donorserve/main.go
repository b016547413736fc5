// Copyright 2025 The DonorServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the donor catalog search server and CLI [DBG]
application.

DonorServe answers interactive searches over a fixed catalog of donor
records, each carrying a display name, a unique short code and a
contributor-type classification. Four matching strategies are
available — exact, partial, fuzzy (normalized Levenshtein) and phonetic
(Soundex) — combined with field scoping, government/non-government
filtering and trie-backed autosuggestions.

# Usage

Start the msgpack IPC server with default settings:

	donorserve -catalog donors.csv

Run in CLI mode for interactive testing:

	donorserve -c -catalog donors.csv -limit 10

The catalog is a CSV file with name,code,type columns. Contributor
type descriptors come from a builtin table and can be replaced with a
TOML file via -types or the config.

# Configuration

Runtime configuration is managed through a TOML file that supports
matcher thresholds, session behavior and server limits:

	[search]
	fuzzy_threshold = 0.35
	correction_floor = 0.55
	suggestion_limit = 5

	[session]
	debounce_ms = 300

	[server]
	max_query = 120
	default_limit = 50

The config file is automatically created with defaults if it doesn't
exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Search
requests are processed synchronously with microsecond timing included
in responses:

	{"id": "req1", "op": "search", "q": "world health", "m": "partial", "f": "all"}

See the server package docs for the full message set.

# CLI Mode

CLI mode drives a live debounced session from stdin lines and renders
highlighted results. Option commands switch mode, field scope and
filters without retyping the query. This mode is primarily intended
for development and for testing matcher changes before deploying to
server mode.

# Command Line Flags

The following flags control application behavior:

	-catalog string
	    Path to the catalog CSV file (overrides config)
	-types string
	    Path to a contributor type TOML table (overrides builtin)
	-config string
	    Custom config file path
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Maximum results to display in CLI mode
	-debounce int
	    Debounce interval in milliseconds for CLI sessions
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avoss/donorserve/internal/cli"
	"github.com/avoss/donorserve/internal/logger"
	"github.com/avoss/donorserve/pkg/catalog"
	"github.com/avoss/donorserve/pkg/config"
	"github.com/avoss/donorserve/pkg/search"
	"github.com/avoss/donorserve/pkg/server"
	"github.com/avoss/donorserve/pkg/session"
	"github.com/avoss/donorserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	AppName = "donorserve"
	gh      = "https://github.com/avoss/donorserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, catalog and engine together and hands off to the
// server or the CLI. It does not implement logic of its own.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configPath := flag.String("config", "", "Custom config file path")
	catalogPath := flag.String("catalog", "", "Path to the catalog CSV file")
	typesPath := flag.String("types", "", "Path to a contributor type TOML table")
	limit := flag.Int("limit", 20, "Maximum results to display in CLI mode")
	debounceMs := flag.Int("debounce", 0, "Debounce interval in ms (0 = config default)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	if *catalogPath != "" {
		appConfig.Catalog.Path = *catalogPath
	}
	if *typesPath != "" {
		appConfig.Catalog.TypesPath = *typesPath
	}
	if *debounceMs > 0 {
		appConfig.Session.DebounceMs = *debounceMs
	}

	types := catalog.NewTypeSet()
	if appConfig.Catalog.TypesPath != "" {
		types, err = catalog.LoadTypes(appConfig.Catalog.TypesPath)
		if err != nil {
			log.Fatalf("Failed to load contributor types: %v", err)
		}
	}

	store, err := catalog.LoadFile(appConfig.Catalog.Path, types)
	if err != nil {
		if store == nil || store.Len() == 0 {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		// Partial load: bad rows were skipped, the rest is usable.
		log.Warnf("Catalog loaded with rejected rows: %v", err)
	}
	log.Debugf("Catalog ready: %d records, %d contributor types", store.Len(), types.Len())

	evaluator := search.NewEvaluator(store, appConfig.Search.FuzzyThreshold)
	suggester := suggest.NewSuggester(store, appConfig.Search.CorrectionFloor)

	if *cliMode {
		log.SetReportTimestamp(false)
		debounce := time.Duration(appConfig.Session.DebounceMs) * time.Millisecond
		controller := session.New(evaluator, suggester, session.Options{
			Debounce:        debounce,
			SuggestionLimit: appConfig.Search.SuggestionLimit,
		})
		defer controller.Close()

		inputHandler := cli.NewInputHandler(controller, *limit, debounce+2*time.Second)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	showStartupInfo(appConfig.Catalog.Path, store.Len())

	srv := server.NewServer(evaluator, suggester, appConfig)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func printVersion() {
	vlog := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	vlog.SetStyles(styles)

	vlog.Print("")
	vlog.Print("[ DonorServe ] Interactive donor catalog search")
	vlog.Print("", "version", Version)
	vlog.Print("")
	vlog.Print("use -h or --help to see available options")
	vlog.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(catalogPath string, records int) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("============")
	println(" DonorServe ")
	println("============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("catalog: ( %s ) %d records", catalogPath, records)
	log.Info("status: ready")
	println("============")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
