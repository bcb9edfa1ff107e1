// Copyright 2025 The dlbserve Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the dlbserve word completion server and CLI [DBG] application.

dlbserve keeps a dictionary in a De la Briandais trie where every word carries a
priority. Prefix completions are ranked by priority, and every word the user
completes gains priority and is remembered in a history file, so frequently used
words rise to the top across sessions.

# Usage

Start the server with default settings:

	dlbserve

Use a custom dictionary and enable debug mode:

	dlbserve -dict /usr/share/dict/words -d

Run the interactive prompt:

	dlbserve -c -limit 5

The dictionary is either a text file with one word per line, optionally followed by
", priority", a binary chunk file, or a directory of chunk files named dict_0001.bin,
dict_0002.bin and so on. A loaded dictionary can be exported as a chunk file:

	dlbserve -dict words.txt -export dict_0001.bin

# Configuration

Runtime configuration is read from a TOML file, created with defaults if missing:

	[server]
	max_limit = 64
	min_prefix = 1
	max_prefix = 60
	enable_filter = false
	fuzzy = false

	[dict]
	path = "dictionary.txt"
	max_words = 0

	[history]
	path = "user_history.txt"
	enabled = true

	[cli]
	default_limit = 5

Flags override the file.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout, see package server:

	{"id": "req1", "p": "hel", "l": 20}
	{"id": "req1", "s": [{"w": "hello", "r": 1, "f": 12}, {"w": "help", "r": 2, "f": 3}], "c": 2, "t": 45}

# CLI Mode

The prompt reads one character at a time and prints the top predictions for the
word typed so far. '$' completes the typed word, a digit picks a prediction and
'!' quits.

# Command Line Flags

	-version     Show current version
	-config      Path to a config file
	-dict        Dictionary file or chunk directory
	-history     History file
	-d           Enable debug mode with detailed logging
	-c           Run the interactive prompt instead of the server
	-limit       Number of predictions shown in CLI mode
	-words       Maximum words to load (0 for all)
	-fuzzy       Correct misspelled prefixes in server mode
	-export      Write the loaded dictionary as a chunk file and exit

The history is saved on exit, including on SIGINT and SIGTERM.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/dlbserve/internal/cli"
	"github.com/bastiangx/dlbserve/internal/logger"
	"github.com/bastiangx/dlbserve/internal/utils"
	"github.com/bastiangx/dlbserve/pkg/config"
	"github.com/bastiangx/dlbserve/pkg/dictionary"
	"github.com/bastiangx/dlbserve/pkg/history"
	"github.com/bastiangx/dlbserve/pkg/server"
	"github.com/bastiangx/dlbserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	gh      = "https://github.com/bastiangx/dlbserve"
)

// sigHandler saves the history before exiting on SIGINT/SIGTERM.
func sigHandler(save func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		save()
		os.Exit(0)
	}()
}

// main only manages the flow between config, dictionary, history and the chosen interface.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to a custom config file")
	dictPath := flag.String("dict", "", "Dictionary file or chunk directory (default from config)")
	historyPath := flag.String("history", "", "History file (default from config)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", 0, "Number of predictions shown in CLI mode (default from config)")
	wordLimit := flag.Int("words", -1, "Maximum number of words to load, 0 for all (default from config)")
	fuzzy := flag.Bool("fuzzy", false, "Correct misspelled prefixes in server mode")
	exportPath := flag.String("export", "", "Write the loaded dictionary as a chunk file and exit")

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

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", utils.GetAbsolutePath(configPath))
	applyFlags(appConfig, *dictPath, *historyPath, *limit, *wordLimit, *fuzzy)

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	resolvedDict := pathResolver.ResolveExisting(appConfig.Dict.Path)
	log.Debugf("Using dictionary at: %s", resolvedDict)

	completer := suggest.NewCompleter()
	stats, err := completer.LoadDictionary(resolvedDict, appConfig.Dict.MaxWords)
	if err != nil {
		log.Fatalf("Failed to load dictionary %s: %v", resolvedDict, err)
	}
	log.Debugf("Loaded %s words, skipped %d", utils.FormatWithCommas(stats.Loaded), stats.Skipped)

	if *exportPath != "" {
		if err := dictionary.SaveChunk(*exportPath, completer.Entries()); err != nil {
			log.Fatalf("Failed to export dictionary: %v", err)
		}
		log.Infof("Exported %d words to %s", stats.Loaded, *exportPath)
		return
	}

	saveHistory := func() {}
	if appConfig.History.Enabled {
		resolvedHistory := pathResolver.ResolveExisting(appConfig.History.Path)
		savePath := resolvedHistory
		if err := completer.LoadHistory(resolvedHistory); err != nil {
			// keep the unreadable file for the user to repair, this session goes next to it
			savePath = resolvedHistory + ".session"
			log.Errorf("Ignoring unreadable history: %v. Saving this session to %s", err, savePath)
			completer.SetHistory(history.New())
		}
		saveHistory = func() {
			if err := completer.History().Save(savePath); err != nil {
				log.Errorf("%v", err)
			}
		}
	}
	sigHandler(saveHistory)
	defer saveHistory()

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:", "limit", appConfig.CLI.DefaultLimit)

		inputHandler := cli.NewInputHandler(completer, appConfig.CLI.DefaultLimit)
		if err := inputHandler.Start(); err != nil {
			log.Errorf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(completer, appConfig, configPath)
	showStartupInfo(resolvedDict, completer.Stats()["totalWords"])

	if err := srv.Start(); err != nil {
		log.Errorf("Server stopped: %v", err)
	}
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cfg *config.Config, dictPath, historyPath string, limit, wordLimit int, fuzzy bool) {
	if dictPath != "" {
		cfg.Dict.Path = dictPath
	}
	if historyPath != "" {
		cfg.History.Path = historyPath
	}
	if limit > 0 {
		cfg.CLI.DefaultLimit = limit
	}
	if wordLimit >= 0 {
		cfg.Dict.MaxWords = wordLimit
	}
	if fuzzy {
		cfg.Server.Fuzzy = true
	}
}

func printVersion() {
	banner := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ dlbserve ] Ranked word completions that learn from you")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(dictPath string, words int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Info("===========")
	log.Info(" dlbserve ")
	log.Info("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("dictionary: ( %s ), %s words", dictPath, utils.FormatWithCommas(words))
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
