// Copyright 2025 The revindex Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the revindex completion and search server, or an
interactive CLI over the same indexes.

revindex keeps two reverse indexes in memory: a word index keyed by every
prefix of every word, answering completions, and a document index keyed
by every word of every document, answering multi-word searches ranked by
how many of the query words a document contains.

# Usage

Start the msgpack server on stdin/stdout with the configured inputs:

	revindex

Point it at other files and enable debug logging:

	revindex -words data/words.bin -docs data/notes.txt -d

Run the CLI for interactive testing:

	revindex -c -limit 10 -context 2

# Inputs

Word lists are read from .txt files (one word per line, extra columns
ignored) or from .bin files (int32 count, then uint16 length, bytes and
uint32 frequency per word). Document sets are read from .txt files (one
document per line, optionally "name<TAB>content") or .msgpack files.
Relative paths are tried against the working directory, the binary's
directory and the config directory.

# Configuration

The TOML config lives in the user config directory and is created with
defaults when missing:

	[server]
	max_limit = 64
	max_prefix = 60
	max_query = 256
	max_context = 5
	cache_size = 1024
	default_limit = 10

	[index]
	words_path = "words.txt"
	docs_path = "docs.txt"
	reindex_after = 0

	[cli]
	default_limit = 10
	default_context = 1

Command line flags win over the [cli] section.

# Command Line Flags

	-words string   word list to load (default from config)
	-docs string    document set to load (default from config)
	-config string  custom config file
	-d              enable debug mode with detailed logging
	-c              run the CLI instead of the server
	-limit int      number of results to return
	-context int    neighbours shown around each search result
	-prmin int      minimum prefix length
	-prmax int      maximum prefix length
	-no-filter      disable input filtering
	-version        show the version
*/
package main

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bastiangx/revindex/internal/cli"
	"github.com/bastiangx/revindex/internal/utils"
	"github.com/bastiangx/revindex/pkg/completion"
	"github.com/bastiangx/revindex/pkg/config"
	"github.com/bastiangx/revindex/pkg/dictionary"
	"github.com/bastiangx/revindex/pkg/document"
	"github.com/bastiangx/revindex/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	gh      = "https://github.com/bastiangx/revindex"
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

// main only manages the flow between config, loading and the chosen mode.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	wordsPath := flag.String("words", "", "Word list to load (.txt or .bin)")
	docsPath := flag.String("docs", "", "Document set to load (.txt or .msgpack)")
	configPath := flag.String("config", "", "Custom config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of results to return")
	context := flag.Int("context", defaultConfig.CLI.DefaultContext, "Neighbouring documents shown around each search result")
	minPrefix := flag.Int("prmin", defaultConfig.CLI.DefaultMinLen, "Minimum prefix length for suggestions (1 <= n <= prmax)")
	maxPrefix := flag.Int("prmax", defaultConfig.CLI.DefaultMaxLen, "Maximum prefix length for suggestions")
	noFilter := flag.Bool("no-filter", defaultConfig.CLI.DefaultNoFilter, "Disable input filtering (DBG only)")

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

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	configDir := ""
	if defaultPath, err := pathResolver.GetConfigPath(config.FileName); err == nil {
		configDir = filepath.Dir(defaultPath)
	}
	appConfig, usedConfig := config.LoadConfigWithPriority(*configPath, configDir)
	log.Debugf("Using config file: (%s)", utils.GetAbsolutePath(usedConfig))

	// flags given on the command line win over the [cli] section
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["limit"] {
		*limit = appConfig.CLI.DefaultLimit
	}
	if !set["context"] {
		*context = appConfig.CLI.DefaultContext
	}
	if !set["prmin"] {
		*minPrefix = appConfig.CLI.DefaultMinLen
	}
	if !set["prmax"] {
		*maxPrefix = appConfig.CLI.DefaultMaxLen
	}
	if !set["no-filter"] {
		*noFilter = appConfig.CLI.DefaultNoFilter
	}

	words := loadWords(pathResolver, cmp.Or(*wordsPath, appConfig.Index.WordsPath))
	docs := loadDocuments(pathResolver, cmp.Or(*docsPath, appConfig.Index.DocsPath))

	wordIndex := completion.NewWordIndex(words)
	docIndex := document.New(docs)

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"minPrefix", *minPrefix,
			"maxPrefix", *maxPrefix,
			"limit", *limit,
			"context", *context,
			"noFilter", *noFilter)

		inputHandler := cli.NewInputHandler(wordIndex, docIndex, *minPrefix, *maxPrefix, *limit, *context, *noFilter)
		if err := inputHandler.Start(os.Stdin); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(wordIndex, docIndex, appConfig, os.Stdin, os.Stdout)
	showStartupInfo(len(words), len(docs))

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func loadWords(pr *utils.PathResolver, path string) []string {
	resolved, err := pr.ResolveFile(path)
	if err != nil {
		log.Warnf("No word list at %s, starting with an empty vocabulary", path)
		return nil
	}
	words, err := dictionary.LoadWords(resolved)
	if err != nil {
		if errors.Is(err, dictionary.ErrUnknownFormat) {
			log.Errorf("Unsupported word list %s: %v", resolved, err)
		} else {
			log.Errorf("Failed to load word list %s: %v", resolved, err)
		}
		return nil
	}
	log.Debugf("Loaded %s words from %s", utils.FormatWithCommas(len(words)), resolved)
	return words
}

func loadDocuments(pr *utils.PathResolver, path string) []document.Document {
	resolved, err := pr.ResolveFile(path)
	if err != nil {
		log.Warnf("No document set at %s, search is empty", path)
		return nil
	}
	docs, err := dictionary.LoadDocuments(resolved)
	if err != nil {
		log.Errorf("Failed to load document set %s: %v", resolved, err)
		return nil
	}
	log.Debugf("Loaded %s documents from %s", utils.FormatWithCommas(len(docs)), resolved)
	return docs
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ revindex ] prefix completion and word search")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo goes to stderr; stdout carries the msgpack stream.
func showStartupInfo(words, docs int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Infof("revindex %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("words: %s, documents: %s", utils.FormatWithCommas(words), utils.FormatWithCommas(docs))
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
