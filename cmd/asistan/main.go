// Package main is the asistan CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/asistan/internal/assistant"
	"github.com/hyperjump/asistan/internal/cli"
	"github.com/hyperjump/asistan/internal/config"
	"github.com/hyperjump/asistan/internal/export"
	"github.com/hyperjump/asistan/internal/server"
	"github.com/hyperjump/asistan/internal/snapshot"
	"github.com/hyperjump/asistan/internal/storage"
	"github.com/hyperjump/asistan/internal/structure"
	"github.com/hyperjump/asistan/internal/watcher"
	"github.com/hyperjump/asistan/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/asistan/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory is preferred if it exists; when neither exists the built-in
// defaults are used. Returns the config and the path actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "resolve":
		runResolve()
	case "classify":
		runClassify()
	case "detect":
		runDetect()
	case "import":
		runImport()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("asistan version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// mustSetup loads config, builds a logger and wires the components, exiting on failure.
func mustSetup(configPath string, debugFlag bool, logLevel string) (*config.Config, *zap.Logger, *Components) {
	cfg, resolvedConfigPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	var logger *zap.Logger
	if logLevel != "" {
		logger, err = utils.NewLoggerWithLevel(logLevel)
	} else {
		logger, err = utils.NewLogger(debugMode)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)
	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger, components
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (resolver decisions, snapshot reloads)")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error); overrides --debug")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := mustSetup(*configPath, *debug, *logLevel)
	defer logger.Sync()
	defer components.Close()

	if _, err := components.Snapshots.Refresh(context.Background()); err != nil {
		logger.Warn("initial snapshot load failed; answers will not be grounded until a reload succeeds", zap.Error(err))
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if w := newFileWatcher(cfg, components, logger); w != nil {
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(
		components.Assistant,
		components.Snapshots,
		components.Storage,
		&cfg.Server,
		logger,
		cfg.Storage.DatabasePath,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// newFileWatcher watches the snapshot file and the region macro file. It returns
// nil when watching is disabled or there is nothing to watch.
func newFileWatcher(cfg *config.Config, c *Components, logger *zap.Logger) *watcher.Watcher {
	if !cfg.Watch.EnabledOrDefault() {
		return nil
	}
	snapshotPath := absPath(cfg.Storage.SnapshotPath)
	regionPath := absPath(cfg.Regions.MacroFile)
	var files []string
	for _, p := range []string{snapshotPath, regionPath} {
		if p != "" {
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		return nil
	}
	return watcher.NewWatcher(
		files,
		func(path string) {
			switch path {
			case snapshotPath:
				if _, err := c.Snapshots.Refresh(context.Background()); err != nil {
					logger.Warn("snapshot reload failed", zap.String("path", path), zap.Error(err))
				}
			case regionPath:
				reloadRegions(cfg, c.Matcher, logger)
			}
		},
		func(path string) {
			logger.Warn("watched file removed; keeping the last loaded copy", zap.String("path", path))
		},
		watcher.WithLogger(logger),
	)
}

// absPath matches the watcher's path form; empty stays empty.
func absPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// buildMessage joins the positional arguments into one message.
func buildMessage(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves flags given after the message in front of it so that
// "asistan ask bugünkü ziyaretler --output json" parses.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func parseOutput(value string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(value)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL; empty runs the pipeline in-process")
	userID := fs.String("user", "", "caller user id")
	conversationID := fs.String("conversation", "", "conversation id (new one when empty)")
	focus := fs.String("context", "", `optional context payload, e.g. {"focus":{"kind":"clinic","id":"c1"}}`)
	xlsxPath := fs.String("xlsx", "", "write a detected table to this .xlsx file")
	output := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: asistan ask [flags] <message>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))
	format := parseOutput(*output)

	message := buildMessage(fs.Args())
	if message == "" {
		fs.Usage()
		os.Exit(1)
	}
	req := assistant.ChatRequest{
		ConversationID: *conversationID,
		UserID:         *userID,
		Text:           message,
	}
	if *focus != "" {
		req.Context = json.RawMessage(*focus)
	}

	var reply *assistant.Reply
	var err error
	if *serverURL != "" {
		reply, err = chatViaHTTP(*serverURL, req)
	} else {
		_, logger, components := mustSetup(*configPath, false, "")
		defer logger.Sync()
		defer components.Close()
		reply, err = components.Assistant.Handle(context.Background(), req)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}

	if err := cli.WriteReply(os.Stdout, reply, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if *xlsxPath != "" {
		if reply.Message.Table == nil {
			fmt.Fprintln(os.Stderr, "No table detected in the reply; nothing written")
			os.Exit(1)
		}
		if err := export.SaveXLSX(*xlsxPath, reply.Message.Table); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Table written to %s\n", *xlsxPath)
	}
}

func chatViaHTTP(serverURL string, req assistant.ChatRequest) (*assistant.Reply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var reply assistant.Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &reply, nil
}

func runResolve() {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	userID := fs.String("user", "", "caller user id")
	conversationID := fs.String("conversation", "", "conversation id whose state is consulted")
	output := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	format := parseOutput(*output)

	message := buildMessage(fs.Args())
	if message == "" {
		fmt.Fprintln(os.Stderr, "Usage: asistan resolve [flags] <message>")
		os.Exit(1)
	}
	_, logger, components := mustSetup(*configPath, *debug, "")
	defer logger.Sync()
	defer components.Close()

	res, err := components.Assistant.Resolve(context.Background(), *conversationID, *userID, message)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Resolve failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteResolution(os.Stdout, res, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runClassify() {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	format := parseOutput(*output)

	message := buildMessage(fs.Args())
	if message == "" {
		fmt.Fprintln(os.Stderr, "Usage: asistan classify [flags] <message>")
		os.Exit(1)
	}
	_, logger, components := mustSetup(*configPath, false, "")
	defer logger.Sync()
	defer components.Close()

	d := components.Assistant.Classify(context.Background(), message)
	if err := cli.WriteDecision(os.Stdout, d, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// runDetect reads reply text from a file argument or stdin; it needs no config.
func runDetect() {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	retrieved := fs.Bool("retrieved", false, "treat the text as a retrieval answer (summary shape first)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseOutput(*output)

	var data []byte
	var err error
	if fs.NArg() > 0 && fs.Arg(0) != "-" {
		data, err = os.ReadFile(fs.Arg(0))
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteDetection(os.Stdout, structure.DetectReply(string(data), *retrieved), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: asistan import [flags] <snapshot.json|snapshot.yaml>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	snap, err := snapshot.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read failed: %v\n", err)
		os.Exit(1)
	}
	db, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := snapshot.Import(context.Background(), db, snap); err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %s into %s\n", path, cfg.Storage.DatabasePath)
	for _, line := range countLines(snap.Counts()) {
		fmt.Println(line)
	}
}

// countLines renders collection counts in a stable order.
func countLines(counts map[string]int) []string {
	order := []string{"clinics", "users", "proposals", "visits", "surgery_reports", "products", "campaigns", "regions", "stock_assignments"}
	lines := make([]string, 0, len(order))
	for _, name := range order {
		lines = append(lines, fmt.Sprintf("  %-18s %d", name+":", counts[name]))
	}
	return lines
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("config", "config.yaml", "where to write the config file")
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(os.Args[2:])

	if _, err := os.Stat(*path); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "%s already exists; use --force to overwrite\n", *path)
		os.Exit(1)
	}
	cfg := config.Default()
	// Keys come from the environment at run time, not from the file.
	cfg.LLM.APIKey = ""
	if err := config.Save(*path, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", *path)
}

func printUsage() {
	fmt.Println(`asistan - Business assistant query resolution engine

Usage:
  asistan server [flags]             Start the HTTP server
  asistan ask [flags] <message>      Run one message through the full pipeline
  asistan resolve [flags] <message>  Print the grounding context for a message (no model call)
  asistan classify [flags] <message> Show the relevance decision for a message
  asistan detect [flags] [file]      Detect a table or list in reply text (stdin when no file)
  asistan import [flags] <file>      Load a JSON/YAML snapshot into the database
  asistan init [flags]               Write a default config file
  asistan version                    Show version
  asistan help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/asistan/config.yaml)
  --debug            Enable debug logging
  --log-level string Log level (debug, info, warn, error); overrides --debug

Ask Flags:
  --config string        Config file path
  --server string        Server URL; empty runs in-process (default)
  --user string          Caller user id
  --conversation string  Conversation id to continue
  --context string       Context payload JSON
  --xlsx string          Write a detected table to an .xlsx file
  --output string        Output format: text or json (default: text)

Resolve / Classify Flags:
  --config string        Config file path
  --user string          Caller user id (resolve)
  --conversation string  Conversation id (resolve)
  --output string        Output format: text or json (default: text)

Detect Flags:
  --retrieved        Try the retrieval summary shape first
  --output string    Output format: text or json (default: text)

Examples:
  asistan server
  asistan ask --user u1 "bu ayki tekliflerim"
  asistan ask "İzmir bölgesindeki aktif klinikler" --xlsx klinikler.xlsx
  asistan resolve "125 numaralı teklif"
  asistan classify --output json "hava nasıl"
  asistan detect reply.txt
  asistan import snapshot.yaml`)
}
