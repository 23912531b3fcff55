// Package main is the companymatch CLI entry point.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
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

	"github.com/predictiff/companymatch/internal/backend"
	"github.com/predictiff/companymatch/internal/cli"
	"github.com/predictiff/companymatch/internal/config"
	"github.com/predictiff/companymatch/internal/ingest"
	"github.com/predictiff/companymatch/internal/matcher"
	"github.com/predictiff/companymatch/internal/models"
	"github.com/predictiff/companymatch/internal/server"
	"github.com/predictiff/companymatch/internal/storage"
	"github.com/predictiff/companymatch/internal/watcher"
	"github.com/predictiff/companymatch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/companymatch/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "companymatch server" from the project dir uses the project's config.
// Returns the config and the path that was actually loaded (for saving, etc.).
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
	case "match":
		runMatch()
	case "load":
		runLoad()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("companymatch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (dataset loads, tier queries, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	loader := components.Loader
	exts := cfg.Dataset.Extensions
	watchOpts := []watcher.WatcherOption{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.NewWatcher(
		cfg.Dataset.Directories,
		exts,
		func(path string) {
			n, loadErr := loader.LoadFile(context.Background(), path)
			if loadErr != nil {
				logger.Warn("watched dataset load failed", zap.String("path", path), zap.Error(loadErr))
				return
			}
			logger.Info("watched dataset loaded", zap.String("path", path), zap.Int("records", n))
		},
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.LoadExistingFiles()

	srv := server.NewServer(
		components.Engine,
		components.Loader,
		components.Storage,
		components.Backend,
		cfg,
		logger,
		server.WithWatcher(watchSvc, resolvedConfigPath),
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
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

// printMatchUsage prints match subcommand usage.
func printMatchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: companymatch match [flags] <company name> [<company name> ...]\n\n")
	fmt.Fprintf(fs.Output(), "Each argument is one company name; quote names containing spaces.\n")
	fmt.Fprintf(fs.Output(), "Use --file to read names from a file instead (one per line).\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  companymatch match "Microsoft Corporation"
  companymatch match Maikrosoft "Heal Within" IBM
  companymatch match --file names.txt --output json
  companymatch match --server "" "Acme Corp"    # direct index access, no server
`)
}

// matchArgsReorder moves any flags (and their values) that appear after the
// names to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument.
func matchArgsReorder(args []string) []string {
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

// readNamesFile reads company names from a file, one per line. Blank lines and
// lines starting with # are skipped.
func readNamesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}

func runMatch() {
	matchArgs := matchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("match", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct index access when server is not running)")
	namesFile := fs.String("file", "", "read company names from file, one per line")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printMatchUsage(fs) }
	_ = fs.Parse(matchArgs)

	names := fs.Args()
	if *namesFile != "" {
		fileNames, err := readNamesFile(*namesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read names file: %v\n", err)
			os.Exit(1)
		}
		names = append(names, fileNames...)
	}
	if len(names) == 0 {
		printMatchUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	request := &models.MatchRequest{Companies: names}

	if *serverURL != "" {
		// Use HTTP API when server is running (avoids Bleve/SQLite lock conflict).
		response, err := matchViaHTTP(*serverURL, request)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Match failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteMatchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct index access (when server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	start := time.Now()
	results, err := components.Engine.ResolveBatch(context.Background(), names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Match failed: %v\n", err)
		os.Exit(1)
	}
	matches := 0
	for _, res := range results {
		if res.MatchFound {
			matches++
		}
	}
	response := &models.MatchResponse{
		Results:   results,
		Processed: len(results),
		Matches:   matches,
		QueryTime: time.Since(start).Milliseconds(),
	}
	if err := cli.WriteMatchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func matchViaHTTP(serverURL string, request *models.MatchRequest) (*models.MatchResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/match", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.MatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runLoad() {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: companymatch load [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	var n int
	if info.IsDir() {
		n, err = components.Loader.LoadDirectory(ctx, path)
	} else {
		n, err = components.Loader.LoadFile(ctx, path)
	}
	if err != nil {
		fmt.Printf("Load failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d record(s) from %s\n", n, path)
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Records        int64                  `json:"records"`
	IndexedDocs    uint64                 `json:"indexed_docs"`
	DiskUsageBytes *int64                 `json:"disk_usage_bytes,omitempty"`
	Config         map[string]interface{} `json:"config,omitempty"`
	WatchedDirs    []string               `json:"watched_directories,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct index access)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		ctx := context.Background()
		recordCount, err := components.Storage.CountRecords(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count records failed: %v\n", err)
			os.Exit(1)
		}
		indexedCount, err := components.Backend.Count(cfg.Match.IndexName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count indexed failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Records:     recordCount,
			IndexedDocs: indexedCount,
			Config: map[string]interface{}{
				"index_name":    cfg.Match.IndexName,
				"database_path": cfg.Storage.DatabasePath,
				"index_path":    cfg.Storage.IndexPath,
			},
		}
		if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.IndexPath); err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("records:          %d   # reference records in storage\n", status.Records)
		fmt.Printf("indexed_docs:     %d   # enriched documents in the search index\n", status.IndexedDocs)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes: %d   # storage + index on disk\n", *status.DiskUsageBytes)
		}
		if len(status.WatchedDirs) > 0 {
			fmt.Println()
			fmt.Println("# watched dataset directories")
			for _, d := range status.WatchedDirs {
				fmt.Println(d)
			}
		}
		if len(status.Config) > 0 {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{"index_name", "batch_concurrency", "max_batch_size", "database_path", "index_path"} {
				if v, ok := status.Config[key]; ok {
					fmt.Printf("%-18s%v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Storage storage.Storage
	Backend *backend.BleveBackend
	Engine  *matcher.Engine
	Loader  *ingest.Loader
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Backend != nil {
		_ = c.Backend.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	be, err := backend.NewBleveBackend(cfg.Storage.IndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize search index: %w", err)
	}

	engine := matcher.NewEngine(be, &cfg.Match, logger)

	loaderOpts := []ingest.LoaderOption{}
	if debug && logger != nil {
		loaderOpts = append(loaderOpts, ingest.WithLogger(logger))
	}
	loader := ingest.NewLoader(store, be, cfg.Match.IndexName, &cfg.Dataset, loaderOpts...)

	return &Components{
		Storage: store,
		Backend: be,
		Engine:  engine,
		Loader:  loader,
	}, nil
}

func printUsage() {
	fmt.Println(`companymatch - Fuzzy company name to canonical domain matching

Usage:
  companymatch server [flags]             Start the HTTP server
  companymatch match [flags] <name> ...   Resolve company names to domains
  companymatch load [flags] <path>        Load a dataset file or directory
  companymatch status [flags]             Show storage/index status
  companymatch version                    Show version
  companymatch help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/companymatch/config.yaml)
  --debug            Enable debug logging (dataset loads, tier queries, etc.)

Match Flags:
  --config string    Config file path (for direct index access mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct index access when server is not running.
  --file string      Read company names from file, one per line
  --output string    Output format: text or json (default: text)

Load Flags:
  --config string    Config file path

Status Flags:
  --config string    Config file path (for direct index access mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct index access.
  --output string    Output format: text or json (default: text)

Examples:
  companymatch server
  companymatch load datasets/pdl_extract.csv
  companymatch match "Microsoft Corporation" Maikrosoft
  companymatch match --file names.txt --output json
  companymatch status
  companymatch status --output json`)
}
