// keybridged - Keyboard input normalization and modifier synchronization
//
//	keybridged run          Run the translation daemon
//	keybridged check        Validate configuration and keymap files
//	keybridged keymap       Print the effective lookup tables
//	keybridged version      Print version information
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"keybridge/internal/config"
	"keybridge/internal/engine"
	"keybridge/internal/host"
	"keybridge/internal/keymap"
	"keybridge/internal/keystate"
	"keybridge/internal/logging"
	"keybridge/internal/metrics"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "run":
		cmdRun()
	case "check":
		cmdCheck()
	case "keymap":
		cmdKeymap()
	case "version":
		fmt.Printf("keybridged %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`keybridged - Keyboard Input Normalization Daemon

USAGE:
    keybridged <command> [options]

COMMANDS:
    run         Run the translation daemon
    check       Validate configuration and keymap files
    keymap      Print the effective lookup tables
    version     Print version information
    help        Show this help message

RUN:
    Raw key records are read from stdin, one JSON object per line:

        {"vk":65,"scan":30,"action":"down","char":"a"}

    Fields: vk (virtual key), scan (scan code), action (down, up,
    sysdown, sysup), char (decoded character, optional), extended
    (bool, optional), was_down (bool, optional).

    Normalized events leave through the configured host transport:
    "stdout" writes JSON lines, "unix" and "tcp" speak the framed
    binary protocol and carry acknowledgments back.`)
}

// rawRecord is one platform key input as read from the input stream.
type rawRecord struct {
	VirtualKey int    `json:"vk"`
	ScanCode   int    `json:"scan"`
	Action     string `json:"action"`
	Char       string `json:"char,omitempty"`
	Extended   bool   `json:"extended,omitempty"`
	WasDown    bool   `json:"was_down,omitempty"`
}

func cmdRun() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "configuration file path")
	keymapPath := fs.String("keymap", "", "keymap override file (overrides config)")
	transport := fs.String("transport", "", "host transport (overrides config)")
	address := fs.String("address", "", "host address (overrides config)")
	fs.Parse(os.Args[2:])

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		fatal("load config: %v", err)
	}
	defer loader.Close()

	if *keymapPath != "" {
		cfg.Keymap.Path = *keymapPath
	}
	if *transport != "" {
		cfg.Host.Transport = *transport
	}
	if *address != "" {
		cfg.Host.Address = *address
	}
	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration: %v", err)
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		fatal("setup logging: %v", err)
	}
	defer logger.Close()

	km, err := keymap.Load(cfg.Keymap.Path)
	if err != nil {
		fatal("load keymap: %v", err)
	}

	registry := metrics.NewRegistry("keybridge")
	metrics.SetDefault(registry)
	engineMetrics := metrics.NewEngineMetrics(registry)

	dispatcher, closeDispatcher, err := setupDispatcher(cfg)
	if err != nil {
		fatal("setup host transport: %v", err)
	}
	defer closeDispatcher()

	eng, err := engine.New(engine.Options{
		Resolver:      km.Resolver(),
		State:         keystate.System(),
		Dispatcher:    dispatcher,
		SyncModifiers: cfg.Engine.SyncModifiers,
		Logger:        logger.WithComponent("engine"),
		Metrics:       engineMetrics,
	})
	if err != nil {
		fatal("create engine: %v", err)
	}

	// Route host acknowledgments back into the pending-response ledger.
	switch d := dispatcher.(type) {
	case *host.WriterDispatcher:
		d.SetAcknowledger(eng)
	case *host.StreamDispatcher:
		d.Start(eng)
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Listen, registry, logger)
	}

	// Hot-reload only touches what can change without restarting the
	// engine. Keymap and transport changes need a restart.
	loader.OnChange(func(newCfg *config.Config) {
		logger.Info("configuration reloaded", "path", *configPath)
		if newCfg.Engine.SyncModifiers != cfg.Engine.SyncModifiers ||
			newCfg.Keymap.Path != cfg.Keymap.Path ||
			newCfg.Host.Transport != cfg.Host.Transport {
			logger.Warn("engine, keymap, and transport changes require a restart")
		}
	})
	if err := loader.Watch(); err != nil {
		logger.Warn("config watch unavailable", "error", err)
	}
	go func() {
		for err := range loader.Errors() {
			logger.Warn("config reload error", "error", err)
		}
	}()

	logger.Info("keybridged starting",
		"version", version,
		"transport", cfg.Host.Transport,
		"sync_modifiers", cfg.Engine.SyncModifiers)

	done := make(chan struct{})
	go func() {
		defer close(done)
		feedInput(os.Stdin, eng, logger)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case <-done:
		logger.Info("input stream closed")
	}

	// Give in-flight acknowledgments a moment to drain.
	deadline := time.After(500 * time.Millisecond)
	for eng.PendingResponses() > 0 {
		select {
		case <-deadline:
			logger.Warn("unacknowledged events at shutdown",
				"pending", eng.PendingResponses())
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// feedInput reads raw key records line by line and pushes each through the
// engine. Malformed lines are logged and skipped.
func feedInput(f *os.File, eng *engine.Engine, logger *logging.Logger) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), 1<<16)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec rawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			logger.Warn("malformed input record", "error", err)
			continue
		}
		action, err := engine.ParseAction(rec.Action)
		if err != nil {
			logger.Warn("malformed input record", "error", err)
			continue
		}

		var ch rune
		for _, r := range rec.Char {
			ch = r
			break
		}

		eng.ProcessKey(rec.VirtualKey, rec.ScanCode, action, ch,
			rec.Extended, rec.WasDown, func(handled bool) {
				logger.Debug("input settled",
					"vk", rec.VirtualKey,
					"handled", handled)
			})
	}
	if err := scanner.Err(); err != nil {
		logger.Error("read input", "error", err)
	}
}

func setupLogging(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(&logging.Config{
		Level:     level,
		Format:    format,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		Component: "keybridged",
	})
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)
	return logger, nil
}

// setupDispatcher builds the host event sink from the config. The stdout
// transport writes JSON lines and self-acknowledges; unix and tcp speak
// the framed binary protocol.
func setupDispatcher(cfg *config.Config) (engine.Dispatcher, func(), error) {
	switch cfg.Host.Transport {
	case "stdout", "":
		return host.NewWriterDispatcher(os.Stdout), func() {}, nil
	case "unix", "tcp":
		d, err := host.Dial(cfg.Host.Transport, cfg.Host.Address)
		if err != nil {
			return nil, nil, err
		}
		return d, func() { d.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q", cfg.Host.Transport)
	}
}

func serveMetrics(addr string, registry *metrics.Registry, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.HTTPHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	logger.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server failed", "error", err)
	}
}

func cmdCheck() {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "configuration file path")
	fs.Parse(os.Args[2:])

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		fatal("config: %v", err)
	}

	if _, err := keymap.Load(cfg.Keymap.Path); err != nil {
		fatal("keymap: %v", err)
	}

	fmt.Printf("Configuration OK (%s)\n", *configPath)
	if cfg.Keymap.Path != "" {
		fmt.Printf("Keymap OK (%s)\n", cfg.Keymap.Path)
	} else {
		fmt.Println("Keymap OK (built-in defaults)")
	}
}

func cmdKeymap() {
	fs := flag.NewFlagSet("keymap", flag.ExitOnError)
	keymapPath := fs.String("keymap", "", "keymap override file")
	fs.Parse(os.Args[2:])

	km, err := keymap.Load(*keymapPath)
	if err != nil {
		fatal("load keymap: %v", err)
	}

	fmt.Println("Scan code -> physical key:")
	scans := make([]int, 0, len(km.Physical))
	for s := range km.Physical {
		scans = append(scans, int(s))
	}
	sort.Ints(scans)
	for _, s := range scans {
		fmt.Printf("  0x%04x -> 0x%011x\n", s, km.Physical[uint16(s)])
	}

	fmt.Println("Virtual key -> logical key:")
	vks := make([]int, 0, len(km.Logical))
	for vk := range km.Logical {
		vks = append(vks, vk)
	}
	sort.Ints(vks)
	for _, vk := range vks {
		fmt.Printf("  0x%04x -> 0x%011x\n", vk, km.Logical[vk])
	}

	fmt.Println("Scan code -> logical key (layout-independent):")
	scans = scans[:0]
	for s := range km.ScanLogical {
		scans = append(scans, int(s))
	}
	sort.Ints(scans)
	for _, s := range scans {
		fmt.Printf("  0x%04x -> 0x%011x\n", s, km.ScanLogical[uint16(s)])
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("KEYBRIDGE_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "keybridge.toml"
	}
	return home + "/.config/keybridge/keybridge.toml"
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
