// cmd/mmapinspect/main.go
// mmapinspect is a small diagnostic CLI around pkg/mmapcache: it
// registers one file, issues a single Get, and logs the resulting
// cache statistics; with -layout it instead prints the struct layout of
// the cache's types and exits. It exists to exercise the cache
// end to end from outside its own test suite, not as a production
// tool.
//
// LEARN: main.go should stay minimal — configuration and wiring only.
// Everything it calls lives in a package that can be tested on its
// own.

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/kelseyhightower/envconfig"
	flag "github.com/spf13/pflag"

	"github.com/aaomidi/mmapcache/pkg/layout"
	"github.com/aaomidi/mmapcache/pkg/mmapcache"
)

// envConfig holds settings sourced from the environment (prefix
// MMAPINSPECT_), each overridable by an explicit flag below.
type envConfig struct {
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	ListenAddr string `envconfig:"LISTEN_ADDR" default:""`
}

func main() {
	var env envConfig
	if err := envconfig.Process("MMAPINSPECT", &env); err != nil {
		fmt.Fprintln(os.Stderr, "mmapinspect: reading environment:", err)
		os.Exit(1)
	}

	path := flag.String("file", "", "path of the file to map and read through the cache")
	offset := flag.Uint64("offset", 0, "byte offset to read")
	size := flag.Uint64("size", 4096, "number of bytes to read")
	windowSize := flag.Uint64("window-size", 0, "override the cache's default window span (0 = default)")
	logLevel := flag.String("log-level", env.LogLevel, "log level (debug, info, warn, error)")
	listenAddr := flag.String("listen", env.ListenAddr, "if set, serve /debug/mmapcache and pprof on this address instead of exiting")
	showLayout := flag.Bool("layout", false, "print Window/Context/FileDescriptor struct layout and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(*logLevel)}))
	slog.SetDefault(logger)

	if *showLayout {
		fmt.Println(layout.Analyze(mmapcache.Window{}).String())
		fmt.Println(layout.Analyze(mmapcache.Context{}).String())
		fmt.Println(layout.Analyze(mmapcache.FileDescriptor{}).String())
		return
	}

	if *path == "" {
		fmt.Fprintln(os.Stderr, "mmapinspect: -file is required")
		os.Exit(2)
	}

	opts := []mmapcache.Option{mmapcache.WithLogger(logger)}
	if *windowSize > 0 {
		opts = append(opts, mmapcache.WithWindowSize(*windowSize))
	}
	cache, err := mmapcache.New(opts...)
	if err != nil {
		logger.Error("failed to create cache", "error", err)
		os.Exit(1)
	}
	defer cache.Unref()

	file, err := os.Open(*path)
	if err != nil {
		logger.Error("failed to open file", "error", err, "path", *path)
		os.Exit(1)
	}
	defer file.Close()

	fi, err := file.Stat()
	if err != nil {
		logger.Error("failed to stat file", "error", err, "path", *path)
		os.Exit(1)
	}

	fd := cache.AddFD(int(file.Fd()), mmapcache.ProtRead)
	data, err := fd.Get(0, false, *offset, *size, fi)
	if err != nil {
		logger.Error("get failed", "error", err, "code", mmapcache.ErrorCode(err))
		os.Exit(1)
	}

	logger.Info("read through cache", "bytes", len(data), "offset", *offset)
	cache.StatsLogDebug()

	if *listenAddr != "" {
		serveDebug(cache, *listenAddr, logger)
	}
}

func serveDebug(cache *mmapcache.Cache, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/mmapcache", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%+v\n", cache.Stats())
	})
	registerPprof(mux)

	logger.Info("serving diagnostics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("diagnostic server failed", "error", err)
		os.Exit(1)
	}
}

// registerPprof wires the standard net/http/pprof handlers under
// /debug/pprof/, so a live run of this tool can be profiled the same
// way a long-running service would be.
func registerPprof(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/debug/pprof/allocs", pprof.Handler("allocs"))
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
