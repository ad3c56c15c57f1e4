package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/famomatic/liv1/client"
	"github.com/famomatic/liv1/internal/cli"
	"github.com/famomatic/liv1/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

func main() {
	_ = cli.LoadEnv()
	opts := cli.ParseFlags()

	if opts.URL == "" {
		flag.Usage()
		os.Exit(1)
	}

	log := newLogger(os.Stderr, opts.JSONLog, opts.Verbose)

	cfg, err := cli.ToClientConfig(opts)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	met := metrics.New()
	wireObservability(&cfg, log, met)
	c := client.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.MetricsListen != "" {
		stopMetrics := serveMetrics(opts.MetricsListen, met, log)
		defer stopMetrics()
	}

	switch {
	case opts.ListQualities:
		levels, err := c.ListQualities(ctx, opts.URL)
		if err != nil {
			exitOnError(log, err)
		}
		for _, q := range levels {
			fmt.Println(q)
		}

	case opts.ManifestOnly:
		manifestURL, err := c.Resolve(ctx, opts.URL, opts.Quality)
		if err != nil {
			exitOnError(log, err)
		}
		fmt.Println(manifestURL)

	default:
		if opts.OutputPath == "" {
			flag.Usage()
			os.Exit(1)
		}
		met.SetActiveDownloads(1)
		result, err := c.Download(ctx, opts.URL, buildDownloadOptions(opts))
		met.SetActiveDownloads(0)
		if err != nil {
			exitOnError(log, err)
		}
		log.Info("download complete",
			"path", result.OutputPath,
			"fragments", result.Fragments,
			"duration", fmt.Sprintf("%.1fs", result.Duration),
			"size", humanize.Bytes(uint64(result.Bytes)),
		)
	}
}

// buildDownloadOptions maps parsed flags onto the client's download knobs.
func buildDownloadOptions(opts cli.Options) client.DownloadOptions {
	return client.DownloadOptions{
		Quality:    opts.Quality,
		TimeLimit:  opts.TimeLimit,
		OutputPath: opts.OutputPath,
	}
}

// exitCode picks the process status for a failed run. Quality errors get
// their own status so scripts can tell "pick another bitrate" apart from
// real failures.
func exitCode(err error) int {
	var qualityErr *client.QualityUnavailableError
	if errors.As(err, &qualityErr) {
		return 2
	}
	return 1
}

func exitOnError(log *slog.Logger, err error) {
	code := exitCode(err)
	if code == 2 {
		fmt.Fprintln(os.Stderr, err)
	} else {
		log.Error("liv1 failed", "error", err)
	}
	os.Exit(code)
}

// newLogger builds the process logger: text by default, JSON when asked,
// debug level with -v.
func newLogger(w io.Writer, jsonFormat, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if jsonFormat {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// serveMetrics exposes /metrics and /healthz on addr for the duration of
// the run. The returned stop function drains the listener.
func serveMetrics(addr string, met *metrics.Metrics, log *slog.Logger) func() {
	r := chi.NewRouter()
	r.Get("/metrics", met.Handler().ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics listener error", "error", err)
		}
	}()
	log.Info("metrics listening", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("metrics shutdown error", "error", err)
		}
	}
}
