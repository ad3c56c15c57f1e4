package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/famomatic/liv1/client"
	"github.com/famomatic/liv1/internal/cookies"
	"github.com/famomatic/liv1/internal/media"
)

// Options holds all command-line options.
type Options struct {
	// Input
	URL string // -u, or the first positional argument

	// Network
	CookiesFile string  // -cookies
	MaxAttempts int     // -m
	RetryWait   float64 // -w, seconds; 0 disables the pause
	RequestRate float64 // -rate, requests per second

	// Selection
	Quality       int  // -q
	ListQualities bool // -list-qualities

	// Download / Filesystem
	OutputPath      string  // -o, or the second positional argument
	TimeLimit       float64 // -l, seconds
	TempDir         string  // -tmp
	FFmpegLocation  string  // -ffmpeg-location
	FFprobeLocation string  // -ffprobe-location

	// Modes
	ManifestOnly bool // -manifest

	// Observability
	MetricsListen string // -metrics-listen
	JSONLog       bool   // -json-log
	Verbose       bool   // -v
}

// ParseFlags parses command-line arguments into Options. Flag defaults are
// seeded from LIV1_* environment variables where one exists.
func ParseFlags() Options {
	opts := Options{}

	flag.StringVar(&opts.URL, "u", "", "LinkedIn post or manifest URL")
	flag.StringVar(&opts.OutputPath, "o", getEnv("LIV1_OUTPUT", ""), "Output media file")
	flag.IntVar(&opts.Quality, "q", getEnvInt("LIV1_QUALITY", client.DefaultQuality), "Preferred video bitrate")
	flag.Float64Var(&opts.TimeLimit, "l", getEnvFloat("LIV1_TIME_LIMIT", 0), "Stop stitching after this many seconds (0 = whole stream)")
	flag.IntVar(&opts.MaxAttempts, "m", getEnvInt("LIV1_MAX_ATTEMPTS", client.DefaultMaxAttempts), "Tries per request on connection errors")
	flag.Float64Var(&opts.RetryWait, "w", getEnvFloat("LIV1_WAIT", client.DefaultRetryWait.Seconds()), "Seconds between tries (0 = no pause)")
	flag.Float64Var(&opts.RequestRate, "rate", getEnvFloat("LIV1_RATE", 0), "Request pacing in requests per second (0 = unlimited)")
	flag.StringVar(&opts.CookiesFile, "cookies", getEnv("LIV1_COOKIES", ""), "Netscape formatted cookies file")
	flag.StringVar(&opts.TempDir, "tmp", getEnv("LIV1_TMPDIR", ""), "Directory for fragment and spool files")
	flag.StringVar(&opts.FFmpegLocation, "ffmpeg-location", getEnv("LIV1_FFMPEG", ""), "Path to the ffmpeg binary")
	flag.StringVar(&opts.FFprobeLocation, "ffprobe-location", getEnv("LIV1_FFPROBE", ""), "Path to the ffprobe binary")
	flag.BoolVar(&opts.ManifestOnly, "manifest", false, "Print the resolved fragment-manifest URL and exit")
	flag.BoolVar(&opts.ListQualities, "list-qualities", false, "Print the available bitrates and exit")
	flag.StringVar(&opts.MetricsListen, "metrics-listen", getEnv("LIV1_METRICS_LISTEN", ""), "Serve prometheus metrics on this address while downloading")
	flag.BoolVar(&opts.JSONLog, "json-log", false, "Log as JSON")
	flag.BoolVar(&opts.Verbose, "v", false, "Print various debugging information")

	// Custom usage
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: liv1 -u URL [-o FILE] [OPTIONS]\n\n")
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}

	flag.Parse()

	// Bare positional arguments work like -u and -o.
	if opts.URL == "" && flag.NArg() > 0 {
		opts.URL = flag.Arg(0)
	}
	if opts.OutputPath == "" && flag.NArg() > 1 {
		opts.OutputPath = flag.Arg(1)
	}
	return opts
}

// ToClientConfig converts Options to client.Config.
func ToClientConfig(opts Options) (client.Config, error) {
	cfg := client.Config{
		MaxAttempts: opts.MaxAttempts,
		RequestRate: opts.RequestRate,
		TempDir:     opts.TempDir,
	}

	switch {
	case opts.RetryWait > 0:
		cfg.RetryWait = time.Duration(opts.RetryWait * float64(time.Second))
	case opts.RetryWait == 0:
		// -w 0 asks for no pause between tries.
		cfg.RetryWait = -1
	}

	if opts.FFmpegLocation != "" || opts.FFprobeLocation != "" {
		decoder := media.NewFFmpegDecoder(opts.FFmpegLocation, opts.FFprobeLocation)
		decoder.Dir = opts.TempDir
		cfg.Decoder = decoder
		cfg.Muxer = media.NewFFmpegMuxer(opts.FFmpegLocation)
	}

	// Load Cookies
	if opts.CookiesFile != "" {
		jar, err := cookies.LoadJar(opts.CookiesFile)
		if err != nil {
			return cfg, fmt.Errorf("load cookies file: %w", err)
		}
		cfg.CookieJar = jar
	}

	return cfg, nil
}
