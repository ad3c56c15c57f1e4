package client

import (
	"net/http"
	"time"

	"github.com/famomatic/liv1/internal/media"
	"github.com/famomatic/liv1/internal/transport"
)

// Defaults applied when Config or DownloadOptions leave a knob unset.
const (
	// DefaultQuality is the bitrate tried when none is requested.
	DefaultQuality = 3200000
	// DefaultMaxAttempts caps transport-level tries per request.
	DefaultMaxAttempts = transport.DefaultMaxAttempts
	// DefaultRetryWait is the fixed pause between transport retries.
	DefaultRetryWait = transport.DefaultWait
)

// Config holds configuration for the LinkedIn stream client.
type Config struct {
	// HTTPClient is the client used for making requests.
	// If nil, a client with a fresh public-suffix cookie jar is used.
	HTTPClient *http.Client

	// CookieJar holds pre-authenticated session cookies, e.g. loaded from a
	// browser cookies.txt export. It replaces the HTTPClient's jar.
	CookieJar http.CookieJar

	// MaxAttempts is the number of tries per request on connection errors.
	// Zero or negative means DefaultMaxAttempts.
	MaxAttempts int

	// RetryWait is the pause between tries. Zero waits DefaultRetryWait;
	// negative disables the pause.
	RetryWait time.Duration

	// RequestRate paces outgoing requests in requests per second.
	// Zero means unlimited.
	RequestRate float64

	// APIHost overrides the feed API host. Empty means www.linkedin.com.
	APIHost string

	// Decoder extracts frames and audio from fetched fragments.
	// If nil, an ffmpeg/ffprobe decoder is used.
	Decoder media.Decoder

	// Muxer encodes the stitched timeline into the output file.
	// If nil, an ffmpeg muxer is used.
	Muxer media.Muxer

	// TempDir receives fragment files and the audio spool. Empty means the
	// system temp directory.
	TempDir string

	// Logger receives non-fatal warnings. If nil, warnings are dropped.
	Logger Logger

	// OnResolveEvent observes manifest resolution hops.
	OnResolveEvent func(ResolveEvent)

	// OnRetryEvent observes transport-level retries.
	OnRetryEvent func(RetryEvent)

	// OnStitchEvent observes fragment fetch, decode, and release steps.
	OnStitchEvent func(StitchEvent)

	// OnDownloadEvent observes encode and merge lifecycle stages.
	OnDownloadEvent func(DownloadEvent)
}
