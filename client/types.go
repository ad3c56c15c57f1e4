package client

// ResolveEvent reports one manifest resolution hop.
type ResolveEvent struct {
	// State is the classification of the hop URL: "landing", "session",
	// "api", "quality", or "terminal".
	State  string
	URL    string
	Detail string
}

// RetryEvent reports one transient transport failure that consumed an
// attempt.
type RetryEvent struct {
	URL         string
	Attempt     int
	MaxAttempts int
}

// StitchEvent reports one fragment pipeline step: "fetch", "decode", or
// "release".
type StitchEvent struct {
	Phase  string
	Index  int
	URL    string
	Bytes  int64
	Detail string
}

// DownloadEvent reports an encode or merge lifecycle stage.
type DownloadEvent struct {
	Stage  string
	Phase  string
	Path   string
	Detail string
}

// DownloadResult describes a completed stitched download.
type DownloadResult struct {
	// OutputPath is the written media file.
	OutputPath string
	// Fragments is the number of stream fragments fetched and decoded.
	Fragments int
	// Duration is the stitched timeline length in seconds, after any
	// time limit.
	Duration float64
	// Bytes is the size of the output file.
	Bytes int64
}
