package media

import (
	"context"

	"github.com/famomatic/liv1/internal/audio"
)

// Clip is one decoded fragment: its frames, its audio track, and its own
// timing. Close releases the decode artifacts.
type Clip interface {
	Duration() float64
	FPS() float64
	Width() int
	Height() int
	// FrameAt returns the raw RGB24 frame at a clip-local time.
	FrameAt(local float64) ([]byte, error)
	AudioFormat() audio.Format
	PCM() []byte
	Close() error
}

// Decoder turns one fetched fragment file into a Clip.
type Decoder interface {
	Decode(ctx context.Context, mediaPath string) (Clip, error)
}

// FrameSource is the stitched timeline the muxer drains: frames by global
// time plus the geometry and rate of the stream.
type FrameSource interface {
	FrameAt(t float64) ([]byte, error)
	FPS() float64
	Width() int
	Height() int
	Duration() float64
}

// Muxer encodes the stitched frame source and joins the finalized audio
// stream into the output file.
type Muxer interface {
	Available() bool
	Mux(ctx context.Context, src FrameSource, audioPath, outputPath string) error
	Merge(ctx context.Context, videoPath, audioPath, outputPath string) error
}
