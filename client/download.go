package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/famomatic/liv1/internal/audio"
	"github.com/famomatic/liv1/internal/manifest"
	"github.com/famomatic/liv1/internal/media"
	"github.com/famomatic/liv1/internal/stitch"
)

// DefaultOutputName is used when DownloadOptions leave OutputPath empty.
const DefaultOutputName = "linkedin-video.mp4"

// DownloadOptions controls stitched download behavior.
type DownloadOptions struct {
	// Quality is the preferred bitrate. Zero means DefaultQuality.
	Quality int

	// TimeLimit caps the stitched duration in seconds. Zero downloads the
	// whole stream.
	TimeLimit float64

	// OutputPath is the output media file. Empty means DefaultOutputName.
	OutputPath string
}

// Download resolves the stream, fetches and decodes its fragments one at a
// time, and writes one continuous media file. The video track is encoded
// while fragments stream through; the audio track is spooled alongside and
// merged in a second pass.
func (c *Client) Download(ctx context.Context, input string, options DownloadOptions) (*DownloadResult, error) {
	outputPath := options.OutputPath
	if outputPath == "" {
		outputPath = DefaultOutputName
	}

	decoder := c.config.Decoder
	if decoder == nil {
		d := media.NewFFmpegDecoder("", "")
		if !d.Available() {
			return nil, ErrDecoderUnavailable
		}
		d.Dir = c.config.TempDir
		decoder = d
	}
	muxer := c.config.Muxer
	if muxer == nil {
		muxer = media.NewFFmpegMuxer("")
	}
	if !muxer.Available() {
		return nil, ErrMuxerUnavailable
	}

	manifestURL, err := c.Resolve(ctx, input, options.Quality)
	if err != nil {
		return nil, err
	}

	body, err := c.transport.FetchBody(ctx, manifestURL, nil)
	if err != nil {
		return nil, mapError(err)
	}
	catalog, err := manifest.Parse(string(body), manifestURL, options.TimeLimit)
	if err != nil {
		return nil, mapError(err)
	}

	acc, err := audio.NewAccumulator(c.config.TempDir)
	if err != nil {
		return nil, fmt.Errorf("open audio spool: %w", err)
	}
	defer acc.Close()

	stitcher := stitch.New(stitch.Options{
		Catalog: catalog,
		Fetcher: c.transport,
		Decoder: decoder,
		Audio:   acc,
		TempDir: c.config.TempDir,
		Notify:  c.emitStitchEvent,
	})
	defer stitcher.Close()

	if err := stitcher.Start(ctx); err != nil {
		return nil, mapError(err)
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	videoTemp, err := os.CreateTemp(c.config.TempDir, "liv1-encode-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("create encode file: %w", err)
	}
	videoPath := videoTemp.Name()
	videoTemp.Close()
	defer os.Remove(videoPath)

	c.emitDownloadEvent("encode", "start", videoPath, fmt.Sprintf("duration=%.3fs", catalog.TotalDuration()))
	if err := muxer.Mux(ctx, stitcher.Source(ctx), "", videoPath); err != nil {
		err = mapError(err)
		c.emitDownloadEvent("encode", "failure", videoPath, err.Error())
		return nil, err
	}
	c.emitDownloadEvent("encode", "complete", videoPath, fmt.Sprintf("bytes=%d", getFileSize(videoPath)))

	audioPath, err := acc.Finalize()
	switch {
	case errors.Is(err, audio.ErrNoAudio):
		// No fragment carried an audio track: the encoded video is the
		// whole result.
		c.warnf("stream has no audio track, writing video only")
		if err := moveFile(videoPath, outputPath); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		c.emitDownloadEvent("merge", "start", outputPath, "audio="+audioPath)
		if err := muxer.Merge(ctx, videoPath, audioPath, outputPath); err != nil {
			err = mapError(err)
			c.emitDownloadEvent("merge", "failure", outputPath, err.Error())
			return nil, err
		}
		c.emitDownloadEvent("merge", "complete", outputPath, fmt.Sprintf("bytes=%d", getFileSize(outputPath)))
	}

	return &DownloadResult{
		OutputPath: outputPath,
		Fragments:  stitcher.FragmentsFetched(),
		Duration:   catalog.TotalDuration(),
		Bytes:      getFileSize(outputPath),
	}, nil
}

func getFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// moveFile renames src to dst, copying across filesystems when rename is
// not possible.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
