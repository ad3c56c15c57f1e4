package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
)

// FFmpegMuxer encodes the stitched timeline with the ffmpeg command line
// tool: raw frames stream over stdin, the finalized WAV rides as the second
// input.
type FFmpegMuxer struct {
	Path string
}

// NewFFmpegMuxer returns a muxer using path, or "ffmpeg" from PATH when
// empty.
func NewFFmpegMuxer(path string) *FFmpegMuxer {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegMuxer{Path: path}
}

// Available checks if ffmpeg is executable.
func (m *FFmpegMuxer) Available() bool {
	_, err := exec.LookPath(m.Path)
	return err == nil
}

// Mux pulls every frame of src in timeline order, pipes them to ffmpeg and
// writes outputPath. The audio track is trimmed to the video duration. A
// partial output file is removed on failure.
func (m *FFmpegMuxer) Mux(ctx context.Context, src FrameSource, audioPath, outputPath string) error {
	fps := src.FPS()
	if fps <= 0 {
		return fmt.Errorf("mux: frame source has no frame rate")
	}
	width, height := src.Width(), src.Height()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("mux: frame source has no geometry")
	}

	cmd := exec.CommandContext(ctx, m.Path, buildMuxArgs(width, height, fps, audioPath, outputPath)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("mux: open ffmpeg stdin: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("mux: start ffmpeg: %w", err)
	}

	feedErr := feedFrames(src, stdin, fps, width*height*3)
	stdin.Close()
	waitErr := cmd.Wait()

	if feedErr != nil {
		os.Remove(outputPath)
		return feedErr
	}
	if waitErr != nil {
		os.Remove(outputPath)
		return fmt.Errorf("mux: ffmpeg failed: %w: %s", waitErr, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// Merge combines an encoded video file and an audio file into outputPath,
// copying the video stream and encoding the audio to AAC. The inputs are
// left in place for the caller to clean up.
func (m *FFmpegMuxer) Merge(ctx context.Context, videoPath, audioPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, m.Path, buildMergeArgs(videoPath, audioPath, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("mux: ffmpeg merge failed: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// feedFrames writes one raw frame per 1/fps step over [0, duration).
func feedFrames(src FrameSource, w io.Writer, fps float64, frameSize int) error {
	duration := src.Duration()
	count := int(math.Ceil(duration*fps - 1e-9))
	for i := 0; i < count; i++ {
		t := float64(i) / fps
		frame, err := src.FrameAt(t)
		if err != nil {
			return fmt.Errorf("mux: frame at %.3fs: %w", t, err)
		}
		if len(frame) != frameSize {
			return fmt.Errorf("mux: frame at %.3fs is %d bytes, want %d", t, len(frame), frameSize)
		}
		if _, err := w.Write(frame); err != nil {
			return fmt.Errorf("mux: pipe frame at %.3fs: %w", t, err)
		}
	}
	return nil
}

func buildMuxArgs(width, height int, fps float64, audioPath, outputPath string) []string {
	args := []string{
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "pipe:0",
	}
	if audioPath != "" {
		args = append(args, "-i", audioPath, "-c:a", "aac", "-shortest")
	}
	args = append(args,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-y", outputPath,
	)
	return args
}

func buildMergeArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		"-y", outputPath,
	}
}
