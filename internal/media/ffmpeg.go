package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/famomatic/liv1/internal/audio"
)

// pcmBitDepth is fixed by the s16le extraction format.
const pcmBitDepth = 16

// FFmpegDecoder decodes fragments with ffprobe + ffmpeg: geometry and
// timing from a probe, frames into a raw RGB24 artifact, audio to PCM.
type FFmpegDecoder struct {
	FFmpegPath  string
	FFprobePath string
	// Dir receives the per-fragment frame artifacts. Empty means the
	// default temp directory.
	Dir string
}

// NewFFmpegDecoder returns a decoder using the given binaries, falling back
// to "ffmpeg" and "ffprobe" from PATH.
func NewFFmpegDecoder(ffmpegPath, ffprobePath string) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegDecoder{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// Available checks that both binaries are executable.
func (d *FFmpegDecoder) Available() bool {
	if _, err := exec.LookPath(d.FFmpegPath); err != nil {
		return false
	}
	_, err := exec.LookPath(d.FFprobePath)
	return err == nil
}

// Decode probes mediaPath and extracts its frames and audio track. The
// returned clip owns a raw-frames temp file until Close.
func (d *FFmpegDecoder) Decode(ctx context.Context, mediaPath string) (Clip, error) {
	info, err := d.probe(ctx, mediaPath)
	if err != nil {
		return nil, err
	}

	framesFile, err := os.CreateTemp(d.Dir, "liv1-frames-*.raw")
	if err != nil {
		return nil, fmt.Errorf("create frame artifact: %w", err)
	}
	framesPath := framesFile.Name()
	framesFile.Close()

	extract := exec.CommandContext(ctx, d.FFmpegPath,
		"-i", mediaPath,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-loglevel", "error",
		"-y", framesPath,
	)
	if out, err := extract.CombinedOutput(); err != nil {
		os.Remove(framesPath)
		return nil, fmt.Errorf("ffmpeg frame extract %s: %w: %s", mediaPath, err, strings.TrimSpace(string(out)))
	}

	var pcm []byte
	var format audio.Format
	if info.hasAudio {
		decode := exec.CommandContext(ctx, d.FFmpegPath,
			"-i", mediaPath,
			"-f", "s16le",
			"-acodec", "pcm_s16le",
			"-loglevel", "error",
			"pipe:1",
		)
		pcm, err = decode.Output()
		if err != nil {
			os.Remove(framesPath)
			return nil, fmt.Errorf("ffmpeg audio decode %s: %w", mediaPath, err)
		}
		format = audio.Format{SampleRate: info.sampleRate, Channels: info.channels, BitDepth: pcmBitDepth}
	}

	file, err := os.Open(framesPath)
	if err != nil {
		os.Remove(framesPath)
		return nil, fmt.Errorf("open frame artifact: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		os.Remove(framesPath)
		return nil, fmt.Errorf("stat frame artifact: %w", err)
	}

	return &ffmpegClip{
		frames:      file,
		framesPath:  framesPath,
		frameSize:   info.width * info.height * 3,
		frameCount:  int(stat.Size()) / (info.width * info.height * 3),
		fps:         info.fps,
		width:       info.width,
		height:      info.height,
		duration:    info.duration,
		audioFormat: format,
		pcm:         pcm,
	}, nil
}

type probeInfo struct {
	width      int
	height     int
	fps        float64
	duration   float64
	hasAudio   bool
	sampleRate int
	channels   int
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
	Duration     string `json:"duration"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

func (d *FFmpegDecoder) probe(ctx context.Context, mediaPath string) (probeInfo, error) {
	cmd := exec.CommandContext(ctx, d.FFprobePath,
		"-loglevel", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		mediaPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return probeInfo{}, fmt.Errorf("ffprobe %s: %w", mediaPath, err)
	}
	return parseProbeOutput(out)
}

func parseProbeOutput(out []byte) (probeInfo, error) {
	var probed probeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return probeInfo{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	info := probeInfo{}
	for _, s := range probed.Streams {
		switch s.CodecType {
		case "video":
			if info.width != 0 {
				continue
			}
			info.width = s.Width
			info.height = s.Height
			info.fps = parseRational(s.RFrameRate)
			if info.fps <= 0 {
				info.fps = parseRational(s.AvgFrameRate)
			}
			if info.duration == 0 {
				info.duration, _ = strconv.ParseFloat(s.Duration, 64)
			}
		case "audio":
			if info.hasAudio {
				continue
			}
			info.hasAudio = true
			info.sampleRate, _ = strconv.Atoi(s.SampleRate)
			info.channels = s.Channels
		}
	}
	if d, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil && d > 0 {
		info.duration = d
	}

	if info.width <= 0 || info.height <= 0 {
		return probeInfo{}, fmt.Errorf("no video stream in probe output")
	}
	if info.fps <= 0 {
		return probeInfo{}, fmt.Errorf("no frame rate in probe output")
	}
	if info.duration <= 0 {
		return probeInfo{}, fmt.Errorf("no duration in probe output")
	}
	return info, nil
}

// parseRational reads ffprobe's "30000/1001" rate notation.
func parseRational(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	num, den, found := strings.Cut(raw, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

type ffmpegClip struct {
	frames      *os.File
	framesPath  string
	frameSize   int
	frameCount  int
	fps         float64
	width       int
	height      int
	duration    float64
	audioFormat audio.Format
	pcm         []byte
	closed      bool
}

func (c *ffmpegClip) Duration() float64 { return c.duration }
func (c *ffmpegClip) FPS() float64      { return c.fps }
func (c *ffmpegClip) Width() int        { return c.width }
func (c *ffmpegClip) Height() int       { return c.height }

func (c *ffmpegClip) AudioFormat() audio.Format { return c.audioFormat }
func (c *ffmpegClip) PCM() []byte               { return c.pcm }

// FrameAt reads the frame covering the clip-local time, clamping to the
// last extracted frame at the trailing edge.
func (c *ffmpegClip) FrameAt(local float64) ([]byte, error) {
	if c.closed {
		return nil, fmt.Errorf("frame read from closed clip")
	}
	if c.frameCount == 0 {
		return nil, fmt.Errorf("clip has no frames")
	}
	idx := int(local * c.fps)
	if idx < 0 {
		idx = 0
	}
	if idx >= c.frameCount {
		idx = c.frameCount - 1
	}
	buf := make([]byte, c.frameSize)
	if _, err := c.frames.ReadAt(buf, int64(idx)*int64(c.frameSize)); err != nil {
		return nil, fmt.Errorf("read frame %d: %w", idx, err)
	}
	return buf, nil
}

// Close releases the raw-frames artifact.
func (c *ffmpegClip) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.frames.Close()
	if rmErr := os.Remove(c.framesPath); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}
