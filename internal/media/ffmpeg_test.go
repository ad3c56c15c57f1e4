package media

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseRational(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{raw: "30/1", want: 30},
		{raw: "30000/1001", want: 29.97002997002997},
		{raw: "25", want: 25},
		{raw: "0/0", want: 0},
		{raw: "", want: 0},
		{raw: "abc", want: 0},
	}
	for _, tt := range tests {
		if got := parseRational(tt.raw); got != tt.want {
			t.Fatalf("parseRational(%q) = %v want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseProbeOutput(t *testing.T) {
	raw := []byte(`{
		"streams": [
			{"codec_type": "video", "width": 640, "height": 360, "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001"},
			{"codec_type": "audio", "sample_rate": "44100", "channels": 2}
		],
		"format": {"duration": "6.006"}
	}`)
	info, err := parseProbeOutput(raw)
	if err != nil {
		t.Fatalf("parseProbeOutput() error = %v", err)
	}
	if info.width != 640 || info.height != 360 {
		t.Fatalf("geometry = %dx%d want 640x360", info.width, info.height)
	}
	if info.fps < 29.96 || info.fps > 29.98 {
		t.Fatalf("fps = %v want ~29.97", info.fps)
	}
	if info.duration != 6.006 {
		t.Fatalf("duration = %v want 6.006", info.duration)
	}
	if !info.hasAudio || info.sampleRate != 44100 || info.channels != 2 {
		t.Fatalf("audio = %+v want 44100Hz stereo", info)
	}
}

func TestParseProbeOutputNoVideo(t *testing.T) {
	raw := []byte(`{"streams": [{"codec_type": "audio", "sample_rate": "44100", "channels": 2}], "format": {"duration": "6"}}`)
	if _, err := parseProbeOutput(raw); err == nil || !strings.Contains(err.Error(), "no video stream") {
		t.Fatalf("parseProbeOutput() error = %v want missing video stream", err)
	}
}

func TestFFmpegClipFrameAt(t *testing.T) {
	// 1x1 RGB24 frames: 3 bytes each, 3 frames at 2 fps.
	path := filepath.Join(t.TempDir(), "frames.raw")
	raw := []byte{
		10, 10, 10,
		20, 20, 20,
		30, 30, 30,
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	clip := &ffmpegClip{
		frames:     file,
		framesPath: path,
		frameSize:  3,
		frameCount: 3,
		fps:        2,
		width:      1,
		height:     1,
		duration:   1.5,
	}
	defer clip.Close()

	tests := []struct {
		local float64
		want  byte
	}{
		{local: 0, want: 10},
		{local: 0.4, want: 10},
		{local: 0.5, want: 20},
		{local: 1.0, want: 30},
		{local: 2.0, want: 30},
	}
	for _, tt := range tests {
		frame, err := clip.FrameAt(tt.local)
		if err != nil {
			t.Fatalf("FrameAt(%v) error = %v", tt.local, err)
		}
		if frame[0] != tt.want {
			t.Fatalf("FrameAt(%v)[0] = %d want %d", tt.local, frame[0], tt.want)
		}
	}
}

func TestFFmpegClipCloseRemovesArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.raw")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	clip := &ffmpegClip{frames: file, framesPath: path, frameSize: 3, frameCount: 1, fps: 1, duration: 1}

	if err := clip.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("artifact still present after Close: %v", err)
	}
	if err := clip.Close(); err != nil {
		t.Fatalf("Close() second error = %v", err)
	}
	if _, err := clip.FrameAt(0); err == nil {
		t.Fatal("FrameAt() after Close = nil want error")
	}
}

type stubSource struct {
	fps      float64
	width    int
	height   int
	duration float64
	frame    func(t float64) ([]byte, error)
}

func (s *stubSource) FrameAt(t float64) ([]byte, error) { return s.frame(t) }
func (s *stubSource) FPS() float64                      { return s.fps }
func (s *stubSource) Width() int                        { return s.width }
func (s *stubSource) Height() int                       { return s.height }
func (s *stubSource) Duration() float64                 { return s.duration }

func TestFeedFrames(t *testing.T) {
	var times []float64
	src := &stubSource{fps: 4, width: 1, height: 1, duration: 1.0, frame: func(tm float64) ([]byte, error) {
		times = append(times, tm)
		return []byte{byte(len(times)), 0, 0}, nil
	}}

	var sink bytes.Buffer
	if err := feedFrames(src, &sink, src.fps, 3); err != nil {
		t.Fatalf("feedFrames() error = %v", err)
	}
	if len(times) != 4 {
		t.Fatalf("frames pulled = %d want 4", len(times))
	}
	if times[0] != 0 || times[3] != 0.75 {
		t.Fatalf("times = %v want [0 .. 0.75]", times)
	}
	if sink.Len() != 12 {
		t.Fatalf("bytes piped = %d want 12", sink.Len())
	}
}

func TestFeedFramesSizeMismatch(t *testing.T) {
	src := &stubSource{fps: 2, width: 2, height: 2, duration: 1, frame: func(float64) ([]byte, error) {
		return []byte{1, 2, 3}, nil
	}}
	err := feedFrames(src, &bytes.Buffer{}, src.fps, 12)
	if err == nil || !strings.Contains(err.Error(), "want 12") {
		t.Fatalf("feedFrames() error = %v want size mismatch", err)
	}
}

func TestFeedFramesPropagatesSourceError(t *testing.T) {
	boom := fmt.Errorf("past stitched timeline")
	src := &stubSource{fps: 2, width: 1, height: 1, duration: 2, frame: func(tm float64) ([]byte, error) {
		if tm >= 1 {
			return nil, boom
		}
		return []byte{0, 0, 0}, nil
	}}
	err := feedFrames(src, &bytes.Buffer{}, src.fps, 3)
	if err == nil || !strings.Contains(err.Error(), "past stitched timeline") {
		t.Fatalf("feedFrames() error = %v want source error", err)
	}
}

func TestBuildMuxArgs(t *testing.T) {
	args := buildMuxArgs(640, 360, 29.97, "/tmp/audio.wav", "/tmp/out.mp4")
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-f rawvideo",
		"-video_size 640x360",
		"-i pipe:0",
		"-i /tmp/audio.wav",
		"-shortest",
		"-y /tmp/out.mp4",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("buildMuxArgs() = %q missing %q", joined, want)
		}
	}

	noAudio := strings.Join(buildMuxArgs(640, 360, 30, "", "/tmp/out.mp4"), " ")
	if strings.Contains(noAudio, "-shortest") || strings.Contains(noAudio, "-c:a") {
		t.Fatalf("buildMuxArgs() without audio = %q want no audio flags", noAudio)
	}
}

func TestBuildMergeArgs(t *testing.T) {
	joined := strings.Join(buildMergeArgs("/tmp/video.mp4", "/tmp/audio.wav", "/tmp/out.mp4"), " ")
	for _, want := range []string{
		"-i /tmp/video.mp4",
		"-i /tmp/audio.wav",
		"-c:v copy",
		"-c:a aac",
		"-shortest",
		"-y /tmp/out.mp4",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("buildMergeArgs() = %q missing %q", joined, want)
		}
	}
}
