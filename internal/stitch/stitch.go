package stitch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/famomatic/liv1/internal/audio"
	"github.com/famomatic/liv1/internal/manifest"
	"github.com/famomatic/liv1/internal/media"
)

// ErrPastEnd reports a frame request at or beyond the stitched timeline's
// end.
var ErrPastEnd = errors.New("frame requested past the stitched timeline")

// Fetcher fetches one fragment's bytes. Satisfied by the retrying transport
// client.
type Fetcher interface {
	FetchBody(ctx context.Context, rawURL string, extra http.Header) ([]byte, error)
}

// Event describes one stitching step for observability hooks.
type Event struct {
	Phase  string
	Index  int
	URL    string
	Bytes  int64
	Detail string
}

// Options wires a Stitcher.
type Options struct {
	Catalog *manifest.Catalog
	Fetcher Fetcher
	Decoder media.Decoder
	// Audio, when set, receives every fragment's decoded track in catalog
	// order.
	Audio *audio.Accumulator
	// TempDir receives the fetched fragment files. Empty means the default
	// temp directory.
	TempDir string
	Notify  func(Event)
}

// Stitcher drives the playback cursor across the catalog, holding exactly
// one decoded fragment at a time. Frames are served by global timeline
// position; crossing a fragment boundary releases the resident fragment
// before the next one is fetched and decoded.
type Stitcher struct {
	catalog *manifest.Catalog
	fetcher Fetcher
	decoder media.Decoder
	acc     *audio.Accumulator
	tempDir string
	notify  func(Event)

	index    int
	pos      float64
	resident *residentFragment
	started  bool
	closed   bool
	fetched  int64
	acquired int
}

// residentFragment pairs the decoded clip with the fetched media file
// backing it; both go away on release.
type residentFragment struct {
	clip      media.Clip
	mediaPath string
}

func (r *residentFragment) release() error {
	err := r.clip.Close()
	if rmErr := os.Remove(r.mediaPath); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}

// New builds a Stitcher over opts.Catalog. Nothing is fetched until Start
// or the first FrameAt.
func New(opts Options) *Stitcher {
	return &Stitcher{
		catalog: opts.Catalog,
		fetcher: opts.Fetcher,
		decoder: opts.Decoder,
		acc:     opts.Audio,
		tempDir: opts.TempDir,
		notify:  opts.Notify,
	}
}

// Start materializes the first fragment so FPS and geometry are known
// before the encoder begins pulling frames.
func (s *Stitcher) Start(ctx context.Context) error {
	if s.closed {
		return errors.New("stitcher closed")
	}
	if s.started {
		return nil
	}
	if err := s.acquire(ctx, 0); err != nil {
		return err
	}
	s.started = true
	return nil
}

// FrameAt returns the frame at global timeline time t. Calls must use
// non-decreasing t; the cursor only moves forward. Requests at or past the
// catalog end return ErrPastEnd.
func (s *Stitcher) FrameAt(ctx context.Context, t float64) ([]byte, error) {
	if s.closed {
		return nil, errors.New("stitcher closed")
	}
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	if s.resident == nil {
		return nil, ErrPastEnd
	}
	for t-s.pos >= s.resident.clip.Duration() {
		if err := s.advance(ctx); err != nil {
			return nil, err
		}
	}
	return s.resident.clip.FrameAt(t - s.pos)
}

// advance releases the resident fragment, moves the cursor, and acquires
// the next catalog entry. The release strictly precedes the acquire so at
// most one fragment's resources are ever live.
func (s *Stitcher) advance(ctx context.Context) error {
	prev := s.resident
	prevDuration := prev.clip.Duration()
	s.resident = nil
	s.emit(Event{Phase: "release", Index: s.index})
	releaseErr := prev.release()

	s.index++
	s.pos += prevDuration
	if releaseErr != nil {
		return fmt.Errorf("release fragment %d: %w", s.index-1, releaseErr)
	}
	if s.index >= s.catalog.Len() {
		return ErrPastEnd
	}
	return s.acquire(ctx, s.index)
}

// acquire fetches, decodes, and adopts fragment i, feeding its audio track
// to the accumulator. Every failure path removes what it created.
func (s *Stitcher) acquire(ctx context.Context, i int) error {
	frag := s.catalog.Fragment(i)
	s.emit(Event{Phase: "fetch", Index: i, URL: frag.URL})
	body, err := s.fetcher.FetchBody(ctx, frag.URL, nil)
	if err != nil {
		return fmt.Errorf("fetch fragment %d: %w", i, err)
	}
	s.fetched += int64(len(body))

	tmp, err := os.CreateTemp(s.tempDir, "liv1-fragment-*.mp4")
	if err != nil {
		return fmt.Errorf("create fragment file: %w", err)
	}
	mediaPath := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(mediaPath)
		return fmt.Errorf("write fragment %d: %w", i, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(mediaPath)
		return fmt.Errorf("write fragment %d: %w", i, err)
	}

	clip, err := s.decoder.Decode(ctx, mediaPath)
	if err != nil {
		os.Remove(mediaPath)
		return fmt.Errorf("decode fragment %d: %w", i, err)
	}

	if s.acc != nil && len(clip.PCM()) > 0 {
		if err := s.acc.Append(clip.AudioFormat(), clip.PCM()); err != nil {
			clip.Close()
			os.Remove(mediaPath)
			return err
		}
	}

	s.resident = &residentFragment{clip: clip, mediaPath: mediaPath}
	s.acquired++
	s.emit(Event{Phase: "decode", Index: i, URL: frag.URL, Bytes: int64(len(body)),
		Detail: fmt.Sprintf("duration=%.3fs", clip.Duration())})
	return nil
}

// FPS reports the resident fragment's frame rate, 0 before Start.
func (s *Stitcher) FPS() float64 {
	if s.resident == nil {
		return 0
	}
	return s.resident.clip.FPS()
}

// Width reports the resident fragment's frame width, 0 before Start.
func (s *Stitcher) Width() int {
	if s.resident == nil {
		return 0
	}
	return s.resident.clip.Width()
}

// Height reports the resident fragment's frame height, 0 before Start.
func (s *Stitcher) Height() int {
	if s.resident == nil {
		return 0
	}
	return s.resident.clip.Height()
}

// Duration is the catalog's total duration after any time-limit clamp.
func (s *Stitcher) Duration() float64 { return s.catalog.TotalDuration() }

// BytesFetched is the running total of fragment bytes downloaded.
func (s *Stitcher) BytesFetched() int64 { return s.fetched }

// FragmentsFetched is the number of fragments fetched and decoded so far.
func (s *Stitcher) FragmentsFetched() int { return s.acquired }

// Close releases the resident fragment and its backing files. Safe on every
// failure path and after a completed run.
func (s *Stitcher) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.resident == nil {
		return nil
	}
	resident := s.resident
	s.resident = nil
	return resident.release()
}

// Source binds the stitcher to a context for the encoder-facing view.
func (s *Stitcher) Source(ctx context.Context) media.FrameSource {
	return &frameSource{ctx: ctx, stitcher: s}
}

type frameSource struct {
	ctx      context.Context
	stitcher *Stitcher
}

func (f *frameSource) FrameAt(t float64) ([]byte, error) {
	return f.stitcher.FrameAt(f.ctx, t)
}

func (f *frameSource) FPS() float64      { return f.stitcher.FPS() }
func (f *frameSource) Width() int        { return f.stitcher.Width() }
func (f *frameSource) Height() int       { return f.stitcher.Height() }
func (f *frameSource) Duration() float64 { return f.stitcher.Duration() }

func (s *Stitcher) emit(ev Event) {
	if s.notify != nil {
		s.notify(ev)
	}
}
