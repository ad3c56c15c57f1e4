package audio

import (
	"errors"
	"fmt"
	"os"
)

// ErrNoAudio reports a Finalize with no accumulated samples.
var ErrNoAudio = errors.New("no audio samples accumulated")

// Format is the fixed sample layout of the accumulated stream.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// BlockAlign is the byte width of one interleaved sample frame.
func (f Format) BlockAlign() int { return f.Channels * f.BitDepth / 8 }

// ByteRate is the stream's bytes per second.
func (f Format) ByteRate() int { return f.SampleRate * f.BlockAlign() }

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", f.SampleRate, f.Channels, f.BitDepth)
}

// FormatMismatchError reports a fragment whose audio format disagrees with
// the format locked from the first fragment.
type FormatMismatchError struct {
	Want Format
	Got  Format
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("audio format mismatch: stream is %s, fragment is %s", e.Want, e.Got)
}

// Accumulator collects every fragment's decoded audio into one continuous
// PCM stream spooled to a temporary WAV file. The format is locked by the
// first Append; the sample stream is append-only.
type Accumulator struct {
	file      *os.File
	format    Format
	set       bool
	dataLen   int64
	finalized bool
	closed    bool
}

// NewAccumulator creates the spool file in dir (the default temp directory
// when dir is empty). The caller must Close the accumulator on every path.
func NewAccumulator(dir string) (*Accumulator, error) {
	f, err := os.CreateTemp(dir, "liv1-audio-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create audio spool: %w", err)
	}
	// Header placeholder; Finalize backfills it once sizes are known.
	if _, err := f.Write(make([]byte, wavHeaderSize)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("reserve wav header: %w", err)
	}
	return &Accumulator{file: f}, nil
}

// Append adds one fragment's samples. The first call locks the stream
// format; later calls with a different format fail with
// *FormatMismatchError.
func (a *Accumulator) Append(f Format, pcm []byte) error {
	if a.finalized || a.closed {
		return errors.New("append to finalized audio stream")
	}
	if !a.set {
		a.format = f
		a.set = true
	} else if f != a.format {
		return &FormatMismatchError{Want: a.format, Got: f}
	}
	n, err := a.file.Write(pcm)
	a.dataLen += int64(n)
	if err != nil {
		return fmt.Errorf("append audio samples: %w", err)
	}
	return nil
}

// Format reports the locked format and whether any fragment set it yet.
func (a *Accumulator) Format() (Format, bool) { return a.format, a.set }

// Finalize backfills the WAV header and returns the spool path for the
// muxer. The file stays on disk until Close.
func (a *Accumulator) Finalize() (string, error) {
	if a.closed {
		return "", errors.New("finalize closed audio stream")
	}
	if !a.set {
		return "", ErrNoAudio
	}
	if a.dataLen > maxWAVDataLen {
		return "", fmt.Errorf("audio stream of %d bytes exceeds wav size limit", a.dataLen)
	}
	header := encodeWAVHeader(a.format, uint32(a.dataLen))
	if _, err := a.file.WriteAt(header, 0); err != nil {
		return "", fmt.Errorf("write wav header: %w", err)
	}
	if err := a.file.Sync(); err != nil {
		return "", fmt.Errorf("flush audio spool: %w", err)
	}
	a.finalized = true
	return a.file.Name(), nil
}

// Close releases the spool file and removes it from disk. Safe to call on
// every failure path and after Finalize.
func (a *Accumulator) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	name := a.file.Name()
	err := a.file.Close()
	if rmErr := os.Remove(name); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}
