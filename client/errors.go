package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/famomatic/liv1/internal/audio"
	"github.com/famomatic/liv1/internal/manifest"
	"github.com/famomatic/liv1/internal/resolve"
	"github.com/famomatic/liv1/internal/transport"
)

var (
	// ErrInvalidInput indicates malformed input (not an http(s) URL).
	ErrInvalidInput = errors.New("invalid input")
	// ErrLoginRequired indicates the landing page granted no session cookie.
	ErrLoginRequired = errors.New("login required")
	// ErrUnavailable indicates the page or API exposes no playable stream.
	ErrUnavailable = errors.New("stream unavailable")
	// ErrUnresolvable indicates resolution kept hopping without reaching a
	// fragment manifest.
	ErrUnresolvable = errors.New("manifest resolution did not converge")
	// ErrNoQualityList indicates the URL leads straight to a fragment
	// manifest with no quality selection step.
	ErrNoQualityList = errors.New("no quality selection available")
	// ErrNoFragments indicates the fragment manifest listed nothing to fetch.
	ErrNoFragments = errors.New("manifest contains no fragments")
	// ErrMuxerUnavailable indicates no usable output muxer was found.
	ErrMuxerUnavailable = errors.New("muxer unavailable")
	// ErrDecoderUnavailable indicates no usable fragment decoder was found.
	ErrDecoderUnavailable = errors.New("decoder unavailable")
)

// QualityUnavailableError reports a requested bitrate the stream does not
// offer, with the advertised levels in ascending order.
type QualityUnavailableError struct {
	Requested int
	Available []int
}

func (e *QualityUnavailableError) Error() string {
	levels := make([]string, len(e.Available))
	for i, q := range e.Available {
		levels[i] = strconv.Itoa(q)
	}
	return fmt.Sprintf("quality level %d not available, the available quality levels are: %s",
		e.Requested, strings.Join(levels, ", "))
}

// HTTPStatusError reports a non-success response, which is never retried.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetch %s: status=%d", e.URL, e.StatusCode)
}

// AudioMismatchError reports a fragment whose audio track does not match
// the format locked by the first fragment.
type AudioMismatchError struct {
	Want string
	Got  string
}

func (e *AudioMismatchError) Error() string {
	return fmt.Sprintf("fragment audio format %s does not match locked format %s", e.Got, e.Want)
}

// mapError translates internal failures into the package's public errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var qualityErr *resolve.QualityError
	if errors.As(err, &qualityErr) {
		return &QualityUnavailableError{
			Requested: qualityErr.Requested,
			Available: qualityErr.Available,
		}
	}
	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		return &HTTPStatusError{URL: statusErr.URL, StatusCode: statusErr.StatusCode}
	}
	var mismatchErr *audio.FormatMismatchError
	if errors.As(err, &mismatchErr) {
		return &AudioMismatchError{Want: mismatchErr.Want.String(), Got: mismatchErr.Got.String()}
	}

	switch {
	case errors.Is(err, resolve.ErrSessionToken):
		return ErrLoginRequired
	case errors.Is(err, resolve.ErrContentID), errors.Is(err, resolve.ErrManifestURL):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, resolve.ErrResolveLoop):
		return fmt.Errorf("%w: %v", ErrUnresolvable, err)
	case errors.Is(err, resolve.ErrNoQualityList):
		return ErrNoQualityList
	case errors.Is(err, manifest.ErrNoFragments):
		return ErrNoFragments
	}
	return err
}
