package client

import (
	"errors"
	"fmt"
	"testing"

	"github.com/famomatic/liv1/internal/audio"
	"github.com/famomatic/liv1/internal/manifest"
	"github.com/famomatic/liv1/internal/resolve"
	"github.com/famomatic/liv1/internal/transport"
)

func TestMapErrorQualityUnavailable(t *testing.T) {
	internal := &resolve.QualityError{Requested: 9999999, Available: []int{1200000, 3200000, 5000000}}
	got := mapError(fmt.Errorf("resolve: %w", internal))
	var qualityErr *QualityUnavailableError
	if !errors.As(got, &qualityErr) {
		t.Fatalf("mapError() = %v, want *QualityUnavailableError", got)
	}
	if qualityErr.Requested != 9999999 {
		t.Fatalf("Requested = %d, want 9999999", qualityErr.Requested)
	}
	if qualityErr.Error() != internal.Error() {
		t.Fatalf("Error() = %q, want %q", qualityErr.Error(), internal.Error())
	}
}

func TestMapErrorHTTPStatus(t *testing.T) {
	internal := &transport.StatusError{URL: "https://host/Fragments(video=0)", StatusCode: 403}
	got := mapError(fmt.Errorf("fetch fragment 0: %w", internal))
	var statusErr *HTTPStatusError
	if !errors.As(got, &statusErr) {
		t.Fatalf("mapError() = %v, want *HTTPStatusError", got)
	}
	if statusErr.StatusCode != 403 || statusErr.URL != internal.URL {
		t.Fatalf("mapped %+v, want status and URL of %+v", statusErr, internal)
	}
}

func TestMapErrorAudioMismatch(t *testing.T) {
	internal := &audio.FormatMismatchError{
		Want: audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16},
		Got:  audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16},
	}
	got := mapError(internal)
	var mismatchErr *AudioMismatchError
	if !errors.As(got, &mismatchErr) {
		t.Fatalf("mapError() = %v, want *AudioMismatchError", got)
	}
	if mismatchErr.Want != "44100Hz/2ch/16bit" || mismatchErr.Got != "48000Hz/2ch/16bit" {
		t.Fatalf("mapped Want=%q Got=%q", mismatchErr.Want, mismatchErr.Got)
	}
}

func TestMapErrorSentinels(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "session_token", in: resolve.ErrSessionToken, want: ErrLoginRequired},
		{name: "content_id", in: fmt.Errorf("landing: %w", resolve.ErrContentID), want: ErrUnavailable},
		{name: "manifest_url", in: resolve.ErrManifestURL, want: ErrUnavailable},
		{name: "resolve_loop", in: resolve.ErrResolveLoop, want: ErrUnresolvable},
		{name: "no_quality_list", in: resolve.ErrNoQualityList, want: ErrNoQualityList},
		{name: "no_fragments", in: manifest.ErrNoFragments, want: ErrNoFragments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.in); !errors.Is(got, tt.want) {
				t.Fatalf("mapError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	if got := mapError(nil); got != nil {
		t.Fatalf("mapError(nil) = %v, want nil", got)
	}
	plain := errors.New("context deadline exceeded")
	if got := mapError(plain); got != plain {
		t.Fatalf("mapError() = %v, want the error unchanged", got)
	}
}
