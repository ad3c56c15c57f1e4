package client

import (
	"errors"
	"testing"
)

func TestNormalizeInputSupportedShapes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://www.linkedin.com/posts/someone_activity-123", want: "https://www.linkedin.com/posts/someone_activity-123"},
		{in: "  https://www.linkedin.com/video/live/urn:li:ugcPost:1/ ", want: "https://www.linkedin.com/video/live/urn:li:ugcPost:1/"},
		{in: "http://host/QualityLevels(3200000)/Manifest(video=3200000)", want: "http://host/QualityLevels(3200000)/Manifest(video=3200000)"},
	}
	for _, tt := range tests {
		got, err := normalizeInput(tt.in)
		if err != nil {
			t.Fatalf("normalizeInput(%q) error=%v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("normalizeInput(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeInputRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"not a url",
		"/relative/path",
		"ftp://host/stream",
		"https://",
		"http://[::1",
	}
	for _, in := range tests {
		if _, err := normalizeInput(in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("normalizeInput(%q) error=%v, want ErrInvalidInput", in, err)
		}
	}
}
