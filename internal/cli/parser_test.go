package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestToClientConfig_RetryWaitSeconds(t *testing.T) {
	cfg, err := ToClientConfig(Options{RetryWait: 2.5})
	if err != nil {
		t.Fatalf("ToClientConfig() error = %v", err)
	}
	if cfg.RetryWait != 2500*time.Millisecond {
		t.Fatalf("RetryWait = %v, want 2.5s", cfg.RetryWait)
	}
}

func TestToClientConfig_ZeroWaitDisablesPause(t *testing.T) {
	cfg, err := ToClientConfig(Options{RetryWait: 0})
	if err != nil {
		t.Fatalf("ToClientConfig() error = %v", err)
	}
	if cfg.RetryWait >= 0 {
		t.Fatalf("RetryWait = %v, want a negative no-pause marker", cfg.RetryWait)
	}
}

func TestToClientConfig_FFmpegOverride(t *testing.T) {
	cfg, err := ToClientConfig(Options{FFmpegLocation: "/opt/ffmpeg/bin/ffmpeg"})
	if err != nil {
		t.Fatalf("ToClientConfig() error = %v", err)
	}
	if cfg.Decoder == nil || cfg.Muxer == nil {
		t.Fatalf("expected decoder and muxer overrides, got %v / %v", cfg.Decoder, cfg.Muxer)
	}
}

func TestToClientConfig_NoFFmpegOverrideByDefault(t *testing.T) {
	cfg, err := ToClientConfig(Options{})
	if err != nil {
		t.Fatalf("ToClientConfig() error = %v", err)
	}
	if cfg.Decoder != nil || cfg.Muxer != nil {
		t.Fatalf("expected nil collaborators for default options")
	}
}

func TestToClientConfig_CookiesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	line := ".linkedin.com\tTRUE\t/\tTRUE\t0\tJSESSIONID\t\"ajax:1\"\n"
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		t.Fatalf("write cookies file: %v", err)
	}

	cfg, err := ToClientConfig(Options{CookiesFile: path})
	if err != nil {
		t.Fatalf("ToClientConfig() error = %v", err)
	}
	if cfg.CookieJar == nil {
		t.Fatalf("expected a jar loaded from the cookies file")
	}
}

func TestToClientConfig_MissingCookiesFile(t *testing.T) {
	_, err := ToClientConfig(Options{CookiesFile: filepath.Join(t.TempDir(), "absent.txt")})
	if err == nil {
		t.Fatalf("expected an error for a missing cookies file")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("LIV1_TEST_STR", "value")
	t.Setenv("LIV1_TEST_INT", "7")
	t.Setenv("LIV1_TEST_FLOAT", "2.5")
	t.Setenv("LIV1_TEST_BAD", "not-a-number")

	if got := getEnv("LIV1_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("getEnv = %q, want %q", got, "value")
	}
	if got := getEnv("LIV1_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("getEnv = %q, want fallback", got)
	}
	if got := getEnvInt("LIV1_TEST_INT", 1); got != 7 {
		t.Fatalf("getEnvInt = %d, want 7", got)
	}
	if got := getEnvInt("LIV1_TEST_BAD", 1); got != 1 {
		t.Fatalf("getEnvInt = %d, want the fallback for a bad value", got)
	}
	if got := getEnvFloat("LIV1_TEST_FLOAT", 1); got != 2.5 {
		t.Fatalf("getEnvFloat = %v, want 2.5", got)
	}
	if got := getEnvFloat("LIV1_TEST_UNSET", 1.5); got != 1.5 {
		t.Fatalf("getEnvFloat = %v, want the fallback", got)
	}
}
