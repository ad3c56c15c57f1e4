package main

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/famomatic/liv1/client"
	"github.com/famomatic/liv1/internal/metrics"
)

// wireObservability points the client's event callbacks at the progress log
// and the prometheus counters.
func wireObservability(cfg *client.Config, log *slog.Logger, met *metrics.Metrics) {
	cfg.Logger = warnLogger{log: log}
	cfg.OnRetryEvent = func(ev client.RetryEvent) {
		met.IncFetchRetries()
	}
	cfg.OnResolveEvent = func(ev client.ResolveEvent) {
		switch ev.State {
		case "landing", "quality", "terminal":
			met.IncResolveHops()
		}
		log.Info(formatResolveEvent(ev))
	}
	cfg.OnStitchEvent = func(ev client.StitchEvent) {
		if ev.Phase == "decode" {
			met.IncFragmentsStitched()
			met.AddFragmentBytes(ev.Bytes)
			log.Info(formatStitchEvent(ev))
			return
		}
		log.Debug(formatStitchEvent(ev))
	}
	cfg.OnDownloadEvent = func(ev client.DownloadEvent) {
		log.Info(formatDownloadEvent(ev))
	}
}

func formatResolveEvent(ev client.ResolveEvent) string {
	s := fmt.Sprintf("[resolve] %s url=%s", ev.State, ev.URL)
	if ev.Detail != "" {
		s += " detail=" + ev.Detail
	}
	return s
}

func formatStitchEvent(ev client.StitchEvent) string {
	s := fmt.Sprintf("[stitch] %s fragment=%d", ev.Phase, ev.Index)
	if ev.URL != "" {
		s += " url=" + ev.URL
	}
	if ev.Bytes > 0 {
		s += " size=" + humanize.Bytes(uint64(ev.Bytes))
	}
	if ev.Detail != "" {
		s += " detail=" + ev.Detail
	}
	return s
}

func formatDownloadEvent(ev client.DownloadEvent) string {
	s := fmt.Sprintf("[download] %s:%s", ev.Stage, ev.Phase)
	if ev.Path != "" {
		s += " path=" + ev.Path
	}
	if ev.Detail != "" {
		s += " detail=" + ev.Detail
	}
	return s
}

// warnLogger adapts the structured logger to the client's warning
// interface.
type warnLogger struct {
	log *slog.Logger
}

func (l warnLogger) Warnf(format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...))
}
