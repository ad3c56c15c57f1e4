package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	fragmentPrefix = "Fragments"
	durationPrefix = "#EXTINF:"
)

// ErrNoFragments reports a terminal manifest with no fragment lines.
var ErrNoFragments = errors.New("manifest contains no fragment lines")

// Fragment is one downloadable chunk of the stream with its listed duration.
type Fragment struct {
	URL      string
	Duration float64
}

// Catalog is the ordered fragment sequence of one terminal manifest with
// cumulative timing. Built once per resolution; read-only afterwards.
type Catalog struct {
	fragments []Fragment
	starts    []float64
	sum       float64
	total     float64
}

// Parse reads a terminal manifest. Fragment lines resolve against
// manifestURL with the manifest filename stripped. timeLimit, when positive,
// clamps the reported total duration without altering the sequence.
func Parse(text, manifestURL string, timeLimit float64) (*Catalog, error) {
	base := fragmentBase(manifestURL)

	var urls []string
	var durations []float64
	scanner := bufio.NewScanner(strings.NewReader(strings.ReplaceAll(text, "\r", "")))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, fragmentPrefix):
			urls = append(urls, base+line)
		case strings.HasPrefix(line, durationPrefix):
			d, err := parseDuration(line)
			if err != nil {
				return nil, err
			}
			durations = append(durations, d)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	if len(urls) == 0 {
		return nil, ErrNoFragments
	}

	c := &Catalog{
		fragments: make([]Fragment, len(urls)),
		starts:    make([]float64, len(urls)),
	}
	start := 0.0
	for i, u := range urls {
		var d float64
		if i < len(durations) {
			d = durations[i]
		}
		c.fragments[i] = Fragment{URL: u, Duration: d}
		c.starts[i] = start
		start += d
	}
	for _, d := range durations {
		c.sum += d
	}
	c.total = c.sum
	if timeLimit > 0 && timeLimit < c.total {
		c.total = timeLimit
	}
	return c, nil
}

// Len reports the number of fragments.
func (c *Catalog) Len() int { return len(c.fragments) }

// Fragment returns the i-th fragment.
func (c *Catalog) Fragment(i int) Fragment { return c.fragments[i] }

// StartTime returns the cumulative start offset of fragment i. Fragment 0
// starts at 0.
func (c *Catalog) StartTime(i int) float64 { return c.starts[i] }

// TotalDuration is the catalog duration after any time-limit clamp.
func (c *Catalog) TotalDuration() float64 { return c.total }

// StreamDuration is the unclamped sum of all listed durations.
func (c *Catalog) StreamDuration() float64 { return c.sum }

func parseDuration(line string) (float64, error) {
	rest := strings.TrimPrefix(line, durationPrefix)
	if comma := strings.IndexByte(rest, ','); comma >= 0 {
		rest = rest[:comma]
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration line %q: %w", line, err)
	}
	return d, nil
}

// fragmentBase strips the manifest filename so fragment lines can be
// appended directly. Terminal manifest URLs carry a path segment starting
// with "Manifest"; everything from it onward goes.
func fragmentBase(manifestURL string) string {
	if idx := strings.Index(manifestURL, "Manifest"); idx >= 0 {
		return manifestURL[:idx]
	}
	if idx := strings.LastIndexByte(manifestURL, '/'); idx >= 0 {
		return manifestURL[:idx+1]
	}
	return manifestURL
}
