package resolve

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const qualityPrefix = "QualityLevels("

var qualityLevelPattern = regexp.MustCompile(`^QualityLevels\((\d+)\)`)

// qualityEntry is one QualityLevels line of a quality-listing manifest: the
// parsed bitrate plus the raw line, which doubles as the terminal manifest
// reference.
type qualityEntry struct {
	Bitrate int
	Ref     string
}

// selectQuality fetches the quality-listing manifest and rewrites the URL's
// last path segment to the entry matching the requested bitrate. A missing
// bitrate yields a *QualityError enumerating what the stream offers.
func (r *Resolver) selectQuality(ctx context.Context, qualityURL string, quality int) (string, error) {
	entries, err := r.fetchQualityEntries(ctx, qualityURL)
	if err != nil {
		return "", err
	}
	wantPrefix := qualityPrefix + strconv.Itoa(quality) + ")/Manifest"
	for _, entry := range entries {
		if strings.HasPrefix(entry.Ref, wantPrefix) {
			return rewriteLastSegment(qualityURL, entry.Ref), nil
		}
	}
	return "", &QualityError{Requested: quality, Available: sortedBitrates(entries)}
}

func (r *Resolver) fetchQualityEntries(ctx context.Context, qualityURL string) ([]qualityEntry, error) {
	body, err := r.Transport.FetchBody(ctx, qualityURL, nil)
	if err != nil {
		return nil, err
	}
	return parseQualityManifest(string(body))
}

func parseQualityManifest(text string) ([]qualityEntry, error) {
	var entries []qualityEntry
	scanner := bufio.NewScanner(strings.NewReader(strings.ReplaceAll(text, "\r", "")))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, qualityPrefix) {
			continue
		}
		match := qualityLevelPattern.FindStringSubmatch(line)
		if len(match) < 2 {
			return nil, fmt.Errorf("parse quality line %q", line)
		}
		bitrate, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("parse quality line %q: %w", line, err)
		}
		entries = append(entries, qualityEntry{Bitrate: bitrate, Ref: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan quality manifest: %w", err)
	}
	return entries, nil
}

func sortedBitrates(entries []qualityEntry) []int {
	bitrates := make([]int, len(entries))
	for i, entry := range entries {
		bitrates[i] = entry.Bitrate
	}
	sort.Ints(bitrates)
	return bitrates
}

// rewriteLastSegment swaps the final path segment of rawURL for ref, the way
// the quality listing's own references are meant to be resolved.
func rewriteLastSegment(rawURL, ref string) string {
	if idx := strings.LastIndexByte(rawURL, '/'); idx >= 0 {
		return rawURL[:idx+1] + ref
	}
	return rawURL + "/" + ref
}
