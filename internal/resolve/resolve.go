package resolve

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/famomatic/liv1/internal/transport"
)

// maxResolveHops bounds the landing page -> master playlist -> quality ->
// terminal walk. A well-formed resolution needs at most four hops.
const maxResolveHops = 8

type state int

const (
	stateTerminal state = iota
	stateQuality
	stateLanding
)

func (s state) String() string {
	switch s {
	case stateTerminal:
		return "terminal"
	case stateQuality:
		return "quality"
	default:
		return "landing"
	}
}

// classify picks the resolution state from the URL shape alone. Terminal
// fragment manifests carry a capitalized /Manifest segment, quality listings
// a lowercase /manifest one; everything else is an opaque landing page.
func classify(rawURL string) state {
	switch {
	case strings.Contains(rawURL, "/Manifest"):
		return stateTerminal
	case strings.Contains(rawURL, "/manifest"):
		return stateQuality
	default:
		return stateLanding
	}
}

// Event describes one resolution step for observability hooks.
type Event struct {
	State  string
	URL    string
	Detail string
}

// Resolver walks an opaque video URL down to a terminal fragment manifest.
type Resolver struct {
	// Transport performs every fetch of the walk.
	Transport *transport.Client
	// Jar, when set, supplements the landing response's own cookies with
	// cookies accumulated across the redirect chain.
	Jar http.CookieJar
	// APIHost overrides the live-updates API origin. Empty means the
	// production origin.
	APIHost string
	// Notify, when set, receives one Event per resolution step.
	Notify func(Event)
}

// Resolve runs the state machine until a terminal manifest URL is reached.
// The quality is an integer bitrate; when the stream does not offer it,
// Resolve returns a *QualityError listing what is available.
func (r *Resolver) Resolve(ctx context.Context, rawURL string, quality int) (string, error) {
	current := rawURL
	for hop := 0; hop < maxResolveHops; hop++ {
		st := classify(current)
		r.emit(Event{State: st.String(), URL: current})
		switch st {
		case stateTerminal:
			return current, nil
		case stateQuality:
			next, err := r.selectQuality(ctx, current, quality)
			if err != nil {
				return "", err
			}
			current = next
		case stateLanding:
			next, err := r.resolveLanding(ctx, current)
			if err != nil {
				return "", err
			}
			current = next
		}
	}
	return "", fmt.Errorf("%w: stopped at %s after %d hops", ErrResolveLoop, current, maxResolveHops)
}

// Qualities resolves rawURL far enough to enumerate the available quality
// levels, ascending.
func (r *Resolver) Qualities(ctx context.Context, rawURL string) ([]int, error) {
	current := rawURL
	for hop := 0; hop < maxResolveHops; hop++ {
		st := classify(current)
		r.emit(Event{State: st.String(), URL: current})
		switch st {
		case stateTerminal:
			return nil, ErrNoQualityList
		case stateQuality:
			entries, err := r.fetchQualityEntries(ctx, current)
			if err != nil {
				return nil, err
			}
			return sortedBitrates(entries), nil
		case stateLanding:
			next, err := r.resolveLanding(ctx, current)
			if err != nil {
				return nil, err
			}
			current = next
		}
	}
	return nil, fmt.Errorf("%w: stopped at %s after %d hops", ErrResolveLoop, current, maxResolveHops)
}

func (r *Resolver) resolveLanding(ctx context.Context, pageURL string) (string, error) {
	resp, err := r.Transport.Fetch(ctx, pageURL, nil)
	if err != nil {
		return "", err
	}
	session, err := extractSession(resp, r.Jar)
	if err != nil {
		return "", err
	}
	r.emit(Event{State: "session", URL: pageURL, Detail: "ugcPost=" + session.ContentID})
	return r.fetchMasterPlaylistURL(ctx, session)
}

func (r *Resolver) emit(ev Event) {
	if r.Notify != nil {
		r.Notify(ev)
	}
}
