package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultAPIHost     = "https://www.linkedin.com"
	liveUpdatesPattern = "%s/voyager/api/video/liveUpdates/urn%%3Ali%%3AugcPost%%3A%s"
)

// liveUpdateResponse mirrors the slice of the voyager payload the resolver
// walks; everything else is ignored.
type liveUpdateResponse struct {
	Content struct {
		VideoComponent videoComponent `json:"com.linkedin.voyager.feed.render.LinkedInVideoComponent"`
	} `json:"content"`
}

type videoComponent struct {
	VideoPlayMetadata videoPlayMetadata `json:"videoPlayMetadata"`
}

type videoPlayMetadata struct {
	AdaptiveStreams []adaptiveStream `json:"adaptiveStreams"`
}

type adaptiveStream struct {
	MasterPlaylists []masterPlaylist `json:"masterPlaylists"`
}

type masterPlaylist struct {
	URL string `json:"url"`
}

// fetchMasterPlaylistURL calls the live-updates endpoint with the session
// token as both csrf header and cookie, and extracts the first master
// playlist URL of the first adaptive stream.
func (r *Resolver) fetchMasterPlaylistURL(ctx context.Context, session SessionContext) (string, error) {
	host := r.APIHost
	if host == "" {
		host = defaultAPIHost
	}
	apiURL := fmt.Sprintf(liveUpdatesPattern, host, session.ContentID)

	header := http.Header{}
	header.Set("csrf-token", session.Token)
	header.Set("Cookie", serializeCookies(session.Cookies))

	r.emit(Event{State: "api", URL: apiURL, Detail: "ugcPost=" + session.ContentID})
	body, err := r.Transport.FetchBody(ctx, apiURL, header)
	if err != nil {
		return "", err
	}

	var payload liveUpdateResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode live update response: %w", err)
	}
	streams := payload.Content.VideoComponent.VideoPlayMetadata.AdaptiveStreams
	if len(streams) == 0 || len(streams[0].MasterPlaylists) == 0 {
		return "", ErrManifestURL
	}
	masterURL := strings.TrimSpace(streams[0].MasterPlaylists[0].URL)
	if masterURL == "" {
		return "", ErrManifestURL
	}
	return masterURL, nil
}

// serializeCookies renders the Cookie header for the API call. The session
// cookie keeps the double-quoted form the upstream expects; the rest pass
// through verbatim.
func serializeCookies(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			parts = append(parts, fmt.Sprintf(`%s="%s"`, c.Name, strings.Trim(c.Value, `"`)))
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}
