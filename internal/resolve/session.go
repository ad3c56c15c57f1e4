package resolve

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/famomatic/liv1/internal/transport"
)

const sessionCookieName = "JSESSIONID"

// activityCardMarker identifies the body line carrying the post identifier
// when the landing URL does not redirect to a urn:li:ugcPost path.
const activityCardMarker = `main-feed-activity-card-with-comments" data-activity-urn="urn:li:activity:`

var (
	ugcPostURLPattern = regexp.MustCompile(`/urn:li:ugcPost:([^/?#]+)`)
	// The greedy prefix selects the last ugcPost reference on the line.
	ugcPostBodyPattern = regexp.MustCompile(`.*urn:li:ugcPost:([^"]+)`)
)

// SessionContext carries the credentials and post identity extracted from
// one landing page. It lives for a single resolution and is never persisted.
type SessionContext struct {
	// Token is the session cookie value, sent back as the csrf-token header.
	Token string
	// Cookies are the landing-page cookies replayed on the API call.
	Cookies []*http.Cookie
	// ContentID is the ugcPost identifier keying the live-updates endpoint.
	ContentID string
}

// extractSession reads the landing response into a SessionContext and closes
// the body. The post identifier comes from the final redirected URL when its
// path names a ugcPost, otherwise from the activity-card marker line in the
// page body; the first match wins.
func extractSession(resp *http.Response, jar http.CookieJar) (SessionContext, error) {
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		return SessionContext{}, &transport.StatusError{URL: finalURL(resp), StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SessionContext{}, fmt.Errorf("read landing page: %w", err)
	}

	cookies := sessionCookies(resp, jar)
	token := ""
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			// Values loaded from a cookies.txt export keep their literal
			// quotes; the csrf-token header wants the bare value.
			token = strings.Trim(c.Value, `"`)
			break
		}
	}
	if token == "" {
		return SessionContext{}, ErrSessionToken
	}

	id := contentID(finalURL(resp), body)
	if id == "" {
		return SessionContext{}, ErrContentID
	}
	return SessionContext{Token: token, Cookies: cookies, ContentID: id}, nil
}

// sessionCookies merges the final response's cookies with any the jar
// accumulated across the redirect chain, first occurrence of a name winning.
func sessionCookies(resp *http.Response, jar http.CookieJar) []*http.Cookie {
	cookies := resp.Cookies()
	if jar != nil && resp.Request != nil && resp.Request.URL != nil {
		cookies = append(cookies, jar.Cookies(resp.Request.URL)...)
	}
	seen := make(map[string]bool, len(cookies))
	merged := cookies[:0]
	for _, c := range cookies {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		merged = append(merged, c)
	}
	return merged
}

func contentID(pageURL string, body []byte) string {
	if match := ugcPostURLPattern.FindStringSubmatch(pageURL); len(match) >= 2 {
		return match[1]
	}
	for _, line := range strings.Split(string(body), "\n") {
		if !strings.Contains(line, activityCardMarker) {
			continue
		}
		if match := ugcPostBodyPattern.FindStringSubmatch(line); len(match) >= 2 {
			return match[1]
		}
	}
	return ""
}

func finalURL(resp *http.Response) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return ""
}
