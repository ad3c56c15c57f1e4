package cookies

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// httpOnlyPrefix marks HttpOnly cookies in browser exports; such lines are
// data, not comments.
const httpOnlyPrefix = "#HttpOnly_"

// ParseNetscape parses the Netscape cookies.txt format written by browser
// exporters.
// Format: domain flag path secure expiration name value
func ParseNetscape(r io.Reader) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			line = strings.TrimPrefix(line, httpOnlyPrefix)
			httpOnly = true
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 7 {
			continue
		}

		cookie := &http.Cookie{
			Name:     parts[5],
			Value:    parts[6],
			Domain:   parts[0],
			Path:     parts[2],
			Secure:   strings.EqualFold(parts[3], "TRUE"),
			HttpOnly: httpOnly,
		}
		// A zero expiration marks a session cookie; leaving Expires unset
		// keeps the jar from discarding it as already expired.
		if expiresUnix, _ := strconv.ParseInt(parts[4], 10, 64); expiresUnix > 0 {
			cookie.Expires = time.Unix(expiresUnix, 0)
		}
		cookies = append(cookies, cookie)
	}

	return cookies, scanner.Err()
}

// LoadJar reads a cookies.txt file into a fresh jar, ready to hand to an
// HTTP client for a pre-authenticated session.
func LoadJar(path string) (http.CookieJar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parsed, err := ParseNetscape(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewJar(parsed)
}

// NewJar builds a public-suffix-aware jar holding the given cookies under
// their own domains.
func NewJar(cookies []*http.Cookie) (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	byHost := make(map[string][]*http.Cookie)
	for _, c := range cookies {
		host := strings.TrimPrefix(c.Domain, ".")
		byHost[host] = append(byHost[host], c)
	}
	for host, group := range byHost {
		jar.SetCookies(&url.URL{Scheme: "https", Host: host}, group)
	}
	return jar, nil
}
