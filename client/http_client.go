package client

import (
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
)

// defaultHTTPClient builds the stock client: redirects followed, cookies
// captured across the redirect chain for session extraction.
func defaultHTTPClient() *http.Client {
	return &http.Client{Jar: newCookieJar()}
}

func newCookieJar() http.CookieJar {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil
	}
	return jar
}
