package client

import (
	"net/url"
	"strings"
)

// normalizeInput validates the post URL or manifest URL passed by the
// caller.
func normalizeInput(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrInvalidInput
	}
	u, err := url.Parse(trimmed)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidInput
	}
	return trimmed, nil
}
