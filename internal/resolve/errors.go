package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrSessionToken indicates the landing page granted no session cookie.
	ErrSessionToken = errors.New("session token cookie not found")
	// ErrContentID indicates neither the redirected URL nor the page body
	// named a post identifier.
	ErrContentID = errors.New("content identifier not found")
	// ErrManifestURL indicates the API response carried no master playlist.
	ErrManifestURL = errors.New("master playlist url missing from api response")
	// ErrResolveLoop indicates the hop bound was exceeded.
	ErrResolveLoop = errors.New("resolution did not reach a terminal manifest")
	// ErrNoQualityList indicates a quality enumeration was requested for a
	// URL that is already a terminal manifest.
	ErrNoQualityList = errors.New("url resolves directly to a terminal manifest")
)

// QualityError reports a requested bitrate the stream does not offer.
// Available is sorted ascending and the message enumeration is
// deterministic.
type QualityError struct {
	Requested int
	Available []int
}

func (e *QualityError) Error() string {
	levels := make([]string, len(e.Available))
	for i, q := range e.Available {
		levels[i] = strconv.Itoa(q)
	}
	return fmt.Sprintf("quality level %d not available, the available quality levels are: %s",
		e.Requested, strings.Join(levels, ", "))
}
