package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.IncResolveHops()
	m.IncResolveHops()
	m.IncFetchRetries()
	m.IncFragmentsStitched()
	m.AddFragmentBytes(2048)
	m.SetActiveDownloads(1)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	for _, want := range []string{
		"liv1_resolve_hops_total 2",
		"liv1_fetch_retries_total 1",
		"liv1_fragments_stitched_total 1",
		"liv1_fragment_bytes_total 2048",
		"liv1_active_downloads 1",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
