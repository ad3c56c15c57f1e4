package cookies

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const exportSample = `# Netscape HTTP Cookie File
# https://curl.se/docs/http-cookies.html

.linkedin.com	TRUE	/	TRUE	2145916800	bcookie	v=2&0d9f
.linkedin.com	TRUE	/	TRUE	0	JSESSIONID	"ajax:7577529478528497922"
#HttpOnly_.linkedin.com	TRUE	/	TRUE	2145916800	li_at	AQEDATp3aW4uZXN0
malformed line without tabs
.linkedin.com	TRUE	/	FALSE	2145916800
`

func TestParseNetscape(t *testing.T) {
	cookies, err := ParseNetscape(strings.NewReader(exportSample))
	if err != nil {
		t.Fatalf("ParseNetscape() error = %v", err)
	}
	if len(cookies) != 3 {
		t.Fatalf("ParseNetscape() returned %d cookies, want 3", len(cookies))
	}

	byName := make(map[string]int)
	for i, c := range cookies {
		byName[c.Name] = i
	}

	session := cookies[byName["JSESSIONID"]]
	if session.Value != `"ajax:7577529478528497922"` {
		t.Errorf("JSESSIONID value = %q, want quoted export value", session.Value)
	}
	if !session.Expires.IsZero() {
		t.Errorf("JSESSIONID expires = %v, want zero for session cookie", session.Expires)
	}
	if !session.Secure {
		t.Error("JSESSIONID not marked secure")
	}

	liAt := cookies[byName["li_at"]]
	if !liAt.HttpOnly {
		t.Error("li_at not marked HttpOnly")
	}
	if liAt.Domain != ".linkedin.com" {
		t.Errorf("li_at domain = %q, want .linkedin.com", liAt.Domain)
	}
	if liAt.Expires.Unix() != 2145916800 {
		t.Errorf("li_at expires = %v, want unix 2145916800", liAt.Expires)
	}
}

func TestLoadJar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(path, []byte(exportSample), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	jar, err := LoadJar(path)
	if err != nil {
		t.Fatalf("LoadJar() error = %v", err)
	}

	u, _ := url.Parse("https://www.linkedin.com/posts/example")
	names := make(map[string]bool)
	for _, c := range jar.Cookies(u) {
		names[c.Name] = true
	}
	for _, want := range []string{"JSESSIONID", "li_at", "bcookie"} {
		if !names[want] {
			t.Errorf("jar missing %s for %s, has %v", want, u, names)
		}
	}
}

func TestLoadJarMissingFile(t *testing.T) {
	if _, err := LoadJar(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("LoadJar() error = nil, want open failure")
	}
}
