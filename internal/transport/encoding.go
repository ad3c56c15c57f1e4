package transport

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// acceptEncoding is sent on every request. Setting the header manually
// disables net/http's transparent gzip, so both codings are decoded here.
const acceptEncoding = "gzip, deflate, br"

type decodedBody struct {
	reader io.Reader
	closer io.Closer
	src    io.Closer
}

func (b *decodedBody) Read(p []byte) (int, error) { return b.reader.Read(p) }

func (b *decodedBody) Close() error {
	if b.closer != nil {
		if err := b.closer.Close(); err != nil {
			b.src.Close()
			return err
		}
	}
	return b.src.Close()
}

// decodeResponseBody swaps resp.Body for a decoding reader when the server
// applied a content coding. Identity responses pass through untouched.
func decodeResponseBody(resp *http.Response) error {
	coding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch coding {
	case "", "identity":
		return nil
	case "br":
		resp.Body = &decodedBody{reader: brotli.NewReader(resp.Body), src: resp.Body}
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("gzip response: %w", err)
		}
		resp.Body = &decodedBody{reader: gz, closer: gz, src: resp.Body}
	case "deflate":
		resp.Body = &decodedBody{reader: newDeflateReader(resp.Body), src: resp.Body}
	default:
		return fmt.Errorf("unsupported content encoding %q", coding)
	}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	return nil
}

// newDeflateReader handles both spellings of "deflate" in the wild:
// zlib-wrapped per RFC 7230 and raw flate streams.
func newDeflateReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err == nil && head[0]&0x0f == 0x08 && (uint16(head[0])<<8|uint16(head[1]))%31 == 0 {
		if zr, zerr := zlib.NewReader(br); zerr == nil {
			return zr
		}
	}
	return flate.NewReader(br)
}
