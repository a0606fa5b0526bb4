package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fasthttp"
)

var ErrBodyTooLarge = errors.New("decoded body exceeds limit")

type decoder func(r io.Reader) (io.ReadCloser, error)

var decoders = map[string]decoder{
	"br": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(brotli.NewReader(r)), nil
	},
	"gzip": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	"x-gzip": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	"zstd": func(r io.Reader) (io.ReadCloser, error) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	},
}

// DecodeChain undoes a Content-Encoding chain such as "gzip, br", last
// applied first. limit caps the decoded size; zero means no cap. It returns
// the decoded body and whether anything was decoded.
func DecodeChain(contentEncoding string, body []byte, limit int) ([]byte, bool, error) {
	if contentEncoding == "" {
		return body, false, nil
	}
	codings := strings.Split(contentEncoding, ",")
	changed := false
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.TrimSpace(strings.ToLower(codings[i]))
		switch coding {
		case "", "identity":
			continue
		case "deflate":
			out, err := inflate(body, limit)
			if err != nil {
				return nil, false, err
			}
			body = out
		default:
			dec, ok := decoders[coding]
			if !ok {
				return nil, false, fmt.Errorf("unsupported content-encoding: %q", coding)
			}
			rc, err := dec(bytes.NewReader(body))
			if err != nil {
				return nil, false, fmt.Errorf("%s: %w", coding, err)
			}
			out, err := readLimited(rc, limit)
			cerr := rc.Close()
			if err != nil {
				return nil, false, fmt.Errorf("%s: %w", coding, err)
			}
			if cerr != nil {
				return nil, false, fmt.Errorf("%s: %w", coding, cerr)
			}
			body = out
		}
		changed = true
	}
	return body, changed, nil
}

// inflate accepts both zlib wrapped and raw deflate streams.
func inflate(body []byte, limit int) ([]byte, error) {
	var rc io.ReadCloser
	if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
		rc = zr
	} else {
		rc = flate.NewReader(bytes.NewReader(body))
	}
	out, err := readLimited(rc, limit)
	cerr := rc.Close()
	if err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if cerr != nil {
		return nil, fmt.Errorf("deflate: %w", cerr)
	}
	return out, nil
}

func readLimited(r io.Reader, limit int) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	out, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		return nil, ErrBodyTooLarge
	}
	return out, nil
}

// DecodeRequestBody returns the request body with its Content-Encoding
// removed so it can be inspected. The request itself is left untouched.
func DecodeRequestBody(req *fasthttp.Request, limit int) ([]byte, error) {
	body, _, err := DecodeChain(string(req.Header.Peek(fasthttp.HeaderContentEncoding)), req.Body(), limit)
	return body, err
}
