// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

var gzipWriters = sync.Pool{
	New: func() any { return gzip.NewWriter(io.Discard) },
}

// CompressJSON gzips JSON and text responses once they reach minSize bytes,
// for clients that accept gzip. Smaller bodies are sent as they are. Bodies
// are streamed: at most minSize bytes are held before the choice is made.
func CompressJSON(minSize int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}

			gw := &gzipResponseWriter{ResponseWriter: w, minSize: minSize}
			defer gw.close()
			next.ServeHTTP(gw, r)
		})
	}
}

// acceptsGzip reports whether an Accept-Encoding value allows gzip. A q of
// zero refuses it, and "*" stands in when gzip is not named.
func acceptsGzip(header string) bool {
	wildcard := false
	for part := range strings.SplitSeq(header, ",") {
		coding, params, _ := strings.Cut(part, ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "*" {
			continue
		}
		ok := qualityAllows(params)
		if coding == "gzip" {
			return ok
		}
		wildcard = ok
	}
	return wildcard
}

func qualityAllows(params string) bool {
	for p := range strings.SplitSeq(params, ";") {
		k, v, found := strings.Cut(strings.TrimSpace(p), "=")
		if !found || !strings.EqualFold(k, "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err != nil || q > 0
	}
	return true
}

// gzipResponseWriter holds the head of the body until it knows whether the
// response is worth compressing.
type gzipResponseWriter struct {
	http.ResponseWriter
	minSize int
	status  int
	pending []byte

	decided bool
	gz      *gzip.Writer
}

func (g *gzipResponseWriter) WriteHeader(status int) {
	if g.status == 0 && !g.decided {
		g.status = status
	}
}

func (g *gzipResponseWriter) Write(b []byte) (int, error) {
	if g.decided {
		if g.gz != nil {
			return g.gz.Write(b)
		}
		return g.ResponseWriter.Write(b)
	}

	g.pending = append(g.pending, b...)
	if len(g.pending) < g.minSize {
		return len(b), nil
	}
	if err := g.start(true); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Flush sends what is held so far, compressed if the response qualifies.
func (g *gzipResponseWriter) Flush() {
	if !g.decided {
		_ = g.start(len(g.pending) > 0)
	}
	if g.gz != nil {
		_ = g.gz.Flush()
	}
	if f, ok := g.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// start writes the header and the pending bytes. large says the body is
// big enough to compress.
func (g *gzipResponseWriter) start(large bool) error {
	g.decided = true
	h := g.Header()
	status := g.status
	if status == 0 {
		status = http.StatusOK
	}

	eligible := isCompressible(h.Get("Content-Type")) && bodyAllowed(status) && h.Get("Content-Encoding") == ""
	if eligible {
		h.Add("Vary", "Accept-Encoding")
	}
	if eligible && large {
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
		g.gz = gzipWriters.Get().(*gzip.Writer)
		g.gz.Reset(g.ResponseWriter)
	}

	g.ResponseWriter.WriteHeader(status)

	pending := g.pending
	g.pending = nil
	if len(pending) == 0 {
		return nil
	}
	if g.gz != nil {
		_, err := g.gz.Write(pending)
		return err
	}
	_, err := g.ResponseWriter.Write(pending)
	return err
}

func (g *gzipResponseWriter) close() {
	if !g.decided {
		if g.status == 0 && len(g.pending) == 0 {
			return
		}
		_ = g.start(false)
	}
	if g.gz != nil {
		_ = g.gz.Close()
		gzipWriters.Put(g.gz)
		g.gz = nil
	}
}

func bodyAllowed(status int) bool {
	return status >= http.StatusOK && status != http.StatusNoContent && status != http.StatusNotModified
}

// isCompressible reports whether a Content-Type is JSON or text.
func isCompressible(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") ||
		strings.HasPrefix(mediaType, "text/")
}
