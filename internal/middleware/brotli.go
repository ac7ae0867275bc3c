package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliOptions tunes response compression.
type BrotliOptions struct {
	// Quality is the brotli level, 1-11. Zero picks the library default.
	Quality int
	// MinSize is the smallest body that gets encoded. Responses that never
	// reach it go out as-is.
	MinSize int
	// Skip marks requests the middleware must leave alone.
	Skip func(c *gin.Context) bool
}

// DefaultBrotliOptions encodes bodies of a kilobyte and up.
var DefaultBrotliOptions = BrotliOptions{
	Quality: brotli.DefaultCompression,
	MinSize: 1024,
}

// brWriter holds the body back until MinSize is reached, then switches to
// the brotli stream. Once encoding starts every write goes straight
// through, so pending is only ever non-empty for small plain responses.
type brWriter struct {
	gin.ResponseWriter
	br      *brotli.Writer
	pending []byte
	minSize int
	encoded bool
}

func (w *brWriter) Write(p []byte) (int, error) {
	if w.encoded {
		return w.br.Write(p)
	}

	w.pending = append(w.pending, p...)
	if len(w.pending) < w.minSize {
		return len(p), nil
	}

	w.encoded = true
	w.ResponseWriter.Header().Set("Content-Encoding", "br")
	w.ResponseWriter.Header().Del("Content-Length")
	_, err := w.br.Write(w.pending)
	w.pending = nil
	return len(p), err
}

func (w *brWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Flush forwards flushes for handlers that stream despite the skip checks.
func (w *brWriter) Flush() {
	w.drain()
	w.ResponseWriter.Flush()
}

// drain sends whatever never crossed the encoding threshold as a plain body.
func (w *brWriter) drain() {
	if len(w.pending) == 0 {
		return
	}
	_, _ = w.ResponseWriter.Write(w.pending)
	w.pending = nil
}

// Brotli compresses responses with the default options.
func Brotli() gin.HandlerFunc {
	return BrotliWith(DefaultBrotliOptions)
}

// BrotliWith compresses responses for clients that accept br encoding.
func BrotliWith(opts BrotliOptions) gin.HandlerFunc {
	if opts.Quality <= 0 || opts.Quality > brotli.BestCompression {
		opts.Quality = brotli.DefaultCompression
	}
	if opts.MinSize <= 0 {
		opts.MinSize = DefaultBrotliOptions.MinSize
	}

	return func(c *gin.Context) {
		if streamingRequest(c) || (opts.Skip != nil && opts.Skip(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		w := &brWriter{
			ResponseWriter: c.Writer,
			br:             brotli.NewWriterLevel(c.Writer, opts.Quality),
			minSize:        opts.MinSize,
		}
		defer func() {
			w.drain()
			if w.encoded {
				if err := w.br.Close(); err != nil {
					_ = c.Error(err)
				}
			}
		}()

		c.Writer = w
		c.Next()
	}
}

// streamingRequest reports protocols that cannot pass through a buffering
// writer: SSE needs every write on the wire immediately, and a WebSocket
// handshake fails if the response is wrapped.
func streamingRequest(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if strings.TrimSpace(strings.ToLower(enc)) == "br" {
			return true
		}
	}
	return false
}
