package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// CompressionConfig controls the gzip middleware.
type CompressionConfig struct {
	// MinSize is the smallest body, in bytes, worth compressing.
	MinSize int
	// Level is the gzip compression level.
	Level int
	// CompressibleTypes lists the media types eligible for compression.
	CompressibleTypes []string
}

// DefaultCompressionConfig compresses the JSON the API emits. Clip
// bytes are already compressed by the video codec and stay untouched.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		CompressibleTypes: []string{
			"application/json",
			"text/plain",
		},
	}
}

var gzipPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return w
	},
}

// compressWriter buffers the response until it knows whether the body
// is large enough and of a compressible type, then commits to either a
// gzip stream or a plain passthrough.
type compressWriter struct {
	http.ResponseWriter
	config  CompressionConfig
	gz      *gzip.Writer
	buf     []byte
	status  int
	decided bool
	useGzip bool
}

func newCompressWriter(w http.ResponseWriter, config CompressionConfig) *compressWriter {
	return &compressWriter{
		ResponseWriter: w,
		config:         config,
		status:         http.StatusOK,
		buf:            make([]byte, 0, config.MinSize+1),
	}
}

// WriteHeader defers the status line until commit, when the final
// header set is known.
func (c *compressWriter) WriteHeader(status int) {
	if !c.decided {
		c.status = status
	}
}

func (c *compressWriter) Write(data []byte) (int, error) {
	if c.decided {
		if c.useGzip {
			return c.gz.Write(data)
		}
		return c.ResponseWriter.Write(data)
	}

	c.buf = append(c.buf, data...)
	if len(c.buf) > c.config.MinSize {
		c.commit()
	}
	return len(data), nil
}

func (c *compressWriter) compressible() bool {
	contentType := c.Header().Get("Content-Type")
	if contentType == "" {
		return false
	}
	// Media type only; charset and other parameters do not matter here.
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, t := range c.config.CompressibleTypes {
		if mediaType == t {
			return true
		}
	}
	return false
}

// commit decides gzip or passthrough, writes the headers and the
// buffered body, and switches to streaming mode.
func (c *compressWriter) commit() {
	if c.decided {
		return
	}
	c.decided = true
	c.useGzip = len(c.buf) >= c.config.MinSize && c.compressible()

	if c.useGzip {
		c.Header().Del("Content-Length")
		c.Header().Set("Content-Encoding", "gzip")
		c.Header().Add("Vary", "Accept-Encoding")

		c.gz = gzipPool.Get().(*gzip.Writer)
		c.gz.Reset(c.ResponseWriter)
		c.ResponseWriter.WriteHeader(c.status)
		c.gz.Write(c.buf)
	} else {
		c.ResponseWriter.WriteHeader(c.status)
		c.ResponseWriter.Write(c.buf)
	}
	c.buf = nil
}

// Close flushes anything still buffered and returns the gzip writer to
// the pool.
func (c *compressWriter) Close() error {
	if !c.decided {
		c.commit()
	}
	if c.gz != nil {
		err := c.gz.Close()
		gzipPool.Put(c.gz)
		c.gz = nil
		return err
	}
	return nil
}

// Flush implements http.Flusher.
func (c *compressWriter) Flush() {
	if !c.decided {
		c.commit()
	}
	if c.gz != nil {
		c.gz.Flush()
	}
	if flusher, ok := c.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Compression returns middleware that gzips responses for clients that
// advertise support.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			cw := newCompressWriter(w, config)
			defer cw.Close()
			next.ServeHTTP(cw, r)
		})
	}
}
