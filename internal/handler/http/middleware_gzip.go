package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() any { return gzip.NewWriter(nil) },
}

var gzipReaderPool = sync.Pool{
	New: func() any { return new(gzip.Reader) },
}

// WithGZip decompresses gzip request bodies and compresses responses for
// clients that send "Accept-Encoding: gzip". Readers and writers are pooled.
func WithGZip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") && r.Body != nil {
			gr := gzipReaderPool.Get().(*gzip.Reader)
			if err := gr.Reset(r.Body); err != nil {
				gzipReaderPool.Put(gr)
				http.Error(w, "invalid gzip body", http.StatusBadRequest)
				return
			}

			r.Body = &pooledReadCloser{Reader: gr, onClose: func() {
				gr.Close()
				gzipReaderPool.Put(gr)
			}}
			r.Header.Del("Content-Encoding")
			r.Header.Del("Content-Length")
			r.ContentLength = -1
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gw := gzipWriterPool.Get().(*gzip.Writer)
		gw.Reset(w)
		defer func() {
			gw.Close()
			gzipWriterPool.Put(gw)
		}()

		w.Header().Add("Vary", "Accept-Encoding")
		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, gw: gw}, r)
	})
}

type pooledReadCloser struct {
	io.Reader
	onClose func()
}

func (p *pooledReadCloser) Close() error {
	if p.onClose != nil {
		p.onClose()
		p.onClose = nil
	}
	return nil
}

type gzipResponseWriter struct {
	http.ResponseWriter
	gw          *gzip.Writer
	wroteHeader bool
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.gw.Write(data)
}
