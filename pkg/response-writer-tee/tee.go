package tee

import (
	"bytes"
	"fmt"
	"net/http"
)

// ResponseSaver is a wrapper around http.ResponseWriter that captures the
// response into a buffer instead of writing it out. The status code, headers
// and body bytes a handler produces are held back until the caller decides
// whether to Replay them to the underlying http.ResponseWriter or to discard
// the capture altogether.
//
// The underlying writer is never touched before Replay, so the caller is free
// to write its own status and headers to it instead.
type ResponseSaver struct {
	rw           http.ResponseWriter
	b            *bytes.Buffer
	header       http.Header
	status       int
	wroteHeaders bool
	replayed     bool
}

// NewResponseSaver returns a new ResponseSaver capturing writes destined
// for w.
func NewResponseSaver(w http.ResponseWriter) *ResponseSaver {
	return &ResponseSaver{
		rw:     w,
		b:      &bytes.Buffer{},
		header: http.Header{},
	}
}

// Implementation of http.ResponseWriter
func (t *ResponseSaver) Header() http.Header {
	return t.header
}

// Implementation of http.ResponseWriter
func (t *ResponseSaver) WriteHeader(statusCode int) {
	if t.wroteHeaders {
		return
	}
	// remember that we wrote the headers
	t.wroteHeaders = true
	// set the status code so we can return it later
	t.status = statusCode
}

// Implementation of http.ResponseWriter
func (t *ResponseSaver) Write(b []byte) (int, error) {
	// write headers if not already written
	if !t.wroteHeaders {
		t.WriteHeader(http.StatusOK)
	}
	// write to buffer and return written bytes
	return t.b.Write(b)
}

// StatusCode returns the status code of the captured response.
// It defaults to 200 if the handler wrote a body without an explicit status,
// and is 0 if the handler wrote nothing at all.
func (t *ResponseSaver) StatusCode() int {
	return t.status
}

// Body returns the captured body bytes.
func (t *ResponseSaver) Body() []byte {
	return t.b.Bytes()
}

// Unwrap returns the underlying http.ResponseWriter.
func (t *ResponseSaver) Unwrap() http.ResponseWriter {
	return t.rw
}

// Replay writes the captured status, headers and body to the underlying
// http.ResponseWriter, exactly once. Captured headers are only copied for
// names not already set on the underlying writer, so headers written there
// after capture ended take precedence. Replaying an empty capture writes
// nothing, leaving the underlying writer untouched.
func (t *ResponseSaver) Replay() error {
	if t.replayed {
		return fmt.Errorf("response already replayed")
	}
	t.replayed = true
	if !t.wroteHeaders {
		return nil
	}
	dst := t.rw.Header()
	for k, vv := range t.header {
		if _, ok := dst[k]; ok {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
	t.rw.WriteHeader(t.status)
	_, err := t.rw.Write(t.b.Bytes())
	return err
}
