package rfc7232

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func headerOf(pairs ...string) http.Header {
	h := http.Header{}
	for i := 0; i < len(pairs); i += 2 {
		h.Add(pairs[i], pairs[i+1])
	}
	return h
}

func TestDetectMode(t *testing.T) {
	tests := []struct {
		name   string
		method string
		header http.Header
		want   ConditionalMode
	}{
		{"get plain", "GET", headerOf(), ModeNone},
		{"get if-none-match", "GET", headerOf("If-None-Match", `"a"`), ModeGetIfNoneMatch},
		{"get if-modified-since", "GET", headerOf("If-Modified-Since", "Sun, 06 Nov 1994 08:49:37 GMT"), ModeGetIfModifiedSince},
		{"head if-none-match", "HEAD", headerOf("If-None-Match", `"a"`), ModeGetIfNoneMatch},
		{"if-none-match beats if-modified-since", "GET",
			headerOf("If-None-Match", `"a"`, "If-Modified-Since", "Sun, 06 Nov 1994 08:49:37 GMT"),
			ModeGetIfNoneMatch},
		{"put plain", "PUT", headerOf(), ModeNone},
		{"put if-match", "PUT", headerOf("If-Match", `"a"`), ModePutIfMatch},
		{"put if-unmodified-since", "PUT", headerOf("If-Unmodified-Since", "Sun, 06 Nov 1994 08:49:37 GMT"), ModePutIfUnmodifiedSince},
		{"if-match beats if-unmodified-since", "PUT",
			headerOf("If-Match", `"a"`, "If-Unmodified-Since", "Sun, 06 Nov 1994 08:49:37 GMT"),
			ModePutIfMatch},
		{"delete if-match", "DELETE", headerOf("If-Match", `"a"`), ModePutIfMatch},
		{"mutating headers on get are ignored", "GET", headerOf("If-Match", `"a"`), ModeNone},
		{"retrieval headers on put are ignored", "PUT", headerOf("If-None-Match", `"a"`), ModeNone},
		{"options is never conditional", "OPTIONS", headerOf("If-None-Match", `"a"`), ModeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMode(tt.method, tt.header))
		})
	}
}

func TestEvaluateIfNoneMatch(t *testing.T) {
	v := TimedValidator{ETag: StrongTag("abc")}

	assert.Equal(t, NotModified, Evaluate(ModeGetIfNoneMatch, v, headerOf("If-None-Match", `"abc"`)))
	assert.Equal(t, NoMatch, Evaluate(ModeGetIfNoneMatch, v, headerOf("If-None-Match", `"xyz"`)))
	assert.Equal(t, NotModified, Evaluate(ModeGetIfNoneMatch, v, headerOf("If-None-Match", `"xyz", "abc"`)))
	assert.Equal(t, NotModified, Evaluate(ModeGetIfNoneMatch, v, headerOf("If-None-Match", "*")))
	// weak comparison applies for If-None-Match
	assert.Equal(t, NotModified, Evaluate(ModeGetIfNoneMatch, v, headerOf("If-None-Match", `W/"abc"`)))
	// validator without an entity tag cannot satisfy this mode
	assert.Equal(t, NoMatch, Evaluate(ModeGetIfNoneMatch,
		TimedValidator{LastModified: time.Now()}, headerOf("If-None-Match", `"abc"`)))
}

func TestEvaluateIfMatch(t *testing.T) {
	v := TimedValidator{ETag: StrongTag("abc")}

	// a match confirms the client holds the current version, so proceed
	assert.Equal(t, NoMatch, Evaluate(ModePutIfMatch, v, headerOf("If-Match", `"abc"`)))
	assert.Equal(t, Conflict, Evaluate(ModePutIfMatch, v, headerOf("If-Match", `"xyz"`)))
	assert.Equal(t, NoMatch, Evaluate(ModePutIfMatch, v, headerOf("If-Match", "*")))
	// strong comparison applies for If-Match, so a weak tag never matches
	assert.Equal(t, Conflict, Evaluate(ModePutIfMatch, v, headerOf("If-Match", `W/"abc"`)))
	assert.Equal(t, NoMatch, Evaluate(ModePutIfMatch,
		TimedValidator{LastModified: time.Now()}, headerOf("If-Match", `"abc"`)))
}

func TestEvaluateIfModifiedSince(t *testing.T) {
	modified := time.Date(2023, 2, 1, 12, 0, 0, 0, time.UTC)
	v := TimedValidator{LastModified: modified}
	format := func(t time.Time) string { return t.Format(http.TimeFormat) }

	// unchanged since the client's copy: short circuit
	assert.Equal(t, NotModified, Evaluate(ModeGetIfModifiedSince, v,
		headerOf("If-Modified-Since", format(modified))))
	assert.Equal(t, NotModified, Evaluate(ModeGetIfModifiedSince, v,
		headerOf("If-Modified-Since", format(modified.Add(time.Hour)))))
	// changed after the client's copy: proceed
	assert.Equal(t, NoMatch, Evaluate(ModeGetIfModifiedSince, v,
		headerOf("If-Modified-Since", format(modified.Add(-time.Hour)))))
	// sub-second differences are invisible at HTTP-date granularity
	assert.Equal(t, NotModified, Evaluate(ModeGetIfModifiedSince,
		TimedValidator{LastModified: modified.Add(500 * time.Millisecond)},
		headerOf("If-Modified-Since", format(modified))))
	// invalid dates are ignored
	assert.Equal(t, NoMatch, Evaluate(ModeGetIfModifiedSince, v,
		headerOf("If-Modified-Since", "bogus")))
	assert.Equal(t, NoMatch, Evaluate(ModeGetIfModifiedSince,
		TimedValidator{ETag: StrongTag("abc")},
		headerOf("If-Modified-Since", format(modified))))
}

func TestEvaluateIfUnmodifiedSince(t *testing.T) {
	modified := time.Date(2023, 2, 1, 12, 0, 0, 0, time.UTC)
	v := TimedValidator{LastModified: modified}
	format := func(t time.Time) string { return t.Format(http.TimeFormat) }

	assert.Equal(t, NoMatch, Evaluate(ModePutIfUnmodifiedSince, v,
		headerOf("If-Unmodified-Since", format(modified))))
	assert.Equal(t, NoMatch, Evaluate(ModePutIfUnmodifiedSince, v,
		headerOf("If-Unmodified-Since", format(modified.Add(time.Hour)))))
	// resource changed since the client last saw it
	assert.Equal(t, Conflict, Evaluate(ModePutIfUnmodifiedSince, v,
		headerOf("If-Unmodified-Since", format(modified.Add(-time.Hour)))))
	assert.Equal(t, NoMatch, Evaluate(ModePutIfUnmodifiedSince, v,
		headerOf("If-Unmodified-Since", "bogus")))
}

func TestEvaluateCannotDetermine(t *testing.T) {
	header := headerOf("If-None-Match", `"abc"`)
	assert.Equal(t, CannotDetermine, Evaluate(ModeNone, TimedValidator{ETag: StrongTag("abc")}, header))
	assert.Equal(t, CannotDetermine, Evaluate(ModeGetIfNoneMatch, TimedValidator{}, header))
}

func TestOutcomeShortCircuit(t *testing.T) {
	assert.False(t, CannotDetermine.ShortCircuit())
	assert.False(t, NoMatch.ShortCircuit())
	assert.True(t, NotModified.ShortCircuit())
	assert.True(t, Conflict.ShortCircuit())
}
