package conditional

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"

	cachecontrol "github.com/always-cache/conditional/pkg/cache-control"
	"github.com/always-cache/conditional/rfc7232"
)

// CapturedResponse is a read-only view over a handler's buffered output.
type CapturedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Capabilities bundles the collaborator functions the middleware needs.
// Every field is optional; New fills in defaults backed by the configured
// validator store and rules. A bundle is selected per middleware instance,
// so different routes can carry different policies.
type Capabilities struct {
	// IsRequestCacheable decides whether the incoming request participates
	// in caching at all.
	IsRequestCacheable func(r *http.Request) bool
	// IsResponseCacheable decides, once the handler output is known, whether
	// the response may be stored by caches.
	IsResponseCacheable func(r *http.Request, res CapturedResponse) bool
	// QueryValidator is the cheap pre-execution validator lookup.
	// The boolean reports whether a validator was obtainable.
	QueryValidator func(ctx context.Context, r *http.Request) (rfc7232.TimedValidator, bool, error)
	// ExtractValidator derives a validator from the handler's actual output.
	// The boolean reports whether the output carried validator semantics.
	ExtractValidator func(r *http.Request, res CapturedResponse) (rfc7232.TimedValidator, bool)
	// CacheControl provides the Cache-Control value to attach to a cacheable
	// response. An empty return leaves the handler's own header in place.
	CacheControl func(r *http.Request, res CapturedResponse) string
}

// IsRequestCacheable is the default request cacheability policy: safe
// retrievals without credentials and without a no-store request directive.
func IsRequestCacheable(r *http.Request) bool {
	if !isSafeMethod(r.Method) {
		return false
	}
	if r.Header.Get("Authorization") != "" {
		return false
	}
	return cachecontrol.Parse(r.Header.Values("Cache-Control")).Storable()
}

// IsResponseCacheable is the default response cacheability policy:
// successes whose own directives do not forbid storing.
func IsResponseCacheable(_ *http.Request, res CapturedResponse) bool {
	if res.StatusCode != http.StatusOK {
		return false
	}
	return cachecontrol.Parse(res.Header.Values("Cache-Control")).Storable()
}

// ExtractValidator is the default validator extractor. It reads the ETag and
// Last-Modified headers the handler set on its output. If a successful
// retrieval carries neither, a strong entity tag is derived from a digest of
// the body, so that even validator-unaware handlers get revalidation support.
func ExtractValidator(r *http.Request, res CapturedResponse) (rfc7232.TimedValidator, bool) {
	var v rfc7232.TimedValidator
	if value := res.Header.Get("ETag"); value != "" {
		if tag, err := rfc7232.ParseEntityTag(value); err == nil {
			v.ETag = tag
		}
	}
	if value := res.Header.Get("Last-Modified"); value != "" {
		if date, err := rfc7232.ParseHTTPDate(value); err == nil {
			v.LastModified = date
		}
	}
	if v.IsZero() && isSafeMethod(r.Method) && res.StatusCode == http.StatusOK && len(res.Body) > 0 {
		v.ETag = rfc7232.StrongTag(fmt.Sprintf("%x", sha256.Sum256(res.Body)))
	}
	return v, !v.IsZero()
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}
