// Package rfc7232 implements server-side conditional request semantics as
// defined in RFC 7232 (now part of RFC 9110 section 13), i.e. the evaluation
// of `If-*` precondition header fields against a resource's current
// validators.
package rfc7232

import (
	"net/http"
	"time"
)

// TimedValidator pairs the two validators a representation can carry:
// a strong entity tag and a last modification timestamp.
// Either field may be absent. A validator with both fields absent carries no
// information and is never produced by a well-behaved extractor.
type TimedValidator struct {
	ETag         EntityTag
	LastModified time.Time
}

func (v TimedValidator) HasETag() bool {
	return v.ETag.Opaque != ""
}

func (v TimedValidator) HasLastModified() bool {
	return !v.LastModified.IsZero()
}

// IsZero reports whether the validator carries neither field.
func (v TimedValidator) IsZero() bool {
	return !v.HasETag() && !v.HasLastModified()
}

// ConditionalMode is the conditional evaluation a request asks for.
// Exactly one mode applies to any given request, see DetectMode.
type ConditionalMode int

const (
	ModeNone ConditionalMode = iota
	ModeGetIfModifiedSince
	ModeGetIfNoneMatch
	ModePutIfMatch
	ModePutIfUnmodifiedSince
)

func (m ConditionalMode) String() string {
	switch m {
	case ModeGetIfModifiedSince:
		return "get-if-modified-since"
	case ModeGetIfNoneMatch:
		return "get-if-none-match"
	case ModePutIfMatch:
		return "put-if-match"
	case ModePutIfUnmodifiedSince:
		return "put-if-unmodified-since"
	}
	return "none"
}

// Outcome is the result of evaluating a conditional request against a
// resource validator.
type Outcome int

const (
	// CannotDetermine means no validator was available for evaluation.
	// The request must proceed, and may be re-evaluated once a validator
	// becomes known.
	CannotDetermine Outcome = iota
	// NoMatch means a validator was evaluated but the precondition does not
	// allow a short circuit. The request must proceed, and there is no point
	// re-evaluating later.
	NoMatch
	// NotModified means the request can be answered with 304 without
	// invoking the handler.
	NotModified
	// Conflict means the mutation must be refused because the client holds a
	// stale version of the resource.
	Conflict
)

func (o Outcome) String() string {
	switch o {
	case NoMatch:
		return "no-match"
	case NotModified:
		return "not-modified"
	case Conflict:
		return "conflict"
	}
	return "cannot-determine"
}

// ShortCircuit reports whether the outcome terminates request processing.
func (o Outcome) ShortCircuit() bool {
	return o == NotModified || o == Conflict
}

// §  13.2.2.  Precedence of Preconditions
// §
// §     [...] a recipient cache or origin server MUST evaluate received
// §     request preconditions after it has successfully performed its normal
// §     request checks [...]:
// §
// §     1.  When recipient is the origin server and If-Match is present,
// §         evaluate the If-Match precondition [...]
// §
// §     3.  When If-None-Match is present, evaluate the If-None-Match
// §         precondition [...]
// §
// §     4.  When the method is GET or HEAD, If-None-Match is not present, and
// §         If-Modified-Since is present, evaluate the If-Modified-Since
// §         precondition [...]

// DetectMode classifies a request into the single conditional mode that
// applies to it, based on its method and which precondition headers are
// present. If-None-Match takes precedence over If-Modified-Since for safe
// retrievals, and If-Match over If-Unmodified-Since for mutations.
// It is a pure function of the method and header presence.
func DetectMode(method string, header http.Header) ConditionalMode {
	switch {
	case isSafeMethod(method):
		if header.Get("If-None-Match") != "" {
			return ModeGetIfNoneMatch
		}
		if header.Get("If-Modified-Since") != "" {
			return ModeGetIfModifiedSince
		}
	case isMutatingMethod(method):
		if header.Get("If-Match") != "" {
			return ModePutIfMatch
		}
		if header.Get("If-Unmodified-Since") != "" {
			return ModePutIfUnmodifiedSince
		}
	}
	return ModeNone
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func isMutatingMethod(method string) bool {
	switch method {
	case http.MethodPut, http.MethodPost, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Evaluate runs the precondition of the given mode against the resource
// validator and the request's precondition header values.
//
// An absent validator field makes the corresponding mode inapplicable and
// yields NoMatch (proceed). A request validator that cannot be parsed is
// ignored, which likewise yields NoMatch. A zero validator or ModeNone
// yields CannotDetermine.
func Evaluate(mode ConditionalMode, v TimedValidator, header http.Header) Outcome {
	if mode == ModeNone || v.IsZero() {
		return CannotDetermine
	}
	switch mode {
	case ModeGetIfModifiedSince:
		return evaluateIfModifiedSince(v, header.Get("If-Modified-Since"))
	case ModeGetIfNoneMatch:
		return evaluateIfNoneMatch(v, header.Values("If-None-Match"))
	case ModePutIfMatch:
		return evaluateIfMatch(v, header.Values("If-Match"))
	case ModePutIfUnmodifiedSince:
		return evaluateIfUnmodifiedSince(v, header.Get("If-Unmodified-Since"))
	}
	return CannotDetermine
}

// §  13.1.3.  If-Modified-Since
// §
// §     [...] A recipient MUST ignore the If-Modified-Since header field if
// §     [...] the field value is not a valid HTTP-date [...]
// §
// §     1.  If the selected representation's last modification date is
// §         earlier or equal to the date provided in the field value, the
// §         condition is false.
func evaluateIfModifiedSince(v TimedValidator, value string) Outcome {
	if !v.HasLastModified() {
		return NoMatch
	}
	since, err := ParseHTTPDate(value)
	if err != nil {
		return NoMatch
	}
	if lastModified(v).After(since) {
		return NoMatch
	}
	return NotModified
}

// §  13.1.2.  If-None-Match
// §
// §     [...] If the field value is a list of entity tags, the condition is
// §     false if one of the listed tags matches the entity tag of the
// §     selected representation. [...] A recipient MUST use the weak
// §     comparison function when comparing entity tags for If-None-Match
func evaluateIfNoneMatch(v TimedValidator, values []string) Outcome {
	if !v.HasETag() {
		return NoMatch
	}
	tags, star := ParseTagList(values)
	if star {
		return NotModified
	}
	for _, tag := range tags {
		if tag.WeakEqual(v.ETag) {
			return NotModified
		}
	}
	return NoMatch
}

// §  13.1.1.  If-Match
// §
// §     [...] An origin server MUST use the strong comparison function when
// §     comparing entity tags for If-Match [...]
//
// A matching tag confirms the client holds the current version, so the
// mutation proceeds. A non-matching list means the client's version is
// stale, which short-circuits to a conflict.
func evaluateIfMatch(v TimedValidator, values []string) Outcome {
	if !v.HasETag() {
		return NoMatch
	}
	tags, star := ParseTagList(values)
	if star {
		return NoMatch
	}
	for _, tag := range tags {
		if tag.StrongEqual(v.ETag) {
			return NoMatch
		}
	}
	return Conflict
}

// §  13.1.4.  If-Unmodified-Since
// §
// §     1.  If the selected representation's last modification date is
// §         earlier than or equal to the date provided in the field value,
// §         the condition is true.
func evaluateIfUnmodifiedSince(v TimedValidator, value string) Outcome {
	if !v.HasLastModified() {
		return NoMatch
	}
	since, err := ParseHTTPDate(value)
	if err != nil {
		return NoMatch
	}
	if lastModified(v).After(since) {
		return Conflict
	}
	return NoMatch
}

// lastModified returns the validator timestamp at the second granularity
// used by HTTP-date comparisons.
func lastModified(v TimedValidator) time.Time {
	return v.LastModified.Truncate(time.Second)
}
