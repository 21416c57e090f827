// Package conditional provides HTTP middleware implementing server-side
// cache validation per RFC 7232 and RFC 9111. It answers conditional
// requests (If-None-Match, If-Modified-Since, If-Match, If-Unmodified-Since)
// with 304 Not Modified or 409 Conflict without invoking the wrapped handler
// whenever a resource validator permits it, and attaches validator and
// Cache-Control headers to responses that do go through the handler.
package conditional

import (
	"context"
	"net/http"

	cachecontrol "github.com/always-cache/conditional/pkg/cache-control"
	tee "github.com/always-cache/conditional/pkg/response-writer-tee"
	"github.com/always-cache/conditional/rfc7232"
	"github.com/always-cache/conditional/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Store used for pre-execution validator lookups and kept up to date
	// with validators extracted from handler output. Optional if a custom
	// QueryValidator capability is provided.
	Store store.ValidatorStore
	// Rules providing Cache-Control values per path.
	Rules Rules
	// Capabilities override individual collaborator functions.
	Capabilities Capabilities
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

type Conditional struct {
	caps  Capabilities
	store store.ValidatorStore
	rules Rules
	log   zerolog.Logger
}

// New initializes a conditional-request middleware instance,
// filling in default capabilities where none are configured.
func New(config Config) *Conditional {
	logger := log.Logger
	if config.Logger != nil {
		logger = *config.Logger
	}

	c := &Conditional{
		caps:  config.Capabilities,
		store: config.Store,
		rules: config.Rules,
		log:   logger,
	}

	if c.caps.IsRequestCacheable == nil {
		c.caps.IsRequestCacheable = IsRequestCacheable
	}
	if c.caps.IsResponseCacheable == nil {
		c.caps.IsResponseCacheable = IsResponseCacheable
	}
	if c.caps.QueryValidator == nil {
		c.caps.QueryValidator = c.queryStore
	}
	if c.caps.ExtractValidator == nil {
		c.caps.ExtractValidator = ExtractValidator
	}
	if c.caps.CacheControl == nil {
		c.caps.CacheControl = func(r *http.Request, res CapturedResponse) string {
			return c.rules.CacheControl(r, res.Header.Get("Cache-Control"))
		}
	}

	return c
}

// Middleware wraps next with conditional request handling.
func (c *Conditional) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.serve(w, r, next)
	})
}

// serve runs the request lifecycle: pre-execution validation, handler
// invocation under capture, post-execution fallback validation, header
// finalization and body replay. Every path reaches exactly one terminal
// state; the captured body is replayed exactly when no short circuit
// happened.
func (c *Conditional) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	logger := c.requestLogger(r)
	mode := rfc7232.DetectMode(r.Method, r.Header)
	requestCacheable := c.caps.IsRequestCacheable(r)

	// pre-execution attempt: a cheap validator lookup may let us answer
	// without running the handler at all
	preOutcome := rfc7232.CannotDetermine
	if mode != rfc7232.ModeNone {
		validator, found, err := c.caps.QueryValidator(r.Context(), r)
		if err != nil {
			logger.Error().Err(err).Msg("Could not query validator")
			http.Error(w, "Could not evaluate preconditions", http.StatusInternalServerError)
			return
		}
		if found {
			preOutcome = rfc7232.Evaluate(mode, validator, r.Header)
		}
		switch preOutcome {
		case rfc7232.NotModified:
			c.writeNotModified(w, validator)
			c.logResponse(logger, r, mode, "short-circuit-pre", http.StatusNotModified)
			return
		case rfc7232.Conflict:
			w.WriteHeader(http.StatusConflict)
			c.logResponse(logger, r, mode, "short-circuit-pre", http.StatusConflict)
			return
		}
	}

	// invoke the handler with its output captured, leaving the real writer
	// untouched until headers are final
	saver := tee.NewResponseSaver(w)
	next.ServeHTTP(saver, r)

	captured := CapturedResponse{
		StatusCode: saver.StatusCode(),
		Header:     saver.Header(),
		Body:       saver.Body(),
	}
	validator, extracted := c.caps.ExtractValidator(r, captured)

	// post-execution fallback, safe retrievals only: if no validator was
	// obtainable before execution, the handler's actual output may still
	// prove the client's copy current. Mutations have had their side
	// effects by now, so deciding against them after the fact is unsound.
	if extracted && isSafeMethod(r.Method) &&
		mode != rfc7232.ModeNone && preOutcome == rfc7232.CannotDetermine {
		if rfc7232.Evaluate(mode, validator, r.Header) == rfc7232.NotModified {
			c.recordValidator(r, captured, validator, logger)
			c.writeNotModified(w, validator)
			c.logResponse(logger, r, mode, "short-circuit-post", http.StatusNotModified)
			return
		}
	}

	// finalize headers on the real writer; replay copies captured headers
	// around these without overwriting them
	if extracted {
		applyValidator(w.Header(), validator)
	}
	if !requestCacheable || !c.caps.IsResponseCacheable(r, captured) {
		// cancelled executions are already aborted responses, not
		// cacheability violations
		if r.Context().Err() == nil {
			w.Header().Set("Cache-Control", cachecontrol.NonCacheable)
		}
	} else if directive := c.caps.CacheControl(r, captured); directive != "" {
		w.Header().Set("Cache-Control", directive)
	}

	if extracted {
		c.recordValidator(r, captured, validator, logger)
	}
	c.purgeValidator(r, captured, logger)

	c.logResponse(logger, r, mode, "completed", captured.StatusCode)
	if err := saver.Replay(); err != nil {
		logger.Error().Err(err).Msg("Could not write response body to client")
	}
}

// queryStore is the default QueryValidator capability, backed by the
// configured validator store.
func (c *Conditional) queryStore(ctx context.Context, r *http.Request) (rfc7232.TimedValidator, bool, error) {
	if c.store == nil {
		return rfc7232.TimedValidator{}, false, nil
	}
	return c.store.Get(ctx, store.Key(r))
}

// recordValidator remembers the validator of a successfully retrieved
// resource, so the next conditional request can short-circuit before the
// handler runs.
func (c *Conditional) recordValidator(r *http.Request, captured CapturedResponse, v rfc7232.TimedValidator, logger *zerolog.Logger) {
	if c.store == nil || !isSafeMethod(r.Method) || captured.StatusCode != http.StatusOK {
		return
	}
	key := store.Key(r)
	if err := c.store.Put(r.Context(), key, v); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Could not store validator")
		return
	}
	logger.Trace().Str("key", key).Msg("Stored validator")
}

// purgeValidator drops the stored validator after a successful mutation,
// since the resource state it described no longer exists.
func (c *Conditional) purgeValidator(r *http.Request, captured CapturedResponse, logger *zerolog.Logger) {
	if c.store == nil || isSafeMethod(r.Method) {
		return
	}
	if captured.StatusCode < 200 || captured.StatusCode >= 300 {
		return
	}
	key := store.Key(r)
	if err := c.store.Purge(r.Context(), key); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Could not purge validator")
	}
}

// writeNotModified sends a 304 with validator headers only.
// Representation metadata is stripped per RFC 7232 section 4.1.
func (c *Conditional) writeNotModified(w http.ResponseWriter, v rfc7232.TimedValidator) {
	h := w.Header()
	applyValidator(h, v)
	delete(h, "Content-Type")
	delete(h, "Content-Length")
	if h.Get("ETag") != "" {
		delete(h, "Last-Modified")
	}
	w.WriteHeader(http.StatusNotModified)
}

// applyValidator writes the validator headers for a representation.
func applyValidator(h http.Header, v rfc7232.TimedValidator) {
	if v.HasETag() {
		h.Set("ETag", v.ETag.String())
	}
	if v.HasLastModified() {
		h.Set("Last-Modified", v.LastModified.UTC().Format(http.TimeFormat))
	}
}

// requestLogger returns the logger from the request context.
// If no logger is found, it will return the instance logger.
func (c *Conditional) requestLogger(r *http.Request) *zerolog.Logger {
	logger := hlog.FromRequest(r)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &c.log
	}
	return logger
}

func (c *Conditional) logResponse(logger *zerolog.Logger, r *http.Request, mode rfc7232.ConditionalMode, terminal string, status int) {
	logger.Debug().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Str("mode", mode.String()).
		Str("terminal", terminal).
		Int("status", status).
		Msg("Sending response to client")
}
