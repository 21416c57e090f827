// Package store provides storage for resource validators, keyed by request
// target. The conditional middleware consults a store before invoking a
// handler, which makes the cheap pre-execution short circuit possible, and
// records freshly extracted validators after handlers run.
package store

import (
	"context"
	"net/http"
	"time"

	"github.com/always-cache/conditional/rfc7232"
)

// ValidatorStore stores the current validator of each resource.
//
// Implementations must be safe for concurrent use.
type ValidatorStore interface {
	// Get returns the stored validator for the given key, if any.
	// The boolean indicates whether a validator was found.
	Get(ctx context.Context, key string) (rfc7232.TimedValidator, bool, error)
	// Put stores the validator under the given key, replacing any previous
	// one.
	Put(ctx context.Context, key string, v rfc7232.TimedValidator) error
	// Purge removes the stored validator for the given key, if any.
	Purge(ctx context.Context, key string) error
}

// Key returns the store key for a request. Validators identify the state of
// a resource, not of a method, so the key is the request target only.
func Key(r *http.Request) string {
	return r.URL.RequestURI()
}

// record is the serialized form of a validator shared by the persistent
// store implementations. A zero LastModified means the field is absent.
type record struct {
	ETag         string `json:"etag,omitempty"`
	LastModified int64  `json:"last_modified,omitempty"`
}

func toRecord(v rfc7232.TimedValidator) record {
	rec := record{}
	if v.HasETag() {
		rec.ETag = v.ETag.String()
	}
	if v.HasLastModified() {
		rec.LastModified = v.LastModified.Unix()
	}
	return rec
}

func (rec record) validator() rfc7232.TimedValidator {
	var v rfc7232.TimedValidator
	if rec.ETag != "" {
		if tag, err := rfc7232.ParseEntityTag(rec.ETag); err == nil {
			v.ETag = tag
		}
	}
	if rec.LastModified != 0 {
		v.LastModified = time.Unix(rec.LastModified, 0).UTC()
	}
	return v
}
