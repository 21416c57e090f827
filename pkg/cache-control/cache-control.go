// Package cachecontrol parses and builds Cache-Control header values.
package cachecontrol

import (
	"fmt"
	"strings"
	"time"
)

// NonCacheable is the directive value used to explicitly mark a response as
// not storable. Absence of a Cache-Control header does not prohibit caching,
// so responses that must not be cached need this positive marking.
const NonCacheable = "no-store"

type CacheControl struct {
	directives map[string]string
}

func (c CacheControl) Get(directive string) (string, bool) {
	val, ok := c.directives[directive]
	return val, ok
}

func (c CacheControl) HasDirective(directive string) bool {
	_, ok := c.Get(directive)
	return ok
}

// Storable reports whether the directives allow storing the response at all.
func (c CacheControl) Storable() bool {
	return !c.HasDirective("no-store") && !c.HasDirective("private")
}

// Parse takes Cache-Control headers as a slice of strings
// and returns an instance of `CacheControl`.
func Parse(headers []string) CacheControl {
	m := make(map[string]string)
	// process all headers
	// note setting map values like this means last defined directive wins
	for _, header := range headers {
		// process directives "#" means comma-separated list
		for _, directive := range strings.Split(header, ",") {
			parts := strings.SplitN(strings.TrimSpace(directive), "=", 2)
			name := directiveName(parts[0])
			if name == "" {
				continue
			}
			var arg string
			if len(parts) > 1 {
				arg = directiveArgument(parts[1])
			}
			m[name] = arg
		}
	}
	return CacheControl{m}
}

func directiveName(token string) string {
	// directive tokens are compared case-insensitively
	return strings.ToLower(token)
}

func directiveArgument(arg string) string {
	// arguments can use both token and quoted-string syntax
	return strings.Trim(arg, "\"")
}

// MaxAge builds a max-age directive for the given duration,
// rounded down to whole seconds.
func MaxAge(d time.Duration) string {
	return fmt.Sprintf("max-age=%d", int(d.Seconds()))
}

// Build joins directives into a single header value, skipping empty ones.
func Build(directives ...string) string {
	nonEmpty := make([]string, 0, len(directives))
	for _, d := range directives {
		if d != "" {
			nonEmpty = append(nonEmpty, d)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
