package rfc7232

import (
	"fmt"
	"strings"
)

// §  8.8.3.  ETag
// §
// §       ETag       = entity-tag
// §
// §       entity-tag = [ weak ] opaque-tag
// §       weak       = %s"W/"
// §       opaque-tag = DQUOTE *etagc DQUOTE
// §       etagc      = %x21 / %x23-7E / obs-text
// §                  ; VCHAR except double quotes, plus obs-text

// EntityTag is a single entity tag. Opaque holds the tag contents without
// the surrounding quotes and is compared by exact, case-sensitive equality.
type EntityTag struct {
	Opaque string
	Weak   bool
}

// StrongTag returns a strong entity tag with the given opaque contents.
func StrongTag(opaque string) EntityTag {
	return EntityTag{Opaque: opaque}
}

// String formats the tag for use in an ETag header field.
func (t EntityTag) String() string {
	if t.Weak {
		return `W/"` + t.Opaque + `"`
	}
	return `"` + t.Opaque + `"`
}

// §     -  "Strong comparison": two entity tags are equivalent if both are
// §        not weak and their opaque-tags match character-by-character.
func (t EntityTag) StrongEqual(other EntityTag) bool {
	return !t.Weak && !other.Weak && t.Opaque == other.Opaque
}

// §     -  "Weak comparison": two entity tags are equivalent if their
// §        opaque-tags match character-by-character, regardless of either or
// §        both being tagged as "weak".
func (t EntityTag) WeakEqual(other EntityTag) bool {
	return t.Opaque == other.Opaque
}

// ParseEntityTag parses a single entity-tag, e.g. `"xyzzy"` or `W/"xyzzy"`.
func ParseEntityTag(s string) (EntityTag, error) {
	var tag EntityTag
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "W/") {
		tag.Weak = true
		s = strings.TrimPrefix(s, "W/")
	}
	if len(s) < 2 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
		return tag, fmt.Errorf("malformed entity tag: %q", s)
	}
	tag.Opaque = s[1 : len(s)-1]
	return tag, nil
}

// ParseTagList parses the comma-separated entity-tag lists of the If-Match
// and If-None-Match header fields. A field consisting of a single "*" is
// reported via the second return value. Malformed members are skipped, per
// the robustness expected of recipients.
func ParseTagList(values []string) ([]EntityTag, bool) {
	var tags []EntityTag
	for _, value := range values {
		if strings.TrimSpace(value) == "*" {
			return nil, true
		}
		for _, member := range strings.Split(value, ",") {
			if tag, err := ParseEntityTag(member); err == nil {
				tags = append(tags, tag)
			}
		}
	}
	return tags, false
}
