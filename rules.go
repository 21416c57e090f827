package conditional

import (
	"net/http"
	"strings"
)

// Rules select the Cache-Control value to attach per request path.
// The first matching rule wins.
type Rules []Rule

type Rule struct {
	// Path matches the request path exactly.
	Path string `yaml:"path"`
	// Prefix matches any request path with the given prefix.
	Prefix string `yaml:"prefix"`
	// Method restricts the rule to a method. An empty method means GET.
	Method string `yaml:"method"`
	// Default is used if the handler did not set a Cache-Control header.
	Default string `yaml:"default"`
	// Override is used regardless of what the handler set.
	Override string `yaml:"override"`
}

// CacheControl returns the Cache-Control value the rules mandate for the
// request, given the value the handler itself produced. An empty return
// means the rules have no opinion and the handler's value stands.
func (r Rules) CacheControl(req *http.Request, produced string) string {
	rule := r.find(req)
	if rule == nil {
		return ""
	}
	if rule.Override != "" {
		return rule.Override
	}
	if rule.Default != "" && produced == "" {
		return rule.Default
	}
	return ""
}

func (r Rules) find(req *http.Request) *Rule {
	for _, rule := range r {
		if rule.Method == "" && req.Method != http.MethodGet {
			continue
		}
		if rule.Method != "" && rule.Method != req.Method {
			continue
		}
		if rule.Path != "" && rule.Path != req.URL.Path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(req.URL.Path, rule.Prefix) {
			continue
		}
		return &rule
	}
	return nil
}
