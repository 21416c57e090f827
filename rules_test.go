package conditional

import (
	"net/http/httptest"
	"testing"
)

func TestRulesFirstMatchWins(t *testing.T) {
	rules := Rules{
		{Path: "/exact", Override: "no-store"},
		{Prefix: "/", Default: "max-age=60"},
	}

	if cc := rules.CacheControl(httptest.NewRequest("GET", "/exact", nil), "max-age=300"); cc != "no-store" {
		t.Fatalf("Cache-Control is %s", cc)
	}
	if cc := rules.CacheControl(httptest.NewRequest("GET", "/other", nil), ""); cc != "max-age=60" {
		t.Fatalf("Cache-Control is %s", cc)
	}
}

func TestRulesDefaultYieldsToProducedValue(t *testing.T) {
	rules := Rules{{Prefix: "/", Default: "max-age=60"}}

	if cc := rules.CacheControl(httptest.NewRequest("GET", "/", nil), "max-age=300"); cc != "" {
		t.Fatalf("Cache-Control is %s", cc)
	}
}

func TestRulesEmptyMethodMeansGetOnly(t *testing.T) {
	rules := Rules{{Prefix: "/", Default: "max-age=60"}}

	if cc := rules.CacheControl(httptest.NewRequest("POST", "/", nil), ""); cc != "" {
		t.Fatalf("Cache-Control is %s", cc)
	}
}

func TestRulesMethodMatch(t *testing.T) {
	rules := Rules{{Prefix: "/", Method: "HEAD", Default: "max-age=60"}}

	if cc := rules.CacheControl(httptest.NewRequest("HEAD", "/", nil), ""); cc != "max-age=60" {
		t.Fatalf("Cache-Control is %s", cc)
	}
	if cc := rules.CacheControl(httptest.NewRequest("GET", "/", nil), ""); cc != "" {
		t.Fatalf("Cache-Control is %s", cc)
	}
}

func TestRulesNoMatch(t *testing.T) {
	rules := Rules{{Prefix: "/api"}}

	if cc := rules.CacheControl(httptest.NewRequest("GET", "/other", nil), ""); cc != "" {
		t.Fatalf("Cache-Control is %s", cc)
	}
}
