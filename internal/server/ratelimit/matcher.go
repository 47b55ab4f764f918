package ratelimit

import "strings"

// healthCheck is never limited
var healthCheck = EndpointConfig{Path: "/health", Method: "GET"}

// MatchEndpoint returns the tier a request belongs to, or nil when none matches.
// Exact and wildcard patterns win over prefixes: a "*" segment matches one non-empty
// path segment, and a pattern ending with "/" matches every path below it.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == healthCheck.Path && method == healthCheck.Method {
		hc := healthCheck
		return &hc
	}

	for i := range configs {
		if configs[i].Method == method && segmentsMatch(configs[i].Path, path) {
			return &configs[i]
		}
	}
	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}

func segmentsMatch(pattern, path string) bool {
	if pattern == path {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}
	want := strings.Split(pattern, "/")
	got := strings.Split(path, "/")
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		switch {
		case seg == "*" && got[i] == "":
			return false
		case seg != "*" && seg != got[i]:
			return false
		}
	}
	return true
}
