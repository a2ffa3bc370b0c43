// Package tenancy extracts a tenant identifier from an inbound request and
// threads the resolved tenant through the request context.
package tenancy

import "strings"

// Reserved subdomain labels that never name a tenant.
const (
	labelWWW = "www"
	labelAPI = "api"
)

// ResolveIdentifier derives a candidate tenant identifier from a request's
// host and path. It is pure string extraction: no lookup happens here.
//
// A dotted host wins: the label before the first dot is the candidate,
// unless it is a reserved label (www, api). Otherwise a path of the form
// /tenant/<identifier>/... yields the second segment. A false return means
// the request is platform-level.
func ResolveIdentifier(host, path string) (string, bool) {
	if i := strings.IndexByte(host, '.'); i >= 0 {
		sub := host[:i]
		if sub == labelWWW || sub == labelAPI || sub == "" {
			return "", false
		}
		return strings.ToLower(sub), true
	}

	if strings.HasPrefix(path, "/tenant/") {
		segments := splitPath(path)
		if len(segments) > 1 {
			return strings.ToLower(segments[1]), true
		}
	}

	return "", false
}

// splitPath splits a URL path into its non-empty segments.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
