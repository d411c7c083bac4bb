package storage

import "strings"

// ResolveURL turns a stored image reference into something a browser can
// load. Absolute URLs (cloud storage) pass through; root-relative paths
// (local uploads) are served from the API origin without its /api suffix.
func ResolveURL(apiURL, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	origin := strings.TrimSuffix(strings.TrimRight(apiURL, "/"), "/api")
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return origin + ref
}
