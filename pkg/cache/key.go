package cache

import "strings"

// DefaultKeyPrefix namespaces response keys in shared stores.
const DefaultKeyPrefix = "restext"

// StorageKey builds the backend key of a response key.
// Format: prefix:cache:key
//
// Example:
//
//	restext:default:5d41402abc4b2a76b9719d911017c592
func StorageKey(prefix, cacheName, key string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, cacheName, key} {
		if p = strings.Trim(p, ":"); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ":")
}
