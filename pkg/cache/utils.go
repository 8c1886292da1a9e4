package cache

import (
	"fmt"
	"strings"
)

// GenerateKey joins a prefix and an id into a namespaced cache key.
func GenerateKey(prefix string, id string) string {
	return prefix + ":" + id
}

// GenerateKeyWithParams joins prefix and every param with ":", so
// ("snapshot", sess, 7, "json") becomes "snapshot:<sess>:7:json".
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, prefix)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ":")
}
