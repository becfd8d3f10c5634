package cache

import (
	"strings"
)

// KeyPrefix namespaces every cache key in Redis.
const KeyPrefix = "tba:"

// Key generates the cache key of an API path.
// Format: tba:<path without surrounding slashes>
//
// Example:
//
//	tba:team/frc4099/simple
func Key(path string) string {
	return KeyPrefix + strings.Trim(path, "/")
}
