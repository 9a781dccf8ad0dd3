// Package gen provides utility functions for generating values.
package gen

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const sep = "|"

// Key generates a key based on the provided strings a and b.
func Key(a, b string) string {
	return fmt.Sprintf("%s%s%s", a, sep, b)
}

// UUIDv5 generates a UUIDv5 based on the provided strings a and b.
func UUIDv5(a, b string) string {
	key := Key(a, b)

	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// StampedName generates a unique directory name from a prefix, the current
// time and a random suffix. Safe for concurrent requests writing under a
// shared downloads root.
func StampedName(prefix string) string {
	return fmt.Sprintf("%s_%s_%s", prefix, time.Now().Format("20060102-150405"), uuid.NewString()[:8])
}
