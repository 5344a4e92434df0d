// Package hash provides the 64-bit identifier used to index manifest entries
// and curves by name.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string. Block ids and curve names are
// hashed once and looked up by the resulting uint64.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
