package value

import "hash/fnv"

// HashBytes computes the 32-bit FNV-1a hash every ObjString caches,
// using the standard library's FNV-1a implementation.
func HashBytes(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b) //nolint:errcheck // hash.Hash.Write never errors
	return h.Sum32()
}
