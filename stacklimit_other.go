//go:build !unix

package cpsrt

// queryStackLimit falls back to Go's own default goroutine stack ceiling
// on platforms golang.org/x/sys/unix doesn't cover; where the concept
// of an OS stack resource limit doesn't exist we use the runtime's own
// default maximum, 1 GiB).
func queryStackLimit() (uint64, error) {
	const defaultMaxStack = 1 << 30
	return defaultMaxStack, nil
}
