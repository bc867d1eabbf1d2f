//go:build unix

package cpsrt

import "golang.org/x/sys/unix"

// queryStackLimit reads the soft stack-size resource limit, the same
// value a C runtime would cache from getrlimit(RLIMIT_STACK, &limit).
func queryStackLimit() (uint64, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_STACK, &lim); err != nil {
		return 0, wrapf("queryStackLimit: getrlimit", err)
	}
	return uint64(lim.Cur), nil
}
