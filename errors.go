package cpsrt

import (
	"errors"
	"fmt"
	"os"
)

// errInvalidUTF8 is returned by NewStringUTF8 for malformed input; it is
// a recoverable host-level error, unlike the fatal categories below.
var errInvalidUTF8 = errors.New("cpsrt: payload is not valid UTF-8")

// fatalf reports one of the runtime's fatal error categories (type error,
// environment error, GC invariant violation, allocator failure,
// impossible control flow) and aborts the process. None of these are
// recoverable from compiled code's perspective, matching the original's
// RUNTIME_ERROR macro: print "func: message" to stderr, exit 1.
func fatalf(fn, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Printf("%s: %s", fn, msg)
	FlushLog()
	os.Exit(1)
}

// wrapf wraps a recoverable host-level error (e.g. a failed Getrlimit
// syscall) with call-site context, following the errors.Is/errors.As
// wrapping convention of stdlib errors.
func wrapf(format string, err error) error {
	return fmt.Errorf(format+": %w", err)
}
