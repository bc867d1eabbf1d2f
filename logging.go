package cpsrt

import (
	"bufio"
	"log"
	"os"
)

// logWriter/logger is the package-wide diagnostic sink: fatal errors
// (fatal errors and the major GC's one-line "freed N objects" summary,
// supplementing the original's unconditional printf) go through it.
// Buffered so a 10^6-iteration countdown doesn't pay a syscall per GC
// cycle's summary line.
var logWriter = bufio.NewWriter(os.Stderr)
var logger = log.New(logWriter, "cpsrt: ", 0)

// outWriter carries the runtime's actual program output - just Halt's
// "Halt" today - separately from diagnostics, so a host capturing stdout
// sees exactly program output and nothing else.
var outWriter = bufio.NewWriter(os.Stdout)

// FlushLog flushes both buffered writers. Start calls this before
// returning so a caller embedding the runtime in a larger program never
// loses a trailing line.
func FlushLog() {
	_ = outWriter.Flush()
	_ = logWriter.Flush()
}

// Verbose toggles the major GC's one-line "freed N objects" summary.
// Off by default: a 10^6-iteration program performs a GC cycle per
// bounce, and the original's unconditional printf would otherwise spam
// stdout at that rate.
var Verbose = false
