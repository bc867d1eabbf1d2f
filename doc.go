// Package cpsrt is the runtime core for a compiler that emits
// continuation-passing-style Scheme programs: every compiled function tail
// calls the next closure in the program and never returns.
//
// The package provides three tightly coupled pieces: a trampoline
// (Start, CallOne, CallTwo) that bounds the native call stack by bouncing
// deep tail-call chains through a re-entry loop, a two-level collector
// (the minor stack-evacuation pass and the major tri-color mark-sweep)
// that manages every Value the compiled program touches, and the Value,
// Env and Closure types compiled code is built from.
//
// Parsing, CPS conversion, closure conversion and code generation are not
// part of this package: callers are expected to hand it already-built
// Closure/Env graphs and an EnvTable, the way a compiler backend would.
package cpsrt
