// Command cpsrtdemo plays the role of a "compiled program": parsing, CPS
// conversion, closure conversion and code generation are out of scope
// for the cpsrt runtime core, so this command hand-builds the
// Closure/Env graphs a real compiler backend would emit and hands them
// to cpsrt.Start, exercising a handful of end-to-end scenarios.
package main

import (
	"flag"
	"fmt"
	"os"

	"cpsrt"
)

func main() {
	scenario := flag.String("scenario", "countdown", "one of: halt, identity, countdown")
	n := flag.Int64("n", 1_000_000, "countdown starting value (countdown scenario only)")
	verbose := flag.Bool("verbose", false, "log each major GC cycle's summary")
	flag.Parse()

	cpsrt.Verbose = *verbose
	cpsrt.SetEnvTable(envTable)

	var initial *cpsrt.Thunk
	switch *scenario {
	case "halt":
		initial = &cpsrt.Thunk{Callee: cpsrt.Halt, Rand: cpsrt.TheVoid()}
	case "identity":
		initial = &cpsrt.Thunk{Callee: identity, Rand: cpsrt.NewInt(42), Cont: cpsrt.Halt}
	case "countdown":
		initial = &cpsrt.Thunk{Callee: countDown, Rand: cpsrt.NewInt(*n), Cont: cpsrt.Halt}
	default:
		fmt.Fprintf(os.Stderr, "unknown scenario %q\n", *scenario)
		os.Exit(2)
	}

	cpsrt.Start(initial)
	os.Exit(0)
}

// envTable is the static layout table a compiler would emit. None of
// this demo's closures capture free variables, so it is empty; it exists
// to show the ABI contract, not to exercise captured slots.
var envTable = cpsrt.EnvTable{}

// identity is lambda x. halt x: an arity-TWO closure that immediately
// invokes its continuation with its argument.
var identity = cpsrt.NewClosureTwo(cpsrt.NoCapturedVars, identityCode, cpsrt.NewEnv(0))

func identityCode(arg, cont cpsrt.Object, env *cpsrt.Env) cpsrt.Outcome {
	return cpsrt.CallOne(cont, arg)
}

// countDown is lambda (n, k). if n = 0 then k(void) else countDown(n-1, k):
// a self-tail-calling arity-TWO closure used to exercise the trampoline
// at depth.
// It is assigned in init because countDownCode refers back to countDown.
var countDown *cpsrt.Closure

func init() {
	countDown = cpsrt.NewClosureTwo(cpsrt.NoCapturedVars, countDownCode, cpsrt.NewEnv(0))
}

func countDownCode(arg, cont cpsrt.Object, env *cpsrt.Env) cpsrt.Outcome {
	n, ok := arg.(*cpsrt.Int)
	if !ok {
		panic("countDown called with a non-Int argument")
	}
	if n.N <= 0 {
		return cpsrt.CallOne(cont, cpsrt.TheVoid())
	}
	return cpsrt.CallTwo(countDown, cpsrt.NewInt(n.N-1), cont)
}
