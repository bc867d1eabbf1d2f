package cpsrt

import "sync"

// defaultSafetyMargin absorbs the code executed between the headroom
// check and the actual unwind; 256 KiB is a conservative cushion, in
// bytes, subtracted from the stack limit before that is converted into a
// call-depth budget (see maxDepth below).
const defaultSafetyMargin = 256 * 1024

// estimatedBytesPerFrame calibrates the call-depth budget against the
// queried stack limit. Go does not expose a stable frame address the
// way __builtin_frame_address does in C (a goroutine's stack can be
// copied to a larger allocation by the runtime as it grows, which would
// invalidate any captured pointer), so headroom is tracked as a call
// counter instead of a pointer comparison. 512 bytes is a
// conservative estimate for a CodeOne/CodeTwo frame plus its CallOne/
// CallTwo caller frame on amd64/arm64.
const estimatedBytesPerFrame = 512

// Process-wide mutable state: all of it is process-wide and
// single-threaded by contract, so no locks are needed or provided.
// Encapsulated here rather than scattered package globals, even though
// the compiled-code ABI takes no extra context parameter.
var (
	theEnvTable EnvTable
	theHeap     *Heap

	stackOnce sync.Once
	maxDepth  int
	depth     int
)

// SetEnvTable installs the compiler-supplied environment layout table.
// Must be called before Start.
func SetEnvTable(t EnvTable) { theEnvTable = t }

// CurrentHeap returns the runtime's heap bookkeeper, for tests and host
// code that wants to observe live counts or GC cycle counts.
func CurrentHeap() *Heap { return theHeap }

// ResetForTest installs a fresh heap and env table and clears the
// cached stack-depth budget, so independent tests (and independent
// Start invocations within one process) don't observe each other's
// bookkeeper state. Not meant for use by compiled programs.
func ResetForTest(table EnvTable) {
	theEnvTable = table
	theHeap = NewHeap("cpsrt")
	stackOnce = sync.Once{}
	depth = 0
}

func initDepthBudget() {
	stackOnce.Do(func() {
		limit, err := queryStackLimit()
		if err != nil {
			logger.Printf("stack limit query failed, falling back to a conservative budget: %v", err)
			limit = 8 << 20
		}
		budget := int64(limit) - defaultSafetyMargin
		if budget < estimatedBytesPerFrame {
			budget = estimatedBytesPerFrame
		}
		maxDepth = int(budget / estimatedBytesPerFrame)
	})
}

// CallOne is the arity-ONE half of the call protocol.
func CallOne(callee Object, arg Object) Outcome {
	c := validateCallee(callee, ArityOne)

	if depth < maxDepth {
		depth++
		return c.One(arg, c.Env)
	}
	return bounce(&Thunk{Callee: c, Rand: arg})
}

// CallTwo is the arity-TWO half of the call protocol.
func CallTwo(callee Object, arg Object, cont Object) Outcome {
	c := validateCallee(callee, ArityTwo)

	if depth < maxDepth {
		depth++
		return c.Two(arg, cont, c.Env)
	}
	return bounce(&Thunk{Callee: c, Rand: arg, Cont: cont})
}

func validateCallee(callee Object, want Arity) *Closure {
	c, ok := callee.(*Closure)
	if !ok {
		fatalf("validateCallee", "called object was not a closure (tag %s)", callee.Tag())
	}
	if c.Arity != want {
		fatalf("validateCallee", "closure of arity %s called as arity %s", c.Arity, want)
	}
	return c
}

// bounce packages a deferred call into a thunk, hands it to the minor GC
// as the sole GC root (the minor GC drives the major GC), and returns an
// Outcome carrying that thunk instead of recursing further. The Go
// return statement here is what does the work of the original's
// longjmp: it unwinds every CodeOne/CodeTwo frame on the current call
// chain back to Start's loop.
func bounce(thnk *Thunk) Outcome {
	theHeap.minorGC(thnk)
	return Outcome{Next: thnk}
}

// Halt is the distinguished closure-compatible continuation compilers
// arrange to be the top-level continuation of a program. It is an
// ordinary arity-ONE closure over an empty environment, not a
// special-cased opcode. Halt and its environment are
// permanent process-wide values, so they are marked as already
// heap-resident at init time rather than paying to evacuate them on
// every program's first bounce.
var Halt = newHalt()

func newHalt() *Closure {
	c := NewClosureOne(NoCapturedVars, haltCode, NewEnv(0))
	c.onStack = false
	c.Env.onStack = false
	return c
}

func haltCode(_ Object, _ *Env) Outcome {
	_, _ = outWriter.WriteString("Halt")
	return Outcome{Done: true}
}

// Start is the trampoline entry point. It records the
// call-depth budget, installs the initial thunk, then repeatedly
// destructures the current thunk and invokes its callee until an
// Outcome reports Done.
func Start(initial *Thunk) {
	initDepthBudget()
	if theHeap == nil {
		theHeap = NewHeap("cpsrt")
	}

	current := initial
	for {
		depth = 0

		callee := current.Callee
		rand := current.Rand
		cont := current.Cont
		env := callee.Env
		current = nil // the thunk's storage is not reused, matching free(current_thunk)

		var out Outcome
		switch callee.Arity {
		case ArityOne:
			out = callee.One(rand, env)
		case ArityTwo:
			out = callee.Two(rand, cont, env)
		default:
			fatalf("Start", "closure has unknown arity %v", callee.Arity)
		}

		if out.Done {
			FlushLog()
			return
		}
		if out.Next == nil {
			fatalf("Start", "control flow returned from trampoline function without a next thunk")
		}
		current = out.Next
	}
}
