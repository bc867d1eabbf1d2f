package cpsrt

import "testing"

func TestMajorGCFreesUnreachable(t *testing.T) {
	ResetForTest(EnvTable{{EnvID: 0, VarIDs: nil}})

	env := NewEnv(0)
	c := NewClosureOne(0, noopCodeOne, env)
	theHeap.Alloc(c)
	theHeap.Alloc(env)

	garbage := NewInt(99)
	theHeap.Alloc(garbage)

	thnk := &Thunk{Callee: c, Rand: TheVoid()}
	theHeap.majorGC(thnk)

	if got, want := theHeap.Live(), 2; got != want {
		t.Fatalf("Live() = %d, want %d", got, want)
	}
	for _, o := range theHeap.nodes {
		if o == Object(garbage) {
			t.Fatal("unreachable int should have been freed by the major GC")
		}
	}
}

func TestMajorGCResetsMarksToWhite(t *testing.T) {
	ResetForTest(EnvTable{{EnvID: 0, VarIDs: nil}})

	env := NewEnv(0)
	c := NewClosureOne(0, noopCodeOne, env)
	theHeap.Alloc(c)
	theHeap.Alloc(env)

	thnk := &Thunk{Callee: c, Rand: TheVoid()}
	theHeap.majorGC(thnk)

	for _, o := range theHeap.nodes {
		if o != nil && MarkOf(o) != White {
			t.Fatalf("surviving object left at mark %v, want White", MarkOf(o))
		}
	}
}

func TestMajorGCIdempotent(t *testing.T) {
	ResetForTest(EnvTable{{EnvID: 0, VarIDs: []IdentID{0}}})

	env := NewEnv(1)
	env.Slots[0] = NewInt(1)
	theHeap.Alloc(env.Slots[0])
	c := NewClosureOne(0, noopCodeOne, env)
	theHeap.Alloc(c)
	theHeap.Alloc(env)

	thnk := &Thunk{Callee: c, Rand: TheVoid()}

	theHeap.majorGC(thnk)
	firstLive := theHeap.Live()

	theHeap.majorGC(thnk)
	if theHeap.Live() != firstLive {
		t.Fatalf("second back-to-back major GC changed Live() from %d to %d", firstLive, theHeap.Live())
	}
}
