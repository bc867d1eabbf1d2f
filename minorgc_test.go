package cpsrt

import "testing"

func noopCodeOne(_ Object, _ *Env) Outcome { return Outcome{Done: true} }

func TestMinorGCPreservesSharedEnv(t *testing.T) {
	ResetForTest(EnvTable{
		{EnvID: 0, VarIDs: []IdentID{0}},
	})

	shared := NewEnv(1)
	str := NewStringBytes([]byte("abc"))
	shared.Slots[0] = str

	a := NewClosureOne(0, noopCodeOne, shared)
	b := NewClosureOne(0, noopCodeOne, shared)

	thnk := &Thunk{Callee: a, Rand: b}
	theHeap.minorGC(thnk)

	bb, ok := thnk.Rand.(*Closure)
	if !ok {
		t.Fatalf("Rand is %T, want *Closure", thnk.Rand)
	}
	if thnk.Callee.Env != bb.Env {
		t.Fatal("two closures sharing an Env before GC must share the same Env after GC")
	}
	if thnk.Callee.Env.OnStack() {
		t.Fatal("evacuated Env must not be stack-resident")
	}
	if thnk.Callee.Env.Slots[0] != bb.Env.Slots[0] {
		t.Fatal("shared string slot must remain the same heap object after evacuation")
	}
}

func TestMinorGCTerminatesOnCycle(t *testing.T) {
	ResetForTest(EnvTable{
		{EnvID: 0, VarIDs: []IdentID{0}},
	})

	env := NewEnv(1)
	self := NewClosureOne(0, noopCodeOne, env)
	env.Slots[0] = self

	thnk := &Thunk{Callee: self, Rand: NewVoid()}
	theHeap.minorGC(thnk)

	if thnk.Callee.Env.Slots[0] != Object(thnk.Callee) {
		t.Fatal("self-referencing closure should still reference itself after evacuation")
	}
	if thnk.Callee.OnStack() {
		t.Fatal("evacuated closure must not be stack-resident")
	}
}

func TestMinorGCVoidDedup(t *testing.T) {
	ResetForTest(EnvTable{})

	voids := make([]*Void, 1000)
	for i := range voids {
		voids[i] = NewVoid()
	}

	env := NewEnv(len(voids))
	for i, v := range voids {
		env.Slots[i] = v
	}
	table := make(EnvTable, 0, 1)
	ids := make([]IdentID, len(voids))
	for i := range ids {
		ids[i] = IdentID(i)
	}
	table = append(table, EnvTableEntry{EnvID: 0, VarIDs: ids})
	ResetForTest(table)

	c := NewClosureOne(0, noopCodeOne, env)
	thnk := &Thunk{Callee: c, Rand: NewVoid()}
	theHeap.minorGC(thnk)

	for i, slot := range thnk.Callee.Env.Slots {
		if slot != Object(TheVoid()) {
			t.Fatalf("slot %d = %v, want the void singleton", i, slot)
		}
	}
}

func TestMinorGCRootCoverage(t *testing.T) {
	ResetForTest(EnvTable{
		{EnvID: 0, VarIDs: []IdentID{0, 1}},
	})

	env := NewEnv(3) // slot 2 intentionally outside the layout table
	env.Slots[0] = NewInt(1)
	env.Slots[1] = NewInt(2)
	env.Slots[2] = NewInt(3)

	c := NewClosureOne(0, noopCodeOne, env)
	thnk := &Thunk{Callee: c, Rand: NewVoid()}
	theHeap.minorGC(thnk)

	for _, id := range []IdentID{0, 1} {
		val := thnk.Callee.Env.Slots[id]
		if val == nil {
			t.Fatalf("slot %d should still be bound after GC", id)
		}
		if val.OnStack() {
			t.Fatalf("slot %d should point to the heap after GC", id)
		}
	}
}
