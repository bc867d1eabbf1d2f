package cpsrt

import "container/list"

// majorGC is the tri-color mark-sweep collector. By the time it runs
// (always from the end of a minor GC pass), every value reachable from
// thnk is already heap-resident, so marking is purely heap-oriented: no
// second stack scan is needed.
func (h *Heap) majorGC(thnk *Thunk) {
	grey := list.New()

	enqueueGrey := func(o Object) {
		if o == nil {
			return
		}
		requireHeapResident(o)
		hdr := o.header()
		if hdr.mark == Black || hdr.mark == Grey {
			return
		}
		hdr.mark = Grey
		grey.PushBack(o)
	}

	markRoot := func(o Object) {
		if o == nil {
			return
		}
		requireHeapResident(o)
		o.header().mark = Black
		markChildrenGrey(o, enqueueGrey)
	}

	markRoot(thnk.Callee)
	switch thnk.Callee.Arity {
	case ArityOne:
		markRoot(thnk.Rand)
	case ArityTwo:
		markRoot(thnk.Rand)
		markRoot(thnk.Cont)
	}

	for {
		front := grey.Front()
		if front == nil {
			break
		}
		grey.Remove(front)
		o := front.Value.(Object)
		o.header().mark = Black
		markChildrenGrey(o, enqueueGrey)
	}

	freed := 0
	for i, o := range h.nodes {
		if o == nil {
			continue
		}
		switch o.header().mark {
		case White:
			// gc_free_noop in the original: every variant's free hook is
			// a no-op (Go's GC reclaims the backing memory itself), so
			// freeing here just means dropping the bookkeeper's
			// reference.
			h.nodes[i] = nil
			freed++
		case Grey:
			fatalf("majorGC", "object %s was grey at sweep time", debugTag(o))
		case Black:
			o.header().mark = White
		}
	}

	h.cycles++
	if Verbose {
		logger.Printf("freed %d objects", freed)
	}
	h.maintain()
}

// requireHeapResident enforces the GC invariant that nothing
// stack-resident should still be reachable once the minor pass has run
// (a stack-resident object must never survive a minor GC into the
// major phase).
func requireHeapResident(o Object) {
	if o.OnStack() {
		fatalf("majorGC", "object %s (tag %s) was on the stack during a major GC", debugTag(o), o.Tag())
	}
}

// markChildrenGrey marks one object's outgoing edges grey, dispatched by
// a type switch rather than a tag-indexed function table. Marking is
// driven entirely by the owning closure:
// an Env is colored black as a side effect of its closure being
// processed, and is never marked independently.
func markChildrenGrey(o Object, enqueue func(Object)) {
	switch v := o.(type) {
	case *Closure:
		entry := theEnvTable.entry(v.EnvID)
		v.Env.mark = Black
		for _, id := range entry.VarIDs {
			if val := v.Env.Slots[id]; val != nil {
				enqueue(val)
			}
		}
	case *Int, *String, *Void:
		// leaf values: marking is a no-op beyond the caller's color set.
	case *Env:
		fatalf("markChildrenGrey", "ENV marked independently of its owning closure")
	}
}
