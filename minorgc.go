package cpsrt

import "container/list"

// evacContext is the scratch state threaded through one minor GC pass: a
// pointer-update queue and an evacuated map so shared structure is
// preserved and cycles terminate. The queue is a container/list.List
// used as a plain FIFO, the same structure the major collector's grey
// queue uses; the evacuated map is a plain Go map.
type evacContext struct {
	queue *list.List
	seen  map[Object]Object
}

// ptrUpdate is "this slot currently holds old; once old is evacuated,
// overwrite the slot with the new address".
type ptrUpdate struct {
	slot *Object
	old  Object
}

func newEvacContext() *evacContext {
	return &evacContext{queue: list.New(), seen: make(map[Object]Object)}
}

func (ctx *evacContext) enqueue(slot *Object, old Object) {
	ctx.queue.PushBack(ptrUpdate{slot: slot, old: old})
}

func (ctx *evacContext) dequeue() (ptrUpdate, bool) {
	front := ctx.queue.Front()
	if front == nil {
		return ptrUpdate{}, false
	}
	ctx.queue.Remove(front)
	return front.Value.(ptrUpdate), true
}

// minorGC evacuates every reachable stack-resident value reachable from
// a thunk onto the heap and rewrites every pointer to match, then hands
// off to the major GC. The thunk and everything stack-resident reachable
// from it are unreachable once this returns.
func (h *Heap) minorGC(thnk *Thunk) {
	ctx := newEvacContext()

	thnk.Callee = h.toHeap(ctx, thnk.Callee).(*Closure)

	if thnk.Rand != nil {
		thnk.Rand = h.toHeap(ctx, thnk.Rand)
	}
	if thnk.Callee.Arity == ArityTwo && thnk.Cont != nil {
		thnk.Cont = h.toHeap(ctx, thnk.Cont)
	}

	for {
		upd, ok := ctx.dequeue()
		if !ok {
			break
		}
		if already, ok := ctx.seen[upd.old]; ok {
			*upd.slot = already
			continue
		}
		*upd.slot = h.toHeap(ctx, upd.old)
	}

	h.majorGC(thnk)
}

// toHeap evacuates a single object, consulting and updating the
// evacuated map so a DAG with diamond sharing stays a DAG and a cycle
// terminates after its first visit.
func (h *Heap) toHeap(ctx *evacContext, o Object) Object {
	if o == nil {
		return nil
	}
	if already, ok := ctx.seen[o]; ok {
		return already
	}

	var newObj Object
	switch v := o.(type) {
	case *Closure:
		newObj = h.evacClosure(ctx, v)
	case *Int:
		newObj = h.evacInt(v)
	case *String:
		newObj = h.evacString(v)
	case *Void:
		// VOID values are never copied: always the global singleton.
		ctx.seen[o] = TheVoid()
		return TheVoid()
	case *Env:
		fatalf("toHeap", "ENV evacuated independently of its owning closure")
		return nil
	default:
		fatalf("toHeap", "unknown object variant %T", o)
		return nil
	}

	ctx.seen[o] = newObj
	return newObj
}

// evacClosure copies the closure record to the heap if it is still
// stack-resident, then evacuates its environment's whole slot array and
// enqueues every identifier slot the layout table says this closure
// reads.
func (h *Heap) evacClosure(ctx *evacContext, c *Closure) *Closure {
	dst := c
	if c.OnStack() {
		cp := *c
		dst = &cp
		h.Alloc(dst)
	}

	oldEnv := dst.Env
	if oldEnv.OnStack() {
		// Two sibling closures can point at the very same Env record.
		// Consulting the evacuated map here, keyed by the
		// pre-evacuation Env pointer, ensures both end up pointing at one
		// heap copy instead of each independently cloning it.
		var heapEnv *Env
		if existing, ok := ctx.seen[oldEnv]; ok {
			heapEnv = existing.(*Env)
		} else {
			heapEnv = NewEnv(len(oldEnv.Slots))
			copy(heapEnv.Slots, oldEnv.Slots)
			h.Alloc(heapEnv)
			ctx.seen[oldEnv] = heapEnv
		}
		dst.Env = heapEnv

		entry := theEnvTable.entry(dst.EnvID)
		for _, id := range entry.VarIDs {
			val := heapEnv.Slots[id]
			if val == nil || !val.OnStack() {
				continue
			}
			slot := &heapEnv.Slots[id]
			ctx.enqueue(slot, val)
		}
	}

	return dst
}

func (h *Heap) evacInt(i *Int) *Int {
	if !i.OnStack() {
		return i
	}
	cp := *i
	h.Alloc(&cp)
	return &cp
}

func (h *Heap) evacString(s *String) *String {
	if !s.OnStack() {
		return s
	}
	cp := *s
	h.Alloc(&cp)
	return &cp
}
