package cpsrt

import (
	"encoding/binary"
	"expvar"
	"hash"
	"hash/fnv"
	"strconv"
	"unsafe"
)

// Heap is the bookkeeper: a growable, ordered
// sequence of every heap-resident Object, so the collector knows what to
// sweep. Entries are nulled in place during a sweep; maintain rebuilds a
// dense slice, mirroring gc_heap_maintain.
type Heap struct {
	nodes  []Object
	cycles int
	stats  *expvar.Map
}

// NewHeap builds an empty bookkeeper with room for an initial batch of
// allocations, named for expvar publication the way expvar/expvar.go's
// own examples name their maps. Publishing the same name twice panics
// (expvar has no unpublish), which bites repeated test setup hardest, so
// a name already registered has its map reused and reset in place rather
// than re-published.
func NewHeap(name string) *Heap {
	var stats *expvar.Map
	if v := expvar.Get(name); v != nil {
		stats = v.(*expvar.Map)
		stats.Init()
	} else {
		stats = expvar.NewMap(name)
	}
	h := &Heap{nodes: make([]Object, 0, 256), stats: stats}
	h.publish()
	return h
}

// Alloc registers a freshly built heap value with the bookkeeper and
// marks it no longer stack-resident (mirroring gc_alloc's contract: any
// subsequent typed writes are the caller's responsibility, which in Go
// just means the caller passes in an already-populated Object).
func (h *Heap) Alloc(o Object) Object {
	o.header().onStack = false
	h.nodes = append(h.nodes, o)
	h.publish()
	return o
}

// Len reports the number of live-or-tombstoned bookkeeper slots.
func (h *Heap) Len() int { return len(h.nodes) }

// Live reports how many bookkeeper entries are non-nil right now.
func (h *Heap) Live() int {
	n := 0
	for _, o := range h.nodes {
		if o != nil {
			n++
		}
	}
	return n
}

// Cycles reports how many major GC cycles have run against this heap.
func (h *Heap) Cycles() int { return h.cycles }

// maintain rebuilds a dense node slice omitting null entries, called at
// the end of every major GC (mirroring gc_heap_maintain).
func (h *Heap) maintain() {
	dense := make([]Object, 0, len(h.nodes))
	for _, o := range h.nodes {
		if o != nil {
			dense = append(dense, o)
		}
	}
	h.nodes = dense
	h.publish()
}

func (h *Heap) publish() {
	h.stats.Set("live", expvarInt(int64(h.Live())))
	h.stats.Set("cycles", expvarInt(int64(h.cycles)))
}

type expvarInt int64

func (v expvarInt) String() string { return strconv.FormatInt(int64(v), 10) }

// debugTag returns a short, stable tag for o suitable for verbose GC log
// lines, so the same logical object can be followed through a log stream
// without printing raw pointers.
func debugTag(o Object) string {
	if o == nil {
		return "nil"
	}
	sum := fnv.New32a()
	// the pointer's own identity, not its contents, is what we want to
	// tag consistently across a collection.
	switch v := o.(type) {
	case *Closure:
		writePtrTag(sum, unsafe.Pointer(v))
	case *Env:
		writePtrTag(sum, unsafe.Pointer(v))
	case *Int:
		writePtrTag(sum, unsafe.Pointer(v))
	case *String:
		writePtrTag(sum, unsafe.Pointer(v))
	case *Void:
		return "void-singleton"
	}
	return o.Tag().String() + "-" + strconv.FormatUint(uint64(sum.Sum32()), 16)
}

func writePtrTag(h hash.Hash32, p unsafe.Pointer) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(uintptr(p)))
	_, _ = h.Write(buf[:])
}
