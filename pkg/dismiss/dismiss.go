// Package dismiss closes popups, dropdowns and drawers when the user
// interacts with the page outside of them.
//
// A Document stands in for the page: the browser reports every pointer-down
// to it and it fans the event out to the registered listeners. A Guard owns
// one listener for one boundary; it is armed while its owner is open and
// disarmed when the owner closes or is torn down, so closed widgets never
// keep a listener around.
package dismiss

import (
	"slices"
	"sync"
)

// Pointer describes a pointer-down event.
type Pointer struct {
	// X and Y are the page coordinates of the event.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Targets lists the element ids from the hit element up to the root.
	Targets []string `json:"targets"`
}

// Boundary is the region a widget occupies on the page.
type Boundary interface {
	Contains(p Pointer) bool
}

// Rect is a geometric boundary in page coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the pointer lies within the rectangle, edges included.
func (r Rect) Contains(p Pointer) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Element is a boundary identified by an element id. A pointer is inside the
// element when the id appears among its targets.
type Element string

// Contains reports whether the element is the hit element or one of its ancestors.
func (e Element) Contains(p Pointer) bool {
	return slices.Contains(p.Targets, string(e))
}

// Document dispatches pointer events to registered listeners.
type Document struct {
	mu        sync.Mutex
	next      uint64
	listeners map[uint64]func(Pointer)
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{listeners: make(map[uint64]func(Pointer))}
}

// PointerDown delivers p to every listener registered at the time of the call.
// Listeners may register or deregister while being notified.
func (d *Document) PointerDown(p Pointer) {
	d.mu.Lock()
	ids := make([]uint64, 0, len(d.listeners))
	for id := range d.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Pointer), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, d.listeners[id])
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

// Listeners returns the number of registered listeners.
func (d *Document) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

func (d *Document) add(fn func(Pointer)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.next++
	id := d.next
	d.listeners[id] = fn

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.listeners, id)
	}
}

// Guard calls its dismiss callback for pointer events outside its boundary.
// It is not safe for concurrent use; callers serialize access the same way
// they serialize access to the widget owning it.
type Guard struct {
	doc      *Document
	boundary Boundary
	dismiss  func()
	remove   func()
}

// NewGuard returns a disarmed guard.
func NewGuard(doc *Document, b Boundary, dismiss func()) *Guard {
	return &Guard{doc: doc, boundary: b, dismiss: dismiss}
}

// Arm registers the guard with its document. Arming an armed guard is a no-op.
func (g *Guard) Arm() {
	if g.remove != nil {
		return
	}
	g.remove = g.doc.add(func(p Pointer) {
		if !g.boundary.Contains(p) {
			g.dismiss()
		}
	})
}

// Disarm deregisters the guard. Disarming a disarmed guard is a no-op.
func (g *Guard) Disarm() {
	if g.remove == nil {
		return
	}
	g.remove()
	g.remove = nil
}

// Armed reports whether the guard is registered.
func (g *Guard) Armed() bool {
	return g.remove != nil
}
