// Package memory implements the paged RAM model.
//
// RAM owns a single zero-initialised byte store. Pages are index-based views
// into it: a page keeps a pointer to its RAM and the start of its window and
// never copies the bytes. Every read or write of the store goes through
// RAM.Borrow, which hands out exclusive spans and refuses overlapping ones
// with a CONCURRENT_ACCESS_CONFLICT error instead of letting two views
// scribble over the same bytes.
package memory

import (
	"fmt"
	"sync"

	memerr "memsim/pkg/error"
	"memsim/pkg/logging"
)

// RAM is the model of physical memory. Its length never changes.
type RAM struct {
	geometry Geometry
	bytes    []byte

	mutex   sync.Mutex       // guards borrows and nextID
	borrows map[uint64]*Span // live exclusive borrows
	nextID  uint64
}

// NewRAM allocates RAMSize zero bytes for the given geometry.
func NewRAM(g Geometry) (*RAM, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	ram := &RAM{
		geometry: g,
		bytes:    make([]byte, g.RAMSize()),
		borrows:  make(map[uint64]*Span),
	}
	logging.WithComponent("ram").Debug("ram created", "size", ram.Size(), "pages", g.PageCount, "page_size", g.PageSize())
	return ram, nil
}

// NewDefaultRAM is NewRAM(DefaultGeometry). It cannot fail.
func NewDefaultRAM() *RAM {
	ram, err := NewRAM(DefaultGeometry)
	if err != nil {
		panic(fmt.Sprintf("default geometry rejected: %v", err))
	}
	return ram
}

// Size returns the number of bytes owned by RAM.
func (r *RAM) Size() int {
	return len(r.bytes)
}

// Geometry returns the layout RAM was created with.
func (r *RAM) Geometry() Geometry {
	return r.geometry
}

// Usage returns the fraction of non-zero bytes, by full scan.
//
// This is a coarse signal rather than an allocation count: instruction bytes
// that happen to be zero are not counted, and only the zeroing done by an
// unload brings the figure down.
func (r *RAM) Usage() float64 {
	if len(r.bytes) == 0 {
		return 0
	}

	used := 0
	for _, b := range r.bytes {
		if b != 0 {
			used++
		}
	}
	return float64(used) / float64(len(r.bytes))
}

// Span is an exclusive borrow of a byte range of RAM.
// The slice returned by Bytes is only valid until Release.
type Span struct {
	ram      *RAM
	id       uint64
	start    int
	length   int
	released bool
}

// Borrow takes an exclusive hold on [start, start+length).
//
// It fails with OUT_OF_BOUNDS when the range leaves RAM and with
// CONCURRENT_ACCESS_CONFLICT when the range overlaps a span that has not been
// released yet. Callers must Release the span when they are done.
func (r *RAM) Borrow(start, length int) (*Span, error) {
	if start < 0 || length < 0 || start+length > len(r.bytes) {
		return nil, memerr.Newf(memerr.ErrOutOfBounds, "Borrow", "RAM",
			"range [%d, %d) outside ram of %d bytes", start, start+length, len(r.bytes))
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, held := range r.borrows {
		if start < held.start+held.length && held.start < start+length {
			return nil, memerr.Newf(memerr.ErrConcurrentAccess, "Borrow", "RAM",
				"range [%d, %d) overlaps borrowed range [%d, %d)",
				start, start+length, held.start, held.start+held.length)
		}
	}

	r.nextID++
	span := &Span{ram: r, id: r.nextID, start: start, length: length}
	r.borrows[span.id] = span
	return span, nil
}

// Borrowed reports how many spans are currently live.
func (r *RAM) Borrowed() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.borrows)
}

// Snapshot copies [start, start+length) through a short-lived borrow.
func (r *RAM) Snapshot(start, length int) ([]byte, error) {
	span, err := r.Borrow(start, length)
	if err != nil {
		return nil, err
	}
	defer span.Release()

	out := make([]byte, length)
	copy(out, span.Bytes())
	return out, nil
}

// Bytes exposes the borrowed range for reading and writing.
func (s *Span) Bytes() []byte {
	if s.released {
		return nil
	}
	return s.ram.bytes[s.start : s.start+s.length]
}

// Start is the absolute RAM index of the first borrowed byte.
func (s *Span) Start() int { return s.start }

// Len is the number of borrowed bytes.
func (s *Span) Len() int { return s.length }

// Release ends the borrow. Releasing twice is a no-op.
func (s *Span) Release() {
	if s.released {
		return
	}
	s.ram.mutex.Lock()
	delete(s.ram.borrows, s.id)
	s.ram.mutex.Unlock()
	s.released = true
}
