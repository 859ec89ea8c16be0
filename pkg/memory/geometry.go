package memory

import (
	memerr "memsim/pkg/error"
	"memsim/pkg/process"
)

// Geometry describes how RAM is cut into pages.
//
// A page is PageDim×PageDim bytes so that its dump is a square grid with
// PageDim bytes per row. Every page holds PageSize()/process.Size processes.
type Geometry struct {
	PageDim   int `json:"page_dim"`
	PageCount int `json:"page_count"`
}

// DefaultGeometry is 2 pages of 16×16 bytes: 512 bytes of RAM, 8 processes per page.
var DefaultGeometry = Geometry{PageDim: 16, PageCount: 2}

// PageSize is the byte width of one page window.
func (g Geometry) PageSize() int { return g.PageDim * g.PageDim }

// RAMSize is the total number of bytes owned by RAM.
func (g Geometry) RAMSize() int { return g.PageSize() * g.PageCount }

// ProcessSize is the payload size of one process slot.
func (g Geometry) ProcessSize() int { return process.Size }

// Capacity is the number of processes one page can hold.
func (g Geometry) Capacity() int { return g.PageSize() / process.Size }

// Validate checks that pages can be carved and hold whole processes.
func (g Geometry) Validate() error {
	switch {
	case g.PageDim <= 0:
		return memerr.Newf(memerr.ErrInvalidGeometry, "Validate", "Geometry", "page_dim must be positive, got %d", g.PageDim)
	case g.PageCount <= 0:
		return memerr.Newf(memerr.ErrInvalidGeometry, "Validate", "Geometry", "page_count must be positive, got %d", g.PageCount)
	case g.PageSize() < process.Size:
		return memerr.Newf(memerr.ErrInvalidGeometry, "Validate", "Geometry",
			"page of %d bytes cannot hold a %d-byte process", g.PageSize(), process.Size)
	case g.PageSize()%process.Size != 0:
		return memerr.Newf(memerr.ErrInvalidGeometry, "Validate", "Geometry",
			"page size %d is not a multiple of process size %d", g.PageSize(), process.Size)
	}
	return nil
}
