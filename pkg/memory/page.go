package memory

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	memerr "memsim/pkg/error"
	"memsim/pkg/logging"
	"memsim/pkg/primitives"
	"memsim/pkg/process"
)

// Page is a window of PageSize bytes inside RAM that hosts processes.
//
// Slots are handed out by a bump allocator: the next load always lands at
// Occupancy()*process.Size. Unloading does not compact the table, so after
// freeing a slot that is not the last one the next load reuses an offset that
// may still be mapped to another pid. Both pids then point at the same bytes
// and the later load has overwritten the earlier payload. Nothing detects
// this; see TestPage_BumpCollision.
//
// Pages are not safe for concurrent use. Constructing two pages over
// overlapping windows is a caller error that is not checked.
type Page struct {
	id     primitives.PageID
	ram    *RAM
	start  primitives.Address
	loaded int
	table  map[primitives.PID]primitives.Offset
}

// NewPage carves the window [windowStart, windowStart+PageSize) out of ram.
// It fails with OUT_OF_BOUNDS when the window does not fit.
func NewPage(ram *RAM, id primitives.PageID, windowStart int) (*Page, error) {
	pageSize := ram.Geometry().PageSize()
	if windowStart < 0 || windowStart+pageSize > ram.Size() {
		return nil, memerr.Newf(memerr.ErrOutOfBounds, "NewPage", "Page",
			"window [%d, %d) outside ram of %d bytes", windowStart, windowStart+pageSize, ram.Size()).
			WithHint("window_start + page_size must not exceed ram size")
	}

	return &Page{
		id:    id,
		ram:   ram,
		start: primitives.Address(windowStart),
		table: make(map[primitives.PID]primitives.Offset),
	}, nil
}

// CarvePages builds one page per geometry page, back to back, with IDs
// starting at 1.
func CarvePages(ram *RAM) ([]*Page, error) {
	g := ram.Geometry()
	pages := make([]*Page, 0, g.PageCount)
	for i := 0; i < g.PageCount; i++ {
		p, err := NewPage(ram, primitives.PageID(i+1), i*g.PageSize())
		if err != nil {
			return nil, err
		}
		logging.WithPage(p.id).Debug("page carved", "start", p.start, "size", g.PageSize())
		pages = append(pages, p)
	}
	return pages, nil
}

// ID returns the page number.
func (p *Page) ID() primitives.PageID { return p.id }

// Start returns the RAM index of the first byte of the window.
func (p *Page) Start() primitives.Address { return p.start }

// Size returns the width of the window in bytes.
func (p *Page) Size() int { return p.ram.Geometry().PageSize() }

// Capacity returns how many processes fit in the page.
func (p *Page) Capacity() int { return p.ram.Geometry().Capacity() }

// Occupancy returns the number of loaded processes.
func (p *Page) Occupancy() int { return p.loaded }

// IsFull reports whether a Load would fail with PAGE_FULL.
func (p *Page) IsFull() bool { return p.loaded >= p.Capacity() }

// Load copies the instructions of proc into the next bump slot and maps its pid.
//
// Errors (nothing is written in any of these cases):
//   - PAGE_FULL when Occupancy() == Capacity()
//   - DUPLICATE_PID when proc.PID is already mapped in this page
//   - CONCURRENT_ACCESS_CONFLICT when the slot bytes are borrowed elsewhere
func (p *Page) Load(proc *process.Process) error {
	log := logging.WithPagePID(p.id, proc.PID)

	if p.IsFull() {
		log.Warn("load rejected", "reason", memerr.CodePageFull, "loaded", p.loaded)
		return memerr.Newf(memerr.ErrPageFull, "Load", "Page",
			"page %d holds %d/%d processes", p.id, p.loaded, p.Capacity()).
			WithHint("load into another page")
	}

	if _, exists := p.table[proc.PID]; exists {
		log.Warn("load rejected", "reason", memerr.CodeDuplicatePID)
		return memerr.Newf(memerr.ErrDuplicatePID, "Load", "Page",
			"pid %d is already loaded in page %d", proc.PID, p.id)
	}

	offset := primitives.Offset(p.loaded * process.Size)
	span, err := p.borrowSlot(offset, "Load")
	if err != nil {
		log.Warn("load rejected", "reason", memerr.CodeConcurrentAccess, "offset", offset)
		return err
	}
	copy(span.Bytes(), proc.Instructions[:])
	span.Release()

	p.table[proc.PID] = offset
	p.loaded++

	log.Debug("process loaded", "offset", offset, "loaded", p.loaded)
	return nil
}

// Unload rebuilds the process mapped to pid from the bytes at its offset,
// zeroes those bytes and drops the mapping. The returned process is a new
// value equal by content to what the slot holds, not the value passed to Load.
//
// Errors (state is unchanged in both cases):
//   - UNKNOWN_PID when pid is not mapped
//   - CONCURRENT_ACCESS_CONFLICT when the slot bytes are borrowed elsewhere
func (p *Page) Unload(pid primitives.PID) (*process.Process, error) {
	log := logging.WithPagePID(p.id, pid)

	offset, exists := p.table[pid]
	if !exists {
		log.Warn("unload rejected", "reason", memerr.CodeUnknownPID)
		return nil, memerr.Newf(memerr.ErrUnknownPID, "Unload", "Page",
			"pid %d is not loaded in page %d", pid, p.id)
	}

	span, err := p.borrowSlot(offset, "Unload")
	if err != nil {
		log.Warn("unload rejected", "reason", memerr.CodeConcurrentAccess, "offset", offset)
		return nil, err
	}
	defer span.Release()

	proc, err := process.FromBytes(pid, span.Bytes())
	if err != nil {
		return nil, memerr.Wrap(err, memerr.CodeInvalidProcess, "Unload", "Page")
	}
	clear(span.Bytes())

	delete(p.table, pid)
	p.loaded--

	log.Debug("process unloaded", "offset", offset, "loaded", p.loaded)
	return proc, nil
}

func (p *Page) borrowSlot(offset primitives.Offset, op string) (*Span, error) {
	span, err := p.ram.Borrow(int(offset.Absolute(p.start)), process.Size)
	if err != nil {
		wrapped := memerr.Newf(memerr.ErrConcurrentAccess, op, "Page",
			"slot at offset %d of page %d", offset, p.id)
		if memerr.CodeOf(err) != memerr.CodeConcurrentAccess {
			wrapped = memerr.Newf(memerr.ErrOutOfBounds, op, "Page",
				"slot at offset %d of page %d", offset, p.id)
		}
		wrapped.Cause = err
		return nil, wrapped
	}
	return span, nil
}

// Offset returns the offset recorded for pid.
func (p *Page) Offset(pid primitives.PID) (primitives.Offset, bool) {
	off, ok := p.table[pid]
	return off, ok
}

// Table returns a copy of the pid → offset mapping.
func (p *Page) Table() map[primitives.PID]primitives.Offset {
	return maps.Clone(p.table)
}

// PIDs returns the loaded pids ordered by offset, then by pid.
func (p *Page) PIDs() []primitives.PID {
	pids := slices.Collect(maps.Keys(p.table))
	slices.SortFunc(pids, func(a, b primitives.PID) int {
		if p.table[a] != p.table[b] {
			return int(p.table[a]) - int(p.table[b])
		}
		return int(a) - int(b)
	})
	return pids
}

// Snapshot copies the bytes of the whole window.
func (p *Page) Snapshot() ([]byte, error) {
	return p.ram.Snapshot(int(p.start), p.Size())
}

// Dump writes the window as a hex grid, PageDim bytes per row, each byte as
// two uppercase hex digits.
func (p *Page) Dump(w io.Writer) error {
	data, err := p.Snapshot()
	if err != nil {
		return err
	}

	for _, row := range HexRows(data, p.ram.Geometry().PageDim) {
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) String() string {
	var b strings.Builder
	if err := p.Dump(&b); err != nil {
		return fmt.Sprintf("page %d: %v", p.id, err)
	}
	return b.String()
}

// HexRows formats data as rows of dim bytes, "%02X" separated by spaces.
func HexRows(data []byte, dim int) []string {
	if dim <= 0 {
		dim = len(data)
	}

	rows := make([]string, 0, (len(data)+dim-1)/max(dim, 1))
	for start := 0; start < len(data); start += dim {
		end := min(start+dim, len(data))
		cells := make([]string, 0, end-start)
		for _, b := range data[start:end] {
			cells = append(cells, fmt.Sprintf("%02X", b))
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return rows
}

// TotalOccupancy sums the loaded processes across pages.
func TotalOccupancy(pages []*Page) int {
	total := 0
	for _, p := range pages {
		total += p.Occupancy()
	}
	return total
}

// LoadFirstFit loads proc into the first page that accepts it, treating
// PAGE_FULL as a cue to try the next page. Any other error stops the search.
// When every page is full the last PAGE_FULL error is returned.
func LoadFirstFit(pages []*Page, proc *process.Process) (*Page, error) {
	var lastErr error = memerr.Newf(memerr.ErrPageFull, "LoadFirstFit", "Page", "no pages to load into")
	for _, p := range pages {
		err := p.Load(proc)
		if err == nil {
			return p, nil
		}
		if memerr.CodeOf(err) != memerr.CodePageFull {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
