package primitives

// PID identifies a process. Uniqueness is only enforced per page table.
type PID uint16

// Offset represents a byte offset within a page window.
type Offset uint32

// PageID numbers a page carved from RAM. Carved pages start at 1.
type PageID uint32

// Address is an absolute byte index into RAM.
type Address uint32

// Sentinel values for invalid/unset identifiers
const (
	// InvalidPageID marks a page that was never assigned an ID.
	InvalidPageID PageID = 0
)

// Absolute resolves an offset inside a window that starts at base.
func (o Offset) Absolute(base Address) Address {
	return base + Address(o)
}
