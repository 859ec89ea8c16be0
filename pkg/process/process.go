// Package process models the fixed-size units that get loaded into pages.
//
// A Process is a plain value: a 16-bit identifier plus Size bytes of opaque
// instructions. It knows nothing about pages or RAM. Loading copies the
// instructions out of the value; unloading builds a new value from the bytes
// found in memory, so an unloaded process is equal to the loaded one by
// content, never by identity.
package process

import (
	"bytes"
	"fmt"
	"strings"

	memerr "memsim/pkg/error"
	"memsim/pkg/primitives"
)

// Size is the number of instruction bytes carried by every process.
const Size = 32

// Process is a fixed-size identifier + payload block.
type Process struct {
	PID          primitives.PID
	Instructions [Size]byte
}

// New generates a Process with a random PID and random instructions.
func New() *Process {
	return NewFrom(DefaultSource())
}

// NewFrom is New drawing from the given source.
func NewFrom(src Source) *Process {
	p := &Process{PID: primitives.PID(src.Uint64())}
	fill(src, p.Instructions[:])
	return p
}

// WithPID generates a Process with the given PID and random instructions.
func WithPID(pid primitives.PID) *Process {
	return WithPIDFrom(DefaultSource(), pid)
}

// WithPIDFrom is WithPID drawing from the given source.
func WithPIDFrom(src Source, pid primitives.PID) *Process {
	p := &Process{PID: pid}
	fill(src, p.Instructions[:])
	return p
}

// FromBytes rebuilds a Process from a memory image. data must be exactly
// Size bytes long; it is copied, so the caller may reuse the slice.
func FromBytes(pid primitives.PID, data []byte) (*Process, error) {
	if len(data) != Size {
		return nil, memerr.Newf(memerr.ErrInvalidProcess, "FromBytes", "Process",
			"image of pid %d is %d bytes, expected %d", pid, len(data), Size)
	}

	p := &Process{PID: pid}
	copy(p.Instructions[:], data)
	return p, nil
}

// Equal reports whether both processes carry the same PID and instructions.
func (p *Process) Equal(other *Process) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.PID == other.PID && bytes.Equal(p.Instructions[:], other.Instructions[:])
}

// IsBlank reports whether every instruction byte is zero. Such a process
// does not register in RAM usage once loaded.
func (p *Process) IsBlank() bool {
	for _, b := range p.Instructions {
		if b != 0 {
			return false
		}
	}
	return true
}

// Hex renders the instructions as space-separated lowercase hex pairs,
// rowWidth bytes per line.
func (p *Process) Hex(rowWidth int) []string {
	if rowWidth <= 0 {
		rowWidth = Size
	}

	rows := make([]string, 0, (Size+rowWidth-1)/rowWidth)
	for start := 0; start < Size; start += rowWidth {
		end := min(start+rowWidth, Size)
		parts := make([]string, 0, end-start)
		for _, b := range p.Instructions[start:end] {
			parts = append(parts, fmt.Sprintf("%02x", b))
		}
		rows = append(rows, strings.Join(parts, " "))
	}
	return rows
}

func (p *Process) String() string {
	return fmt.Sprintf("Process(pid=%d, instructions=[%s])", p.PID, strings.Join(p.Hex(Size), " "))
}
