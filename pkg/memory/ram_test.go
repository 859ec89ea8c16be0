package memory

import (
	"errors"
	"testing"

	memerr "memsim/pkg/error"
	"memsim/pkg/primitives"
	"memsim/pkg/process"
)

func TestGeometry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		g       Geometry
		wantErr bool
	}{
		{"default", DefaultGeometry, false},
		{"8x8 pages", Geometry{PageDim: 8, PageCount: 4}, false},
		{"zero dim", Geometry{PageDim: 0, PageCount: 2}, true},
		{"zero pages", Geometry{PageDim: 16, PageCount: 0}, true},
		{"page smaller than process", Geometry{PageDim: 4, PageCount: 2}, true},
		{"page not a multiple of process", Geometry{PageDim: 12, PageCount: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, memerr.ErrInvalidGeometry) {
				t.Errorf("Expected ErrInvalidGeometry, got %v", err)
			}
		})
	}
}

func TestGeometry_Derived(t *testing.T) {
	g := DefaultGeometry

	if g.PageSize() != 256 {
		t.Errorf("PageSize() = %d, want 256", g.PageSize())
	}
	if g.RAMSize() != 512 {
		t.Errorf("RAMSize() = %d, want 512", g.RAMSize())
	}
	if g.Capacity() != 8 {
		t.Errorf("Capacity() = %d, want 8", g.Capacity())
	}
	if g.ProcessSize() != process.Size {
		t.Errorf("ProcessSize() = %d, want %d", g.ProcessSize(), process.Size)
	}
}

func TestNewRAM(t *testing.T) {
	ram, err := NewRAM(Geometry{PageDim: 8, PageCount: 3})
	if err != nil {
		t.Fatalf("NewRAM failed: %v", err)
	}
	if ram.Size() != 192 {
		t.Errorf("Expected 192 bytes, got %d", ram.Size())
	}

	data, err := ram.Snapshot(0, ram.Size())
	if err != nil {
		t.Fatal(err)
	}
	assertAllZero(t, data)

	if _, err := NewRAM(Geometry{}); !errors.Is(err, memerr.ErrInvalidGeometry) {
		t.Errorf("Expected ErrInvalidGeometry, got %v", err)
	}
}

func TestRAM_Usage(t *testing.T) {
	ram, pages := newTestPages(t)

	if ram.Usage() != 0 {
		t.Fatalf("Fresh RAM usage = %f, want 0", ram.Usage())
	}

	for i := 1; i <= 3; i++ {
		if err := pages[0].Load(newTestProcess(primitives.PID(i))); err != nil {
			t.Fatal(err)
		}
	}
	if ram.Usage() <= 0 {
		t.Errorf("Expected usage > 0 after loading, got %f", ram.Usage())
	}
	if ram.Usage() > 3*float64(process.Size)/float64(ram.Size()) {
		t.Errorf("Usage %f exceeds the bytes written", ram.Usage())
	}

	for _, pid := range pages[0].PIDs() {
		_, _ = pages[0].Unload(pid)
	}
	if ram.Usage() != 0 {
		t.Errorf("Expected usage 0 after unloading everything, got %f", ram.Usage())
	}
}

// A loaded process with an all-zero payload is invisible to Usage.
func TestRAM_UsageIgnoresZeroPayload(t *testing.T) {
	ram, pages := newTestPages(t)

	if err := pages[0].Load(&process.Process{PID: 1}); err != nil {
		t.Fatal(err)
	}
	if pages[0].Occupancy() != 1 {
		t.Fatal("blank process should still occupy a slot")
	}
	if ram.Usage() != 0 {
		t.Errorf("Expected usage 0 for a blank payload, got %f", ram.Usage())
	}
}

func TestRAM_Borrow(t *testing.T) {
	ram := NewDefaultRAM()

	a, err := ram.Borrow(0, 32)
	if err != nil {
		t.Fatalf("Borrow failed: %v", err)
	}

	tests := []struct {
		name   string
		start  int
		length int
		want   *memerr.MemError
	}{
		{"overlap head", 16, 32, memerr.ErrConcurrentAccess},
		{"inside", 4, 4, memerr.ErrConcurrentAccess},
		{"adjacent", 32, 32, nil},
		{"past end", 500, 32, memerr.ErrOutOfBounds},
		{"negative", -1, 4, memerr.ErrOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, err := ram.Borrow(tt.start, tt.length)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Borrow failed: %v", err)
				}
				span.Release()
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %s, got %v", tt.want.Code, err)
			}
		})
	}

	if ram.Borrowed() != 1 {
		t.Errorf("Expected 1 live borrow, got %d", ram.Borrowed())
	}

	a.Release()
	a.Release()
	if ram.Borrowed() != 0 {
		t.Errorf("Expected no live borrows, got %d", ram.Borrowed())
	}
	if a.Bytes() != nil {
		t.Error("Released span must not expose bytes")
	}

	b, err := ram.Borrow(16, 32)
	if err != nil {
		t.Fatalf("Borrow after release failed: %v", err)
	}
	if b.Start() != 16 || b.Len() != 32 {
		t.Errorf("Unexpected span [%d, +%d)", b.Start(), b.Len())
	}
	b.Release()
}

func TestRAM_SnapshotBlockedByBorrow(t *testing.T) {
	ram, pages := newTestPages(t)

	span, err := ram.Borrow(int(pages[1].Start()), 1)
	if err != nil {
		t.Fatal(err)
	}
	defer span.Release()

	if _, err := pages[1].Snapshot(); !errors.Is(err, memerr.ErrConcurrentAccess) {
		t.Errorf("Expected ErrConcurrentAccess, got %v", err)
	}
	if _, err := pages[0].Snapshot(); err != nil {
		t.Errorf("Snapshot of another page failed: %v", err)
	}
}
