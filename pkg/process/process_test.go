package process

import (
	"context"
	"errors"
	"strings"
	"testing"

	memerr "memsim/pkg/error"
	"memsim/pkg/primitives"
)

func TestWithPID(t *testing.T) {
	p := WithPIDFrom(NewSeededSource(1), 42)

	if p.PID != 42 {
		t.Errorf("Expected pid=42, got %d", p.PID)
	}
	if p.IsBlank() {
		t.Error("Expected random instructions, got all zeroes")
	}
}

func TestNew_Random(t *testing.T) {
	a := New()
	b := New()

	if a.Equal(b) {
		t.Error("Two random processes should not be equal")
	}
}

func TestNewFrom_Deterministic(t *testing.T) {
	a := NewFrom(NewSeededSource(7))
	b := NewFrom(NewSeededSource(7))

	if !a.Equal(b) {
		t.Errorf("Same seed should give equal processes: %v vs %v", a, b)
	}
}

func TestFromBytes(t *testing.T) {
	src := WithPIDFrom(NewSeededSource(3), 9)

	image := make([]byte, Size)
	copy(image, src.Instructions[:])

	p, err := FromBytes(9, image)
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	if !p.Equal(src) {
		t.Error("Rebuilt process should equal the original by content")
	}
	if p == src {
		t.Error("Rebuilt process should be a new value")
	}

	image[0] ^= 0xFF
	if !p.Equal(src) {
		t.Error("FromBytes must copy the image")
	}
}

func TestFromBytes_WrongLength(t *testing.T) {
	for _, n := range []int{0, Size - 1, Size + 1} {
		_, err := FromBytes(1, make([]byte, n))
		if !errors.Is(err, memerr.ErrInvalidProcess) {
			t.Errorf("len %d: expected ErrInvalidProcess, got %v", n, err)
		}
	}
}

func TestEqual(t *testing.T) {
	base := WithPIDFrom(NewSeededSource(5), 1)
	samePayload := &Process{PID: 2, Instructions: base.Instructions}
	otherPayload := WithPIDFrom(NewSeededSource(6), 1)

	tests := []struct {
		name  string
		a, b  *Process
		equal bool
	}{
		{"self", base, base, true},
		{"different pid", base, samePayload, false},
		{"different payload", base, otherPayload, false},
		{"nil vs value", nil, base, false},
		{"nil vs nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal() = %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestHex(t *testing.T) {
	p := &Process{PID: 1}
	p.Instructions[0] = 0xAB
	p.Instructions[Size-1] = 0x01

	rows := p.Hex(Size / 2)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if !strings.HasPrefix(rows[0], "ab 00") {
		t.Errorf("Unexpected first row %q", rows[0])
	}
	if !strings.HasSuffix(rows[1], "00 01") {
		t.Errorf("Unexpected last row %q", rows[1])
	}
	if got := len(strings.Fields(rows[0])); got != Size/2 {
		t.Errorf("Expected %d bytes per row, got %d", Size/2, got)
	}
}

func TestSpawner_UniquePIDs(t *testing.T) {
	s := NewSpawner(NewSeededSource(11), 3)
	s.Reserve(100)

	procs, err := s.Spawn(context.Background(), 64)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if len(procs) != 64 {
		t.Fatalf("Expected 64 processes, got %d", len(procs))
	}

	seen := map[primitives.PID]bool{100: true}
	for _, p := range procs {
		if p == nil {
			t.Fatal("nil process in batch")
		}
		if seen[p.PID] {
			t.Fatalf("pid %d handed out twice", p.PID)
		}
		seen[p.PID] = true
	}

	more, err := s.Spawn(context.Background(), 8)
	if err != nil {
		t.Fatalf("second Spawn failed: %v", err)
	}
	for _, p := range more {
		if seen[p.PID] {
			t.Fatalf("pid %d reused across batches", p.PID)
		}
	}
}

func TestSpawner_Deterministic(t *testing.T) {
	a, err := NewSpawner(NewSeededSource(99), 4).Spawn(context.Background(), 16)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSpawner(NewSeededSource(99), 1).Spawn(context.Background(), 16)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Fatalf("process %d differs between runs", i)
		}
	}
}

func TestSpawner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSpawner(NewSeededSource(1), 2)
	_, err := s.Spawn(ctx, 4)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(s.used) != 0 {
		t.Errorf("Aborted batch should release its pids, %d still held", len(s.used))
	}
}

func TestSpawner_TooMany(t *testing.T) {
	s := NewSpawner(NewSeededSource(1), 1)
	if _, err := s.Spawn(context.Background(), 1<<16+1); !errors.Is(err, memerr.ErrInvalidProcess) {
		t.Fatalf("Expected ErrInvalidProcess, got %v", err)
	}
	if _, err := s.Spawn(context.Background(), -1); err == nil {
		t.Fatal("Expected error for negative count")
	}
}

func TestSpawner_Release(t *testing.T) {
	s := NewSpawner(NewSeededSource(2), 1)
	procs, err := s.Spawn(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}

	s.Release(procs[0].PID)
	if _, taken := s.used[procs[0].PID]; taken {
		t.Error("Released pid should be available again")
	}
}
