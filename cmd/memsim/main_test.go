package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	memerr "memsim/pkg/error"
	"memsim/pkg/process"
)

func TestParseArguments(t *testing.T) {
	opts, err := parseArguments([]string{"-pages", "3", "-seed", "9", "-log-level", "debug", "-quiet"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArguments failed: %v", err)
	}
	if opts.Pages != 3 || opts.Seed != 9 || opts.LogLevel != "debug" || !opts.Quiet {
		t.Errorf("Unexpected options: %+v", opts)
	}

	if _, err := parseArguments([]string{"-pages", "many"}, io.Discard); err == nil {
		t.Error("Expected an error for a non-numeric -pages")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memsim.json")
	if err := os.WriteFile(path, []byte(`{"page_count": 4, "seed": 1}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(options{ConfigPath: path, Seed: 77})
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.PageCount != 4 {
		t.Errorf("Expected page_count from file, got %d", cfg.PageCount)
	}
	if cfg.Seed != 77 {
		t.Errorf("Expected -seed to win over the file, got %d", cfg.Seed)
	}

	cfg, err = loadConfig(options{ConfigPath: path, Pages: 1})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PageCount != 1 {
		t.Errorf("Expected -pages to win over the file, got %d", cfg.PageCount)
	}
}

func TestLoadConfig_InvalidLevel(t *testing.T) {
	_, err := loadConfig(options{LogLevel: "chatty"})
	if memerr.CodeOf(err) != memerr.CodeInvalidConfig {
		t.Errorf("Expected %s, got %v", memerr.CodeInvalidConfig, err)
	}
}

func TestBatchSize(t *testing.T) {
	cfg, err := loadConfig(options{})
	if err != nil {
		t.Fatal(err)
	}

	src := process.NewSeededSource(5)
	for range 100 {
		n := batchSize(src, cfg)
		if n < 1 || n >= cfg.Geometry().Capacity() {
			t.Fatalf("batch size %d outside [1, %d)", n, cfg.Geometry().Capacity())
		}
	}

	cfg.ProcessesPerPage = 8
	if got := batchSize(src, cfg); got != 8 {
		t.Errorf("Expected configured batch size 8, got %d", got)
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), options{Seed: 42}, &out, io.Discard); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Process PID", "Processes loaded: 1", "Page 1", "Page 2", "Processes in RAM:", "of 512 bytes"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRun_QuietFullPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memsim.json")
	if err := os.WriteFile(path, []byte(`{"processes_per_page": 8, "seed": 3}`), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), options{ConfigPath: path, Quiet: true}, &out, io.Discard); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := out.String()
	if strings.Contains(got, "Process PID") {
		t.Error("quiet run should not print processes")
	}
	if !strings.Contains(got, "Processes in RAM: 16") {
		t.Errorf("Expected 16 processes in RAM:\n%s", got)
	}
}

func TestRun_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	if err := run(context.Background(), options{Seed: 11}, &a, io.Discard); err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), options{Seed: 11}, &b, io.Discard); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("Expected identical output for the same seed")
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, options{Seed: 1, Quiet: true}, io.Discard, io.Discard)
	if memerr.CodeOf(err) != memerr.CodeProcessSpawnFailed {
		t.Errorf("Expected %s, got %v", memerr.CodeProcessSpawnFailed, err)
	}
}
