package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestPushPullRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scratch")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	a := []byte("first region bytes")
	b := []byte("second region bytes, longer")

	if err := s.Push(0x1000, 0x1000+uint64(len(a)), a); err != nil {
		t.Fatal(err)
	}
	if err := s.Push(0x2000, 0x2000+uint64(len(b)), b); err != nil {
		t.Fatal(err)
	}

	ranges := s.Ranges()
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}

	got0, err := ranges[0].Data()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got0, a) {
		t.Fatalf("range 0: got %q want %q", got0, a)
	}

	got1, err := ranges[1].Data()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got1, b) {
		t.Fatalf("range 1: got %q want %q", got1, b)
	}
}

func TestCloseRemovesScratchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scratch")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Push(0, 4, []byte("data")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected scratch file removed, stat err = %v", err)
	}
}
