package audio

import (
	"os"
	"testing"
)

func TestSaveAndRelease(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	clip, err := s.Save([]byte("fake opus payload"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(clip.Path())
	if err != nil {
		t.Fatalf("read clip: %v", err)
	}
	if string(data) != "fake opus payload" {
		t.Fatalf("clip content mismatch: %q", data)
	}

	clip.Release()
	if _, err := os.Stat(clip.Path()); !os.IsNotExist(err) {
		t.Fatalf("clip file should be gone after final release, stat err = %v", err)
	}
}

func TestRetainKeepsFileAlive(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	clip, err := s.Save([]byte("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	clip.Retain()
	clip.Release()
	if _, err := os.Stat(clip.Path()); err != nil {
		t.Fatalf("clip removed while a reference remained: %v", err)
	}

	clip.Release()
	if _, err := os.Stat(clip.Path()); !os.IsNotExist(err) {
		t.Fatalf("clip not removed after last release, stat err = %v", err)
	}
}

func TestStoreFallsBackToTempDir(t *testing.T) {
	t.Parallel()

	s, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore(\"\"): %v", err)
	}
	clip, err := s.Save([]byte("y"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	defer clip.Release()
	if clip.Path() == "" {
		t.Fatal("expected a concrete temp path")
	}
}
