package letters

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteLetter(t *testing.T) {
	root := t.TempDir()
	s := NewArtifactStore(root)
	s.now = func() time.Time { return time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC) }

	rel, err := s.WriteLetter("LR-ABC12345-20250115", "chatgpt", "Dear Sir/Madam")
	if err != nil {
		t.Fatalf("WriteLetter: %v", err)
	}

	want := filepath.Join("letters", "LR-ABC12345-20250115_chatgpt_20250115143000.txt")
	if rel != want {
		t.Errorf("path = %q, want %q", rel, want)
	}

	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "Dear Sir/Madam" {
		t.Errorf("content = %q", data)
	}

	if !s.Exists(rel) {
		t.Error("Exists = false for written artifact")
	}
}

func TestResolveRejectsEscapes(t *testing.T) {
	s := NewArtifactStore(t.TempDir())

	for _, bad := range []string{"../outside.txt", "letters/../../etc/passwd", "/etc/passwd"} {
		if _, err := s.Resolve(bad); err == nil {
			t.Errorf("Resolve(%q) accepted a path outside the root", bad)
		}
	}

	abs, err := s.Resolve("letters/ok.txt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(abs) != "ok.txt" {
		t.Errorf("resolved = %q", abs)
	}
}

func TestExistsMissing(t *testing.T) {
	s := NewArtifactStore(t.TempDir())
	if s.Exists("letters/nope.txt") {
		t.Error("Exists = true for missing file")
	}
	if s.Exists("../escape.txt") {
		t.Error("Exists = true for escaping path")
	}
}
