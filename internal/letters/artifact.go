package letters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArtifactStore persists generated letters as plain text files under a
// storage root. Paths handed back to callers and stored on requests are
// relative to the root so the root can move between environments.
type ArtifactStore struct {
	root string
	now  func() time.Time
}

func NewArtifactStore(root string) *ArtifactStore {
	return &ArtifactStore{root: root, now: time.Now}
}

// WriteLetter writes the letter content for a request and returns the
// relative artifact path, e.g. "letters/LR-ABC12345-20250115_chatgpt_20250115143000.txt".
func (s *ArtifactStore) WriteLetter(requestID, provider, content string) (string, error) {
	name := fmt.Sprintf("%s_%s_%s.txt", requestID, provider, s.now().Format("20060102150405"))
	rel := filepath.Join("letters", name)

	dir := filepath.Join(s.root, "letters")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create letters directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.root, rel), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write letter artifact: %w", err)
	}
	return rel, nil
}

// Resolve maps a stored relative path to an absolute one, rejecting
// anything that escapes the storage root.
func (s *ArtifactStore) Resolve(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid artifact path: %s", rel)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Exists reports whether the artifact file is present on disk.
func (s *ArtifactStore) Exists(rel string) bool {
	abs, err := s.Resolve(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}
