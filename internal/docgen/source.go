package docgen

import (
	"context"
	"os"
	"path/filepath"
)

// TemplateSource fetches template artifacts by name as raw bytes.
// This abstraction allows swapping the backing store (local directory,
// S3/MinIO) without changing the renderer.
type TemplateSource interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// DirSource reads templates from a local directory.
type DirSource struct {
	dir string
}

// NewDirSource creates a DirSource rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Fetch reads the named template file. The name is reduced to its base to
// keep lookups inside the template directory.
func (s *DirSource) Fetch(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
}
