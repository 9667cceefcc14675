// Package fs stores lake blobs on the local filesystem, one file per
// blob under <root>/<container>/<path>. It is the default backend for
// development and tests.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
)

type Store struct {
	root string
}

func New(root string) *Store { return &Store{root: root} }

func (s *Store) List(ctx context.Context, container, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := filepath.Join(s.root, container)
	var out []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			out = append(out, rel)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil // empty container
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", container, err)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Download(ctx context.Context, container, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, container, filepath.FromSlash(path)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s/%s: %w", container, path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) Upload(ctx context.Context, container, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := filepath.Join(s.root, container, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}
