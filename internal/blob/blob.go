// Package blob provides the checkpoint and milestone-screenshot blob store:
// a production Google Cloud Storage backend and a local-filesystem fallback
// with an identical interface, matching the Persistence Layer's contract
// that local runs and CI need no external service.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// #region interface

// Object describes one stored blob as returned by List.
type Object struct {
	Path       string
	Size       int64
	UploadedAt time.Time
	URL        string
}

// Store is the abstract blob store. Put returns a public-read URL.
type Store interface {
	Put(ctx context.Context, path string, data []byte) (url string, err error)
	List(ctx context.Context, prefix string) ([]Object, error)
}

// #endregion interface

// #region local-store

// LocalStore is a filesystem-backed Store for local runs and tests. URLs are
// served relative to baseURL (e.g. by net/http.FileServer mounted at root).
type LocalStore struct {
	rootDir string
	baseURL string
}

// NewLocalStore returns a Store rooted at rootDir, serving URLs under baseURL.
func NewLocalStore(rootDir, baseURL string) *LocalStore {
	return &LocalStore{rootDir: rootDir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Put(_ context.Context, path string, data []byte) (string, error) {
	full := filepath.Join(s.rootDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("mkdir for %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return s.baseURL + "/" + strings.TrimLeft(path, "/"), nil
}

func (s *LocalStore) List(_ context.Context, prefix string) ([]Object, error) {
	root := filepath.Join(s.rootDir, filepath.FromSlash(prefix))
	var out []Object
	err := filepath.WalkDir(filepath.Dir(root), func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.rootDir, p)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)
		if !strings.HasPrefix(relSlash, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, Object{
			Path:       relSlash,
			Size:       info.Size(),
			UploadedAt: info.ModTime(),
			URL:        s.baseURL + "/" + relSlash,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

// #endregion local-store
