package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps uploads in a directory that the HTTP server exposes
// under BaseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	dst := filepath.Join(s.dir, filepath.FromSlash(p))
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("object %s already exists", p)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("write object: %w", err)
	}
	return f.Close()
}

func (s *LocalStore) PublicURL(objectPath string) string {
	return joinURL(s.baseURL, objectPath)
}
