// Package blobstore uploads attachment files and resolves their public URLs.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Store is the Blob Store contract.
type Store interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) error
	PublicURL(objectPath string) string
}

// cleanPath rejects absolute and parent-escaping object paths.
func cleanPath(objectPath string) (string, error) {
	p := path.Clean("/" + strings.TrimSpace(objectPath))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." || strings.Contains(objectPath, "..") {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return p, nil
}

func joinURL(base, objectPath string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(objectPath, "/")
}
