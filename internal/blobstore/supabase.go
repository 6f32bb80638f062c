package blobstore

import (
	"context"
	"io"
	"net/http"

	"github.com/projectkeeper/project-keeper/internal/supabase"
)

// SupabaseStore writes into a public bucket of the hosted storage service.
type SupabaseStore struct {
	client *supabase.Client
	bucket string
}

func NewSupabaseStore(client *supabase.Client, bucket string) *SupabaseStore {
	return &SupabaseStore{client: client, bucket: bucket}
}

func (s *SupabaseStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := http.Header{}
	header.Set("Content-Type", contentType)
	header.Set("x-upsert", "false")

	resp, err := s.client.Do(ctx, http.MethodPost, "/storage/v1/object/"+s.bucket+"/"+p, nil, r, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *SupabaseStore) PublicURL(objectPath string) string {
	return s.client.URL("/storage/v1/object/public/"+s.bucket+"/"+objectPath, nil)
}
