// Package storage delivers finished videos: either copied into the local
// public directory or uploaded to a bucket endpoint.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Store publishes a finished artifact and returns its public URL.
type Store interface {
	Put(ctx context.Context, localPath, name string) (string, error)
}

// LocalStore copies artifacts into a directory served as static files.
type LocalStore struct {
	Dir     string
	BaseURL string // URL prefix the directory is served under, e.g. "/videos"
}

func (s *LocalStore) Put(_ context.Context, localPath, name string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("public dir: %w", err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(s.Dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copy to %s: %w", dstPath, err)
	}

	return s.BaseURL + "/" + name, nil
}

// BucketStore uploads artifacts to an object storage HTTP endpoint with a
// bearer key. The endpoint answers with the object's public URL implied by
// its path layout: <base>/<bucket>/<name>.
type BucketStore struct {
	BaseURL string
	Bucket  string
	Key     string
	Client  *http.Client
}

func NewBucketStore(baseURL, bucket, key string) *BucketStore {
	return &BucketStore{
		BaseURL: baseURL,
		Bucket:  bucket,
		Key:     key,
		Client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *BucketStore) Put(ctx context.Context, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat artifact: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.BaseURL, s.Bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, f)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Authorization", "Bearer "+s.Key)
	req.Header.Set("Content-Type", contentType(name))

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload %s: status %d: %s", name, resp.StatusCode, body)
	}

	log.Info().Str("name", name).Int64("bytes", info.Size()).Msg("artifact uploaded")
	return url, nil
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".mp4":
		return "video/mp4"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
