package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(src, []byte("mp4-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := &LocalStore{Dir: dir, BaseURL: "/videos"}
	url, err := s.Put(context.Background(), src, "job123.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if url != "/videos/job123.mp4" {
		t.Errorf("url %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "job123.mp4"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "mp4-bytes" {
		t.Errorf("copied content %q", data)
	}
}

func TestBucketStorePut(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	src := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewBucketStore(srv.URL, "videos", "secret-key")
	url, err := s.Put(context.Background(), src, "job42.mp4")
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/videos/job42.mp4" {
		t.Errorf("path %q", gotPath)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("auth %q", gotAuth)
	}
	if gotType != "video/mp4" {
		t.Errorf("content type %q", gotType)
	}
	if string(gotBody) != "payload" {
		t.Errorf("body %q", gotBody)
	}
	if url != srv.URL+"/videos/job42.mp4" {
		t.Errorf("url %q", url)
	}
}

func TestBucketStorePutRejectsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	src := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewBucketStore(srv.URL, "videos", "k")
	if _, err := s.Put(context.Background(), src, "x.mp4"); err == nil {
		t.Error("expected error on 403")
	}
}
