package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ansarii/autopromo-video/internal/config"
)

func TestSubmitQueuesValidJob(t *testing.T) {
	store := NewMemoryStore(50 * time.Millisecond)
	ctx := context.Background()

	job, err := Submit(ctx, store, "client-1", testRequest(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != StatusQueued {
		t.Errorf("status %s", job.Status)
	}

	id, err := store.Dequeue(ctx)
	if err != nil || id != job.ID {
		t.Errorf("dequeue = (%q, %v), want %q", id, err, job.ID)
	}
}

func TestSubmitAppliesDefaults(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	req := config.Request{URL: "https://example.com", Format: "16:9"}

	job, err := Submit(context.Background(), store, "c", req, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if job.Request.Duration != config.DefaultDuration {
		t.Errorf("duration %d", job.Request.Duration)
	}
	if job.Request.Options.Mode != "basic" {
		t.Errorf("mode %q", job.Request.Options.Mode)
	}
}

func TestSubmitRejectsInvalidRequest(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	cases := []config.Request{
		{URL: "ftp://example.com", Format: "9:16"},
		{URL: "https://example.com", Format: "4:3"},
		{URL: "https://example.com", Format: "9:16", Duration: 300},
		{URL: "https://example.com", Format: "9:16", Options: config.Options{Mode: "cinematic"}},
		{URL: "https://example.com", Format: "9:16", Options: config.Options{FontWeight: "heavy"}},
	}
	for i, req := range cases {
		if _, err := Submit(context.Background(), store, "c", req, time.Hour); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestSubmitRateLimitsSecondJob(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	ctx := context.Background()

	if _, err := Submit(ctx, store, "client-x", testRequest(), time.Hour); err != nil {
		t.Fatal(err)
	}
	_, err := Submit(ctx, store, "client-x", testRequest(), time.Hour)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}

	// A different client is unaffected.
	if _, err := Submit(ctx, store, "client-y", testRequest(), time.Hour); err != nil {
		t.Errorf("second client rejected: %v", err)
	}
}
