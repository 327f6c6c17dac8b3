package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ansarii/autopromo-video/internal/config"
)

func testRequest() config.Request {
	return config.Request{
		URL:      "https://example.com",
		Format:   "9:16",
		Duration: 30,
		Options:  config.Options{Mode: "pro_director"},
	}
}

func TestNewJobIDsAreSortable(t *testing.T) {
	a := NewJob("client-1", testRequest())
	time.Sleep(2 * time.Millisecond)
	b := NewJob("client-1", testRequest())

	if a.ID == b.ID {
		t.Fatal("duplicate job ids")
	}
	if !(a.ID < b.ID) {
		t.Errorf("ulids not chronological: %s >= %s", a.ID, b.ID)
	}
	if a.Status != StatusQueued {
		t.Errorf("new job status %s", a.Status)
	}
}

func TestAdvanceProgressMonotonic(t *testing.T) {
	j := NewJob("c", testRequest())

	j.AdvanceProgress(40)
	j.AdvanceProgress(15)
	if j.Progress != 40 {
		t.Errorf("progress regressed to %d", j.Progress)
	}

	j.AdvanceProgress(95)
	if j.Progress != 95 {
		t.Errorf("progress %d", j.Progress)
	}

	j.AdvanceProgress(250)
	if j.Progress != 100 {
		t.Errorf("progress not capped: %d", j.Progress)
	}
}

func TestJobEncodeRoundTrip(t *testing.T) {
	j := NewJob("client-9", testRequest())
	j.MarkProcessing()
	j.AdvanceProgress(50)

	data, err := j.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeJob(data)
	if err != nil {
		t.Fatal(err)
	}

	if got.ID != j.ID || got.Status != StatusProcessing || got.Progress != 50 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Request.URL != "https://example.com" {
		t.Errorf("request lost: %+v", got.Request)
	}
}

func TestRedactedMasksPassword(t *testing.T) {
	req := testRequest()
	req.Credentials = &config.Credentials{Username: "demo", Password: "hunter2"}
	j := NewJob("c", req)

	red := j.Redacted()
	if red.Request.Credentials.Password != "[redacted]" {
		t.Errorf("password exposed: %q", red.Request.Credentials.Password)
	}
	if red.Request.Credentials.Username != "demo" {
		t.Errorf("username lost: %q", red.Request.Credentials.Username)
	}

	// The stored job keeps the real password; the worker logs in with it.
	if j.Request.Credentials.Password != "hunter2" {
		t.Errorf("original mutated: %q", j.Request.Credentials.Password)
	}
}

func TestRedactedWithoutCredentials(t *testing.T) {
	j := NewJob("c", testRequest())
	if red := j.Redacted(); red.Request.Credentials != nil {
		t.Errorf("credentials appeared from nowhere: %+v", red.Request.Credentials)
	}
}

func TestMemoryStoreQueue(t *testing.T) {
	store := NewMemoryStore(100 * time.Millisecond)
	ctx := context.Background()

	job := NewJob("c", testRequest())
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatal(err)
	}
	if err := store.Enqueue(ctx, job.ID); err != nil {
		t.Fatal(err)
	}

	id, err := store.Dequeue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if id != job.ID {
		t.Errorf("dequeued %q, want %q", id, job.ID)
	}

	// Empty queue returns "" after the poll timeout.
	id, err = store.Dequeue(ctx)
	if err != nil || id != "" {
		t.Errorf("empty dequeue = (%q, %v)", id, err)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	if _, err := store.GetJob(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreRateLimit(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	ctx := context.Background()

	limited, err := store.ClaimRate(ctx, "client-a", time.Hour)
	if err != nil || limited {
		t.Fatalf("first claim limited=%v err=%v", limited, err)
	}
	limited, err = store.ClaimRate(ctx, "client-a", time.Hour)
	if err != nil || !limited {
		t.Errorf("second claim should be limited, got limited=%v err=%v", limited, err)
	}
	limited, _ = store.ClaimRate(ctx, "client-b", time.Hour)
	if limited {
		t.Error("different client should not be limited")
	}
}

type fakeRunner struct {
	fail bool
}

func (r *fakeRunner) Run(_ context.Context, job *Job, progress func(int)) error {
	progress(40)
	progress(80)
	if r.fail {
		return errors.New("render exploded")
	}
	job.MarkCompleted("/videos/out.mp4", "/videos/out.jpg")
	return nil
}

func TestWorkerProcessesJob(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	w := &Worker{Store: store, Runner: &fakeRunner{}, Log: zerolog.Nop()}
	ctx := context.Background()

	job := NewJob("c", testRequest())
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatal(err)
	}

	w.process(ctx, job.ID)

	got, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("status %s", got.Status)
	}
	if got.Progress != 100 {
		t.Errorf("progress %d", got.Progress)
	}
	if got.VideoURL != "/videos/out.mp4" {
		t.Errorf("video url %q", got.VideoURL)
	}
}

func TestWorkerRecordsFailure(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	w := &Worker{Store: store, Runner: &fakeRunner{fail: true}, Log: zerolog.Nop()}
	ctx := context.Background()

	job := NewJob("c", testRequest())
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatal(err)
	}

	w.process(ctx, job.ID)

	got, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusFailed {
		t.Errorf("status %s", got.Status)
	}
	if got.Error != "render exploded" {
		t.Errorf("error %q", got.Error)
	}
	// Progress made before the failure is preserved.
	if got.Progress != 80 {
		t.Errorf("progress %d", got.Progress)
	}
}
