package pipeline

import (
	"errors"
	"testing"
	"time"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	// SHA-256 of empty input is well-known.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusRendering, "rendering"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_Fail(t *testing.T) {
	job := &Job{ID: "err-test", Status: StatusRendering, UpdatedAt: time.Now()}
	job.Fail("rendering", errors.New("bad markdown"))
	job.Fail("rendering", errors.New("still bad"))

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if len(snap.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Errors))
	}
	if snap.Errors[0] != "bad markdown" {
		t.Errorf("expected first error %q, got %q", "bad markdown", snap.Errors[0])
	}
}

func TestJob_SetPost(t *testing.T) {
	job := &Job{ID: "post-test", UpdatedAt: time.Now()}
	job.SetPost("abc", "hello-world")

	snap := job.Snapshot()
	if snap.PostID != "abc" || snap.Slug != "hello-world" {
		t.Errorf("unexpected post reference %q/%q", snap.PostID, snap.Slug)
	}
}

func TestJob_FileData(t *testing.T) {
	job := NewJob("a.md", "", false, []byte("file content here"))
	if string(job.FileData()) != "file content here" {
		t.Errorf("expected file data, got %q", job.FileData())
	}
	job.releaseFileData()
	if job.FileData() != nil {
		t.Error("expected file data to be released")
	}
}

func TestNewJob(t *testing.T) {
	a := NewJob("a.md", "Title", true, nil)
	b := NewJob("a.md", "Title", true, nil)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.Status != StatusQueued || !a.Publish || a.Title != "Title" {
		t.Errorf("unexpected job %+v", a.Snapshot())
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
