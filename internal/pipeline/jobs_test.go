package pipeline

import (
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

func TestNewJob(t *testing.T) {
	data := []byte("CCO")
	job := NewJob("a.smi", "", data)
	if job.ID == "" || job.ID == NewJob("a.smi", "", data).ID {
		t.Errorf("expected unique job IDs, got %q", job.ID)
	}
	if job.DocID != ContentHashHex(data)[:16] {
		t.Errorf("expected doc ID from content hash, got %q", job.DocID)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if string(job.FileData()) != "CCO" {
		t.Errorf("expected file data to be kept, got %q", job.FileData())
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
		{StatusReading, "reading document"},
		{StatusParsing, "parsing entries"},
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

func TestJob_SetStatusFailed(t *testing.T) {
	job := &Job{
		ID:        "test-fail",
		Status:    StatusParsing,
		UpdatedAt: time.Now(),
	}
	job.SetStatus(StatusFailed, "read error")
	if job.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, job.Status)
	}
	if !job.Snapshot().Done() {
		t.Error("expected failed job to be done")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("read: bad pdf")
	job.AddError("no candidate notations found")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "read: bad pdf" {
		t.Errorf("expected first error %q, got %q", "read: bad pdf", snap.Progress.Errors[0])
	}
}

func TestJob_RecordResult(t *testing.T) {
	job := &Job{ID: "incr-test", UpdatedAt: time.Now()}
	job.SetEntries(3, 2)
	job.RecordResult(2, Result{Input: "c1ccccc1", Canonical: "c1ccccc1"})
	job.RecordResult(0, Result{Input: "CCO", Canonical: "CCO"})
	job.RecordResult(1, Result{Input: "C1CC", Error: "unclosed ring(s): 1"})
	job.RecordResult(7, Result{Input: "ignored"})

	snap := job.Snapshot()
	if snap.Progress.TotalEntries != 3 || snap.Progress.Duplicates != 2 {
		t.Errorf("unexpected totals: %+v", snap.Progress)
	}
	if snap.Progress.EntriesProcessed != 3 {
		t.Errorf("expected 3 entries processed, got %d", snap.Progress.EntriesProcessed)
	}
	if snap.Progress.Parsed != 2 || snap.Progress.Rejected != 1 {
		t.Errorf("expected 2 parsed and 1 rejected, got %+v", snap.Progress)
	}

	results := job.Results()
	want := []string{"CCO", "C1CC", "c1ccccc1"}
	for i, w := range want {
		if results[i].Input != w {
			t.Errorf("result[%d]: expected %q, got %q", i, w, results[i].Input)
		}
	}
}

func TestJob_SetTitleKeepsUploaderChoice(t *testing.T) {
	job := &Job{ID: "title-test", Title: "mine"}
	job.SetTitle("from document")
	if job.Title != "mine" {
		t.Errorf("expected %q, got %q", "mine", job.Title)
	}

	job = &Job{ID: "title-test-2"}
	job.SetTitle("from document")
	if job.Title != "from document" {
		t.Errorf("expected %q, got %q", "from document", job.Title)
	}
}

func TestJob_FileData(t *testing.T) {
	data := []byte("file content here")
	job := NewJob("data.txt", "", data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
	job.releaseFileData()
	if job.FileData() != nil {
		t.Error("expected file data to be released")
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
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

func TestJobStore_CountByStatus(t *testing.T) {
	store := NewJobStore(time.Hour)
	store.Put(&Job{ID: "a", Status: StatusCompleted, UpdatedAt: time.Now()})
	store.Put(&Job{ID: "b", Status: StatusCompleted, UpdatedAt: time.Now()})
	store.Put(&Job{ID: "c", Status: StatusQueued, UpdatedAt: time.Now()})

	counts := store.CountByStatus()
	if counts[StatusCompleted] != 2 || counts[StatusQueued] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}
