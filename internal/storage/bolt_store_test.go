package storage

import (
	"testing"
	"time"

	"github.com/samvad-hq/langextract-client/internal/domain"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(t.TempDir()+"/jobs.db", normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRecordsAndUpdatesJobs(t *testing.T) {
	store := openTestStore(t, Options{})

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := store.RecordJob(domain.JobEntry{ID: "j1", WorkflowID: "wf", Status: "processing", SubmittedAt: base}); err != nil {
		t.Fatalf("RecordJob j1: %v", err)
	}
	if err := store.RecordJob(domain.JobEntry{ID: "j2", Status: "processing", SubmittedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("RecordJob j2: %v", err)
	}

	prev, found, err := store.UpdateStatus("j1", "done")
	if err != nil || !found {
		t.Fatalf("UpdateStatus j1: found=%v err=%v", found, err)
	}
	if prev.Status != "processing" || prev.WorkflowID != "wf" {
		t.Fatalf("expected previous entry, got %#v", prev)
	}
	_, found, err = store.UpdateStatus("unknown", "done")
	if err != nil || found {
		t.Fatalf("UpdateStatus unknown: found=%v err=%v", found, err)
	}

	jobs, err := store.Jobs()
	if err != nil {
		t.Fatalf("Jobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != "j2" || jobs[1].ID != "j1" {
		t.Fatalf("expected newest first, got %s,%s", jobs[0].ID, jobs[1].ID)
	}
	if jobs[1].Status != "done" || jobs[1].WorkflowID != "wf" {
		t.Fatalf("unexpected j1 entry %#v", jobs[1])
	}
}

func TestBoltStoreExpiresEntries(t *testing.T) {
	store := openTestStore(t, Options{EntryTTL: time.Hour, CleanupInterval: time.Hour})

	clock := time.Now()
	store.now = func() time.Time { return clock }

	if err := store.RecordJob(domain.JobEntry{ID: "old", Status: "processing"}); err != nil {
		t.Fatalf("RecordJob: %v", err)
	}

	clock = clock.Add(2 * time.Hour)
	jobs, err := store.Jobs()
	if err != nil {
		t.Fatalf("Jobs: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected expired entry to be hidden, got %#v", jobs)
	}

	// Next write runs the cleanup pass.
	if err := store.RecordJob(domain.JobEntry{ID: "new", Status: "processing"}); err != nil {
		t.Fatalf("RecordJob: %v", err)
	}
	if _, found, _ := store.UpdateStatus("old", "done"); found {
		t.Fatalf("expected expired entry to be removed")
	}
}

func TestBoltStoreTracksDelivery(t *testing.T) {
	store := openTestStore(t, Options{})

	if err := store.RecordJob(domain.JobEntry{ID: "j1", Status: "processing"}); err != nil {
		t.Fatalf("RecordJob: %v", err)
	}
	if found, err := store.MarkDelivered("missing"); err != nil || found {
		t.Fatalf("MarkDelivered missing: found=%v err=%v", found, err)
	}
	if _, _, err := store.UpdateStatus("j1", "done"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if found, err := store.MarkDelivered("j1"); err != nil || !found {
		t.Fatalf("MarkDelivered j1: found=%v err=%v", found, err)
	}

	prev, _, err := store.UpdateStatus("j1", "done")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if !prev.Delivered {
		t.Fatalf("expected delivered flag to survive a repeated status, got %#v", prev)
	}

	if _, _, err := store.UpdateStatus("j1", "processing"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	jobs, err := store.Jobs()
	if err != nil || len(jobs) != 1 {
		t.Fatalf("Jobs: %#v err=%v", jobs, err)
	}
	if jobs[0].Delivered {
		t.Fatalf("expected status change to clear the delivered flag")
	}
}

func TestRecordJobRequiresID(t *testing.T) {
	store := openTestStore(t, Options{})
	if err := store.RecordJob(domain.JobEntry{}); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.RecordJob(domain.JobEntry{ID: "x"}); err != nil {
		t.Fatalf("noop store RecordJob: %v", err)
	}
	if jobs, _ := store.Jobs(); len(jobs) != 0 {
		t.Fatalf("noop store returned jobs")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
