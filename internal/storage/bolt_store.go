package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samvad-hq/langextract-client/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const jobBucket = "jobs"

// storedJob is the on-disk value: the entry plus its expiry.
type storedJob struct {
	domain.JobEntry
	ExpiresAt int64 `json:"expires_at"`
}

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(jobBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// RecordJob stores or replaces the entry for entry.ID.
func (b *boltStore) RecordJob(entry domain.JobEntry) error {
	if b == nil || b.db == nil {
		return nil
	}
	if entry.ID == "" {
		return fmt.Errorf("job id is empty")
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}
	if entry.SubmittedAt.IsZero() {
		entry.SubmittedAt = now.UTC()
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = entry.SubmittedAt
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := jobsBucket(tx)
		if err != nil {
			return err
		}
		return putJob(bucket, storedJob{JobEntry: entry, ExpiresAt: now.Add(b.entryTTL).Unix()})
	})
}

// UpdateStatus sets the status of a known job and refreshes its expiry.
// The returned entry is the one stored before the update.
func (b *boltStore) UpdateStatus(id, status string) (domain.JobEntry, bool, error) {
	var prev domain.JobEntry
	found, err := b.modifyJob(id, func(job *storedJob) {
		prev = job.JobEntry
		if job.Status != status {
			// A job that moves back out of a terminal state may be delivered again.
			job.Delivered = false
		}
		job.Status = status
	})
	return prev, found, err
}

// MarkDelivered records that the job's terminal status was forwarded.
func (b *boltStore) MarkDelivered(id string) (bool, error) {
	return b.modifyJob(id, func(job *storedJob) { job.Delivered = true })
}

// modifyJob applies fn to a live entry inside one write transaction.
func (b *boltStore) modifyJob(id string, fn func(*storedJob)) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var found bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := jobsBucket(tx)
		if err != nil {
			return err
		}
		value := bucket.Get([]byte(id))
		if value == nil {
			return nil
		}
		var job storedJob
		if err := json.Unmarshal(value, &job); err != nil || job.ExpiresAt <= now.Unix() {
			return bucket.Delete([]byte(id))
		}
		found = true
		fn(&job)
		job.UpdatedAt = now.UTC()
		job.ExpiresAt = now.Add(b.entryTTL).Unix()
		return putJob(bucket, job)
	})
	return found, err
}

// Jobs returns live entries, most recently submitted first.
func (b *boltStore) Jobs() ([]domain.JobEntry, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now().Unix()
	var out []domain.JobEntry
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := jobsBucket(tx)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(_, v []byte) error {
			var job storedJob
			if err := json.Unmarshal(v, &job); err != nil || job.ExpiresAt <= now {
				return nil
			}
			out = append(out, job.JobEntry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

// maybeCleanupExpired removes expired entries on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := jobsBucket(tx)
		if err != nil {
			return err
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var job storedJob
			if err := json.Unmarshal(v, &job); err != nil || job.ExpiresAt <= now.Unix() {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func jobsBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(jobBucket))
	if bucket == nil {
		return nil, fmt.Errorf("job bucket missing")
	}
	return bucket, nil
}

func putJob(bucket *bolt.Bucket, job storedJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	return bucket.Put([]byte(job.ID), raw)
}
