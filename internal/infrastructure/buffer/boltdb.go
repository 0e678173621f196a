package buffer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const defaultBucket = "pending_writes"

// Store keeps pending writes in BoltDB, ordered by priority then age.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("buffer path is required")
	}
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, bucket: []byte(bucket)}, nil
}

// Enqueue stores an item under a priority-aware key. A pending item for the
// same entity and aggregate is replaced so only the latest state is replayed;
// a pending create stays a create.
func (s *Store) Enqueue(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	item.normalize()
	item.bucketKey = []byte(buildKey(item))

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if item.AggregateID != "" {
			replaced, err := deleteMatching(b, func(existing Item) bool {
				return existing.Entity == item.Entity && existing.AggregateID == item.AggregateID
			})
			if err != nil {
				return err
			}
			for _, old := range replaced {
				if old.Operation == OperationCreate {
					item.Operation = OperationCreate
				}
			}
		}

		payload, err := json.Marshal(item)
		if err != nil {
			return err
		}
		return b.Put(item.bucketKey, payload)
	})
}

// GetBatch returns up to limit items without removing them.
func (s *Store) GetBatch(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var items []Item
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(items) < limit; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			item.bucketKey = append([]byte(nil), k...)
			items = append(items, item)
		}
		return nil
	})
	return items, err
}

// Remove deletes the provided item from the buffer.
func (s *Store) Remove(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if len(item.bucketKey) > 0 {
			return b.Delete(item.bucketKey)
		}
		if item.ID == "" {
			return nil
		}
		_, err := deleteMatching(b, func(existing Item) bool { return existing.ID == item.ID })
		return err
	})
}

// Requeue moves an item to the back of its priority lane. When a newer item
// for the same aggregate was enqueued in the meantime the requeued one is
// dropped, handing its create operation to the newer item.
func (s *Store) Requeue(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if len(item.bucketKey) > 0 {
			if err := b.Delete(item.bucketKey); err != nil {
				return err
			}
		} else if item.ID != "" {
			if _, err := deleteMatching(b, func(existing Item) bool { return existing.ID == item.ID }); err != nil {
				return err
			}
		}

		if item.AggregateID != "" {
			newer, key, err := findAggregate(b, item.Entity, item.AggregateID)
			if err != nil {
				return err
			}
			if key != nil {
				if item.Operation != OperationCreate || newer.Operation == OperationCreate {
					return nil
				}
				newer.Operation = OperationCreate
				payload, err := json.Marshal(newer)
				if err != nil {
					return err
				}
				return b.Put(key, payload)
			}
		}

		item.normalize()
		item.Timestamp = time.Now()
		item.bucketKey = []byte(buildKey(item))
		payload, err := json.Marshal(item)
		if err != nil {
			return err
		}
		return b.Put(item.bucketKey, payload)
	})
}

// Size returns the number of buffered items.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup removes items enqueued before olderThan and reports how many went.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var removed []Item
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		removed, err = deleteMatching(tx.Bucket(s.bucket), func(item Item) bool {
			return item.Timestamp.Before(olderThan)
		})
		return err
	})
	return len(removed), err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// deleteMatching removes every item for which match holds and returns them.
func deleteMatching(b *bolt.Bucket, match func(Item) bool) ([]Item, error) {
	var (
		keys    [][]byte
		removed []Item
	)
	err := b.ForEach(func(k, v []byte) error {
		var item Item
		if err := json.Unmarshal(v, &item); err != nil {
			return nil
		}
		if match(item) {
			keys = append(keys, append([]byte(nil), k...))
			removed = append(removed, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return nil, err
		}
	}
	return removed, nil
}

// findAggregate returns the pending item for entity and aggregateID, if any.
func findAggregate(b *bolt.Bucket, entity, aggregateID string) (Item, []byte, error) {
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var item Item
		if err := json.Unmarshal(v, &item); err != nil {
			continue
		}
		if item.Entity == entity && item.AggregateID == aggregateID {
			return item, append([]byte(nil), k...), nil
		}
	}
	return Item{}, nil, nil
}

func buildKey(item Item) string {
	return fmt.Sprintf("%d_%020d_%s", item.Priority, item.Timestamp.UnixNano(), item.ID)
}
