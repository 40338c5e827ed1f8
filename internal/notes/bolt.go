package notes

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketNotes = []byte("notes")

// BoltStore keeps notes in a bbolt bucket keyed by the bucket sequence, so
// cursor order is insertion order.
type BoltStore struct {
	db *bolt.DB
}

func OpenBoltStore(path string) (*BoltStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("bolt store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketNotes)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bolt schema: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) List(ctx context.Context) ([]Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []Note{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNotes).ForEach(func(_, v []byte) error {
			var n Note
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			out = append(out, n)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return out, nil
}

func (s *BoltStore) Add(ctx context.Context, title, content string) (Note, error) {
	if err := ctx.Err(); err != nil {
		return Note{}, err
	}
	n := newNote(title, content)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), data)
	})
	if err != nil {
		return Note{}, fmt.Errorf("add note: %w", err)
	}
	return n, nil
}

func (s *BoltStore) Edit(ctx context.Context, index int, title, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		k, v, err := keyAt(b, index)
		if err != nil {
			return fmt.Errorf("edit %d: %w", index, err)
		}
		var n Note
		if err := json.Unmarshal(v, &n); err != nil {
			return err
		}
		if n.Title == title && n.Content == content {
			return nil
		}
		n.Title = title
		n.Content = content
		n.Timestamp = Now()
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		// k belongs to the cursor; copy before Put.
		return b.Put(append([]byte(nil), k...), data)
	})
}

func (s *BoltStore) Delete(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		k, _, err := keyAt(b, index)
		if err != nil {
			return fmt.Errorf("delete %d: %w", index, err)
		}
		return b.Delete(append([]byte(nil), k...))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func keyAt(b *bolt.Bucket, index int) ([]byte, []byte, error) {
	if index < 0 {
		return nil, nil, ErrIndexOutOfRange
	}
	c := b.Cursor()
	i := 0
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if i == index {
			return k, v, nil
		}
		i++
	}
	return nil, nil, ErrIndexOutOfRange
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
