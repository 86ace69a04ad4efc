package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

var bucketAutosaves = []byte("autosaves")

// boltStore keeps every document in one bucket keyed by absolute media path.
type boltStore struct {
	db *bbolt.DB
}

func newBoltStore(path string) (*boltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAutosaves)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Save(_ context.Context, doc *Document) error {
	stamp(doc)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to persist autosave: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAutosaves).Put([]byte(doc.VideoPath), data)
	})
}

func (s *boltStore) Load(_ context.Context, videoPath string) (*Document, error) {
	var doc Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketAutosaves).Get([]byte(key(videoPath)))
		if data == nil {
			return ErrNoAutosave
		}
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return nil, err
	}
	if err := doc.CheckSchema(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *boltStore) Delete(_ context.Context, videoPath string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAutosaves).Delete([]byte(key(videoPath)))
	})
}

func (s *boltStore) List(_ context.Context) ([]Summary, error) {
	var out []Summary
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAutosaves).ForEach(func(_, v []byte) error {
			var doc Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return nil
			}
			out = append(out, summarize(&doc))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

func (s *boltStore) Close() error {
	return s.db.Close()
}
