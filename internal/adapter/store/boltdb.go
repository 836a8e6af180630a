package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"sdkgen/internal/domain"
)

var (
	bucketRecords = []byte("records")
	bucketResults = []byte("results")
	bucketMeta    = []byte("meta")
)

// BoltStore persists per-class generation records and the grouped results
// they were rendered from.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketRecords, bucketResults, bucketMeta}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) PutRecord(rec domain.ClassRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketRecords).Put([]byte(rec.Class), data)
	})
}

func (s *BoltStore) GetRecord(class string) (domain.ClassRecord, bool, error) {
	var rec domain.ClassRecord
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get([]byte(class))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &rec)
	})
	return rec, found, err
}

func (s *BoltStore) ListRecords() ([]domain.ClassRecord, error) {
	var records []domain.ClassRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			var rec domain.ClassRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt record %s: %w", k, err)
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

func (s *BoltStore) DeleteRecord(class string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketRecords).Delete([]byte(class)); err != nil {
			return err
		}
		return tx.Bucket(bucketResults).Delete([]byte(class))
	})
}

func (s *BoltStore) GetResult(class string) (*domain.GroupedResult, error) {
	var result *domain.GroupedResult
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketResults).Get([]byte(class))
		if data == nil {
			return nil
		}
		result = &domain.GroupedResult{}
		return json.Unmarshal(data, result)
	})
	return result, err
}

// PutRecordWithResult stores a record and its result in one transaction.
func (s *BoltStore) PutRecordWithResult(rec domain.ClassRecord, result *domain.GroupedResult) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		recData, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketRecords).Put([]byte(rec.Class), recData); err != nil {
			return err
		}

		if result == nil {
			return nil
		}
		resData, err := json.Marshal(result)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketResults).Put([]byte(rec.Class), resData)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
