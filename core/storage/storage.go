package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"carereviews/core/review"
	"carereviews/types/ids"
)

const (
	reviewPrefix      = "review:"
	fingerprintPrefix = "fingerprint:"
	banPrefix         = "ban:"
	datePrefix        = "bydate:" // bydate:<date>:<id>, plaintext date only
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrDuplicateReview = errors.New("an identical review was already published")
)

// Storage keeps published reviews in LevelDB. Review bodies are encrypted at
// rest; the fingerprint index only holds hashes and review IDs.
type Storage struct {
	db  *leveldb.DB
	dek []byte

	// serialises read-modify-write cycles (helpful votes, deletes)
	mu sync.Mutex
}

// NewStorage opens (or creates) the database at path.
func NewStorage(path string, dek []byte) (*Storage, error) {
	if _, err := newGCM(dek); err != nil {
		return nil, err
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open review db: %w", err)
	}
	return &Storage{db: db, dek: dek}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is usable.
func (s *Storage) Ping() error {
	_, err := s.db.GetProperty("leveldb.num-files-at-level0")
	return err
}

func fingerprintOf(rec review.PatientReview) ids.Fingerprint {
	return ids.FingerprintOf(rec.PatientInitials, rec.Condition, rec.Review)
}

// SaveReview stores a validated review. A review with the same initials,
// condition and text as an existing one is rejected with ErrDuplicateReview.
func (s *Storage) SaveReview(rec review.PatientReview) error {
	if rec.ReviewID == "" {
		return errors.New("review id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fpKey := []byte(fingerprintPrefix + fingerprintOf(rec).String())
	exists, err := s.db.Has(fpKey, nil)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateReview
	}

	enc, err := s.seal(rec)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put([]byte(reviewPrefix+rec.ReviewID), enc)
	batch.Put(fpKey, []byte(rec.ReviewID))
	batch.Put(dateKey(rec), []byte(rec.ReviewID))
	return s.db.Write(batch, nil)
}

// GetReview returns the review with the given ID.
func (s *Storage) GetReview(id string) (review.PatientReview, error) {
	enc, err := s.db.Get([]byte(reviewPrefix+id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return review.PatientReview{}, ErrNotFound
	}
	if err != nil {
		return review.PatientReview{}, err
	}
	return s.open(enc)
}

// ListFilter narrows ListReviews. Zero values match everything.
type ListFilter struct {
	Condition string
	MinRating int
	Limit     int
}

func (f ListFilter) match(rec review.PatientReview) bool {
	if f.Condition != "" && !strings.EqualFold(f.Condition, rec.Condition) {
		return false
	}
	return rec.Rating >= f.MinRating
}

// ListReviews returns matching reviews, newest date first.
func (s *Storage) ListReviews(f ListFilter) ([]review.PatientReview, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(reviewPrefix)), nil)
	defer iter.Release()

	var out []review.PatientReview
	for iter.Next() {
		rec, err := s.open(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", iter.Key(), err)
		}
		if f.match(rec) {
			out = append(out, rec)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ReviewID < out[j].ReviewID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func dateKey(rec review.PatientReview) []byte {
	return []byte(datePrefix + rec.Date + ":" + rec.ReviewID)
}

// LatestReviewDate returns the newest review date, or "" when the store is
// empty. It reads the date index only; no review is decrypted.
func (s *Storage) LatestReviewDate() (string, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(datePrefix)), nil)
	defer iter.Release()

	if !iter.Last() {
		return "", iter.Error()
	}
	rest := strings.TrimPrefix(string(iter.Key()), datePrefix)
	date, _, _ := strings.Cut(rest, ":")
	return date, nil
}

// CountReviews returns the number of stored reviews. Only keys are read.
func (s *Storage) CountReviews() (int, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(reviewPrefix)), nil)
	defer iter.Release()

	n := 0
	for iter.Next() {
		n++
	}
	return n, iter.Error()
}

// MarkHelpful increments the helpful counter of a review and returns it.
func (s *Storage) MarkHelpful(id string) (review.PatientReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.GetReview(id)
	if err != nil {
		return review.PatientReview{}, err
	}
	rec.HelpfulCount++
	enc, err := s.seal(rec)
	if err != nil {
		return review.PatientReview{}, err
	}
	if err := s.db.Put([]byte(reviewPrefix+id), enc, nil); err != nil {
		return review.PatientReview{}, err
	}
	return rec, nil
}

// DeleteReview removes a review and its fingerprint.
func (s *Storage) DeleteReview(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.GetReview(id)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Delete([]byte(reviewPrefix + id))
	batch.Delete([]byte(fingerprintPrefix + fingerprintOf(rec).String()))
	batch.Delete(dateKey(rec))
	return s.db.Write(batch, nil)
}

func (s *Storage) seal(rec review.PatientReview) ([]byte, error) {
	plain, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return Encrypt(s.dek, plain)
}

func (s *Storage) open(enc []byte) (review.PatientReview, error) {
	var rec review.PatientReview
	plain, err := Decrypt(s.dek, enc)
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal(plain, &rec)
	return rec, err
}

// BanRecord is the persisted state of a banned client address.
type BanRecord struct {
	Until time.Time `json:"until"`
	Count int       `json:"count"`
}

// SaveBan persists a ban so it survives restarts.
func (s *Storage) SaveBan(addr string, rec BanRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Put([]byte(banPrefix+addr), raw, nil)
}

// DeleteBan removes a persisted ban.
func (s *Storage) DeleteBan(addr string) error {
	return s.db.Delete([]byte(banPrefix+addr), nil)
}

// LoadBans returns every persisted ban keyed by address.
func (s *Storage) LoadBans() (map[string]BanRecord, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(banPrefix)), nil)
	defer iter.Release()

	bans := make(map[string]BanRecord)
	for iter.Next() {
		var rec BanRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue // skip unreadable entries
		}
		bans[strings.TrimPrefix(string(iter.Key()), banPrefix)] = rec
	}
	return bans, iter.Error()
}
