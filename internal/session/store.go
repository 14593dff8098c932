// Package session keeps the per-chat selection state: the last resolved
// source and its quality options awaiting a menu tap.
//
// Records are last-write-wins and never evicted. A newer URL from the same
// chat replaces the previous record, which makes older menus stale.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// ErrNotFound is returned when a chat has no pending record.
var ErrNotFound = errors.New("session not found")

// Record is the cached resolution result of one chat.
type Record struct {
	Source    *model.Source
	High      *model.Option
	Low       *model.Option
	Audio     *model.Option
	CreatedAt time.Time
}

// Option returns the handle for kind, or nil.
func (r *Record) Option(kind model.OptionKind) *model.Option {
	switch kind {
	case model.OptionHigh:
		return r.High
	case model.OptionLow:
		return r.Low
	case model.OptionAudio:
		return r.Audio
	default:
		return nil
	}
}

// Store maps chat IDs to records.
type Store struct {
	mu      sync.RWMutex
	records map[int64]*Record
}

func NewStore() *Store {
	return &Store{records: make(map[int64]*Record)}
}

// Put overwrites the record of chatID unconditionally.
func (s *Store) Put(chatID int64, rec *Record) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[chatID] = rec
}

func (s *Store) Get(chatID int64) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[chatID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
