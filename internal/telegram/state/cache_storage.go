package state

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheStorage keeps telegram sessions in memory. Entries expire together
// with the questionnaire sessions they point at.
type CacheStorage struct {
	items *cache.Cache
}

func NewCacheStorage(ttl, cleanupInterval time.Duration) *CacheStorage {
	return &CacheStorage{items: cache.New(ttl, cleanupInterval)}
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (s *CacheStorage) Get(_ context.Context, userID int64) (*TelegramSession, error) {
	v, ok := s.items.Get(key(userID))
	if !ok {
		return nil, ErrNotFound
	}

	// Hand out a copy so callers can modify it before Set
	session := *v.(*TelegramSession)
	session.StateData.Selected = append([]string(nil), session.StateData.Selected...)
	return &session, nil
}

func (s *CacheStorage) Set(_ context.Context, session *TelegramSession) error {
	stored := *session
	stored.StateData.Selected = append([]string(nil), session.StateData.Selected...)
	s.items.Set(key(session.UserID), &stored, cache.DefaultExpiration)
	return nil
}

func (s *CacheStorage) Delete(_ context.Context, userID int64) error {
	s.items.Delete(key(userID))
	return nil
}
