/*
 * This file is part of firebot-script-google-cloud-tts (https://github.com/heyaapl/firebot-script-google-cloud-tts).
 * Copyright (C) 2025 heyaapl
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package resources

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultMaxTokens = 256
	DefaultMaxTTL    = 10 * time.Minute
)

type entry struct {
	path      string
	expiresAt time.Time
}

// TokenStore issues short-lived tokens that map to local files so an overlay
// can fetch audio over HTTP. Entries expire individually and the cache
// evicts anything older than maxTTL.
type TokenStore struct {
	cache  *expirable.LRU[string, entry]
	maxTTL time.Duration

	mu  sync.Mutex
	now func() time.Time
}

// NewTokenStore creates a store holding at most size tokens
func NewTokenStore(size int, maxTTL time.Duration) *TokenStore {
	if size <= 0 {
		size = DefaultMaxTokens
	}
	if maxTTL <= 0 {
		maxTTL = DefaultMaxTTL
	}
	return &TokenStore{
		cache:  expirable.NewLRU[string, entry](size, nil, maxTTL),
		maxTTL: maxTTL,
		now:    time.Now,
	}
}

// Issue returns a new token for path valid for ttl, capped at the store's max TTL
func (s *TokenStore) Issue(path string, ttl time.Duration) string {
	if ttl <= 0 || ttl > s.maxTTL {
		ttl = s.maxTTL
	}
	token := uuid.NewString()
	s.cache.Add(token, entry{path: path, expiresAt: s.clock().Add(ttl)})
	return token
}

// Resolve returns the path behind a live token
func (s *TokenStore) Resolve(token string) (string, bool) {
	e, ok := s.cache.Get(token)
	if !ok {
		return "", false
	}
	if !s.clock().Before(e.expiresAt) {
		s.cache.Remove(token)
		return "", false
	}
	return e.path, true
}

// Revoke drops a token before it expires
func (s *TokenStore) Revoke(token string) {
	s.cache.Remove(token)
}

// Len is the number of tokens currently held, including ones past their own expiry
func (s *TokenStore) Len() int {
	return s.cache.Len()
}

func (s *TokenStore) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}

func (s *TokenStore) setClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}
