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

package host

import "sync"

// CredentialStore holds the provider API key. The key is read on every
// effect run so live parameter updates take effect immediately.
type CredentialStore struct {
	mu     sync.RWMutex
	apiKey string
}

// NewCredentialStore creates a store seeded with apiKey, which may be empty
func NewCredentialStore(apiKey string) *CredentialStore {
	return &CredentialStore{apiKey: apiKey}
}

// APIKey returns the current key or ""
func (c *CredentialStore) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// SetAPIKey replaces the current key
func (c *CredentialStore) SetAPIKey(apiKey string) {
	c.mu.Lock()
	c.apiKey = apiKey
	c.mu.Unlock()
}

// Clear forgets the key, as when the plugin is stopped
func (c *CredentialStore) Clear() {
	c.SetAPIKey("")
}
