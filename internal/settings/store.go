// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Persisted keys.
const (
	KeyBackend  = "ULTRON_BACKEND"
	KeyAPIKey   = "ULTRON_API_KEY"
	KeyClientID = "ULTRON_CLIENT_ID"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("settings store is closed")

// Settings are the persisted user values. Empty fields mean "not set".
type Settings struct {
	BackendURL string
	APIKey     string
	ClientID   string
}

// Store is a key-value settings store.
//
// Save writes BackendURL and APIKey, deleting keys whose value is empty.
// ClientID is written only when non-empty. Reset removes BackendURL and
// APIKey but keeps the client id.
type Store interface {
	Get() (Settings, error)
	Save(Settings) error
	Reset() error
	OnChanged(func(Settings)) (cancel func())
	Close() error
}

// SetBackend persists only the backend URL, keeping the other values.
func SetBackend(s Store, url string) error {
	cur, err := s.Get()
	if err != nil {
		return err
	}
	cur.BackendURL = url
	return s.Save(cur)
}

// ClientID returns the persisted client id, generating and saving one on
// first use.
func ClientID(s Store) (string, error) {
	cur, err := s.Get()
	if err != nil {
		return "", err
	}
	if cur.ClientID != "" {
		return cur.ClientID, nil
	}
	cur.ClientID = uuid.NewString()
	if err := s.Save(cur); err != nil {
		return "", err
	}
	return cur.ClientID, nil
}

// =============================================================================
// OBSERVERS
// =============================================================================

type observers struct {
	mu     sync.Mutex
	fns    map[int]func(Settings)
	nextID int
}

func (o *observers) add(fn func(Settings)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func(Settings))
	}
	id := o.nextID
	o.nextID++
	o.fns[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.fns, id)
		o.mu.Unlock()
	}
}

func (o *observers) notify(s Settings) {
	o.mu.Lock()
	fns := make([]func(Settings), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
