// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble/v2"
)

// PebbleStore persists settings in a pebble database.
type PebbleStore struct {
	mu  sync.Mutex
	db  *pebble.DB
	dir string
	obs observers
}

// DefaultDir returns ~/.ultron/settings.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ultron", "settings")
	}
	return filepath.Join(home, ".ultron", "settings")
}

// OpenPebble opens (or creates) the store at dir.
func OpenPebble(dir string) (*PebbleStore, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	return &PebbleStore{db: db, dir: dir}, nil
}

// Dir returns the database directory.
func (p *PebbleStore) Dir() string { return p.dir }

// Get implements Store.
func (p *PebbleStore) Get() (Settings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return Settings{}, ErrClosed
	}

	var s Settings
	var err error
	if s.BackendURL, err = p.getLocked(KeyBackend); err != nil {
		return Settings{}, err
	}
	if s.APIKey, err = p.getLocked(KeyAPIKey); err != nil {
		return Settings{}, err
	}
	if s.ClientID, err = p.getLocked(KeyClientID); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (p *PebbleStore) getLocked(key string) (string, error) {
	val, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	defer closer.Close()
	return string(val), nil
}

// Save implements Store. All keys are written in one batch.
func (p *PebbleStore) Save(s Settings) error {
	p.mu.Lock()
	if p.db == nil {
		p.mu.Unlock()
		return ErrClosed
	}

	b := p.db.NewBatch()
	defer b.Close()
	for _, kv := range []struct{ key, val string }{
		{KeyBackend, s.BackendURL},
		{KeyAPIKey, s.APIKey},
	} {
		var err error
		if kv.val == "" {
			err = b.Delete([]byte(kv.key), nil)
		} else {
			err = b.Set([]byte(kv.key), []byte(kv.val), nil)
		}
		if err != nil {
			p.mu.Unlock()
			return fmt.Errorf("stage %s: %w", kv.key, err)
		}
	}
	if s.ClientID != "" {
		if err := b.Set([]byte(KeyClientID), []byte(s.ClientID), nil); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("stage %s: %w", KeyClientID, err)
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("save settings: %w", err)
	}
	p.mu.Unlock()

	return p.notifyCurrent()
}

// Reset implements Store.
func (p *PebbleStore) Reset() error {
	p.mu.Lock()
	if p.db == nil {
		p.mu.Unlock()
		return ErrClosed
	}
	for _, key := range []string{KeyBackend, KeyAPIKey} {
		if err := p.db.Delete([]byte(key), pebble.Sync); err != nil && !errors.Is(err, pebble.ErrNotFound) {
			p.mu.Unlock()
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}
	p.mu.Unlock()

	return p.notifyCurrent()
}

func (p *PebbleStore) notifyCurrent() error {
	cur, err := p.Get()
	if err != nil {
		return err
	}
	p.obs.notify(cur)
	return nil
}

// OnChanged implements Store.
func (p *PebbleStore) OnChanged(fn func(Settings)) func() {
	return p.obs.add(fn)
}

// Close implements Store.
func (p *PebbleStore) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
