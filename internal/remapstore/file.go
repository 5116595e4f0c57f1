package remapstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/poku-e/tubtakes/internal/shortcode"
)

type fileEntry struct {
	Raw         string    `json:"raw"`
	Fingerprint uint64    `json:"fingerprint"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// File keeps records in one JSON file so they survive restarts and separate
// CLI invocations. Writes go through a temp file and rename.
type File struct {
	mu   sync.RWMutex
	Path string
	TTL  time.Duration

	now func() time.Time
}

var _ shortcode.RemapStore = (*File)(nil)

func NewFile(path string, ttl time.Duration) *File {
	return &File{Path: path, TTL: ttl, now: time.Now}
}

func (f *File) read() (map[string]fileEntry, error) {
	if f.Path == "" {
		return nil, errors.New("remap store path empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]fileEntry{}, nil
		}
		return nil, err
	}
	entries := map[string]fileEntry{}
	if len(b) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse remap store %s: %w", f.Path, err)
	}
	return entries, nil
}

func (f *File) write(entries map[string]fileEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

func (f *File) expired(e fileEntry) bool {
	return !e.ExpiresAt.IsZero() && !f.now().Before(e.ExpiresAt)
}

func (f *File) Load(_ context.Context, slot string) (shortcode.Record, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := f.read()
	if err != nil {
		return shortcode.Record{}, false, err
	}
	e, ok := entries[slot]
	if !ok || f.expired(e) {
		return shortcode.Record{}, false, nil
	}
	return shortcode.Record{Raw: e.Raw, Fingerprint: e.Fingerprint}, true, nil
}

// Store writes rec into slot and drops expired slots.
func (f *File) Store(_ context.Context, slot string, rec shortcode.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	for k, e := range entries {
		if f.expired(e) {
			delete(entries, k)
		}
	}
	e := fileEntry{Raw: rec.Raw, Fingerprint: rec.Fingerprint}
	if f.TTL > 0 {
		e.ExpiresAt = f.now().Add(f.TTL).UTC()
	}
	entries[slot] = e
	return f.write(entries)
}

func (f *File) Delete(_ context.Context, slot string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := entries[slot]; !ok {
		return nil
	}
	delete(entries, slot)
	return f.write(entries)
}
