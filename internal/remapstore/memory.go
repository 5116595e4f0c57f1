// Package remapstore provides the side-channel stores that keep short-code
// remap tables between compression and decompression.
package remapstore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/poku-e/tubtakes/internal/shortcode"
)

// Memory keeps records in process, bounded by size and evicted after ttl.
type Memory struct {
	lru *expirable.LRU[string, shortcode.Record]
}

var _ shortcode.RemapStore = (*Memory)(nil)

// NewMemory returns a store holding at most size slots (0 = unbounded), each
// living for ttl (0 = forever).
func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{lru: expirable.NewLRU[string, shortcode.Record](size, nil, ttl)}
}

func (m *Memory) Load(_ context.Context, slot string) (shortcode.Record, bool, error) {
	rec, ok := m.lru.Get(slot)
	return rec, ok, nil
}

func (m *Memory) Store(_ context.Context, slot string, rec shortcode.Record) error {
	m.lru.Add(slot, rec)
	return nil
}

func (m *Memory) Delete(_ context.Context, slot string) error {
	m.lru.Remove(slot)
	return nil
}

func (m *Memory) Len() int { return m.lru.Len() }
