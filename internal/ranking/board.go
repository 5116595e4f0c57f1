// Package ranking aggregates tier lists submitted by many users into one
// community ranking.
package ranking

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/poku-e/tubtakes/internal/tier"
)

const maxUserLen = 64

var (
	ErrUserRequired    = errors.New("user required")
	ErrEmptySubmission = errors.New("tier list has no flavors")
	ErrUserNameTooLong = fmt.Errorf("user too long (max %d chars)", maxUserLen)
)

// Submission is one user's latest tier list. Count is the number of flavors
// the user ranked and doubles as the weight of every vote in it.
type Submission struct {
	User        string          `json:"user"`
	Tiers       tier.Assignment `json:"tiers"`
	Count       int             `json:"count"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// Board keeps the latest submission per user. With a Path it persists to a
// JSON file after every change.
type Board struct {
	mu         sync.RWMutex
	Path       string
	FullWeight int

	subs map[string]Submission
	now  func() time.Time
}

// NewBoard returns an empty board. fullWeight below 1 means 5.
func NewBoard(path string, fullWeight int) *Board {
	if fullWeight < 1 {
		fullWeight = 5
	}
	return &Board{
		Path:       path,
		FullWeight: fullWeight,
		subs:       map[string]Submission{},
		now:        time.Now,
	}
}

// Load replaces the in-memory state with the file contents. A missing file
// leaves the board empty.
func (b *Board) Load() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Path == "" {
		return errors.New("ranking board path empty")
	}
	data, err := os.ReadFile(b.Path)
	if err != nil {
		if os.IsNotExist(err) {
			b.subs = map[string]Submission{}
			return nil
		}
		return err
	}
	var items []Submission
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parse rankings %s: %w", b.Path, err)
	}
	subs := make(map[string]Submission, len(items))
	for _, s := range items {
		subs[s.User] = s
	}
	b.subs = subs
	return nil
}

// saveLocked writes the board; callers hold b.mu.
func (b *Board) saveLocked() error {
	if b.Path == "" {
		return nil
	}
	data, err := json.MarshalIndent(b.listLocked(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(b.Path), 0o755); err != nil {
		return err
	}
	tmp := b.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, b.Path)
}

func (b *Board) listLocked() []Submission {
	out := make([]Submission, 0, len(b.subs))
	for _, s := range b.subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].User < out[j].User
	})
	return out
}

// List returns submissions, newest first.
func (b *Board) List() []Submission {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.listLocked()
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Submit records a as user's tier list, replacing any earlier one.
func (b *Board) Submit(user string, a tier.Assignment) (Submission, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return Submission{}, ErrUserRequired
	}
	if utf8.RuneCountInString(user) > maxUserLen {
		return Submission{}, ErrUserNameTooLong
	}
	a = a.Normalize()
	if a.Empty() {
		return Submission{}, ErrEmptySubmission
	}
	s := Submission{
		User:        user,
		Tiers:       a,
		Count:       a.Len(),
		SubmittedAt: b.now().UTC(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	prev, had := b.subs[user]
	b.subs[user] = s
	if err := b.saveLocked(); err != nil {
		if had {
			b.subs[user] = prev
		} else {
			delete(b.subs, user)
		}
		return Submission{}, err
	}
	return s, nil
}

// Withdraw drops user's submission. Unknown users are a no-op.
func (b *Board) Withdraw(user string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev, ok := b.subs[user]
	if !ok {
		return nil
	}
	delete(b.subs, user)
	if err := b.saveLocked(); err != nil {
		b.subs[user] = prev
		return err
	}
	return nil
}
