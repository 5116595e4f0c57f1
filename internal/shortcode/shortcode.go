// Package shortcode shrinks tier codes for length-limited channels such as
// chat commands.
//
// A short code is Prefix followed by the URL-safe Base64 of the raw DEFLATE of
// a compact string. The compact string replaces every flavor code with a
// token from a per-code remap table, and that table only lives in a RemapStore.
// Without the stored table, decompression keeps the tier layout but every
// flavor becomes Placeholder.
package shortcode

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"

	"github.com/poku-e/tubtakes/internal/tiercode"
)

// Prefix marks a short code.
const Prefix = "TT-"

// DefaultSlot is the remap store key used when no slot is configured.
const DefaultSlot = "tubtakes-mapping-data"

const maxCompactSize = 64 << 10

// ErrDecompression is returned when a short code payload is corrupt or empty.
var ErrDecompression = errors.New("short code decompression failed")

// ErrInvalidCommand is returned for chat text that is not a well-formed
// "/update code:<value>" command.
var ErrInvalidCommand = errors.New("invalid chat command")

// Record is what a compression leaves behind for its decompression.
type Record struct {
	Raw         string `json:"raw"`
	Fingerprint uint64 `json:"fingerprint"`
}

// RemapStore is the side channel holding the latest Record per slot.
// Load reports false when the slot is empty or expired.
type RemapStore interface {
	Load(ctx context.Context, slot string) (Record, bool, error)
	Store(ctx context.Context, slot string, rec Record) error
	Delete(ctx context.Context, slot string) error
}

// Expansion is the result of Decompress.
type Expansion struct {
	// Code is a tier code accepted by tiercode.Decode.
	Code string `json:"code"`
	// Exact is false when any flavor was replaced by Placeholder.
	Exact bool `json:"exact"`
	// Passthrough is true when the input was not a short code.
	Passthrough bool `json:"passthrough,omitempty"`
	// RemapMissing is true when no matching remap table was found.
	RemapMissing bool `json:"remap_missing,omitempty"`
	Placeholders int  `json:"placeholders,omitempty"`
}

// Compressor produces and expands short codes against one store slot.
type Compressor struct {
	store  RemapStore
	slot   string
	level  int
	logger *zap.Logger
}

type Option func(*Compressor)

func WithSlot(slot string) Option {
	return func(c *Compressor) {
		if slot != "" {
			c.slot = slot
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Compressor) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLevel sets the DEFLATE level (flate.BestSpeed … flate.BestCompression).
func WithLevel(level int) Option {
	return func(c *Compressor) { c.level = level }
}

// New returns a Compressor. A nil store disables remap persistence, which
// makes every decompression take the lossy path.
func New(store RemapStore, opts ...Option) *Compressor {
	c := &Compressor{
		store:  store,
		slot:   DefaultSlot,
		level:  flate.BestCompression,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Slot is the store key c reads and writes.
func (c *Compressor) Slot() string { return c.slot }

// ForSlot returns a copy of c bound to another store slot.
func (c *Compressor) ForSlot(slot string) *Compressor {
	cp := *c
	if slot != "" {
		cp.slot = slot
	}
	return &cp
}

// IsShort reports whether s carries the short code prefix.
func IsShort(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), Prefix)
}

// ---------- Compress ----------

// Compress turns a tier code into a short code and records the remap table
// in the store slot. A failing store is logged, not fatal. EmptyCode is
// returned unchanged.
func (c *Compressor) Compress(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == tiercode.EmptyCode {
		return code, nil
	}
	raw, err := tiercode.RawText(code)
	if err != nil {
		return "", err
	}
	compact, _, err := Compact(raw)
	if err != nil {
		return "", err
	}
	packed, err := c.deflate([]byte(compact))
	if err != nil {
		return "", fmt.Errorf("compress: %w", err)
	}

	if c.store != nil {
		rec := Record{Raw: raw, Fingerprint: xxhash.Sum64String(compact)}
		if err := c.store.Store(ctx, c.slot, rec); err != nil {
			c.logger.Warn("remap table not saved; short code will decompress lossy",
				zap.String("slot", c.slot), zap.Error(err))
		}
	}
	return Prefix + base64.RawURLEncoding.EncodeToString(packed), nil
}

func (c *Compressor) deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, c.level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ---------- Decompress ----------

// Decompress turns a short code back into a tier code. Input without Prefix
// is returned unchanged. When the store holds the table written by the
// matching Compress the result is exact; otherwise tiers are restored and
// every flavor becomes Placeholder.
func (c *Compressor) Decompress(ctx context.Context, short string) (Expansion, error) {
	short = strings.TrimSpace(short)
	if !strings.HasPrefix(short, Prefix) {
		return Expansion{Code: short, Exact: true, Passthrough: true}, nil
	}
	compact, err := inflate(strings.TrimRight(strings.TrimPrefix(short, Prefix), "="))
	if err != nil {
		return Expansion{}, err
	}

	rec, ok := c.lookup(ctx, compact)
	var (
		raw          string
		placeholders int
		exp          Expansion
	)
	if ok {
		remap, rerr := BuildRemap(rec.Raw)
		if rerr == nil {
			raw, placeholders, err = Expand(compact, remap)
		} else {
			ok = false
		}
	}
	if !ok {
		exp.RemapMissing = true
		raw, placeholders, err = ExpandBlind(compact)
	}
	if err != nil {
		return Expansion{}, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	if raw == "" {
		exp.Code = tiercode.EmptyCode
	} else {
		exp.Code = base64.StdEncoding.EncodeToString([]byte(raw))
	}
	exp.Placeholders = placeholders
	exp.Exact = !exp.RemapMissing && placeholders == 0
	if !exp.Exact {
		c.logger.Info("short code expanded with placeholders",
			zap.String("slot", c.slot),
			zap.Bool("remap_missing", exp.RemapMissing),
			zap.Int("placeholders", placeholders))
	}
	return exp, nil
}

// lookup returns the stored record only if it was written for compact.
func (c *Compressor) lookup(ctx context.Context, compact string) (Record, bool) {
	if c.store == nil {
		return Record{}, false
	}
	rec, ok, err := c.store.Load(ctx, c.slot)
	if err != nil {
		c.logger.Warn("remap table unreadable", zap.String("slot", c.slot), zap.Error(err))
		return Record{}, false
	}
	if !ok || rec.Fingerprint != xxhash.Sum64String(compact) {
		return Record{}, false
	}
	return rec, true
}

func inflate(payload string) (string, error) {
	packed, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	r := flate.NewReader(bytes.NewReader(packed))
	defer r.Close()
	out, err := io.ReadAll(io.LimitReader(r, maxCompactSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrDecompression)
	}
	if len(out) > maxCompactSize {
		return "", fmt.Errorf("%w: payload too large", ErrDecompression)
	}
	return string(out), nil
}

// Forget clears the store slot, e.g. after a share is finalized or the
// assignment is discarded.
func (c *Compressor) Forget(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	return c.store.Delete(ctx, c.slot)
}

// ---------- Chat commands ----------

const chatCommand = "/update"

// ChatCommand formats a code for the chat bot, e.g. "/update code:TT-xyz".
func ChatCommand(code string) string {
	return chatCommand + " code:" + code
}

// ParseChatCommand extracts the code from "/update code:<value>".
func ParseChatCommand(text string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.EqualFold(fields[0], chatCommand) {
		return "", fmt.Errorf("%w: not an %s command", ErrInvalidCommand, chatCommand)
	}
	rest := strings.TrimSpace(strings.Join(fields[1:], " "))
	value, ok := strings.CutPrefix(rest, "code:")
	if !ok {
		return "", fmt.Errorf("%w: %s: missing code: argument", ErrInvalidCommand, chatCommand)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s: empty code", ErrInvalidCommand, chatCommand)
	}
	return value, nil
}
