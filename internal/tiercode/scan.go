package tiercode

import (
	"fmt"

	"github.com/poku-e/tubtakes/internal/catalog"
	"github.com/poku-e/tubtakes/internal/tier"
)

const (
	// Delimiter terminates every identifier in raw text.
	Delimiter = ','
	// VersionMarker optionally opens raw text, followed by one version byte.
	VersionMarker = '!'
	// Version is the only raw text version this package reads and writes.
	Version = '1'
)

type scanState int

const (
	awaitingTier scanState = iota
	accumulatingIdentifier
)

// Token is one scanner event: a tier opening (Ident empty) or an identifier
// closed inside Tier.
type Token struct {
	Tier  tier.Tier
	Ident string
}

// Opens reports whether t starts a new tier.
func (t Token) Opens() bool { return t.Ident == "" }

// Scan walks raw tier text and calls fn for every tier opening and every
// non-empty identifier, in input order.
//
// Tier labels share the code alphabet, so when the identifier buffer is empty
// a label only opens a tier if it does not begin a complete code that is
// followed by a delimiter or the end of input. While 0 < len(buffer) <
// CodeWidth every byte extends the buffer; past that a label closes it.
func Scan(raw string, fn func(Token)) error {
	i := 0
	if len(raw) > 0 && raw[0] == VersionMarker {
		if len(raw) < 2 || raw[1] != Version {
			return fmt.Errorf("%w: unsupported version marker %q", ErrInvalidEncoding, raw[:min(2, len(raw))])
		}
		i = 2
	}

	state := awaitingTier
	var current tier.Tier
	buf := make([]byte, 0, catalog.CodeWidth)

	flush := func() {
		if len(buf) > 0 {
			fn(Token{Tier: current, Ident: string(buf)})
			buf = buf[:0]
		}
	}
	open := func(t tier.Tier) {
		current = t
		state = accumulatingIdentifier
		fn(Token{Tier: t})
	}

	for ; i < len(raw); i++ {
		c := raw[i]
		switch state {
		case awaitingTier:
			t, ok := tier.Parse(c)
			if !ok {
				return fmt.Errorf("%w: expected tier label at offset %d, got %q", ErrInvalidEncoding, i, c)
			}
			open(t)

		case accumulatingIdentifier:
			if c == Delimiter {
				flush()
				continue
			}
			t, isLabel := tier.Parse(c)
			switch {
			case !isLabel:
				buf = append(buf, c)
			case len(buf) == 0 && !startsCode(raw, i):
				open(t)
			case len(buf) == 0, len(buf) < catalog.CodeWidth:
				buf = append(buf, c)
			default:
				flush()
				open(t)
			}
		}
	}
	flush()
	return nil
}

// startsCode reports whether raw[i:] begins with a complete code followed by
// a delimiter or the end of input.
func startsCode(raw string, i int) bool {
	end := i + catalog.CodeWidth
	if end > len(raw) {
		return false
	}
	if !catalog.ValidCode(raw[i:end]) {
		return false
	}
	return end == len(raw) || raw[end] == Delimiter
}
