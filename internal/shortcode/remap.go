package shortcode

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/poku-e/tubtakes/internal/tier"
	"github.com/poku-e/tubtakes/internal/tiercode"
)

// tokenAlphabet is base-36 without the tier digits 0-5, so a tier digit in a
// compact string can never be part of a token.
const tokenAlphabet = "6789abcdefghijklmnopqrstuvwxyz"

// Placeholder replaces identifiers that cannot be restored. It lies outside
// the flavor code alphabet, so decoding drops it as an unknown code.
const Placeholder = "__"

const maxWidth = 9

// Remap assigns every distinct identifier of one raw text a fixed-width token.
// Identifiers are sorted before numbering, so the table depends only on the
// set of identifiers and not on the order they were met.
type Remap struct {
	Width   int
	Idents  []string
	toToken map[string]string
	toIdent map[string]string
}

// BuildRemap scans raw tier text and numbers its distinct identifiers.
func BuildRemap(raw string) (Remap, error) {
	set := make(map[string]struct{})
	err := tiercode.Scan(raw, func(tok tiercode.Token) {
		if !tok.Opens() {
			set[tok.Ident] = struct{}{}
		}
	})
	if err != nil {
		return Remap{}, err
	}
	idents := make([]string, 0, len(set))
	for id := range set {
		idents = append(idents, id)
	}
	sort.Strings(idents)

	width := tokenWidth(len(idents))
	r := Remap{
		Width:   width,
		Idents:  idents,
		toToken: make(map[string]string, len(idents)),
		toIdent: make(map[string]string, len(idents)),
	}
	for i, id := range idents {
		tok := token(i, width)
		r.toToken[id] = tok
		r.toIdent[tok] = id
	}
	return r, nil
}

// Token returns the compact token assigned to ident.
func (r Remap) Token(ident string) (string, bool) {
	t, ok := r.toToken[ident]
	return t, ok
}

// Ident returns the identifier behind a compact token.
func (r Remap) Ident(token string) (string, bool) {
	id, ok := r.toIdent[token]
	return id, ok
}

func tokenWidth(n int) int {
	w, capacity := 1, len(tokenAlphabet)
	for capacity < n && w < maxWidth {
		w++
		capacity *= len(tokenAlphabet)
	}
	return w
}

func token(i, width int) string {
	b := make([]byte, width)
	for p := width - 1; p >= 0; p-- {
		b[p] = tokenAlphabet[i%len(tokenAlphabet)]
		i /= len(tokenAlphabet)
	}
	return string(b)
}

func isTokenChar(c byte) bool { return strings.IndexByte(tokenAlphabet, c) >= 0 }

// ---------- Compact form ----------

// Compact rewrites raw tier text as the width byte followed by tier digits
// and tokens, with no delimiters.
func Compact(raw string) (string, Remap, error) {
	r, err := BuildRemap(raw)
	if err != nil {
		return "", Remap{}, err
	}
	var sb strings.Builder
	sb.WriteByte(byte('0' + r.Width))
	err = tiercode.Scan(raw, func(tok tiercode.Token) {
		if tok.Opens() {
			sb.WriteByte(tok.Tier.Digit())
			return
		}
		sb.WriteString(r.toToken[tok.Ident])
	})
	if err != nil {
		return "", Remap{}, err
	}
	return sb.String(), r, nil
}

var errCompactLayout = errors.New("malformed compact payload")

func splitHeader(compact string) (int, string, error) {
	if compact == "" {
		return 0, "", fmt.Errorf("%w: empty", errCompactLayout)
	}
	w := int(compact[0] - '0')
	if w < 1 || w > maxWidth {
		return 0, "", fmt.Errorf("%w: bad width byte %q", errCompactLayout, compact[0])
	}
	body := compact[1:]
	for i := 0; i < len(body); i++ {
		c := body[i]
		if _, ok := tier.FromDigit(c); ok {
			continue
		}
		if !isTokenChar(c) {
			return 0, "", fmt.Errorf("%w: unexpected byte %q", errCompactLayout, c)
		}
		if i == 0 {
			return 0, "", fmt.Errorf("%w: token before first tier", errCompactLayout)
		}
	}
	return w, body, nil
}

// Expand restores raw tier text from a compact string using r. Tokens the
// table does not know become Placeholder; their count is returned.
func Expand(compact string, r Remap) (string, int, error) {
	w, body, err := splitHeader(compact)
	if err != nil {
		return "", 0, err
	}
	if w != r.Width {
		return "", 0, fmt.Errorf("%w: width %d does not match remap width %d", errCompactLayout, w, r.Width)
	}
	var (
		sb           strings.Builder
		buf          []byte
		placeholders int
	)
	unresolved := func() {
		sb.WriteString(Placeholder)
		sb.WriteByte(tiercode.Delimiter)
		placeholders++
		buf = buf[:0]
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		if t, ok := tier.FromDigit(c); ok {
			if len(buf) > 0 {
				unresolved()
			}
			sb.WriteByte(t.Label())
			continue
		}
		buf = append(buf, c)
		if id, ok := r.toIdent[string(buf)]; ok {
			sb.WriteString(id)
			sb.WriteByte(tiercode.Delimiter)
			buf = buf[:0]
			continue
		}
		if len(buf) >= w {
			unresolved()
		}
	}
	if len(buf) > 0 {
		unresolved()
	}
	return sb.String(), placeholders, nil
}

// ExpandBlind restores the tier structure of a compact string without a remap
// table. Every token becomes Placeholder, so the result is lossy.
func ExpandBlind(compact string) (string, int, error) {
	w, body, err := splitHeader(compact)
	if err != nil {
		return "", 0, err
	}
	var sb strings.Builder
	placeholders, run := 0, 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		if t, ok := tier.FromDigit(c); ok {
			if run > 0 {
				sb.WriteString(Placeholder)
				sb.WriteByte(tiercode.Delimiter)
				placeholders++
				run = 0
			}
			sb.WriteByte(t.Label())
			continue
		}
		run++
		if run == w {
			sb.WriteString(Placeholder)
			sb.WriteByte(tiercode.Delimiter)
			placeholders++
			run = 0
		}
	}
	if run > 0 {
		sb.WriteString(Placeholder)
		sb.WriteByte(tiercode.Delimiter)
		placeholders++
	}
	return sb.String(), placeholders, nil
}
