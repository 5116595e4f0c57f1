// Package tiercode converts tier assignments to and from shareable Base64 codes.
//
// Raw text is one segment per non-empty tier, in S,A,B,C,D,F order: the tier
// label followed by each flavor code and a comma, e.g. "SA1,AB2,". The raw text
// is Base64 encoded for sharing. An assignment with no encodable flavor is
// encoded as the literal EmptyCode.
package tiercode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/poku-e/tubtakes/internal/tier"
)

// EmptyCode stands for an assignment with no encodable flavors.
const EmptyCode = "new"

// ErrInvalidEncoding is returned for malformed Base64 or raw text.
var ErrInvalidEncoding = errors.New("invalid tier code")

// Lookup resolves flavor names and wire codes in both directions.
type Lookup interface {
	CodeFor(name string) (string, bool)
	NameFor(code string) (string, bool)
}

// Report counts the non-fatal conditions met while encoding or decoding.
type Report struct {
	// Unresolved lists flavor names (encode) or codes (decode) the catalog
	// does not know. They are dropped.
	Unresolved []string `json:"unresolved,omitempty"`
	// Duplicates counts repeated flavors ignored after their first occurrence.
	Duplicates int `json:"duplicates,omitempty"`
	// SkippedTiers counts non-empty tiers left out because none of their
	// flavors could be encoded.
	SkippedTiers int `json:"skipped_tiers,omitempty"`
}

// Clean reports whether nothing was dropped or ignored.
func (r Report) Clean() bool {
	return len(r.Unresolved) == 0 && r.Duplicates == 0 && r.SkippedTiers == 0
}

// ---------- Encode ----------

// Encode serializes a into a Base64 code using the catalog codes.
func Encode(a tier.Assignment, lookup Lookup) (string, Report) {
	raw, rep := RawEncode(a, lookup)
	if raw == "" {
		return EmptyCode, rep
	}
	return base64.StdEncoding.EncodeToString([]byte(raw)), rep
}

// EncodeVersioned is Encode with the "!1" version marker in front of the raw text.
func EncodeVersioned(a tier.Assignment, lookup Lookup) (string, Report) {
	raw, rep := RawEncode(a, lookup)
	if raw == "" {
		return EmptyCode, rep
	}
	return base64.StdEncoding.EncodeToString([]byte(string([]byte{VersionMarker, Version}) + raw)), rep
}

// RawEncode builds the raw tier text without Base64. It returns "" when no
// tier has an encodable flavor.
func RawEncode(a tier.Assignment, lookup Lookup) (string, Report) {
	var (
		rep  Report
		sb   strings.Builder
		seen = make(map[string]struct{}, a.Len())
	)
	for _, t := range tier.Order {
		items := a[t]
		if len(items) == 0 {
			continue
		}
		var seg strings.Builder
		for _, name := range items {
			code, ok := lookup.CodeFor(name)
			if !ok {
				rep.Unresolved = append(rep.Unresolved, name)
				continue
			}
			if _, dup := seen[name]; dup {
				rep.Duplicates++
				continue
			}
			seen[name] = struct{}{}
			seg.WriteString(code)
			seg.WriteByte(Delimiter)
		}
		if seg.Len() == 0 {
			rep.SkippedTiers++
			continue
		}
		sb.WriteByte(t.Label())
		sb.WriteString(seg.String())
	}
	return sb.String(), rep
}

// ---------- Decode ----------

// Decode parses a Base64 code (standard or URL-safe, padded or not) back into
// an assignment with all six tiers present. Unknown codes are dropped and a
// flavor keeps the first tier it appears in. Malformed input yields
// ErrInvalidEncoding and no assignment.
func Decode(code string, lookup Lookup) (tier.Assignment, Report, error) {
	code = strings.TrimSpace(code)
	if code == EmptyCode {
		return tier.NewAssignment(), Report{}, nil
	}
	raw, err := RawText(code)
	if err != nil {
		return nil, Report{}, err
	}
	return RawDecode(raw, lookup)
}

// RawDecode parses raw tier text.
func RawDecode(raw string, lookup Lookup) (tier.Assignment, Report, error) {
	var rep Report
	out := tier.NewAssignment()
	placed := make(map[string]struct{})

	err := Scan(raw, func(tok Token) {
		if tok.Opens() {
			return
		}
		name, ok := lookup.NameFor(tok.Ident)
		if !ok {
			rep.Unresolved = append(rep.Unresolved, tok.Ident)
			return
		}
		if _, dup := placed[name]; dup {
			rep.Duplicates++
			return
		}
		placed[name] = struct{}{}
		out.Add(tok.Tier, name)
	})
	if err != nil {
		return nil, Report{}, err
	}
	return out, rep, nil
}

// ---------- Base64 ----------

// RawText repairs URL-safe characters and missing padding, then Base64
// decodes code.
func RawText(code string) (string, error) {
	fixed := strings.TrimSpace(code)
	if fixed == "" {
		return "", fmt.Errorf("%w: empty code", ErrInvalidEncoding)
	}
	fixed = strings.NewReplacer("-", "+", "_", "/").Replace(fixed)
	if rem := len(fixed) % 4; rem != 0 {
		fixed += strings.Repeat("=", 4-rem)
	}
	b, err := base64.StdEncoding.DecodeString(fixed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return string(b), nil
}

// URLSafe rewrites a code for use in a "?c=" query parameter.
func URLSafe(code string) string {
	if code == EmptyCode {
		return code
	}
	return strings.TrimRight(strings.NewReplacer("+", "-", "/", "_").Replace(code), "=")
}
