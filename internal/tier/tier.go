// Package tier defines the fixed rank buckets and the in-memory tier assignment.
package tier

import (
	"encoding/json"
	"fmt"
)

// Tier is one rank bucket. The zero value is not a valid tier.
type Tier byte

const (
	S Tier = 'S'
	A Tier = 'A'
	B Tier = 'B'
	C Tier = 'C'
	D Tier = 'D'
	F Tier = 'F'
)

// Order is the fixed top-to-bottom tier order. Encoders walk tiers in this order.
var Order = [...]Tier{S, A, B, C, D, F}

var colors = map[Tier]string{
	S: "rgb(220, 53, 69)",
	A: "rgb(253, 126, 20)",
	B: "rgb(255, 193, 7)",
	C: "rgb(25, 135, 84)",
	D: "rgb(13, 110, 253)",
	F: "rgb(111, 66, 193)",
}

// Parse reports whether c is a tier label.
func Parse(c byte) (Tier, bool) {
	switch Tier(c) {
	case S, A, B, C, D, F:
		return Tier(c), true
	}
	return 0, false
}

// ParseLabel parses a one-character label such as "S".
func ParseLabel(s string) (Tier, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("invalid tier label %q", s)
	}
	t, ok := Parse(s[0])
	if !ok {
		return 0, fmt.Errorf("invalid tier label %q", s)
	}
	return t, nil
}

func (t Tier) Valid() bool {
	_, ok := Parse(byte(t))
	return ok
}

func (t Tier) String() string { return string(rune(t)) }

// Label is the single character used on the wire.
func (t Tier) Label() byte { return byte(t) }

// Color is the display color of the tier row.
func (t Tier) Color() string { return colors[t] }

// Index is the position of t in Order, or -1.
func (t Tier) Index() int {
	for i, o := range Order {
		if o == t {
			return i
		}
	}
	return -1
}

// Digit is the single-digit form used by short codes (S→'0' … F→'5').
func (t Tier) Digit() byte {
	i := t.Index()
	if i < 0 {
		return 0
	}
	return byte('0' + i)
}

// FromDigit inverts Digit.
func FromDigit(c byte) (Tier, bool) {
	if c < '0' || int(c-'0') >= len(Order) {
		return 0, false
	}
	return Order[c-'0'], true
}

// Score is the numeric weight used when aggregating rankings (S=6 … F=1).
func (t Tier) Score() int {
	i := t.Index()
	if i < 0 {
		return 0
	}
	return len(Order) - i
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tier %d", byte(t))
	}
	return []byte{byte(t)}, nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseLabel(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ---------- Assignment ----------

// Assignment maps each tier to an ordered list of flavor names.
// Missing tiers are equivalent to empty ones.
type Assignment map[Tier][]string

// NewAssignment returns an assignment with all six tiers present and empty.
func NewAssignment() Assignment {
	a := make(Assignment, len(Order))
	for _, t := range Order {
		a[t] = []string{}
	}
	return a
}

func (a Assignment) Get(t Tier) []string { return a[t] }

// Add appends name to tier t.
func (a Assignment) Add(t Tier, name string) {
	a[t] = append(a[t], name)
}

// Len counts names across all tiers.
func (a Assignment) Len() int {
	n := 0
	for _, t := range Order {
		n += len(a[t])
	}
	return n
}

func (a Assignment) Empty() bool { return a.Len() == 0 }

// Clone returns a deep copy with all six tiers present.
func (a Assignment) Clone() Assignment {
	out := NewAssignment()
	for _, t := range Order {
		out[t] = append(out[t], a[t]...)
	}
	return out
}

// Normalize returns a copy holding only the six tiers, with blank names removed
// and every name kept at its first occurrence in tier order.
func (a Assignment) Normalize() Assignment {
	out := NewAssignment()
	seen := make(map[string]struct{}, a.Len())
	for _, t := range Order {
		for _, name := range a[t] {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out[t] = append(out[t], name)
		}
	}
	return out
}

// TierOf returns the tier holding name.
func (a Assignment) TierOf(name string) (Tier, bool) {
	for _, t := range Order {
		for _, n := range a[t] {
			if n == name {
				return t, true
			}
		}
	}
	return 0, false
}

// Equal compares per-tier contents and order; absent and empty tiers are equal.
func (a Assignment) Equal(b Assignment) bool {
	for _, t := range Order {
		x, y := a[t], b[t]
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON always emits the six tiers in order, e.g. {"S":[...],"A":[],...}.
func (a Assignment) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, t := range Order {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '"', t.Label(), '"', ':')
		names := a[t]
		if names == nil {
			names = []string{}
		}
		b, err := json.Marshal(names)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return append(buf, '}'), nil
}

func (a *Assignment) UnmarshalJSON(b []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := NewAssignment()
	for k, names := range raw {
		t, err := ParseLabel(k)
		if err != nil {
			return err
		}
		out[t] = append(out[t], names...)
	}
	*a = out
	return nil
}
