package catalog

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ---------- Normalization ----------

// normKey lowercases, strips diacritics and collapses whitespace.
func normKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(s))
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || unicode.IsPunct(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func compactKey(s string) string {
	return strings.ReplaceAll(normKey(s), " ", "")
}

func runeCounts(s string) map[rune]int {
	out := make(map[rune]int, len(s))
	for _, r := range s {
		out[r]++
	}
	return out
}

// ---------- Search ----------

// Search returns active flavors whose name contains every character of query
// at least as often as the query does, ignoring spaces, case and accents.
// An empty query matches everything.
func (c *Catalog) Search(query string) []Flavor {
	q := compactKey(query)
	if q == "" {
		return c.Active()
	}
	want := runeCounts(q)
	var out []Flavor
	for _, f := range c.flavors {
		if f.Retired {
			continue
		}
		have := runeCounts(compactKey(f.Name))
		ok := true
		for r, n := range want {
			if have[r] < n {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, f)
		}
	}
	return out
}

// ---------- Fuzzy resolution ----------

type match struct {
	Actual string
	Score  float64
}

// Resolve maps free-form user input to a flavor name: exact normalized match
// first, then the closest name within edit distance 2.5, where substring
// matches count half.
func (c *Catalog) Resolve(input string) (string, bool) {
	q := normKey(input)
	if q == "" {
		return "", false
	}
	if name, ok := c.normToName[q]; ok {
		return name, true
	}
	best := match{"", math.MaxFloat64}
	for _, f := range c.flavors {
		cand := normKey(f.Name)
		d := float64(lev(q, cand))
		if strings.Contains(cand, q) || strings.Contains(q, cand) {
			d *= 0.5
		}
		if d < best.Score {
			best = match{Actual: f.Name, Score: d}
		}
	}
	if best.Actual != "" && best.Score <= 2.5 {
		return best.Actual, true
	}
	return "", false
}

func lev(a, b string) int {
	if a == b {
		return 0
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	ar := []rune(a)
	br := []rune(b)

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 0
			if ar[i-1] != br[j-1] {
				cost = 1
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}
