// Package catalog holds the reference list of flavors and their short codes.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// CodeWidth is the fixed width of every flavor code.
const CodeWidth = 2

// ---------- Data model ----------

type Flavor struct {
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`     // wire identifier, [0-9A-Z]{2}
	ImageID string `json:"image_id,omitempty"` // shop image version id
	Image   string `json:"image,omitempty"`    // local image file name
	Retired bool   `json:"retired,omitempty"`
}

type Catalog struct {
	flavors    []Flavor
	byName     map[string]int
	byCode     map[string]int
	normToName map[string]string
}

var (
	ErrDuplicateName = errors.New("duplicate flavor name")
	ErrDuplicateCode = errors.New("duplicate flavor code")
	ErrInvalidCode   = errors.New("invalid flavor code")
)

// ValidCode reports whether code is exactly CodeWidth characters of [0-9A-Z].
func ValidCode(code string) bool {
	if len(code) != CodeWidth {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !IsCodeChar(code[i]) {
			return false
		}
	}
	return true
}

func IsCodeChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z')
}

// New validates flavors and builds the lookup indexes. Names are trimmed;
// a flavor without a code is kept but cannot be encoded.
func New(flavors []Flavor) (*Catalog, error) {
	c := &Catalog{
		flavors:    make([]Flavor, 0, len(flavors)),
		byName:     make(map[string]int, len(flavors)),
		byCode:     make(map[string]int, len(flavors)),
		normToName: make(map[string]string, len(flavors)),
	}
	for _, f := range flavors {
		f.Name = strings.TrimSpace(f.Name)
		f.Code = strings.ToUpper(strings.TrimSpace(f.Code))
		if f.Name == "" {
			return nil, errors.New("flavor name required")
		}
		if _, ok := c.byName[f.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, f.Name)
		}
		if f.Code != "" {
			if !ValidCode(f.Code) {
				return nil, fmt.Errorf("%w: %q for %q", ErrInvalidCode, f.Code, f.Name)
			}
			if prev, ok := c.byCode[f.Code]; ok {
				return nil, fmt.Errorf("%w: %q used by %q and %q", ErrDuplicateCode, f.Code, c.flavors[prev].Name, f.Name)
			}
			c.byCode[f.Code] = len(c.flavors)
		}
		c.byName[f.Name] = len(c.flavors)
		c.normToName[normKey(f.Name)] = f.Name
		c.flavors = append(c.flavors, f)
	}
	return c, nil
}

// MustNew is New for static tables.
func MustNew(flavors []Flavor) *Catalog {
	c, err := New(flavors)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Len() int { return len(c.flavors) }

// Flavors returns a copy in catalog order.
func (c *Catalog) Flavors() []Flavor {
	out := make([]Flavor, len(c.flavors))
	copy(out, c.flavors)
	return out
}

// Active returns the non-retired flavors in catalog order.
func (c *Catalog) Active() []Flavor {
	out := make([]Flavor, 0, len(c.flavors))
	for _, f := range c.flavors {
		if !f.Retired {
			out = append(out, f)
		}
	}
	return out
}

func (c *Catalog) ByName(name string) (Flavor, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Flavor{}, false
	}
	return c.flavors[i], true
}

// CodeFor returns the wire code of a flavor name.
func (c *Catalog) CodeFor(name string) (string, bool) {
	f, ok := c.ByName(name)
	if !ok || f.Code == "" {
		return "", false
	}
	return f.Code, true
}

// NameFor returns the flavor name of a wire code.
func (c *Catalog) NameFor(code string) (string, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return "", false
	}
	return c.flavors[i].Name, true
}

// Names returns all flavor names sorted alphabetically.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.flavors))
	for _, f := range c.flavors {
		out = append(out, f.Name)
	}
	sort.Strings(out)
	return out
}

// ---------- Persistence ----------

// Load reads a JSON array of flavors.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var flavors []Flavor
	if err := json.Unmarshal(b, &flavors); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	c, err := New(flavors)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// LoadOrFallback returns the built-in fallback set when path cannot be loaded.
func LoadOrFallback(path string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != "" {
		c, err := Load(path)
		if err == nil {
			return c
		}
		logger.Warn("catalog unavailable, using fallback flavors", zap.String("path", path), zap.Error(err))
	}
	return Fallback()
}

// Save writes the catalog as indented JSON via a temp file and rename.
func (c *Catalog) Save(path string) error {
	data, err := json.MarshalIndent(c.flavors, "", "    ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Fallback is the minimal flavor set used when no catalog file is available.
func Fallback() *Catalog {
	return MustNew([]Flavor{
		{Name: "Blue Ice", Code: "A1", Image: "Blue_Ice.jpg"},
		{Name: "Tropical Rain", Code: "A2", Image: "Tropical_Rain.jpg"},
		{Name: "Sour Cherry", Code: "A3", Image: "Sour_Cherry.jpg"},
		{Name: "Strawberry Banana", Code: "A4", Image: "Strawberry_Banana.jpg"},
		{Name: "Watermelon", Code: "B2", Image: "Watermelon.jpg"},
		{Name: "Rainbow Sherbet", Code: "B3", Image: "Rainbow_Sherbet.jpg"},
	})
}

// ---------- Code assignment ----------

const codeDigits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// AssignCodes returns a catalog where every flavor without a code gets the next
// free code in base-36 order ("00", "01", …). Existing codes never move.
func (c *Catalog) AssignCodes() (*Catalog, error) {
	flavors := c.Flavors()
	next := 0
	for i := range flavors {
		if flavors[i].Code != "" {
			continue
		}
		for ; ; next++ {
			if next >= len(codeDigits)*len(codeDigits) {
				return nil, errors.New("flavor code space exhausted")
			}
			code := string([]byte{codeDigits[next/len(codeDigits)], codeDigits[next%len(codeDigits)]})
			if _, taken := c.byCode[code]; !taken {
				flavors[i].Code = code
				next++
				break
			}
		}
	}
	return New(flavors)
}
