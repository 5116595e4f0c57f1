package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

// MissingImage is a flavor whose image file is not on disk.
type MissingImage struct {
	Flavor string `json:"flavor"`
	File   string `json:"file"`
}

// ImageReport compares catalog image references with an image directory.
type ImageReport struct {
	Missing []MissingImage `json:"missing"`
	Extra   []string       `json:"extra"`
}

func (r ImageReport) OK() bool { return len(r.Missing) == 0 && len(r.Extra) == 0 }

func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExts {
		if ext == e {
			return true
		}
	}
	return false
}

// CheckImages lists referenced images absent from dir and image files in dir
// that no flavor references. Non-image files are ignored.
func (c *Catalog) CheckImages(dir string) (ImageReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ImageReport{}, fmt.Errorf("read images dir: %w", err)
	}
	onDisk := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isImageFile(e.Name()) {
			continue
		}
		onDisk[e.Name()] = struct{}{}
	}

	var rep ImageReport
	referenced := make(map[string]struct{}, len(c.flavors))
	for _, f := range c.flavors {
		if f.Image == "" {
			continue
		}
		referenced[f.Image] = struct{}{}
		if _, ok := onDisk[f.Image]; !ok {
			rep.Missing = append(rep.Missing, MissingImage{Flavor: f.Name, File: f.Image})
		}
	}
	for name := range onDisk {
		if _, ok := referenced[name]; !ok {
			rep.Extra = append(rep.Extra, name)
		}
	}
	sort.Strings(rep.Extra)
	return rep, nil
}

// ImageFileName is the local file name for a flavor image ("Blue Ice" → "Blue_Ice.jpg").
// Only letters, digits, '-' and '_' survive, so the name never holds a path
// separator. It returns "" when nothing usable is left.
func ImageFileName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '/', r == '\\':
			b.WriteByte('_')
		}
	}
	if strings.Trim(b.String(), "_-") == "" {
		return ""
	}
	return b.String() + ".jpg"
}
