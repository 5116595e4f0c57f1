package httpapi

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/poku-e/tubtakes/internal/catalog"
	"github.com/poku-e/tubtakes/internal/shortcode"
	"github.com/poku-e/tubtakes/internal/tier"
	"github.com/poku-e/tubtakes/internal/tiercode"
)

type pageFlavor struct {
	Name  string
	Image string
}

type pageTier struct {
	Label   string
	Color   template.CSS
	Flavors []pageFlavor
}

type pageData struct {
	Input        string
	Error        string
	Tiers        []pageTier
	Placeholders int
	RemapMissing bool
	Unresolved   []string
	Code         string
}

func (s *Server) tiersView(a tier.Assignment) []pageTier {
	cat := s.share.Catalog()
	out := make([]pageTier, 0, len(tier.Order))
	for _, t := range tier.Order {
		pt := pageTier{Label: t.String(), Color: template.CSS(t.Color())}
		for _, name := range a[t] {
			pf := pageFlavor{Name: name}
			if s.imagesDir != "" {
				img := catalog.ImageFileName(name)
				if f, ok := cat.ByName(name); ok && f.Image != "" {
					img = f.Image
				}
				if img != "" {
					pf.Image = "/images/" + img
				}
			}
			pt.Flavors = append(pt.Flavors, pf)
		}
		out = append(out, pt)
	}
	return out
}

// landing renders a shared tier list from ?c= (tier code) or ?s= (short code).
func (s *Server) landing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := strings.TrimSpace(q.Get("s"))
	if input == "" {
		input = strings.TrimSpace(q.Get("c"))
	}

	data := pageData{Input: input}
	status := http.StatusOK
	if input != "" {
		imp, err := s.share.Import(r.Context(), input, s.slotFor(w, r))
		switch {
		case err == nil:
			data.Tiers = s.tiersView(imp.Tiers)
			data.Placeholders = imp.Placeholders
			data.RemapMissing = imp.RemapMissing
			data.Unresolved = imp.Unresolved
			data.Code = imp.Code
		case errors.Is(err, tiercode.ErrInvalidEncoding), errors.Is(err, shortcode.ErrDecompression):
			status = http.StatusBadRequest
			data.Error = "That share code could not be read."
		case errors.Is(err, shortcode.ErrInvalidCommand):
			status = http.StatusBadRequest
			data.Error = "Chat commands look like /update code:TT-..."
		default:
			s.logger.Error("landing import failed", zap.Error(err))
			status = http.StatusInternalServerError
			data.Error = "Something went wrong."
		}
	}

	var buf bytes.Buffer
	if err := landingTmpl.Execute(&buf, data); err != nil {
		s.logger.Error("template error", zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Debug("error writing response", zap.Error(err))
	}
}
