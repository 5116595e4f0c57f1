// Package share is the export/import pipeline every surface goes through: an
// assignment becomes a tier code, a short code and a chat command, and any of
// those comes back as an assignment.
package share

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/poku-e/tubtakes/internal/catalog"
	"github.com/poku-e/tubtakes/internal/shortcode"
	"github.com/poku-e/tubtakes/internal/tier"
	"github.com/poku-e/tubtakes/internal/tiercode"
)

// Share is everything a user can paste somewhere.
type Share struct {
	Code    string          `json:"code"`
	Short   string          `json:"short"`
	Command string          `json:"command"`
	Link    string          `json:"link,omitempty"`
	Report  tiercode.Report `json:"report"`
}

// Imported is a decoded assignment plus what was lost on the way.
type Imported struct {
	Tiers tier.Assignment `json:"tiers"`
	// Code is the expanded tier code the assignment was decoded from.
	Code         string   `json:"code"`
	Exact        bool     `json:"exact"`
	Short        bool     `json:"short"`
	RemapMissing bool     `json:"remap_missing,omitempty"`
	Placeholders int      `json:"placeholders,omitempty"`
	Unresolved   []string `json:"unresolved,omitempty"`
	Duplicates   int      `json:"duplicates,omitempty"`
}

type Service struct {
	catalog    *catalog.Catalog
	compressor *shortcode.Compressor
	logger     *zap.Logger
	publicURL  string
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPublicURL makes Export return absolute share links.
func WithPublicURL(base string) Option {
	return func(s *Service) { s.publicURL = strings.TrimRight(base, "/") }
}

func New(cat *catalog.Catalog, comp *shortcode.Compressor, opts ...Option) *Service {
	if comp == nil {
		comp = shortcode.New(nil)
	}
	s := &Service{catalog: cat, compressor: comp, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Export encodes a and compresses the code into slot (DefaultSlot when empty).
func (s *Service) Export(ctx context.Context, a tier.Assignment, slot string) (Share, error) {
	code, rep := tiercode.Encode(a, s.catalog)
	if !rep.Clean() {
		s.logger.Info("tier list exported with dropped flavors",
			zap.Strings("unresolved", rep.Unresolved),
			zap.Int("duplicates", rep.Duplicates),
			zap.Int("skipped_tiers", rep.SkippedTiers))
	}
	short, err := s.compressor.ForSlot(slot).Compress(ctx, code)
	if err != nil {
		return Share{}, err
	}
	return Share{
		Code:    code,
		Short:   short,
		Command: shortcode.ChatCommand(short),
		Link:    s.Link(code),
		Report:  rep,
	}, nil
}

// Import accepts a tier code, a short code or a chat command.
func (s *Service) Import(ctx context.Context, input, slot string) (Imported, error) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "/") {
		v, err := shortcode.ParseChatCommand(input)
		if err != nil {
			return Imported{}, err
		}
		input = v
	}

	exp, err := s.compressor.ForSlot(slot).Decompress(ctx, input)
	if err != nil {
		return Imported{}, err
	}
	a, rep, err := tiercode.Decode(exp.Code, s.catalog)
	if err != nil {
		return Imported{}, err
	}

	out := Imported{
		Tiers:        a,
		Code:         exp.Code,
		Short:        !exp.Passthrough,
		RemapMissing: exp.RemapMissing,
		Placeholders: exp.Placeholders,
		Duplicates:   rep.Duplicates,
	}
	for _, id := range rep.Unresolved {
		if id != shortcode.Placeholder {
			out.Unresolved = append(out.Unresolved, id)
		}
	}
	out.Exact = exp.Exact && len(out.Unresolved) == 0 && out.Duplicates == 0
	if !out.Exact {
		s.logger.Info("tier list imported with losses",
			zap.Bool("short", out.Short),
			zap.Bool("remap_missing", out.RemapMissing),
			zap.Int("placeholders", out.Placeholders),
			zap.Int("unresolved", len(out.Unresolved)),
			zap.Int("duplicates", out.Duplicates))
	}
	return out, nil
}

// Resolve maps loosely typed names ("blue ice", "Sour Chery") onto catalog
// names. Names that match nothing are kept as typed so Encode reports them.
func (s *Service) Resolve(a tier.Assignment) tier.Assignment {
	out := tier.NewAssignment()
	for _, t := range tier.Order {
		for _, name := range a[t] {
			if canonical, ok := s.catalog.Resolve(name); ok {
				name = canonical
			}
			out.Add(t, name)
		}
	}
	return out
}

// Compress shortens a tier code, keeping the remap table in slot.
func (s *Service) Compress(ctx context.Context, code, slot string) (string, error) {
	return s.compressor.ForSlot(slot).Compress(ctx, code)
}

// Decompress expands a short code using the remap table in slot.
func (s *Service) Decompress(ctx context.Context, short, slot string) (shortcode.Expansion, error) {
	return s.compressor.ForSlot(slot).Decompress(ctx, short)
}

// Forget drops the remap table kept for slot.
func (s *Service) Forget(ctx context.Context, slot string) error {
	return s.compressor.ForSlot(slot).Forget(ctx)
}

// Link is the landing page URL for a tier code.
func (s *Service) Link(code string) string {
	q := url.Values{}
	if shortcode.IsShort(code) {
		q.Set("s", code)
	} else {
		q.Set("c", tiercode.URLSafe(code))
	}
	return s.publicURL + "/?" + q.Encode()
}
