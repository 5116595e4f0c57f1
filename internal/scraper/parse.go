package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const imageWidth = "1080"

var (
	imageIDRe = regexp.MustCompile(`v=(\d+)`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Product is one tile of the collection page.
type Product struct {
	Name     string
	ImageURL string
	ImageID  string
}

// ---------- Parsing ----------

func textCondense(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func resolve(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(ru).String()
}

// ParseProducts extracts every product tile that has both a title and a lazy
// loaded image. Tiles missing either are skipped.
func ParseProducts(html string, base *url.URL) ([]Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	tiles := doc.Find("div.grid-product__content")
	if tiles.Length() == 0 {
		return nil, fmt.Errorf("no product tiles found; check that the page is server-rendered")
	}

	var out []Product
	tiles.Each(func(_ int, tile *goquery.Selection) {
		name := textCondense(tile.Find("div.grid-product__title").First().Text())
		if name == "" {
			return
		}
		src, ok := tile.Find("img.lazyload").First().Attr("data-src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}
		src = resolve(base, strings.ReplaceAll(strings.TrimSpace(src), "{width}", imageWidth))

		p := Product{Name: name, ImageURL: src}
		if m := imageIDRe.FindStringSubmatch(src); len(m) == 2 {
			p.ImageID = m[1]
		}
		out = append(out, p)
	})
	return out, nil
}
