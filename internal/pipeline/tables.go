package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"csascrape/internal"
	"csascrape/internal/util"
)

// InlineImagePrefix is the site path under which the weekly haul and
// recipe photos are published.
const InlineImagePrefix = "/sites/default/files/inline-images/"

// Document is one parsed week page. It keeps the goquery document
// around for the prose lookups (intro message, recipe instructions)
// that live outside the tables.
type Document struct {
	doc    *goquery.Document
	tables []internal.Table
}

// Parse reads raw HTML into the table sequence. Cell text is trimmed;
// th cells are flagged as label cells. Tables with zero rows are
// dropped here, before classification ever sees them.
func Parse(rawHTML string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	d := &Document{doc: doc}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		t := internal.Table{}
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			row := internal.Row{}
			tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				row = append(row, internal.Cell{
					Text:  strings.TrimSpace(cell.Text()),
					Label: goquery.NodeName(cell) == "th",
				})
			})
			t.Rows = append(t.Rows, row)
		})
		if len(t.Rows) > 0 {
			d.tables = append(d.tables, t)
		}
	})

	return d, nil
}

func (d *Document) Tables() []internal.Table {
	return d.tables
}

// Intro looks for a welcome message ahead of the first table: the
// nearest preceding heading mentioning "week", else the nearest
// preceding paragraph.
func (d *Document) Intro() string {
	heading := ""
	paragraph := ""
	d.doc.Find("h1,h2,h3,h4,h5,h6,p,table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name := goquery.NodeName(sel)
		if name == "table" {
			return false
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return true
		}
		if name == "p" {
			paragraph = text
		} else if strings.Contains(strings.ToLower(text), "week") {
			heading = text
		}
		return true
	})
	if heading != "" {
		return heading
	}
	return paragraph
}

// RecipeImageSources returns the site-relative srcs of the recipe
// photos on the page: img tags under InlineImagePrefix, minus the
// "-share.jpg" haul photo, deduplicated in document order. Absolute
// srcs on the given domain are reduced to their site-relative path;
// foreign domains are skipped.
func (d *Document) RecipeImageSources(baseDomain string) []string {
	var out []string
	d.doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			return
		}
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			if !strings.Contains(src, baseDomain) {
				return
			}
			src = strings.TrimPrefix(src, baseDomain)
		}
		if !strings.HasPrefix(src, InlineImagePrefix) {
			return
		}
		if strings.HasSuffix(src, "-share.jpg") {
			return
		}
		out = append(out, src)
	})
	return util.DedupePreserveOrder(out)
}

// Instructions collects the paragraphs following the heading whose text
// matches the recipe name, up to the next heading. Returns nil when the
// page has no heading for that recipe.
func (d *Document) Instructions(recipeName string) []string {
	target := strings.ToLower(strings.TrimSpace(recipeName))
	var out []string
	found := false
	d.doc.Find("h1,h2,h3,h4,h5,h6,p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name := goquery.NodeName(sel)
		if name != "p" {
			if found {
				return false
			}
			found = strings.ToLower(strings.TrimSpace(sel.Text())) == target
			return true
		}
		if found {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				out = append(out, text)
			}
		}
		return true
	})
	return out
}
