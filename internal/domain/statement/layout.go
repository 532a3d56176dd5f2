// Package statement turns positioned text extracted from a financial document
// into reviewed transaction candidates: layout reconstruction, a two-pass line
// parser, category annotation and duplicate collapsing.
package statement

import (
	"math"
	"sort"
	"strings"
)

// Fragment is one positioned piece of text from the document-text-extraction
// collaborator. Y is the baseline vertical coordinate in the page's
// bottom-up coordinate system.
type Fragment struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

// Page is the ordered fragment stream for a single document page.
type Page struct {
	Fragments []Fragment `json:"fragments"`
}

// MaxPages caps how many pages one extraction processes. Pages beyond the cap
// are dropped and the truncation is reported, not an error.
const MaxPages = 100

// ReconstructLines groups fragments into visual lines: fragments whose
// baselines round to the same integer belong to one line (tolerating sub-pixel
// jitter from the renderer), lines are ordered top to bottom (descending y),
// and fragments within a line left to right. Blank lines are dropped.
// The second return reports whether the page cap truncated the input.
func ReconstructLines(pages []Page) ([]string, bool) {
	truncated := len(pages) > MaxPages
	if truncated {
		pages = pages[:MaxPages]
	}

	var lines []string
	for _, page := range pages {
		lines = append(lines, reconstructPage(page)...)
	}
	return lines, truncated
}

func reconstructPage(page Page) []string {
	if len(page.Fragments) == 0 {
		return nil
	}

	groups := make(map[int][]Fragment)
	for _, frag := range page.Fragments {
		key := int(math.Round(frag.Y))
		groups[key] = append(groups[key], frag)
	}

	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	// Descending y: document coordinates grow upward, so the largest
	// baseline is the top line of the page.
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		frags := groups[k]
		sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

		parts := make([]string, 0, len(frags))
		for _, f := range frags {
			parts = append(parts, f.Text)
		}
		line := strings.TrimSpace(strings.Join(parts, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
