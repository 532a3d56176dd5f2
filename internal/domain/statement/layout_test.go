package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconstructLines(t *testing.T) {
	t.Run("orders lines top to bottom and fragments left to right", func(t *testing.T) {
		page := Page{Fragments: []Fragment{
			{X: 120, Y: 700, Text: "DESCRIPTION"},
			{X: 40, Y: 700, Text: "DATE"},
			{X: 300, Y: 700, Text: "AMOUNT"},
			{X: 40, Y: 680, Text: "03/14"},
			{X: 120, Y: 680, Text: "Payroll Direct Dep"},
			{X: 300, Y: 680, Text: "1,250.00"},
		}}

		lines, truncated := ReconstructLines([]Page{page})
		assert.False(t, truncated)
		assert.Equal(t, []string{
			"DATE DESCRIPTION AMOUNT",
			"03/14 Payroll Direct Dep 1,250.00",
		}, lines)
	})

	t.Run("tolerates sub-pixel baseline jitter", func(t *testing.T) {
		page := Page{Fragments: []Fragment{
			{X: 10, Y: 500.2, Text: "left"},
			{X: 90, Y: 499.8, Text: "right"},
		}}

		lines, _ := ReconstructLines([]Page{page})
		assert.Equal(t, []string{"left right"}, lines)
	})

	t.Run("drops blank lines", func(t *testing.T) {
		page := Page{Fragments: []Fragment{
			{X: 10, Y: 100, Text: "   "},
			{X: 10, Y: 90, Text: "real"},
		}}

		lines, _ := ReconstructLines([]Page{page})
		assert.Equal(t, []string{"real"}, lines)
	})

	t.Run("concatenates pages in order", func(t *testing.T) {
		pages := []Page{
			{Fragments: []Fragment{{X: 0, Y: 10, Text: "page one"}}},
			{Fragments: []Fragment{{X: 0, Y: 900, Text: "page two"}}},
		}

		lines, _ := ReconstructLines(pages)
		assert.Equal(t, []string{"page one", "page two"}, lines)
	})

	t.Run("page cap truncates without error", func(t *testing.T) {
		pages := make([]Page, MaxPages+5)
		for i := range pages {
			pages[i] = Page{Fragments: []Fragment{{X: 0, Y: 10, Text: "line"}}}
		}

		lines, truncated := ReconstructLines(pages)
		assert.True(t, truncated)
		assert.Len(t, lines, MaxPages)
	})

	t.Run("empty input yields empty success", func(t *testing.T) {
		lines, truncated := ReconstructLines(nil)
		assert.Empty(t, lines)
		assert.False(t, truncated)
	})
}
