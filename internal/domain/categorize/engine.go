package categorize

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Engine performs case-insensitive substring lookup of every keyword in a
// single pass using an Aho-Corasick matcher, then resolves ties by the rule
// table's declaration order. Build once, Infer many times; the engine holds no
// mutable state after construction.
type Engine struct {
	matcher *ahocorasick.Matcher
	// ruleIdx[i] is the declaration index of the rule owning pattern i.
	ruleIdx    []int
	categories []string
}

// NewEngine compiles the rule table. Keywords are matched lower-cased.
func NewEngine(rules []Rule) *Engine {
	e := &Engine{}

	var patterns [][]byte
	for i, rule := range rules {
		e.categories = append(e.categories, rule.Category)
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			patterns = append(patterns, []byte(kw))
			e.ruleIdx = append(e.ruleIdx, i)
		}
	}
	if len(patterns) > 0 {
		e.matcher = ahocorasick.NewMatcher(patterns)
	}
	return e
}

// NewDefaultEngine compiles the shipped keyword table.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRules())
}

// Infer returns the category for a description, or "" when no keyword
// matches. When keywords from several categories hit, the category declared
// earliest in the table wins regardless of match position in the text.
func (e *Engine) Infer(description string) string {
	if e.matcher == nil {
		return ""
	}

	hits := e.matcher.Match([]byte(strings.ToLower(description)))
	if len(hits) == 0 {
		return ""
	}

	best := -1
	for _, patIdx := range hits {
		if patIdx < 0 || patIdx >= len(e.ruleIdx) {
			continue
		}
		if idx := e.ruleIdx[patIdx]; best == -1 || idx < best {
			best = idx
		}
	}
	if best == -1 {
		return ""
	}
	return e.categories[best]
}

// InferBatch annotates many descriptions with one matcher pass each.
func (e *Engine) InferBatch(descriptions []string) []string {
	out := make([]string, len(descriptions))
	for i, d := range descriptions {
		out[i] = e.Infer(d)
	}
	return out
}
