// Package search ranks snippets against a free-text query.
//
// An Index is built from a snapshot of the store for a single read and is
// discarded afterwards. Scores are in [0,1] where 0 is a perfect match.
package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/hpungsan/intelliclip/internal/markdown"
	"github.com/hpungsan/intelliclip/internal/snippet"
)

// DefaultThreshold is the maximum score a result may have.
const DefaultThreshold = 0.5

// Field names reported in results.
const (
	FieldContent  = "content"
	FieldLanguage = "language"
	FieldTags     = "tags"
	FieldSummary  = "summary"
)

// substringCeiling bounds the score of a substring hit; the offset of the
// hit moves the score between 0.01 and this value.
const substringCeiling = 0.1

// Options configures an Index.
type Options struct {
	// Threshold is the maximum accepted score. 0 accepts exact field
	// matches only, 1 accepts everything.
	Threshold float64
}

// DefaultOptions returns Options with DefaultThreshold.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold}
}

// Result is a ranked match.
type Result struct {
	Snippet snippet.Snippet `json:"snippet"`
	Score   float64         `json:"score"`
	Field   string          `json:"field"`
}

type fieldValues struct {
	name   string
	values []string
}

type entry struct {
	snippet snippet.Snippet
	fields  []fieldValues
}

// Index is an immutable search view over a snippet snapshot. It is not
// safe for concurrent use.
type Index struct {
	entries   []entry
	threshold float64
	fold      cases.Caser
}

// New builds an index over snippets.
func New(snippets []snippet.Snippet, opts Options) *Index {
	threshold := opts.Threshold
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}

	idx := &Index{
		entries:   make([]entry, 0, len(snippets)),
		threshold: threshold,
		fold:      cases.Fold(),
	}
	for _, s := range snippets {
		idx.entries = append(idx.entries, idx.build(s))
	}
	return idx
}

// Len returns the number of indexed snippets.
func (idx *Index) Len() int {
	return len(idx.entries)
}

func (idx *Index) build(s snippet.Snippet) entry {
	e := entry{snippet: s}
	add := func(name string, values ...string) {
		var folded []string
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				folded = append(folded, idx.fold.String(v))
			}
		}
		if len(folded) > 0 {
			e.fields = append(e.fields, fieldValues{name: name, values: folded})
		}
	}

	add(FieldContent, s.Content)
	add(FieldLanguage, snippet.Deref(s.Language))
	add(FieldTags, s.TagList()...)
	if s.Summary != nil {
		add(FieldSummary, markdown.PlainText(*s.Summary))
	}
	return e
}

// Search returns snippets whose score is within the threshold, best first.
// Equal scores are ordered by timestamp descending. A blank query returns nil.
func (idx *Index) Search(query string) []Result {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}
	q = idx.fold.String(q)
	terms := strings.Fields(q)

	var results []Result
	for _, e := range idx.entries {
		best, field := 1.0, ""
		for _, f := range e.fields {
			for _, v := range f.values {
				if s := score(q, terms, v); s < best || (field == "" && s <= best) {
					best, field = s, f.name
				}
			}
		}
		if field != "" && best <= idx.threshold {
			results = append(results, Result{Snippet: e.snippet, Score: best, Field: field})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.Snippet.Timestamp != b.Snippet.Timestamp {
			return a.Snippet.Timestamp > b.Snippet.Timestamp
		}
		return a.Snippet.ID > b.Snippet.ID
	})
	return results
}

// score rates a folded query against one folded field value.
func score(q string, terms []string, value string) float64 {
	if value == q {
		return 0
	}
	if pos := strings.Index(value, q); pos >= 0 {
		return substringScore(pos, len(value))
	}

	words := tokenize(value)
	if len(words) == 0 {
		return 1
	}
	total := 0.0
	for _, term := range terms {
		total += termScore(term, value, words)
	}
	return total / float64(len(terms))
}

func substringScore(pos, length int) float64 {
	if length == 0 {
		return 0.01
	}
	return 0.01 + (substringCeiling-0.01)*float64(pos)/float64(length)
}

// termScore is the best normalized edit distance between term and any word
// of the field, comparing against word prefixes too so partial input like
// "pyth" still ranks "python" highly.
func termScore(term, value string, words []string) float64 {
	if term == "" {
		return 1
	}
	if pos := strings.Index(value, term); pos >= 0 {
		return substringScore(pos, len(value))
	}

	best := 1.0
	termLen := utf8.RuneCountInString(term)
	for _, w := range words {
		if d := normalized(term, w); d < best {
			best = d
		}
		if utf8.RuneCountInString(w) > termLen {
			if d := normalized(term, prefix(w, termLen)); d < best {
				best = d
			}
		}
	}
	return best
}

func normalized(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// tokenize splits on anything that is not a letter, digit, '#' or '_'.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '#'
	})
}
