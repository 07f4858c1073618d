// Package classify assigns a best-effort language identifier to raw text.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// MinRelevance is the lowest heuristic score that yields a language.
const MinRelevance = 3

// Classifier maps text to a language identifier, or "" when unknown.
// Implementations must not perform I/O and must not panic.
type Classifier interface {
	Classify(text string) string
}

// Func adapts a plain function to Classifier.
type Func func(text string) string

// Classify calls f.
func (f Func) Classify(text string) string {
	return f(text)
}

// chromaNames maps chroma lexer names to the identifiers we store.
var chromaNames = map[string]string{
	"Bash":         "bash",
	"Bash Session": "bash",
	"C#":           "csharp",
	"C++":          "cpp",
	"CSS":          "css",
	"Go":           "go",
	"HTML":         "html",
	"Java":         "java",
	"JavaScript":   "javascript",
	"JSON":         "json",
	"markdown":     "markdown",
	"PHP":          "php",
	"Python":       "python",
	"Python 2":     "python",
	"Ruby":         "ruby",
	"Rust":         "rust",
	"SQL":          "sql",
	"TypeScript":   "typescript",
	"XML":          "html",
}

type rule struct {
	re     *regexp.Regexp
	weight int
}

func r(pattern string, weight int) rule {
	return rule{re: regexp.MustCompile(pattern), weight: weight}
}

// signals holds weighted patterns per language. A language's score is the
// sum of the weights of the patterns that match at least once.
var signals = map[string][]rule{
	"python": {
		r(`(?m)^\s*def \w+\s*\(.*\)\s*(->\s*[\w\[\], .]+)?:`, 4),
		r(`(?m)^\s*(from [\w.]+ )?import [\w., ]+$`, 2),
		r(`(?m)^\s*class \w+(\(.*\))?:\s*$`, 3),
		r(`(?m)^\s*(elif|except|finally)\b.*:\s*$`, 3),
		r(`\bself\.\w+`, 2),
		r(`\b(None|True|False)\b`, 1),
		r(`(?m):\s*pass\s*$`, 2),
		r(`\bprint\(`, 1),
	},
	"javascript": {
		r(`\b(const|let|var) \w+\s*=`, 2),
		r(`=>\s*[{(]?`, 2),
		r(`\bfunction\s*\w*\s*\(`, 3),
		r(`\bconsole\.\w+\(`, 3),
		r(`\brequire\(['"]`, 3),
		r(`===|!==`, 2),
		r(`\bdocument\.|\bwindow\.`, 2),
	},
	"typescript": {
		r(`\binterface \w+\s*\{`, 3),
		r(`\btype \w+\s*=`, 2),
		r(`:\s*(string|number|boolean|any|unknown|void)\b`, 3),
		r(`\b(const|let) \w+:\s*\w+`, 3),
		r(`\bimport .* from ['"]`, 1),
		r(`\b(public|private|readonly) \w+:`, 2),
	},
	"json": {
		r(`^\s*[\[{]\s*"[^"]+"\s*:`, 4),
		r(`"[^"]+"\s*:\s*("|\d|true|false|null|\{|\[)`, 1),
	},
	"css": {
		r(`(?m)^\s*[.#]?[\w-]+(\s*[,>+~]?\s*[.#]?[\w-]+)*\s*\{`, 1),
		r(`(?m)^\s*[\w-]+\s*:\s*[^;{}]+;\s*$`, 2),
		r(`\b\d+(px|em|rem|vh|vw|%)\b`, 2),
		r(`@media\b|@import\b|@keyframes\b`, 3),
		r(`#[0-9a-fA-F]{3,6}\b`, 1),
	},
	"html": {
		r(`(?i)<!doctype html`, 5),
		r(`<(html|head|body|div|span|p|a|ul|li|script|style)\b[^>]*>`, 3),
		r(`</\w+>`, 2),
	},
	"bash": {
		r(`^#!/(usr/)?bin/(env )?(ba|z)?sh`, 5),
		r(`(?m)^\s*(echo|export|cd|sudo|apt|brew|npm|pip|git|curl|chmod|mkdir) `, 2),
		r(`\$\{?\w+\}?`, 1),
		r(`(?m)^\s*(if \[|fi$|then$|done$|do$)`, 3),
		r(`\|\s*(grep|awk|sed|xargs|sort|head|tail)\b`, 3),
	},
	"java": {
		r(`\bpublic (static )?(final )?(class|void|int|String)\b`, 3),
		r(`\bSystem\.out\.print`, 4),
		r(`\bString\[\] args\b`, 4),
		r(`\bimport java\.`, 4),
		r(`\bnew \w+(<.*>)?\(`, 1),
		r(`@Override\b`, 3),
	},
	"cpp": {
		r(`#include\s*<\w+(\.h)?>`, 4),
		r(`\bstd::\w+`, 4),
		r(`\bcout\s*<<|\bcin\s*>>`, 4),
		r(`\busing namespace std;`, 4),
		r(`\bint main\s*\(`, 2),
		r(`\b(vector|map|unordered_map|set)<`, 2),
	},
	"csharp": {
		r(`\busing System(\.\w+)*;`, 4),
		r(`\bnamespace [\w.]+`, 2),
		r(`\bConsole\.Write(Line)?\(`, 4),
		r(`\bpublic (async )?(Task|void|string|int)\b`, 1),
		r(`\{\s*get;\s*(set;)?\s*\}`, 4),
	},
	"php": {
		r(`<\?php`, 6),
		r(`\$\w+\s*=`, 1),
		r(`\becho\s+\$`, 2),
		r(`->\w+\(`, 1),
		r(`\bfunction \w+\(\$`, 3),
	},
	"ruby": {
		r(`(?m)^\s*def \w+[?!]?(\(.*\))?\s*$`, 3),
		r(`(?m)^\s*end\s*$`, 2),
		r(`\bputs\b`, 2),
		r(`\brequire ['"]`, 2),
		r(`\.each\s+do\s*\|`, 4),
		r(`:\w+\s*=>`, 2),
	},
	"go": {
		r(`(?m)^package \w+`, 4),
		r(`\bfunc (\(\w+ \*?\w+\) )?\w+\(`, 4),
		r(`:=`, 2),
		r(`\bfmt\.\w+\(`, 3),
		r(`\berr != nil\b`, 4),
		r(`\bimport \(`, 2),
	},
	"rust": {
		r(`\bfn \w+(<.*>)?\(`, 3),
		r(`\blet mut \w+`, 4),
		r(`\bprintln!\(`, 4),
		r(`\bimpl(<.*>)? \w+`, 3),
		r(`\buse \w+::`, 3),
		r(`&mut \w+|&str\b`, 2),
		r(`\bmatch \w+ \{`, 2),
	},
	"sql": {
		r(`(?i)\bselect\b[\s\S]+\bfrom\b`, 4),
		r(`(?i)\binsert into\b`, 4),
		r(`(?i)\bupdate \w+ set\b`, 4),
		r(`(?i)\bdelete from\b`, 4),
		r(`(?i)\bcreate (table|index|view)\b`, 4),
		r(`(?i)\b(where|join|group by|order by)\b`, 1),
	},
	"markdown": {
		r(`(?m)^#{1,6} \S`, 2),
		r(`(?m)^\s*[-*] \S`, 1),
		r("(?m)^```", 3),
		r(`\[[^\]]+\]\([^)]+\)`, 3),
		r(`\*\*[^*]+\*\*`, 1),
	},
}

// languages is the sorted key set of signals, for deterministic tie-breaks.
var languages = func() []string {
	names := make([]string, 0, len(signals))
	for name := range signals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

type classifier struct{}

// New returns the default classifier: chroma's content analysers first,
// then weighted regexp heuristics.
func New() Classifier {
	return classifier{}
}

func (classifier) Classify(text string) (lang string) {
	defer func() {
		if recover() != nil {
			lang = ""
		}
	}()

	if strings.TrimSpace(text) == "" {
		return ""
	}
	if lang := analyse(text); lang != "" {
		return lang
	}
	return heuristic(text)
}

func analyse(text string) string {
	lexer := lexers.Analyse(text)
	if lexer == nil {
		return ""
	}
	return chromaNames[lexer.Config().Name]
}

// Scores returns the heuristic relevance per language. Languages with no
// matching signal are omitted.
func Scores(text string) map[string]int {
	scores := make(map[string]int)
	for _, name := range languages {
		total := 0
		for _, rl := range signals[name] {
			if rl.re.MatchString(text) {
				total += rl.weight
			}
		}
		if total > 0 {
			scores[name] = total
		}
	}
	return scores
}

func heuristic(text string) string {
	scores := Scores(text)
	best, bestScore := "", 0
	for _, name := range languages {
		if s := scores[name]; s > bestScore {
			best, bestScore = name, s
		}
	}
	if bestScore < MinRelevance {
		return ""
	}
	return best
}
