package snippet

import (
	"slices"
	"strings"
)

// IsBlank reports whether text is empty or whitespace only.
// Blank text is never captured and never accepted as edited content.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// SplitTags splits a comma-delimited tag string, trimming each entry and
// dropping empties. Order and duplicates are preserved.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// NormalizeTags canonicalizes a comma-delimited tag string:
// 1. Split on commas, trim, drop empty entries
// 2. Deduplicate case-insensitively (first spelling wins)
// 3. Sort case-insensitively
// 4. Join with ","
func NormalizeTags(s string) string {
	tags := SplitTags(s)
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return strings.Join(out, ",")
}

// NormalizeTagsPtr normalizes a nullable tag string. Tags that normalize to
// nothing become nil so the column is stored as NULL.
func NormalizeTagsPtr(s *string) *string {
	if s == nil {
		return nil
	}
	norm := NormalizeTags(*s)
	if norm == "" {
		return nil
	}
	return &norm
}

// TagsEqual compares two nullable tag strings after normalization,
// ignoring case.
func TagsEqual(a, b *string) bool {
	return strings.EqualFold(NormalizeTags(Deref(a)), NormalizeTags(Deref(b)))
}

// CleanLanguage trims a language tag and lowercases it. A blank value
// becomes nil.
func CleanLanguage(s *string) *string {
	if s == nil {
		return nil
	}
	lang := strings.ToLower(strings.TrimSpace(*s))
	if lang == "" {
		return nil
	}
	return &lang
}
