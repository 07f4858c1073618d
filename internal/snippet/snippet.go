package snippet

// Snippet is a captured text record with its classification, tags and
// enrichment summary.
type Snippet struct {
	// ID is assigned by the store and never reused after deletion
	ID int64 `json:"id"`

	// Content is the captured payload; never empty
	Content string `json:"content"`

	// Timestamp is epoch milliseconds, bumped on every mutation except the
	// background summary write-back
	Timestamp int64 `json:"timestamp"`

	// Language is the detected or user-corrected language tag (nullable)
	Language *string `json:"language"`

	// Tags is a normalized comma-delimited label set (nullable)
	Tags *string `json:"tags"`

	// Summary holds the enrichment output or a failure message (nullable)
	Summary *string `json:"summary"`
}

// Patch is a set of named field changes applied in a single mutation.
// A nil field is left untouched. For the nullable fields a pointer to an
// empty string clears the column.
type Patch struct {
	Content  *string
	Tags     *string
	Language *string
	Summary  *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Content == nil && p.Tags == nil && p.Language == nil && p.Summary == nil
}

// Fields returns the names of the fields the patch touches, in column order.
func (p Patch) Fields() []string {
	fields := make([]string, 0, 4)
	if p.Content != nil {
		fields = append(fields, "content")
	}
	if p.Language != nil {
		fields = append(fields, "language")
	}
	if p.Tags != nil {
		fields = append(fields, "tags")
	}
	if p.Summary != nil {
		fields = append(fields, "summary")
	}
	return fields
}

// TagList splits the snippet's tags into a slice.
func (s *Snippet) TagList() []string {
	if s.Tags == nil {
		return nil
	}
	return SplitTags(*s.Tags)
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
