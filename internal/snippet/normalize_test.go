package snippet

import "testing"

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only commas", " , ,, ", ""},
		{"single", "go", "go"},
		{"trims", "  go  ,  rust ", "go,rust"},
		{"sorts", "rust,go,c", "c,go,rust"},
		{"dedupes case-insensitively", " b, A ,a,,c", "A,b,c"},
		{"sort ignores case", "beta,Alpha,gamma", "Alpha,beta,gamma"},
		{"keeps inner spaces", "data structure, dp", "data structure,dp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTagsPtr(t *testing.T) {
	if got := NormalizeTagsPtr(nil); got != nil {
		t.Errorf("NormalizeTagsPtr(nil) = %q, want nil", *got)
	}

	blank := " , "
	if got := NormalizeTagsPtr(&blank); got != nil {
		t.Errorf("NormalizeTagsPtr(blank) = %q, want nil", *got)
	}

	in := "z,a"
	got := NormalizeTagsPtr(&in)
	if got == nil || *got != "a,z" {
		t.Errorf("NormalizeTagsPtr(%q) = %v, want a,z", in, got)
	}
}

func TestTagsEqual(t *testing.T) {
	a := "go, Rust"
	b := "rust,go"
	if !TagsEqual(&a, &b) {
		t.Errorf("TagsEqual(%q, %q) = false, want true", a, b)
	}

	empty := ""
	if !TagsEqual(nil, &empty) {
		t.Error("nil and empty tags should be equal")
	}

	d := "Go,rust"
	e := "go,Rust"
	if !TagsEqual(&d, &e) {
		t.Errorf("TagsEqual(%q, %q) = false, want true", d, e)
	}

	c := "go,python"
	if TagsEqual(&a, &c) {
		t.Errorf("TagsEqual(%q, %q) = true, want false", a, c)
	}
}

func TestIsBlank(t *testing.T) {
	for _, s := range []string{"", " ", "\n\t  \r\n"} {
		if !IsBlank(s) {
			t.Errorf("IsBlank(%q) = false, want true", s)
		}
	}
	if IsBlank(" x ") {
		t.Error(`IsBlank(" x ") = true, want false`)
	}
}

func TestCleanLanguage(t *testing.T) {
	if got := CleanLanguage(nil); got != nil {
		t.Errorf("CleanLanguage(nil) = %q, want nil", *got)
	}
	blank := "  "
	if got := CleanLanguage(&blank); got != nil {
		t.Errorf("CleanLanguage(blank) = %q, want nil", *got)
	}
	py := " Python "
	if got := CleanLanguage(&py); got == nil || *got != "python" {
		t.Errorf("CleanLanguage(%q) = %v, want python", py, got)
	}
}

func TestPatchFields(t *testing.T) {
	var p Patch
	if !p.Empty() {
		t.Error("zero Patch should be empty")
	}

	tags := "a"
	summary := "s"
	p = Patch{Tags: &tags, Summary: &summary}
	if p.Empty() {
		t.Error("Patch with fields should not be empty")
	}
	fields := p.Fields()
	if len(fields) != 2 || fields[0] != "tags" || fields[1] != "summary" {
		t.Errorf("Fields() = %v, want [tags summary]", fields)
	}
}
