package poptravel

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Déjà vu 2024  ", "d-j-vu-2024"},
		{"already-slugged", "already-slugged"},
		{"UPPER_case.name", "upper-case-name"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"http://localhost:3000", []string{"section", "guide"}, "http://localhost:3000/section/guide/"},
		{"https://example.com/", []string{"admin"}, "https://example.com/admin/"},
		{"https://example.com", nil, "https://example.com"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestJoinTags(t *testing.T) {
	if got := JoinTags([]string{"voyage", "asie"}); got != "voyage, asie" {
		t.Errorf("JoinTags = %q, want %q", got, "voyage, asie")
	}
	if got := JoinTags(nil); got != "" {
		t.Errorf("JoinTags(nil) = %q, want empty", got)
	}
}
