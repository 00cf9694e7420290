package utils

import "testing"

func TestTruncate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than max", "hi", 5, "hi"},
		{"exactly max", "hello", 5, "hello"},
		{"cut with ellipsis", "hello world", 5, "hello..."},
		{"zero max", "hello", 0, ""},
		{"negative max", "hello", -1, ""},
		{"empty input", "", 5, ""},
		{"multibyte not split", "héllo wörld", 6, "héllo ..."},
		{"arabic", "مرحبا بالعالم", 5, "مرحبا..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.in, tc.max); got != tc.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
		})
	}
}

func TestFirstNonBlank(t *testing.T) {
	if got := FirstNonBlank("", "  ", "x", "y"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
	if got := FirstNonBlank("", "   "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := FirstNonBlank(); got != "" {
		t.Fatalf("expected empty for no args, got %q", got)
	}
}
