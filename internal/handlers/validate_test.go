package handlers

import "testing"

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.fr", "jean.dupont@voyage.example.com"}
	for _, e := range valid {
		if !validEmail(e) {
			t.Errorf("validEmail(%q) = false", e)
		}
	}

	invalid := []string{"", "pas-un-email", "a@", "@b.fr", "Jean <a@b.fr>"}
	for _, e := range invalid {
		if validEmail(e) {
			t.Errorf("validEmail(%q) = true", e)
		}
	}
}

func TestClampReadingTime(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 5}, {-3, 5}, {61, 5}, {400, 5},
		{1, 1}, {5, 5}, {60, 60}, {12, 12},
	}
	for _, tt := range tests {
		if got := clampReadingTime(tt.in); got != tt.want {
			t.Errorf("clampReadingTime(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	if d, ok := parseDate(nil); !ok || d != nil {
		t.Error("nil input should be accepted as no date")
	}

	empty := "  "
	if d, ok := parseDate(&empty); !ok || d != nil {
		t.Error("blank input should be accepted as no date")
	}

	good := "2026-04-12"
	d, ok := parseDate(&good)
	if !ok || d == nil || d.Format("2006-01-02") != good {
		t.Errorf("parseDate(%q) = %v, %v", good, d, ok)
	}

	for _, bad := range []string{"12/04/2026", "2026-13-40", "hier"} {
		s := bad
		if _, ok := parseDate(&s); ok {
			t.Errorf("parseDate(%q) should fail", bad)
		}
	}
}

func TestRequireText(t *testing.T) {
	if msg := requireText("valeur", "nom", 100); msg != "" {
		t.Errorf("valid value rejected: %q", msg)
	}
	if msg := requireText("   ", "nom", 100); msg == "" {
		t.Error("blank value should be rejected")
	}
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	if msg := requireText(string(long), "nom", 100); msg == "" {
		t.Error("overlong value should be rejected")
	}
}
