package i18n

import "testing"

func mustNew(t *testing.T, lang string) *Translator {
	t.Helper()
	tr, err := New(lang)
	if err != nil {
		t.Fatalf("New(%q): %v", lang, err)
	}
	return tr
}

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "en"},
		{"en", "en"},
		{"de", "de"},
		{"de-AT", "de"},
		{"de_DE.UTF-8", "de"},
		{"ar", "ar"},
		{"ar-EG", "ar"},
		{"fr", "en"},
		{"not a language", "en"},
	}
	for _, tt := range tests {
		if got := Match(tt.in); got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	en := mustNew(t, "en")
	if got := en.T("errors.networkError", nil); got != "Network error" {
		t.Errorf("got %q", got)
	}

	de := mustNew(t, "de")
	if got := de.T("errors.networkError", nil); got != "Netzwerkfehler" {
		t.Errorf("got %q", got)
	}
}

func TestTranslate_Interpolation(t *testing.T) {
	en := mustNew(t, "en")
	got := en.T("toast.loginMessage", map[string]string{"username": "sam"})
	if got != "Welcome back, sam!" {
		t.Errorf("got %q", got)
	}
	got = en.T("validation.maxLength", map[string]string{"field": "Title", "max": "255"})
	if got != "Title must be at most 255 characters" {
		t.Errorf("got %q", got)
	}
}

func TestInterpolate_ValuesNotRescanned(t *testing.T) {
	vars := map[string]string{"field": "{{max}}", "max": "{{field}}"}
	for i := 0; i < 20; i++ {
		got := interpolate("{{field}} must be at most {{max}} characters", vars)
		if got != "{{max}} must be at most {{field}} characters" {
			t.Fatalf("got %q", got)
		}
	}
	if got := interpolate("{{missing}} stays", vars); got != "{{missing}} stays" {
		t.Errorf("got %q", got)
	}
}

func TestTranslate_ContextVariant(t *testing.T) {
	en := mustNew(t, "en")
	got := en.T("errors.networkErrorMessage", map[string]string{"context": "fetchTasks"})
	if got != "Could not load your tasks. Check your connection and try again." {
		t.Errorf("context variant not used: %q", got)
	}
	got = en.T("errors.networkErrorMessage", map[string]string{"context": "createTask"})
	if got != "Could not reach the server. Please try again." {
		t.Errorf("missing variant should use base key: %q", got)
	}
}

func TestTranslate_Fallbacks(t *testing.T) {
	ar := mustNew(t, "ar")
	if !ar.RTL() {
		t.Error("arabic should be RTL")
	}
	// Arabic has no fetchTasks variant; English does.
	got := ar.T("errors.networkErrorMessage", map[string]string{"context": "fetchTasks"})
	if got != "Could not load your tasks. Check your connection and try again." {
		t.Errorf("expected english fallback for context variant, got %q", got)
	}
	if got := ar.T("no.such.key", nil); got != "no.such.key" {
		t.Errorf("unknown key should resolve to itself, got %q", got)
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	en := mustNew(t, "en")
	for _, code := range []string{"de", "ar"} {
		tr := mustNew(t, code)
		for key := range tr.primary {
			if _, ok := en.primary[key]; !ok {
				t.Errorf("%s has key %q missing from en", code, key)
			}
		}
	}
}
