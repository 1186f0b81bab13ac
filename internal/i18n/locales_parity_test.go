package i18n

import (
	"sort"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLocaleKeysParity(t *testing.T) {
	manager, err := NewManager(LangEN)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}

	en := manager.locales[LangEN]
	for _, language := range manager.SupportedLanguages() {
		if language == LangEN {
			continue
		}
		messages := manager.locales[language]

		if missing := missingKeys(en, messages); len(missing) > 0 {
			t.Errorf("keys missing in %s locale: %s", language, strings.Join(missing, ", "))
		}
		if missing := missingKeys(messages, en); len(missing) > 0 {
			t.Errorf("keys missing in en locale: %s", strings.Join(missing, ", "))
		}
		for key, value := range en {
			if strings.Count(value, "%s") != strings.Count(messages[key], "%s") {
				t.Errorf("placeholder count differs for %s in %s", key, language)
			}
		}
	}
}

func TestTranslateFallsBackToEnglish(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.json": {Data: []byte(`{"greeting": "Hello %s", "only.en": "English"}`)},
		"locales/hi.json": {Data: []byte(`{"greeting": "नमस्ते %s"}`)},
	}
	manager, err := NewManagerFS(fsys, "locales", "hi-IN")
	if err != nil {
		t.Fatalf("NewManagerFS returned error: %v", err)
	}

	if manager.DefaultLanguage() != LangHI {
		t.Fatalf("expected region to be dropped, got %q", manager.DefaultLanguage())
	}
	if got := manager.Translatef("hi", "greeting", "Asha"); got != "नमस्ते Asha" {
		t.Fatalf("unexpected hindi greeting %q", got)
	}
	if got := manager.Translate("hi", "only.en"); got != "English" {
		t.Fatalf("expected english fallback, got %q", got)
	}
	if got := manager.Translate("fr", "greeting"); got != "नमस्ते %s" {
		t.Fatalf("expected unsupported language to use default, got %q", got)
	}
	if got := manager.Translate("en", "missing.key"); got != "missing.key" {
		t.Fatalf("expected key echo for missing message, got %q", got)
	}
	if manager.Supports("de") || !manager.Supports("EN_us") {
		t.Fatal("unexpected Supports result")
	}
}

func TestNewManagerFSRequiresEnglish(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/hi.json": {Data: []byte(`{"greeting": "नमस्ते"}`)},
	}
	if _, err := NewManagerFS(fsys, "locales", LangHI); err == nil {
		t.Fatal("expected missing english locale to fail")
	}
}

func missingKeys(source map[string]string, target map[string]string) []string {
	missing := make([]string, 0)
	for key := range source {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
