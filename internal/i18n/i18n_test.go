package i18n

import (
	"context"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := LocalizerFor(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "CancelWord")
	if got != "cancel" {
		t.Errorf("T(CancelWord) = %q, want 'cancel'", got)
	}

	got = T(ctx, "MenuTitle")
	if got != "What would you like to do?" {
		t.Errorf("T(MenuTitle) = %q, want 'What would you like to do?'", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	got := T(ctx, "CancelWord")
	if got != "отмена" {
		t.Errorf("T(CancelWord) = %q, want 'отмена'", got)
	}

	got = T(ctx, "Cancelled")
	if got != "Отменено." {
		t.Errorf("T(Cancelled) = %q, want 'Отменено.'", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "TestSaved", map[string]any{"Name": "Networking"})
	if got != `Test "Networking" has been saved.` {
		t.Errorf("Td(TestSaved) = %q", got)
	}

	got = Td(ctx, "QuizReport", map[string]any{"Result": "3/5 (60.0%)"})
	if got != "Your result: 3/5 (60.0%)" {
		t.Errorf("Td(QuizReport) = %q", got)
	}
}

func TestLocalizerFallback(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// A client language without a locale file falls back to the configured
	// default; empty preferences are skipped.
	ctx := WithLocalizer(context.Background(), LocalizerFor("de"))
	if got := T(ctx, "CancelWord"); got != "cancel" {
		t.Errorf("T(CancelWord) with unknown language = %q, want 'cancel'", got)
	}
	ctx = WithLocalizer(context.Background(), LocalizerFor(""))
	if got := T(ctx, "Cancelled"); got != "Cancelled." {
		t.Errorf("T(Cancelled) with empty language = %q, want 'Cancelled.'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}
