package utils

import "testing"

func TestDetermineLocale_QueryParamWins(t *testing.T) {
	got := DetermineLocale("es-AR", "en-US,en;q=0.9,es;q=0.8", SupportedLocales, "en")
	if got != "es" {
		t.Fatalf("want es, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguageOrder(t *testing.T) {
	got := DetermineLocale("", "en-US,en;q=0.9,es;q=0.8", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguagePrefersHigherQ(t *testing.T) {
	got := DetermineLocale("", "en;q=0.35,es;q=0.9", SupportedLocales, "en")
	if got != "es" {
		t.Fatalf("want es, got %s", got)
	}
}

func TestDetermineLocale_ZeroQExcluded(t *testing.T) {
	got := DetermineLocale("", "es;q=0,en;q=0.1", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_DefaultFallback(t *testing.T) {
	got := DetermineLocale("xx", "fr-FR,de;q=0.9", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en fallback, got %s", got)
	}
	if got := DetermineLocale("", "", []string{"es"}, "pt"); got != "es" {
		t.Fatalf("want first supported when default unsupported, got %s", got)
	}
}
