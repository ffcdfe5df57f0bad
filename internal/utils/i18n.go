package utils

// Server-side strings the API returns directly: health text, dopamine level names and
// error hints. Everything else is localized by clients.

// SupportedLocales lists the locales the API answers in; the first is the default.
var SupportedLocales = []string{"en", "es"}

func DefaultLocale() string { return SupportedLocales[0] }

var translations = map[string]map[string]string{
	"en": {
		"health.ok":                   "ok",
		"level.initial_recovery":      "Initial Recovery",
		"level.stable_momentum":       "Stable Momentum",
		"level.consolidated_strength": "Consolidated Strength",
		"level.neurological_mastery":  "Neurological Mastery",
		"level.legendary_dopamine":    "Legendary Dopamine",
		"error.internal":              "internal error",
	},
	"es": {
		"health.ok":                   "todo bien",
		"level.initial_recovery":      "Recuperación Inicial",
		"level.stable_momentum":       "Impulso Estable",
		"level.consolidated_strength": "Fuerza Consolidada",
		"level.neurological_mastery":  "Maestría Neurológica",
		"level.legendary_dopamine":    "Dopamina Legendaria",
		"error.internal":              "error interno",
	},
}

// T returns the translated string for key in locale; falls back to English, then to the key.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations["en"][key]; ok {
		return v
	}
	return key
}

// TOr is T with an explicit fallback for keys that have no translation.
func TOr(locale, key, fallback string) string {
	if v := T(locale, key); v != key {
		return v
	}
	return fallback
}
