package agrivaani

import "strings"

// catalog is the static language catalog in display order.
var catalog = []LanguageOption{
	{Code: "as", Label: "Assamese"},
	{Code: "bn", Label: "Bengali"},
	{Code: "en", Label: "English"},
	{Code: "hi", Label: "Hindi"},
	{Code: "ml", Label: "Malayalam"},
	{Code: "mr", Label: "Marathi"},
	{Code: "ne", Label: "Nepali"},
	{Code: "or", Label: "Odia"},
	{Code: "pa", Label: "Punjabi"},
	{Code: "ta", Label: "Tamil"},
	{Code: "te", Label: "Telugu"},
	{Code: "ur", Label: "Urdu"},
}

// ScriptTags maps short language codes to script-qualified tags used by
// Bhashini pipelines (e.g., "hi" → "hin_Deva").
var ScriptTags = map[string]string{
	"as": "asm_Beng",
	"bn": "ben_Beng",
	"en": "eng_Latn",
	"hi": "hin_Deva",
	"ml": "mal_Mlym",
	"mr": "mar_Deva",
	"ne": "npi_Deva",
	"or": "ory_Orya",
	"pa": "pan_Guru",
	"ta": "tam_Taml",
	"te": "tel_Telu",
	"ur": "urd_Arab",
}

// Default language pair used when none is selected.
const (
	DefaultSourceLanguage = "en"
	DefaultTargetLanguage = "hi"
)

// Languages returns a copy of the language catalog in display order.
func Languages() []LanguageOption {
	out := make([]LanguageOption, len(catalog))
	copy(out, catalog)
	return out
}

// LookupLanguage finds a catalog entry by code. Accepts short codes,
// locale forms ("hi_IN", "hi-IN") and script-qualified tags ("hin_Deva").
func LookupLanguage(code string) (LanguageOption, bool) {
	short := NormalizeLanguage(code)
	for _, lang := range catalog {
		if lang.Code == short {
			return lang, true
		}
	}
	return LanguageOption{}, false
}

// LanguageLabel returns the display name for a language code.
// Falls back to the code itself if not found.
func LanguageLabel(code string) string {
	if lang, ok := LookupLanguage(code); ok {
		return lang.Label
	}
	return code
}

// IsSupported reports whether the code resolves to a catalog entry.
func IsSupported(code string) bool {
	_, ok := LookupLanguage(code)
	return ok
}

// ScriptTag returns the script-qualified tag for a language code, or the
// code unchanged when no tag is known.
func ScriptTag(code string) string {
	if tag, ok := ScriptTags[NormalizeLanguage(code)]; ok {
		return tag
	}
	return code
}

// NormalizeLanguage reduces a language code to its short lowercase form
// (e.g., "hi_IN" → "hi", "HI-in" → "hi", "hin_Deva" → "hi").
func NormalizeLanguage(code string) string {
	code = strings.TrimSpace(code)
	for short, tag := range ScriptTags {
		if strings.EqualFold(code, tag) {
			return short
		}
	}
	base := strings.FieldsFunc(code, func(r rune) bool { return r == '_' || r == '-' })
	if len(base) == 0 {
		return ""
	}
	return strings.ToLower(base[0])
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(code string) string {
	if RTLLanguages[NormalizeLanguage(code)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(code string) bool {
	return GetDirection(code) == "rtl"
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "hi_IN" → "hi-IN").
func ToHTMLLang(code string) string {
	return strings.ReplaceAll(code, "_", "-")
}
