package domain

// languageNames maps ISO 639-1 codes to the English names the providers are
// prompted with. The set mirrors what the translation model handles reliably.
var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"bn": "Bengali",
	"te": "Telugu",
	"mr": "Marathi",
	"ta": "Tamil",
	"gu": "Gujarati",
	"ur": "Urdu",
	"kn": "Kannada",
	"or": "Odia",
	"ml": "Malayalam",
	"pa": "Punjabi",
	"as": "Assamese",
}

// LanguageName returns the prompt-friendly name for a code, or the code
// itself when unknown.
func LanguageName(code string) string {
	if n, ok := languageNames[code]; ok {
		return n
	}
	return code
}

// KnownLanguage reports whether code is in the supported set.
func KnownLanguage(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// LanguageCodes returns the supported codes in no particular order.
func LanguageCodes() []string {
	out := make([]string, 0, len(languageNames))
	for c := range languageNames {
		out = append(out, c)
	}
	return out
}
