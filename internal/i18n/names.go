package i18n

// languageNames maps supported codes to the English language name used
// when instructing a model to answer in that language.
var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"hi": "Hindi",
	"ar": "Arabic",
}

// LanguageName returns the English name for a language code. Unknown
// codes pass through unchanged so a prompt still names something.
func LanguageName(code string) string {
	if name, ok := languageNames[normalize(code)]; ok {
		return name
	}
	return code
}
