// Package langdetect identifies the language of a text snippet.
package langdetect

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Fallback is returned when detection is inconclusive.
const Fallback = "en"

var detector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Korean,
			lingua.Japanese,
			lingua.Chinese,
			lingua.German,
			lingua.French,
			lingua.Spanish,
		).
		Build()
})

// Detect returns the ISO 639-1 code of text's language.
func Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return Fallback
	}
	// Hangul syllables are unambiguous and common enough to skip the model.
	if hasHangul(text) {
		return "ko"
	}

	lang, ok := detector().DetectLanguageOf(text)
	if !ok {
		return Fallback
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

func hasHangul(text string) bool {
	for _, r := range text {
		// syllables, compatibility jamo
		if (r >= 0xAC00 && r <= 0xD7A3) || (r >= 0x3131 && r <= 0x318E) {
			return true
		}
	}
	return false
}

// Target picks the translation target: text in the native language goes to
// target, anything else goes to native.
func Target(source, native, target string) string {
	if strings.EqualFold(source, native) {
		return target
	}
	return native
}

// Name returns the English display name of an ISO 639-1 code.
func Name(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
