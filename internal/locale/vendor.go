package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Apple and Google do not agree on locale codes: Apple keeps some languages region-less
// (ja, ko, it) while Google Play always wants a region for them.
var (
	appleLocales = map[string]string{
		"ar": "ar-SA",
		"de": "de-DE",
		"en": "en-US",
		"es": "es-ES",
		"fr": "fr-FR",
		"nl": "nl-NL",
		"pt": "pt-BR",
		"zh": "zh-Hans",
	}

	googleLocales = map[string]string{
		"da":      "da-DK",
		"de":      "de-DE",
		"en":      "en-US",
		"es":      "es-ES",
		"fi":      "fi-FI",
		"fr":      "fr-FR",
		"hi":      "hi-IN",
		"it":      "it-IT",
		"ja":      "ja-JP",
		"ko":      "ko-KR",
		"nl":      "nl-NL",
		"no":      "no-NO",
		"pl":      "pl-PL",
		"pt":      "pt-BR",
		"ru":      "ru-RU",
		"sv":      "sv-SE",
		"tr":      "tr-TR",
		"zh":      "zh-CN",
		"zh-Hans": "zh-CN",
		"zh-Hant": "zh-TW",
	}
)

// Canonical returns the BCP 47 canonical form of a locale file code:
// "pt-br" becomes "pt-BR" and "zh-hans" becomes "zh-Hans".
// Codes that do not parse are returned lower-cased.
func Canonical(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	return tag.String()
}

// AppleLocale maps a locale file code to the App Store Connect locale.
func AppleLocale(code string) string {
	c := Canonical(code)
	if v, ok := appleLocales[c]; ok {
		return v
	}
	return c
}

// GoogleLocale maps a locale file code to the Google Play language code.
func GoogleLocale(code string) string {
	c := Canonical(code)
	if v, ok := googleLocales[c]; ok {
		return v
	}
	return c
}
