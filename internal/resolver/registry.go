// Package resolver turns a (book, chapter, verse, translation) request into
// displayable verse text by walking the translation's fallback chain:
// local cache first, then remote sources in reliability order, then the
// fallback verse collection. Resolution never fails; something displayable
// always comes back.
package resolver

import "strings"

// Translation describes one supported translation.
type Translation struct {
	// Code is the canonical lowercase identifier used in config and chains.
	Code string
	// Name is the human-readable title.
	Name string
	// SourceCode is the identifier remote providers understand, where it
	// differs from Code.
	SourceCode string
}

// translations lists every supported translation in display order.
var translations = []Translation{
	{Code: "kjv", Name: "King James Version"},
	{Code: "ylt", Name: "Young's Literal Translation"},
	{Code: "esv", Name: "English Standard Version"},
	{Code: "amp", Name: "Amplified Bible"},
	{Code: "nlt", Name: "New Living Translation"},
	{Code: "msg", Name: "The Message"},
	{Code: "nasb", Name: "New American Standard Bible 1995", SourceCode: "NASB1995"},
	{Code: "cev", Name: "Contemporary English Version"},
}

var translationsByCode = func() map[string]Translation {
	m := make(map[string]Translation, len(translations))
	for _, t := range translations {
		m[t.Code] = t
	}
	return m
}()

// Supported returns the supported translations in display order.
func Supported() []Translation {
	out := make([]Translation, len(translations))
	copy(out, translations)
	return out
}

// IsSupported reports whether code names a supported translation.
func IsSupported(code string) bool {
	_, ok := translationsByCode[strings.ToLower(code)]
	return ok
}

// Normalize lowercases a translation code and maps anything unsupported to
// KJV, the translation that can always be served.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if _, ok := translationsByCode[code]; ok {
		return code
	}
	return "kjv"
}

// DisplayName returns the human-readable title for a translation code.
func DisplayName(code string) string {
	if t, ok := translationsByCode[strings.ToLower(code)]; ok {
		return t.Name
	}
	return strings.ToUpper(code)
}

// nasbEquivalent reports whether the two codes name the same NASB edition.
// NASB and NASB1995 differ only in labeling, so substituting one for the
// other is not a fallback.
func nasbEquivalent(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return (a == "nasb" && b == "nasb1995") || (a == "nasb1995" && b == "nasb")
}
