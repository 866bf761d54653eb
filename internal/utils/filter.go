package utils

import (
	"unicode"
)

// IsSeparator checks if a rune is a separator character
func IsSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/' || r == '\''
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsSpecialChars checks if a string contains special characters
// (non-alphanumeric characters excluding common separators)
func ContainsSpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !IsSeparator(r) {
			return true
		}
	}
	return false
}

// IsValidInput checks if a prefix is worth completing.
// Returns false for strings that are only numbers, contain special characters, or are repetitive
func IsValidInput(s string) bool {
	if len(s) == 0 {
		return false
	}
	if IsOnlyNumbers(s) {
		return false
	}
	if ContainsSpecialChars(s) {
		return false
	}
	// "dddd", "www"
	if IsRepetitive(s) {
		return false
	}
	return true
}

// IsValidQuery checks a search query: at least one word must pass
// IsValidInput. Whitespace between words is fine.
func IsValidQuery(s string) bool {
	word := make([]rune, 0, len(s))
	flush := func() bool {
		ok := len(word) > 0 && IsValidInput(string(word))
		word = word[:0]
		return ok
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			if flush() {
				return true
			}
			continue
		}
		word = append(word, r)
	}
	return flush()
}

// IsRepetitive checks if a string is one character repeated 3+ times.
func IsRepetitive(s string) bool {
	runes := []rune(s)
	if len(runes) <= 2 {
		return false
	}
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}
