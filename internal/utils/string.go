package utils

import (
	"fmt"
	"strings"
	"unicode"
)

// CapitalPositions marks, per rune, which characters of s are upper case.
// It returns nil when s has no capitals at all.
func CapitalPositions(s string) []bool {
	var positions []bool
	i := 0
	for _, r := range s {
		if unicode.IsUpper(r) {
			if positions == nil {
				positions = make([]bool, len([]rune(s)))
			}
			positions[i] = true
		}
		i++
	}
	return positions
}

// ApplyCapitalization upper-cases the runes of word found at the marked
// positions. Positions past the end of word are ignored.
func ApplyCapitalization(word string, capitals []bool) string {
	if len(capitals) == 0 {
		return word
	}
	runes := []rune(word)
	for i := 0; i < len(runes) && i < len(capitals); i++ {
		if capitals[i] {
			runes[i] = unicode.ToUpper(runes[i])
		}
	}
	return string(runes)
}

// FormatWithCommas formats an integer with comma separators
func FormatWithCommas(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 1000 && n > -1000 {
		return str
	}
	sign := ""
	if str[0] == '-' {
		sign, str = "-", str[1:]
	}
	var sb strings.Builder
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(char)
	}
	return sign + sb.String()
}

// Truncate shortens s to at most n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
