package utils

import "strconv"

// IsRepetitive checks if a string consists of a single repeated character
// (e.g. "aaa", "zzzz"). Used to skip the correction pass for keyboard
// noise, which would otherwise fuzzy-match half the catalog.
func IsRepetitive(s string) bool {
	if len(s) <= 2 {
		return false
	}
	firstChar := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != firstChar {
			return false
		}
	}
	return true
}

// FormatWithCommas renders n with thousands separators for CLI output.
func FormatWithCommas(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
