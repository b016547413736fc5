package match

import "strings"

// Soundex phonetic classes. Letters absent from the table (vowels and
// H, W, Y) carry no code; vowels and Y break a duplicate-consonant run
// while H and W do not.
var soundexCodes = map[byte]byte{
	'b': '1', 'f': '1', 'p': '1', 'v': '1',
	'c': '2', 'g': '2', 'j': '2', 'k': '2', 'q': '2', 's': '2', 'x': '2', 'z': '2',
	'd': '3', 't': '3',
	'l': '4',
	'm': '5', 'n': '5',
	'r': '6',
}

// Soundex encodes a word into its 4-symbol phonetic code: the first
// letter preserved, following consonants mapped to their class digit,
// adjacent duplicate digits collapsed, padded with zeros. Words with no
// letters encode to the empty string.
func Soundex(word string) string {
	word = strings.ToLower(word)

	// Skip to the first letter; codes and punctuation carry no sound.
	i := 0
	for i < len(word) && !isLetter(word[i]) {
		i++
	}
	if i == len(word) {
		return ""
	}

	first := word[i]
	var b strings.Builder
	b.WriteByte(first - 'a' + 'A')

	lastCode := soundexCodes[first]
	for i++; i < len(word) && b.Len() < 4; i++ {
		c := word[i]
		if !isLetter(c) {
			continue
		}
		if c == 'h' || c == 'w' {
			continue
		}
		code, ok := soundexCodes[c]
		if !ok {
			// Vowel or y: no code, but it breaks the duplicate run.
			lastCode = 0
			continue
		}
		if code != lastCode {
			b.WriteByte(code)
		}
		lastCode = code
	}
	for b.Len() < 4 {
		b.WriteByte('0')
	}
	return b.String()
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z'
}
