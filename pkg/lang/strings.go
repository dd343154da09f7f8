// Package lang provides the translation store consumed during style
// resolution, together with the string measurement rules shared by the
// length and write phases of record serialization.
package lang

// DefaultLangID is the synthetic fallback language id. A style table
// always carries the source text under this id.
const DefaultLangID = 0x7F

// IsASCII reports whether s contains only 7-bit characters.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// StringSize returns the encoded byte size of s: its UTF-8 length, plus
// one marker byte when s is not pure ASCII, plus one terminator byte when
// finalZero is set. Both serialization phases must measure strings
// through this single function so declared and written sizes agree.
func StringSize(s string, finalZero bool) int {
	size := len(s)
	if !IsASCII(s) {
		size++
	}
	if finalZero {
		size++
	}
	return size
}
