package text

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	nonLetterRe = regexp.MustCompile(`[^a-zA-Z]+`)
)

// ToUnicode returns s with any invalid UTF-8 byte sequences dropped.
func ToUnicode(s string) string {
	return strings.ToValidUTF8(s, "")
}

// CleanASCII maps s to the code points of its extended-ASCII
// characters, dropping everything at or above code point 255.
func CleanASCII(s string) []int32 {
	out := make([]int32, 0, len(s))
	for _, r := range s {
		if r < 255 {
			out = append(out, r)
		}
	}
	return out
}

// StripHTML removes markup tags and decodes entities, leaving the
// visible text.
func StripHTML(s string) string {
	return html.UnescapeString(tagRe.ReplaceAllString(s, " "))
}

// Words lowercases s and splits it into purely alphabetic words,
// treating every non-letter character as a separator.
func Words(s string) []string {
	return strings.Fields(strings.ToLower(nonLetterRe.ReplaceAllString(s, " ")))
}

// HTMLToWords reduces an HTML document to its meaningful words:
// markup is stripped, non-letters become separators, everything is
// lowercased, and English stopwords are removed.
func HTMLToWords(s string) []string {
	words := Words(StripHTML(s))
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !IsStopword(w) {
			kept = append(kept, w)
		}
	}
	return kept
}
