package render

import (
	"strings"
	"unicode"

	"github.com/bibkit/bibkit/internal/csl"
)

// smallWords are not capitalized by the title-case transform unless they
// open or close the title.
var smallWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "but": true, "or": true, "nor": true,
	"as": true, "at": true, "by": true, "for": true, "in": true,
	"of": true, "on": true, "per": true, "to": true, "via": true,
	"up": true, "so": true, "yet": true,
}

// ApplyCase transforms a formattable string per the requested case.
// Verbatim spans are preserved byte-for-byte; punctuation is never
// altered. CaseNone returns the text unchanged.
func ApplyCase(t csl.Text, tc csl.TextCase) string {
	switch tc {
	case csl.CaseNone:
		return t.Value
	case csl.CaseUpper:
		return mapRunes(t, unicode.ToUpper)
	case csl.CaseLower:
		return mapRunes(t, unicode.ToLower)
	case csl.CaseTitle:
		return mapWords(t, titleWord)
	case csl.CaseSentence:
		return mapWords(t, sentenceWord)
	case csl.CaseCapitalizeFirst:
		return mapWords(t, capitalizeFirstWord)
	default:
		return t.Value
	}
}

// mapRunes applies f to every rune outside verbatim spans.
func mapRunes(t csl.Text, f func(rune) rune) string {
	var b strings.Builder
	b.Grow(len(t.Value))
	for i, r := range t.Value {
		if t.InVerbatim(i) {
			b.WriteRune(r)
		} else {
			b.WriteRune(f(r))
		}
	}
	return b.String()
}

// word is one whitespace-delimited token with its byte offset.
type word struct {
	text       string
	start      int
	index      int // ordinal among words
	last       bool
	afterColon bool // previous word ended a subtitle boundary
}

// wordFunc transforms one word. The csl.Text is provided for verbatim
// lookups; offsets within the word are relative to word.start.
type wordFunc func(t csl.Text, w word) string

// mapWords splits on spaces, transforms each word, and reassembles,
// preserving the original inter-word whitespace exactly.
func mapWords(t csl.Text, f wordFunc) string {
	var b strings.Builder
	b.Grow(len(t.Value))

	// Collect word offsets first so transforms can know which is last.
	var words []word
	i := 0
	for i < len(t.Value) {
		if t.Value[i] == ' ' {
			i++
			continue
		}
		j := strings.IndexByte(t.Value[i:], ' ')
		end := len(t.Value)
		if j >= 0 {
			end = i + j
		}
		w := word{text: t.Value[i:end], start: i, index: len(words)}
		if n := len(words); n > 0 {
			prev := words[n-1].text
			w.afterColon = strings.HasSuffix(prev, ":") || strings.HasSuffix(prev, "?") || strings.HasSuffix(prev, "!")
		}
		words = append(words, w)
		i = end
	}
	if n := len(words); n > 0 {
		words[n-1].last = true
	}

	pos := 0
	for _, w := range words {
		b.WriteString(t.Value[pos:w.start]) // whitespace run
		b.WriteString(f(t, w))
		pos = w.start + len(w.text)
	}
	b.WriteString(t.Value[pos:])
	return b.String()
}

// titleWord capitalizes a word per title case: small words stay lower
// unless first or last; everything else gets an initial capital with the
// remainder lowered. Verbatim runes pass through untouched.
func titleWord(t csl.Text, w word) string {
	lower := strings.ToLower(stripPunct(w.text))
	if smallWords[lower] && w.index > 0 && !w.last && !w.afterColon {
		return casedWord(t, w, false)
	}
	return casedWord(t, w, true)
}

// sentenceWord lowers every word except the first, which is capitalized.
func sentenceWord(t csl.Text, w word) string {
	return casedWord(t, w, w.index == 0)
}

// capitalizeFirstWord capitalizes the first word and leaves the rest as
// written.
func capitalizeFirstWord(t csl.Text, w word) string {
	if w.index != 0 {
		return w.text
	}
	return capitalizeUntouchedTail(t, w)
}

// casedWord emits the word with its first alphabetic rune upper- or
// lower-cased and every following rune lowered, skipping verbatim runes.
func casedWord(t csl.Text, w word, capitalize bool) string {
	var b strings.Builder
	first := true
	for i, r := range w.text {
		abs := w.start + i
		switch {
		case t.InVerbatim(abs):
			b.WriteRune(r)
			if unicode.IsLetter(r) {
				first = false
			}
		case !unicode.IsLetter(r):
			b.WriteRune(r) // punctuation preserved exactly
		case first && capitalize:
			b.WriteRune(unicode.ToUpper(r))
			first = false
		default:
			b.WriteRune(unicode.ToLower(r))
			first = false
		}
	}
	return b.String()
}

// capitalizeUntouchedTail upper-cases the first non-verbatim letter and
// copies the remainder unchanged.
func capitalizeUntouchedTail(t csl.Text, w word) string {
	var b strings.Builder
	done := false
	for i, r := range w.text {
		abs := w.start + i
		if !done && !t.InVerbatim(abs) && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
			done = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripPunct trims leading and trailing non-letter runes for small-word
// classification.
func stripPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
}
