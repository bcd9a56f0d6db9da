package sanitize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// replacements are the characters the stores reject or render badly in listing text.
var replacements = map[rune]string{
	'\u2018': "'",   // left single quotation mark
	'\u2019': "'",   // right single quotation mark
	'\u201a': "'",   // single low-9 quotation mark
	'\u2032': "'",   // prime
	'\u201c': `"`,   // left double quotation mark
	'\u201d': `"`,   // right double quotation mark
	'\u201e': `"`,   // double low-9 quotation mark
	'\u2033': `"`,   // double prime
	'\u2013': "-",   // en dash
	'\u2014': "-",   // em dash
	'\u2212': "-",   // minus sign
	'\u2026': "...", // horizontal ellipsis
	'\u00a0': " ",   // no-break space
	'\u202f': " ",   // narrow no-break space
	'\u2009': " ",   // thin space
	'\u2028': "\n",  // line separator
	'\u2029': "\n",  // paragraph separator
	'\u200b': "",    // zero width space
	'\u2060': "",    // word joiner
	'\ufeff': "",    // zero width no-break space
}

// Text returns s in NFC form with every disallowed character replaced, along with the
// number of replaced characters.
func Text(s string) (string, int) {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	var n int
	for _, r := range s {
		if rep, ok := replacements[r]; ok {
			b.WriteString(rep)
			n++
			continue
		}
		b.WriteRune(r)
	}

	return b.String(), n
}
