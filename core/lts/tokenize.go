package lts

import (
	"strings"
	"unicode/utf16"

	"github.com/FocuswithJustin/hindilts/core/lexicon"
)

// tokenize builds one unit per UTF-16 code unit of word. Code units absent
// from the table keep their raw character as symbol and are typed Unknown
// so dropUnknown can remove them. Supplementary-plane characters arrive as
// two surrogate halves, neither of which is ever in the table.
func tokenize(table *lexicon.Table, word string) *sequence {
	word = strings.TrimSpace(word)
	codeUnits := utf16.Encode([]rune(word))

	seq := newSequence(word, len(codeUnits)+len(codeUnits)/2)
	for _, cu := range codeUnits {
		cp := lexicon.Codepoint(cu)
		symbol, typ, ok := table.Lookup(cp)
		if !ok {
			symbol, typ = string(rune(cu)), lexicon.Unknown
		}
		seq.append(Unit{
			Codepoint: cp,
			Symbol:    symbol,
			Type:      typ,
			Status:    initialStatus(typ),
		})
	}
	return seq
}

func initialStatus(t lexicon.PhoneType) Status {
	if t == lexicon.Consonant {
		return Unresolved
	}
	return None
}

func dropUnknown(s *sequence) {
	s.filter(func(i int) bool { return s.types[i] != lexicon.Unknown })
}
