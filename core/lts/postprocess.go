package lts

import (
	"strings"

	"github.com/FocuswithJustin/hindilts/core/lexicon"
)

func dropConjunctMarkers(s *sequence) {
	s.filter(func(i int) bool { return s.types[i] != lexicon.ConjunctMarker })
}

// syllabify inserts "-" after each vowel that has a vowel somewhere after
// it. When a nasalisation or length mark directly follows the vowel the
// boundary goes after the mark.
func syllabify(s *sequence) {
	for i := 0; i < s.len(); i++ {
		if !s.isVowel(i) || !s.hasVowelAfter(i) {
			continue
		}
		at := i + 1
		if at < s.len() && nasalDigraphs[s.symbols[at]] {
			at++
		}
		s.insert(at, Unit{Symbol: symbolSyllable, Type: lexicon.Symbol, Status: None})
	}
}

func (s *sequence) hasVowelAfter(i int) bool {
	for j := i + 1; j < s.len(); j++ {
		if s.types[j] == lexicon.Vowel {
			return true
		}
	}
	return false
}

func addStress(s *sequence) {
	s.insert(0, Unit{Symbol: symbolStress, Type: lexicon.Symbol, Status: None})
}

func (s *sequence) serialize() string {
	return strings.Join(s.symbols, "")
}
