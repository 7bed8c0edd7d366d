package lts

import "github.com/FocuswithJustin/hindilts/core/lexicon"

// The schwa passes run in the order listed in stages (lts.go). Each one
// reads the statuses left by the previous pass, so none of them may be
// reordered or merged.

// assimilateNasals rewrites anusvara to the nasal homorganic with the next
// consonant (velar at the end of the word), then marks every consonant
// that touches a vowel as Filled.
func assimilateNasals(s *sequence) {
	for i := 0; i < s.len(); i++ {
		if s.codepoints[i] != cpAnusvara {
			continue
		}
		place := Velar
		if i+1 < s.len() {
			place = PlaceOf(s.codepoints[i+1])
		}
		n, ok := homorganicNasals[place]
		if !ok {
			continue
		}
		s.set(i, Unit{
			Codepoint: n.codepoint,
			Symbol:    n.symbol,
			Type:      lexicon.Consonant,
			Status:    Filled,
		})
	}

	for i := 0; i < s.len(); i++ {
		if !s.isConsonant(i) {
			continue
		}
		switch s.status[i] {
		case Unresolved:
			if s.isVowel(i+1) || s.isVowel(i-1) {
				s.status[i] = Filled
			}
		case Filled, Heavy, None:
		}
	}
}

// markClusters makes every consonant written with a following halant a
// cluster member.
func markClusters(s *sequence) {
	for i := 0; i+1 < s.len(); i++ {
		if !s.isConsonant(i) || s.types[i+1] != lexicon.ConjunctMarker {
			continue
		}
		switch s.status[i] {
		case Unresolved, Filled:
			s.status[i] = Heavy
		case Heavy, None:
		}
	}
}

// fillGlides gives "y" a vowel after a high vowel or after a consonant
// that already has one. A "y" that closes a written cluster stays Heavy.
func fillGlides(s *sequence) {
	for i := 1; i < s.len(); i++ {
		if !s.isConsonant(i) || s.symbols[i] != "y" {
			continue
		}
		prevFilled := s.isConsonant(i-1) && s.status[i-1] == Filled
		if !highVowels[s.symbols[i-1]] && !prevFilled {
			continue
		}
		switch s.status[i] {
		case Unresolved:
			s.status[i] = Filled
		case Filled, Heavy, None:
		}
	}
}

// fillLiquids gives a glide its vowel when it follows a Filled consonant
// that itself follows a cluster member. The halant written between the
// cluster member and the Filled consonant is looked through.
func fillLiquids(s *sequence) {
	for i := 0; i+1 < s.len(); i++ {
		if !s.isConsonant(i) || s.status[i] != Filled {
			continue
		}
		next := i + 1
		if !s.isConsonant(next) || !glides[s.symbols[next]] {
			continue
		}
		prev := i - 1
		if prev >= 0 && s.types[prev] == lexicon.ConjunctMarker {
			prev--
		}
		if !s.isConsonant(prev) || s.status[prev] != Heavy {
			continue
		}
		switch s.status[next] {
		case Unresolved:
			s.status[next] = Filled
		case Filled, Heavy, None:
		}
	}
}

// confirmFullVowels is a confirmation pass: a Filled consonant followed by
// an independent vowel letter keeps its status and no other status
// changes. Finalize then writes the schwa between the two, as in कई.
func confirmFullVowels(s *sequence) {
	for i := 0; i+1 < s.len(); i++ {
		if !s.isConsonant(i) || !IsIndependentVowel(s.codepoints[i+1]) {
			continue
		}
		switch s.status[i] {
		case Filled, Unresolved, Heavy, None:
		}
	}
}

// fillFirstConsonant forces a vowel onto the first consonant of the word
// unless an earlier pass already decided it.
func fillFirstConsonant(s *sequence) {
	for i := 0; i < s.len(); i++ {
		if !s.isConsonant(i) {
			continue
		}
		switch s.status[i] {
		case Unresolved:
			s.status[i] = Filled
		case Filled, Heavy, None:
		}
		return
	}
}

// dropFinalSchwa deletes the inherent vowel of an undecided word-final
// consonant.
func dropFinalSchwa(s *sequence) {
	last := s.len() - 1
	if !s.isConsonant(last) {
		return
	}
	switch s.status[last] {
	case Unresolved:
		s.status[last] = Heavy
	case Filled, Heavy, None:
	}
}

// dropMedialSchwa deletes the vowel of a Filled consonant wedged between
// two cluster members. Decisions made earlier in the scan are visible to
// later positions.
func dropMedialSchwa(s *sequence) {
	for i := 0; i < s.len(); i++ {
		if !s.isConsonant(i) {
			continue
		}
		switch s.status[i] {
		case Filled:
			prevHeavy := i > 0 && s.status[i-1] == Heavy
			nextHeavy := i+1 < s.len() && s.status[i+1] == Heavy
			if prevHeavy && nextHeavy {
				s.status[i] = Heavy
			}
		case Unresolved, Heavy, None:
		}
	}
}

// finalize writes an explicit "a" after every Filled consonant that is not
// followed by a dependent vowel sign. Inserted units are skipped.
func finalize(s *sequence) {
	for i := 0; i < s.len(); i++ {
		if !s.isConsonant(i) {
			continue
		}
		switch s.status[i] {
		case Filled:
			next := i + 1
			if s.isVowel(next) && !IsIndependentVowel(s.codepoints[next]) {
				continue
			}
			s.insert(next, Unit{
				Codepoint: cpSchwa,
				Symbol:    symbolSchwa,
				Type:      lexicon.Vowel,
				Status:    None,
			})
			i = next
		case Unresolved, Heavy, None:
		}
	}
}
