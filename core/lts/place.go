package lts

import "github.com/FocuswithJustin/hindilts/core/lexicon"

// Place is the articulation class (varga) of a Devanagari consonant.
type Place uint8

const (
	NoPlace Place = iota
	Velar
	Palatal
	Retroflex
	Dental
	Labial
	Approximant
)

func (p Place) String() string {
	switch p {
	case Velar:
		return "velar"
	case Palatal:
		return "palatal"
	case Retroflex:
		return "retroflex"
	case Dental:
		return "dental"
	case Labial:
		return "labial"
	case Approximant:
		return "approximant"
	}
	return "none"
}

type codepointRange struct {
	lo, hi lexicon.Codepoint
}

func (r codepointRange) contains(c lexicon.Codepoint) bool {
	return c >= r.lo && c <= r.hi
}

// places lists the consonant blocks of the Devanagari chart. Adding a
// class is a new row here.
var places = []struct {
	place Place
	codepointRange
}{
	{Velar, codepointRange{0x0915, 0x0919}},
	{Palatal, codepointRange{0x091A, 0x091E}},
	{Retroflex, codepointRange{0x091F, 0x0923}},
	{Dental, codepointRange{0x0924, 0x0929}},
	{Labial, codepointRange{0x092A, 0x092E}},
	{Approximant, codepointRange{0x092F, 0x0939}},
}

// independentVowels is the block of full (non-combining) vowel letters.
var independentVowels = codepointRange{0x0904, 0x0914}

// PlaceOf returns the articulation class of c, or NoPlace.
func PlaceOf(c lexicon.Codepoint) Place {
	for _, p := range places {
		if p.contains(c) {
			return p.place
		}
	}
	return NoPlace
}

// IsIndependentVowel reports whether c is a full vowel letter.
func IsIndependentVowel(c lexicon.Codepoint) bool {
	return independentVowels.contains(c)
}

type nasal struct {
	symbol    string
	codepoint lexicon.Codepoint
}

var velarNasal = nasal{"ng~", 0x0919}

// homorganicNasals maps the place of the consonant after an anusvara to
// the nasal it is pronounced as. Places without an entry leave the
// anusvara as written.
var homorganicNasals = map[Place]nasal{
	Velar:     velarNasal,
	Palatal:   velarNasal,
	Retroflex: {"n", 0x0928},
	Dental:    {"n", 0x0928},
	Labial:    {"m", 0x092E},
}
