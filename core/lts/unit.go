package lts

import (
	"fmt"

	"github.com/FocuswithJustin/hindilts/core/lexicon"
)

// Status tracks the schwa decision for a consonant unit.
type Status uint8

const (
	// None is the status of every unit that is not a consonant.
	None Status = iota
	// Unresolved consonants have no decision yet.
	Unresolved
	// Filled consonants carry a vowel: either the next unit supplies it or
	// finalization inserts "a".
	Filled
	// Heavy consonants are cluster members or word-final and get no vowel.
	Heavy
)

func (s Status) String() string {
	switch s {
	case None:
		return "none"
	case Unresolved:
		return "unresolved"
	case Filled:
		return "filled"
	case Heavy:
		return "heavy"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Unit is a read-only view of one position in the working sequence.
type Unit struct {
	Codepoint lexicon.Codepoint `json:"codepoint"`
	Symbol    string            `json:"symbol"`
	Type      lexicon.PhoneType `json:"type"`
	Status    Status            `json:"status"`
}

func (u Unit) String() string {
	return fmt.Sprintf("%s:%s/%s/%s", u.Codepoint, u.Symbol, u.Type, u.Status)
}

// Symbols used by the rewrite rules.
const (
	symbolSchwa    = "a"
	symbolSyllable = "-"
	symbolStress   = "'"
)

// Codepoints used by the rewrite rules.
const (
	cpAnusvara lexicon.Codepoint = 0x0902
	cpSchwa    lexicon.Codepoint = 0x0905
)

// highVowels are the vowels after which "y" is a glide.
var highVowels = map[string]bool{"i": true, "ii": true, "u": true, "uu": true}

// glides are the consonants that may close a cluster in the liquid pass.
var glides = map[string]bool{"y": true, "r": true, "l": true, "v": true}

// nasalDigraphs keep a syllable boundary from splitting a vowel from its
// nasalisation or length mark.
var nasalDigraphs = map[string]bool{"n:": true, "a:": true}
