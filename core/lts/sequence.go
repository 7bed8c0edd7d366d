package lts

import (
	"slices"

	"github.com/FocuswithJustin/hindilts/core/errors"
	"github.com/FocuswithJustin/hindilts/core/lexicon"
)

// sequence is the per-word working state: four parallel columns that must
// stay the same length. Every structural edit goes through insert, remove
// or filter so the columns move together.
type sequence struct {
	word       string
	codepoints []lexicon.Codepoint
	symbols    []string
	types      []lexicon.PhoneType
	status     []Status
}

func newSequence(word string, capacity int) *sequence {
	return &sequence{
		word:       word,
		codepoints: make([]lexicon.Codepoint, 0, capacity),
		symbols:    make([]string, 0, capacity),
		types:      make([]lexicon.PhoneType, 0, capacity),
		status:     make([]Status, 0, capacity),
	}
}

func (s *sequence) len() int {
	return len(s.codepoints)
}

func (s *sequence) append(u Unit) {
	s.codepoints = append(s.codepoints, u.Codepoint)
	s.symbols = append(s.symbols, u.Symbol)
	s.types = append(s.types, u.Type)
	s.status = append(s.status, u.Status)
}

func (s *sequence) insert(i int, u Unit) {
	s.codepoints = slices.Insert(s.codepoints, i, u.Codepoint)
	s.symbols = slices.Insert(s.symbols, i, u.Symbol)
	s.types = slices.Insert(s.types, i, u.Type)
	s.status = slices.Insert(s.status, i, u.Status)
}

func (s *sequence) set(i int, u Unit) {
	s.codepoints[i] = u.Codepoint
	s.symbols[i] = u.Symbol
	s.types[i] = u.Type
	s.status[i] = u.Status
}

// filter keeps the units for which keep returns true, preserving order.
func (s *sequence) filter(keep func(i int) bool) {
	n := 0
	for i := range s.codepoints {
		if !keep(i) {
			continue
		}
		s.codepoints[n] = s.codepoints[i]
		s.symbols[n] = s.symbols[i]
		s.types[n] = s.types[i]
		s.status[n] = s.status[i]
		n++
	}
	s.codepoints = s.codepoints[:n]
	s.symbols = s.symbols[:n]
	s.types = s.types[:n]
	s.status = s.status[:n]
}

func (s *sequence) unit(i int) Unit {
	return Unit{
		Codepoint: s.codepoints[i],
		Symbol:    s.symbols[i],
		Type:      s.types[i],
		Status:    s.status[i],
	}
}

// units copies the sequence out as a slice of views.
func (s *sequence) units() []Unit {
	out := make([]Unit, s.len())
	for i := range out {
		out[i] = s.unit(i)
	}
	return out
}

func (s *sequence) isConsonant(i int) bool {
	return i >= 0 && i < s.len() && s.types[i] == lexicon.Consonant
}

func (s *sequence) isVowel(i int) bool {
	return i >= 0 && i < s.len() && s.types[i] == lexicon.Vowel
}

// check returns a ConsistencyError if the columns have drifted apart.
func (s *sequence) check(stage string) error {
	n := len(s.codepoints)
	if len(s.symbols) == n && len(s.types) == n && len(s.status) == n {
		return nil
	}
	return &errors.ConsistencyError{
		Stage: stage,
		Word:  s.word,
		Lengths: map[string]int{
			"codepoints": len(s.codepoints),
			"symbols":    len(s.symbols),
			"types":      len(s.types),
			"status":     len(s.status),
		},
	}
}
