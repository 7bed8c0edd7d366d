package lts

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/hindilts/core/lexicon"
)

func con(symbol string, st Status) Unit {
	return Unit{Codepoint: 0x0915, Symbol: symbol, Type: lexicon.Consonant, Status: st}
}

func vow(symbol string) Unit {
	return Unit{Codepoint: 0x093F, Symbol: symbol, Type: lexicon.Vowel}
}

var halant = Unit{Codepoint: 0x094D, Symbol: "^", Type: lexicon.ConjunctMarker}

func seqOf(units ...Unit) *sequence {
	s := newSequence("test", len(units))
	for _, u := range units {
		s.append(u)
	}
	return s
}

func statuses(s *sequence) []Status {
	return append([]Status(nil), s.status...)
}

func TestAssimilateNasals(t *testing.T) {
	anusvara := Unit{Codepoint: cpAnusvara, Symbol: "n:", Type: lexicon.Symbol}
	tests := []struct {
		name   string
		next   lexicon.Codepoint
		symbol string
		cp     lexicon.Codepoint
	}{
		{"velar", 0x0917, "ng~", 0x0919},
		{"palatal", 0x091C, "ng~", 0x0919},
		{"dental", 0x0926, "n", 0x0928},
		{"labial", 0x092C, "m", 0x092E},
		{"retroflex", 0x0921, "n", 0x0928},
		{"approximant unchanged", 0x0938, "n:", cpAnusvara},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seqOf(anusvara, Unit{Codepoint: tt.next, Symbol: "c", Type: lexicon.Consonant, Status: Unresolved})
			assimilateNasals(s)
			if s.symbols[0] != tt.symbol || s.codepoints[0] != tt.cp {
				t.Errorf("anusvara became %v, want %s/%s", s.unit(0), tt.symbol, tt.cp)
			}
		})
	}

	t.Run("word final is velar", func(t *testing.T) {
		s := seqOf(vow("aa"), anusvara)
		assimilateNasals(s)
		if got := s.unit(1); got.Symbol != "ng~" || got.Type != lexicon.Consonant || got.Status != Filled {
			t.Errorf("final anusvara = %v", got)
		}
	})

	t.Run("vowel neighbours fill consonants", func(t *testing.T) {
		s := seqOf(con("k", Unresolved), vow("i"), con("t", Unresolved), con("p", Unresolved))
		assimilateNasals(s)
		want := []Status{Filled, None, Filled, Unresolved}
		if diff := cmp.Diff(want, statuses(s)); diff != "" {
			t.Errorf("status mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestMarkClusters(t *testing.T) {
	s := seqOf(con("s", Unresolved), halant, con("t", Filled), halant, con("r", Unresolved), vow("ii"))
	markClusters(s)
	want := []Status{Heavy, None, Heavy, None, Unresolved, None}
	if diff := cmp.Diff(want, statuses(s)); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestFillGlides(t *testing.T) {
	tests := []struct {
		name string
		prev Unit
		y    Status
		want Status
	}{
		{"after high vowel", vow("u"), Unresolved, Filled},
		{"after low vowel", vow("aa"), Unresolved, Unresolved},
		{"after filled consonant", con("d", Filled), Unresolved, Filled},
		{"after heavy consonant", con("d", Heavy), Unresolved, Unresolved},
		{"cluster member stays heavy", vow("ii"), Heavy, Heavy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seqOf(tt.prev, con("y", tt.y))
			fillGlides(s)
			if s.status[1] != tt.want {
				t.Errorf("y status = %s, want %s", s.status[1], tt.want)
			}
		})
	}

	t.Run("word initial y untouched", func(t *testing.T) {
		s := seqOf(con("y", Unresolved), vow("a"))
		fillGlides(s)
		if s.status[0] != Unresolved {
			t.Errorf("status = %s", s.status[0])
		}
	})
}

func TestFillLiquids(t *testing.T) {
	tests := []struct {
		name  string
		units []Unit
		want  Status
	}{
		{"through halant", []Unit{con("s", Heavy), halant, con("t", Filled), con("r", Unresolved)}, Filled},
		{"adjacent", []Unit{con("s", Heavy), con("t", Filled), con("v", Unresolved)}, Filled},
		{"no cluster before", []Unit{con("s", Filled), con("t", Filled), con("r", Unresolved)}, Unresolved},
		{"not a glide", []Unit{con("s", Heavy), con("t", Filled), con("k", Unresolved)}, Unresolved},
		{"middle not filled", []Unit{con("s", Heavy), con("t", Unresolved), con("l", Unresolved)}, Unresolved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seqOf(tt.units...)
			fillLiquids(s)
			if got := s.status[s.len()-1]; got != tt.want {
				t.Errorf("glide status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConfirmFullVowels(t *testing.T) {
	full := Unit{Codepoint: 0x0908, Symbol: "ii", Type: lexicon.Vowel}
	s := seqOf(con("k", Filled), full, con("n", Unresolved), full, con("s", Heavy), full, con("m", Filled), vow("aa"))
	before := statuses(s)
	confirmFullVowels(s)
	if diff := cmp.Diff(before, statuses(s)); diff != "" {
		t.Errorf("status changed (-before +after):\n%s", diff)
	}

	finalize(s)
	if s.symbols[1] != symbolSchwa || s.symbols[2] != "ii" {
		t.Errorf("finalize after a full vowel = %v, want schwa before ii", s.units()[:3])
	}
}

func TestFillFirstConsonant(t *testing.T) {
	t.Run("first undecided", func(t *testing.T) {
		s := seqOf(vow("a"), con("k", Unresolved), con("m", Unresolved))
		fillFirstConsonant(s)
		want := []Status{None, Filled, Unresolved}
		if diff := cmp.Diff(want, statuses(s)); diff != "" {
			t.Errorf("status mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("first already decided stops the scan", func(t *testing.T) {
		s := seqOf(con("k", Heavy), halant, con("sx", Unresolved))
		fillFirstConsonant(s)
		want := []Status{Heavy, None, Unresolved}
		if diff := cmp.Diff(want, statuses(s)); diff != "" {
			t.Errorf("status mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDropFinalSchwa(t *testing.T) {
	s := seqOf(con("k", Filled), con("l", Unresolved))
	dropFinalSchwa(s)
	if s.status[1] != Heavy {
		t.Errorf("final status = %s, want heavy", s.status[1])
	}

	s = seqOf(con("k", Filled), con("l", Filled))
	dropFinalSchwa(s)
	if s.status[1] != Filled {
		t.Errorf("filled final consonant changed to %s", s.status[1])
	}

	dropFinalSchwa(seqOf())
}

func TestDropMedialSchwa(t *testing.T) {
	s := seqOf(con("a", Heavy), con("b", Filled), con("c", Heavy), con("d", Filled), con("e", Filled), con("f", Heavy))
	dropMedialSchwa(s)
	want := []Status{Heavy, Heavy, Heavy, Filled, Filled, Heavy}
	if diff := cmp.Diff(want, statuses(s)); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestFinalize(t *testing.T) {
	full := Unit{Codepoint: 0x0908, Symbol: "ii", Type: lexicon.Vowel}
	s := seqOf(con("k", Filled), full, con("m", Filled), vow("i"), con("l", Filled), con("t", Heavy), con("p", Filled))
	finalize(s)

	var got []string
	for _, u := range s.units() {
		got = append(got, u.Symbol)
	}
	want := []string{"k", "a", "ii", "m", "i", "l", "a", "t", "p", "a"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("symbols mismatch (-want +got):\n%s", diff)
	}
	for i, u := range s.units() {
		if u.Symbol == "a" && (u.Codepoint != cpSchwa || u.Type != lexicon.Vowel || u.Status != None) {
			t.Errorf("unit %d = %v, want inserted schwa", i, u)
		}
	}
}

func TestSyllabify(t *testing.T) {
	tests := []struct {
		name  string
		units []Unit
		want  string
	}{
		{"single vowel", []Unit{con("k", Filled), vow("aa")}, "kaa"},
		{"two vowels", []Unit{vow("aa"), con("p", Filled), vow("a")}, "aa-pa"},
		{"after nasal mark", []Unit{vow("a"), {Symbol: "n:", Type: lexicon.Symbol}, con("s", Filled), vow("ii")}, "an:-sii"},
		{"after visarga", []Unit{vow("u"), {Symbol: "a:", Type: lexicon.Symbol}, vow("o")}, "ua:-o"},
		{"no vowels", []Unit{con("k", Heavy), con("sx", Heavy)}, "ksx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seqOf(tt.units...)
			syllabify(s)
			if got := s.serialize(); got != tt.want {
				t.Errorf("syllabify = %q, want %q", got, tt.want)
			}
			if err := s.check("syllabify"); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestPlaceOf(t *testing.T) {
	tests := map[lexicon.Codepoint]Place{
		0x0915: Velar, 0x0919: Velar,
		0x091A: Palatal, 0x091E: Palatal,
		0x091F: Retroflex, 0x0923: Retroflex,
		0x0924: Dental, 0x0929: Dental,
		0x092A: Labial, 0x092E: Labial,
		0x092F: Approximant, 0x0939: Approximant,
		0x0905: NoPlace, 0x093E: NoPlace,
	}
	for cp, want := range tests {
		if got := PlaceOf(cp); got != want {
			t.Errorf("PlaceOf(%s) = %s, want %s", cp, got, want)
		}
	}

	if !IsIndependentVowel(0x0904) || !IsIndependentVowel(0x0914) || IsIndependentVowel(0x0915) {
		t.Error("IsIndependentVowel bounds wrong")
	}
}
