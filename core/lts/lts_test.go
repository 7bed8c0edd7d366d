package lts

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/hindilts/core/errors"
	"github.com/FocuswithJustin/hindilts/core/lexicon"
)

func newTestPhonemiser(t *testing.T, opts ...Option) *Phonemiser {
	t.Helper()
	f, err := os.Open("testdata/UTF8toIT3.hi.list")
	if err != nil {
		t.Fatalf("open lexicon: %v", err)
	}
	defer f.Close()
	p, err := NewFromReader(f, opts...)
	if err != nil {
		t.Fatalf("NewFromReader: %v", err)
	}
	return p
}

func TestPhonemise(t *testing.T) {
	p := newTestPhonemiser(t)

	tests := []struct {
		name string
		word string
		want string
	}{
		{"consonant with vowel sign", "का", "'kaa"},
		{"empty", "", "'"},
		{"whitespace only", " \t ", "'"},
		{"surrounding whitespace", "  का\n", "'kaa"},
		{"halant cluster", "क्ष", "'ksx"},
		{"independent vowel start", "आपका", "'aa-pa-kaa"},
		{"final schwa deleted", "भारत", "'bhaa-rat"},
		{"only first consonant filled", "कमल", "'kaml"},
		{"cluster before vowel sign", "नमस्ते", "'na-mste"},
		{"anusvara before dental", "हिंदी", "'hi-na-dii"},
		{"anusvara before dental after consonant", "संत", "'sa-nat"},
		{"anusvara before retroflex", "कंठ", "'ka-natxh"},
		{"anusvara before retroflex with vowel", "घंटा", "'gha-na-txaa"},
		{"glide after high vowel", "प्रिय", "'pri-ya"},
		{"schwa before full vowel", "कई", "'ka-ii"},
		{"boundary after chandrabindu", "हँसी", "'han:-sii"},
		{"unknown characters dropped", "क1ा", "'kaa"},
		{"latin only", "hello", "'"},
		{"supplementary plane dropped", "😀का", "'kaa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Phonemise(tt.word)
			if err != nil {
				t.Fatalf("Phonemise(%q) error: %v", tt.word, err)
			}
			if got != tt.want {
				t.Errorf("Phonemise(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestPhonemiseProperties(t *testing.T) {
	p := newTestPhonemiser(t)
	words := []string{
		"", "का", "क्ष", "आपका", "भारत", "कमल", "नमस्ते", "हिंदी", "संत",
		"कंठ", "प्रिय", "कई", "हँसी", "विद्यालय", "स्त्री", "अंग्रेज़ी", "दुःख",
		"यहां", "क्", "्", "abc", "ॐ।",
	}

	for _, w := range words {
		got, err := p.Phonemise(w)
		if err != nil {
			t.Fatalf("Phonemise(%q) error: %v", w, err)
		}
		if !strings.HasPrefix(got, "'") {
			t.Errorf("Phonemise(%q) = %q, missing stress mark", w, got)
		}
		if strings.Count(got, "'") != 1 {
			t.Errorf("Phonemise(%q) = %q, want exactly one stress mark", w, got)
		}
		if strings.Contains(got, "^") {
			t.Errorf("Phonemise(%q) = %q, conjunct marker survived", w, got)
		}
		again, _ := p.Phonemise(w)
		if again != got {
			t.Errorf("Phonemise(%q) not deterministic: %q then %q", w, got, again)
		}
	}
}

func TestPhonemiseConcurrent(t *testing.T) {
	p := newTestPhonemiser(t)
	want, _ := p.Phonemise("आपका")

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Phonemise("आपका")
			if err != nil || got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent Phonemise = %q, want %q", got, want)
	}
}

func TestAnalyse(t *testing.T) {
	p := newTestPhonemiser(t)

	a, err := p.Analyse(" हिंदी ")
	if err != nil {
		t.Fatalf("Analyse error: %v", err)
	}
	if a.Word != "हिंदी" {
		t.Errorf("Word = %q, want trimmed input", a.Word)
	}
	if a.Phones != "'hi-na-dii" {
		t.Errorf("Phones = %q", a.Phones)
	}

	var symbols []string
	for _, u := range a.Units {
		symbols = append(symbols, u.Symbol)
	}
	want := []string{"'", "h", "i", "-", "n", "a", "-", "d", "ii"}
	if diff := cmp.Diff(want, symbols); diff != "" {
		t.Errorf("unit symbols mismatch (-want +got):\n%s", diff)
	}

	nasal := a.Units[4]
	if nasal.Codepoint != 0x0928 || nasal.Type != lexicon.Consonant || nasal.Status != Filled {
		t.Errorf("rewritten anusvara = %v", nasal)
	}
	schwa := a.Units[5]
	if schwa.Codepoint != cpSchwa || schwa.Type != lexicon.Vowel {
		t.Errorf("inserted schwa = %v", schwa)
	}
}

func TestWithTrace(t *testing.T) {
	var (
		seen []string
		last []Unit
	)
	p := newTestPhonemiser(t, WithTrace(func(stage string, units []Unit) {
		seen = append(seen, stage)
		last = units
	}))

	if _, err := p.Phonemise("का"); err != nil {
		t.Fatalf("Phonemise error: %v", err)
	}
	if diff := cmp.Diff(Stages(), seen); diff != "" {
		t.Errorf("traced stages mismatch (-want +got):\n%s", diff)
	}
	if len(last) == 0 || last[0].Symbol != "'" {
		t.Errorf("last traced sequence = %v, want stress first", last)
	}

	// The hook gets a copy.
	last[0].Symbol = "x"
	got, _ := p.Phonemise("का")
	if got != "'kaa" {
		t.Errorf("trace hook mutation leaked: %q", got)
	}
}

func TestConsistencyCheck(t *testing.T) {
	p := newTestPhonemiser(t)
	broken := []stage{
		{"truncate-symbols", func(s *sequence) { s.symbols = s.symbols[:len(s.symbols)-1] }},
		{"never-reached", func(*sequence) { t.Error("stage after a corrupt one ran") }},
	}

	_, err := p.run("का", broken)
	if err == nil {
		t.Fatal("expected consistency error")
	}
	var ce *errors.ConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %T, want *ConsistencyError", err)
	}
	if ce.Stage != "truncate-symbols" || ce.Word != "का" {
		t.Errorf("error = %+v", ce)
	}
	if ce.Lengths["codepoints"] != 2 || ce.Lengths["symbols"] != 1 {
		t.Errorf("lengths = %v", ce.Lengths)
	}
	if !errors.Is(err, errors.ErrInternal) {
		t.Error("consistency error should match ErrInternal")
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{
		None:       "none",
		Unresolved: "unresolved",
		Filled:     "filled",
		Heavy:      "heavy",
		Status(9):  "Status(9)",
	} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}
