package lts

import (
	"io"

	"github.com/FocuswithJustin/hindilts/core/lexicon"
)

// Stage names, in pipeline order. They are reported to trace hooks and in
// consistency errors.
const (
	StageTokenize          = "tokenize"
	StageDropUnknown       = "drop-unknown"
	StageAssimilateNasals  = "assimilate-nasals"
	StageMarkClusters      = "mark-clusters"
	StageFillGlides        = "fill-glides"
	StageFillLiquids       = "fill-liquids"
	StageConfirmFullVowels = "confirm-full-vowels"
	StageFillFirst         = "fill-first-consonant"
	StageDropFinalSchwa    = "drop-final-schwa"
	StageDropMedialSchwa   = "drop-medial-schwa"
	StageFinalize          = "finalize"
	StageDropHalant        = "drop-halant"
	StageSyllabify         = "syllabify"
	StageStress            = "stress"
)

type stage struct {
	name string
	run  func(*sequence)
}

// stages is everything after tokenization.
var stages = []stage{
	{StageDropUnknown, dropUnknown},
	{StageAssimilateNasals, assimilateNasals},
	{StageMarkClusters, markClusters},
	{StageFillGlides, fillGlides},
	{StageFillLiquids, fillLiquids},
	{StageConfirmFullVowels, confirmFullVowels},
	{StageFillFirst, fillFirstConsonant},
	{StageDropFinalSchwa, dropFinalSchwa},
	{StageDropMedialSchwa, dropMedialSchwa},
	{StageFinalize, finalize},
	{StageDropHalant, dropConjunctMarkers},
	{StageSyllabify, syllabify},
	{StageStress, addStress},
}

// Stages returns the stage names in the order they run.
func Stages() []string {
	names := []string{StageTokenize}
	for _, st := range stages {
		names = append(names, st.name)
	}
	return names
}

// TraceFunc receives a copy of the unit sequence after each stage.
type TraceFunc func(stage string, units []Unit)

// Option configures a Phonemiser.
type Option func(*Phonemiser)

// WithTrace installs a hook called after every stage of every word.
func WithTrace(fn TraceFunc) Option {
	return func(p *Phonemiser) {
		p.trace = fn
	}
}

// Phonemiser converts Devanagari words to phone strings using one lexicon
// table. It is safe for concurrent use.
type Phonemiser struct {
	table *lexicon.Table
	trace TraceFunc
}

// New creates a Phonemiser over table.
func New(table *lexicon.Table, opts ...Option) *Phonemiser {
	p := &Phonemiser{table: table}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromReader loads a lexicon resource and creates a Phonemiser over it.
func NewFromReader(r io.Reader, opts ...Option) (*Phonemiser, error) {
	table, err := lexicon.Load(r)
	if err != nil {
		return nil, err
	}
	return New(table, opts...), nil
}

// Lexicon returns the table the Phonemiser reads.
func (p *Phonemiser) Lexicon() *lexicon.Table {
	return p.table
}

// Phonemise returns the stressed, syllabified phone string for word.
// Leading and trailing whitespace is ignored; characters missing from the
// lexicon are dropped. The only error is a ConsistencyError, which means
// a stage corrupted the unit sequence.
func (p *Phonemiser) Phonemise(word string) (string, error) {
	seq, err := p.run(word, stages)
	if err != nil {
		return "", err
	}
	return seq.serialize(), nil
}

// Analysis is the result of Analyse.
type Analysis struct {
	Word   string `json:"word"`
	Phones string `json:"phones"`
	Units  []Unit `json:"units"`
}

// Analyse is Phonemise that also returns the final unit sequence.
func (p *Phonemiser) Analyse(word string) (*Analysis, error) {
	seq, err := p.run(word, stages)
	if err != nil {
		return nil, err
	}
	return &Analysis{Word: seq.word, Phones: seq.serialize(), Units: seq.units()}, nil
}

func (p *Phonemiser) run(word string, pipeline []stage) (*sequence, error) {
	seq := tokenize(p.table, word)
	if err := p.after(StageTokenize, seq); err != nil {
		return nil, err
	}
	for _, st := range pipeline {
		st.run(seq)
		if err := p.after(st.name, seq); err != nil {
			return nil, err
		}
	}
	return seq, nil
}

func (p *Phonemiser) after(name string, seq *sequence) error {
	if err := seq.check(name); err != nil {
		return err
	}
	if p.trace != nil {
		p.trace(name, seq.units())
	}
	return nil
}
