// Package embedded bundles the default Hindi resources so the tools work
// without any files on disk.
package embedded

import (
	"bytes"
	_ "embed"
	"io"
	"sync"

	"github.com/FocuswithJustin/hindilts/core/lexicon"
)

//go:embed data/UTF8toIT3.hi.list
var hindiLexicon []byte

//go:embed data/allophones.hi.xml
var hindiAllophones []byte

// LexiconName is the name under which the embedded table is reported and stored.
const LexiconName = "hi"

var (
	tableOnce sync.Once
	table     *lexicon.Table
	tableErr  error
)

// Lexicon returns the embedded Hindi codepoint to IT3 table. It is parsed
// once and shared.
func Lexicon() (*lexicon.Table, error) {
	tableOnce.Do(func() {
		table, tableErr = lexicon.LoadNamed(LexiconSource(), "embedded:"+LexiconName)
	})
	return table, tableErr
}

// LexiconSource returns the raw embedded lexicon resource.
func LexiconSource() io.Reader {
	return bytes.NewReader(hindiLexicon)
}

// Allophones returns the raw embedded MaryTTS allophone set.
func Allophones() io.Reader {
	return bytes.NewReader(hindiAllophones)
}
