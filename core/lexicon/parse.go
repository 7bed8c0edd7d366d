package lexicon

import (
	"bufio"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/hindilts/core/errors"
)

// lineGrammar is the participle grammar for one resource line.
// Examples: "0915|k|CON", "094D|^|HLT", "0964|.|SYM|danda"
type lineGrammar struct {
	Codepoint string   `parser:"@Field"`
	Symbol    string   `parser:"\"|\" @Field"`
	Type      string   `parser:"\"|\" @Field"`
	Extra     []string `parser:"( \"|\" @Field? )*"`
}

// lineLexer splits a line on the pipe separator. Fields may contain any
// other character, including spaces and punctuation used by phone symbols
// such as "ng~" or "n:".
var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Sep", Pattern: `\|`},
	{Name: "Field", Pattern: `[^|]+`},
})

var lineParser = participle.MustBuild[lineGrammar](
	participle.Lexer(lineLexer),
)

// Load reads a lexicon resource. Any malformed line fails the whole load;
// no partial table is ever returned.
func Load(r io.Reader) (*Table, error) {
	return LoadNamed(r, "")
}

// LoadNamed is Load with a source name used in error messages.
func LoadNamed(r io.Reader, name string) (*Table, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, errors.NewParse("lexicon", name, lineNo, err.Error())
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewIO("read", name, err)
	}

	t, err := NewTable(entries)
	if err != nil {
		return nil, errors.NewParse("lexicon", name, 0, err.Error())
	}
	return t, nil
}

func parseLine(line string) (Entry, error) {
	parsed, err := lineParser.ParseString("", line)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "expected codepoint|symbol|type, got %q", line)
	}

	cp, err := ParseCodepoint(parsed.Codepoint)
	if err != nil {
		return Entry{}, err
	}

	symbol := strings.TrimSpace(parsed.Symbol)
	if symbol == "" {
		return Entry{}, errors.NewValidation("symbol", "must not be blank")
	}

	typ, ok := ParsePhoneType(parsed.Type)
	if !ok {
		return Entry{}, errors.NewValidation("type", "unknown phone type "+strings.TrimSpace(parsed.Type))
	}

	return Entry{Codepoint: cp, Symbol: symbol, Type: typ}, nil
}
