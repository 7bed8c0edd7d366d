// Package lexicon holds the codepoint to phone table that drives the
// letter-to-sound pipeline.
//
// A table is loaded once from a line-oriented resource
//
//	<4-hex-digit codepoint>|<phone symbol>|<phone type>
//
// and is immutable afterwards, so a single *Table may be shared by any
// number of goroutines.
package lexicon

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// Codepoint is a single UTF-16 code unit of the input word.
type Codepoint uint16

// String returns the canonical 4-digit upper-case hex form, e.g. "0915".
func (c Codepoint) String() string {
	return fmt.Sprintf("%04X", uint16(c))
}

// ParseCodepoint parses a hex codepoint such as "0915" or "93e".
func ParseCodepoint(s string) (Codepoint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q", s)
	}
	return Codepoint(v), nil
}

// PhoneType classifies a unit for rule eligibility.
type PhoneType uint8

// Phone types. The zero value is Unknown so that a missing lookup can never
// be mistaken for a real phone.
const (
	Unknown PhoneType = iota
	Vowel
	Consonant
	ConjunctMarker
	Symbol
)

var phoneTypeCodes = map[PhoneType]string{
	Unknown:        "#",
	Vowel:          "VOW",
	Consonant:      "CON",
	ConjunctMarker: "HLT",
	Symbol:         "SYM",
}

// String returns the resource-file code for the type ("VOW", "CON", ...).
func (t PhoneType) String() string {
	if code, ok := phoneTypeCodes[t]; ok {
		return code
	}
	return fmt.Sprintf("PhoneType(%d)", uint8(t))
}

// ParsePhoneType maps a resource-file code to a PhoneType.
func ParsePhoneType(s string) (PhoneType, bool) {
	switch strings.TrimSpace(s) {
	case "VOW":
		return Vowel, true
	case "CON":
		return Consonant, true
	case "HLT":
		return ConjunctMarker, true
	case "SYM":
		return Symbol, true
	case "#":
		return Unknown, true
	}
	return Unknown, false
}

// Entry is one row of the table.
type Entry struct {
	Codepoint Codepoint `json:"codepoint"`
	Symbol    string    `json:"symbol"`
	Type      PhoneType `json:"type"`
}

// Table maps codepoints to phone symbols and types.
type Table struct {
	entries     map[Codepoint]Entry
	fingerprint string
}

// NewTable builds a table from entries. Later duplicates replace earlier
// ones, matching the behaviour of reading the resource top to bottom.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{entries: make(map[Codepoint]Entry, len(entries))}
	for _, e := range entries {
		if e.Symbol == "" {
			return nil, fmt.Errorf("entry %s has an empty symbol", e.Codepoint)
		}
		t.entries[e.Codepoint] = e
	}

	var buf bytes.Buffer
	if _, err := t.WriteTo(&buf); err != nil {
		return nil, err
	}
	sum := blake3.Sum256(buf.Bytes())
	t.fingerprint = hex.EncodeToString(sum[:])
	return t, nil
}

// Lookup returns the symbol and type for a codepoint.
func (t *Table) Lookup(c Codepoint) (string, PhoneType, bool) {
	e, ok := t.entries[c]
	if !ok {
		return "", Unknown, false
	}
	return e.Symbol, e.Type, true
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns all entries sorted by codepoint.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codepoint < out[j].Codepoint })
	return out
}

// Fingerprint returns the hex BLAKE3 digest of the canonical text form.
// Two tables with the same entries have the same fingerprint regardless of
// the order or formatting of their source files.
func (t *Table) Fingerprint() string {
	return t.fingerprint
}

// WriteTo writes the canonical text form: one sorted line per entry.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range t.Entries() {
		n, err := fmt.Fprintf(w, "%s|%s|%s\n", e.Codepoint, e.Symbol, e.Type)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// PhoneSet reports whether a phone symbol belongs to an inventory.
type PhoneSet interface {
	Has(symbol string) bool
}

// Validate returns the vowel and consonant entries whose symbols are not
// in the given phone inventory. Conjunct markers and punctuation symbols
// are not phones and are skipped.
func (t *Table) Validate(inv PhoneSet) []Entry {
	var missing []Entry
	for _, e := range t.Entries() {
		if e.Type != Vowel && e.Type != Consonant {
			continue
		}
		if !inv.Has(e.Symbol) {
			missing = append(missing, e)
		}
	}
	return missing
}
