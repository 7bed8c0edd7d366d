// Package maryxml reads MaryTTS allophone sets and adds rule-based
// transcriptions to MaryXML token documents.
//
// Documents are parsed with xmlquery, which sits on encoding/xml and so
// never fetches external entities.
package maryxml

import (
	"io"
	"sort"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/hindilts/core/errors"
)

// PhoneClass is the kind of an allophone entry.
type PhoneClass string

const (
	ClassVowel     PhoneClass = "vowel"
	ClassConsonant PhoneClass = "consonant"
	ClassSilence   PhoneClass = "silence"
	ClassTone      PhoneClass = "tone"
)

var (
	allophonesRoot = xpath.MustCompile("/allophones")
	allophoneNodes = xpath.MustCompile("/allophones/*[@ph]")
)

// Inventory is the phone set of one voice language.
type Inventory struct {
	Name     string
	Language string
	Silence  string
	phones   map[string]PhoneClass
}

// LoadAllophones parses an allophones XML document.
func LoadAllophones(r io.Reader) (*Inventory, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.NewParse("allophones", "", 0, err.Error())
	}
	root := xmlquery.QuerySelector(doc, allophonesRoot)
	if root == nil {
		return nil, errors.NewParse("allophones", "", 0, "missing <allophones> root element")
	}

	inv := &Inventory{
		Name:     root.SelectAttr("name"),
		Language: attrLocal(root, "lang"),
		phones:   make(map[string]PhoneClass),
	}
	for _, n := range xmlquery.QuerySelectorAll(doc, allophoneNodes) {
		ph := n.SelectAttr("ph")
		if ph == "" {
			continue
		}
		class := PhoneClass(n.Data)
		if class == ClassSilence {
			inv.Silence = ph
		}
		inv.phones[ph] = class
	}
	if len(inv.phones) == 0 {
		return nil, errors.NewParse("allophones", "", 0, "no phones defined")
	}
	return inv, nil
}

// Has reports whether symbol is a phone of the inventory.
func (inv *Inventory) Has(symbol string) bool {
	_, ok := inv.phones[symbol]
	return ok
}

// Class returns the class of symbol.
func (inv *Inventory) Class(symbol string) (PhoneClass, bool) {
	c, ok := inv.phones[symbol]
	return c, ok
}

// Len returns the number of phones, silence included.
func (inv *Inventory) Len() int {
	return len(inv.phones)
}

// Phones returns the phones of a class in sorted order.
func (inv *Inventory) Phones(class PhoneClass) []string {
	var out []string
	for ph, c := range inv.phones {
		if c == class {
			out = append(out, ph)
		}
	}
	sort.Strings(out)
	return out
}

// attrLocal finds an attribute by local name whatever its prefix, so
// xml:lang and lang both match "lang".
func attrLocal(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
