package maryxml

import (
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/hindilts/core/errors"
)

// G2PMethod is the g2p_method value written on annotated tokens.
const G2PMethod = "rules"

// untranscribed selects MaryXML tokens without a transcription. The
// local-name test matches tokens with or without the MaryXML namespace.
var untranscribed = xpath.MustCompile("//*[local-name()='t' and not(@ph)]")

// Phonemiser converts one word to a phone string.
type Phonemiser interface {
	Phonemise(word string) (string, error)
}

// Result counts what Annotate did.
type Result struct {
	Tokens    int `json:"tokens"`
	Annotated int `json:"annotated"`
	Failed    int `json:"failed"`
}

// Annotate reads a MaryXML document from r, sets ph and g2p_method on
// every token that has text but no ph, and writes the document to w.
// Tokens that fail to phonemise are left untouched and counted.
func Annotate(r io.Reader, w io.Writer, p Phonemiser) (Result, error) {
	var res Result

	doc, err := xmlquery.Parse(r)
	if err != nil {
		return res, errors.NewParse("maryxml", "", 0, err.Error())
	}

	for _, t := range xmlquery.QuerySelectorAll(doc, untranscribed) {
		word := strings.TrimSpace(t.InnerText())
		if word == "" {
			continue
		}
		res.Tokens++

		phones, err := p.Phonemise(word)
		if err != nil {
			res.Failed++
			continue
		}
		t.SetAttr("ph", phones)
		t.SetAttr("g2p_method", G2PMethod)
		res.Annotated++
	}

	if _, err := io.WriteString(w, doc.OutputXML(false)); err != nil {
		return res, errors.NewIO("write", "", err)
	}
	return res, nil
}
