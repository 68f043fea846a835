package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"doclink/internal/analysis"
	"doclink/internal/doclet"
)

func TestPrintDoclets(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printDoclets(&buf, []*doclet.Doclet{
		{Longname: "Dog", Kind: doclet.KindClass},
		{Longname: "Dog#speak", Kind: doclet.KindFunction, Inherited: true, Inherits: "Animal#speak"},
		{Longname: "kennel#bark", Kind: doclet.KindFunction, BorrowedFrom: "Dog#speak"},
	})

	out := buf.String()
	assert.Contains(t, out, "Dog#speak (inherited from Animal#speak)")
	assert.Contains(t, out, "kennel#bark (borrowed from Dog#speak)")
}

func TestPrintImpact(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printImpact(&buf, &analysis.ImpactReport{
		Subject:          "Animal",
		Sources:          []*doclet.Doclet{{Longname: "Animal"}},
		DirectlyAffected: []*doclet.Doclet{{Longname: "Dog#speak"}},
		Receivers:        []string{"kennel", "Dog"},
	})

	out := buf.String()
	assert.Contains(t, out, "1 doclets directly affected")
	assert.Contains(t, out, "Dog#speak")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("receiver Dog")), bytes.Index(buf.Bytes(), []byte("receiver kennel")))
}
