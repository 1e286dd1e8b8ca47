// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"strings"

	"github.com/beevik/etree"
)

// coiFnTypes identify competing-interest footnotes before canonicalization.
var coiFnTypes = map[string]bool{
	"competing-interests": true,
	"conflict":            true,
	"coi":                 true,
}

// moveCoiStatements relocates competing-interest footnotes from back into
// the article-meta author-notes block as coi-statement footnotes. Emptied
// fn-groups are removed.
func (ec *exportContext) moveCoiStatements() {
	for _, group := range findAll(ec.back, "fn-group") {
		for _, fn := range group.SelectElements("fn") {
			if !coiFnTypes[fn.SelectAttrValue("fn-type", "")] {
				continue
			}
			detach(fn)
			fn.CreateAttr("fn-type", "coi-statement")
			ec.authorNotes().AddChild(fn)
		}
		if len(group.SelectElements("fn")) == 0 {
			detach(group)
		}
	}
}

// authorNotes returns article-meta's author-notes element, creating it at
// its DTD position (after contrib-group and aff, before history and later
// siblings) when absent.
func (ec *exportContext) authorNotes() *etree.Element {
	meta := childElement(ec.front, "article-meta")
	if notes := childElement(meta, "author-notes"); notes != nil {
		return notes
	}

	notes := etree.NewElement("author-notes")
	for _, tag := range []string{"history", "self-uri", "supplementary-material", "abstract", "kwd-group", "counts"} {
		if ref := childElement(meta, tag); ref != nil {
			insertBefore(meta, ref, notes)
			return notes
		}
	}
	meta.AddChild(notes)
	return notes
}

// unwrapBodyContainer hoists the children of a synthetic top-level
// sec[sec-type="body"] wrapper into body and discards the wrapper.
func (ec *exportContext) unwrapBodyContainer() {
	for _, sec := range ec.body.SelectElements("sec") {
		if sec.SelectAttrValue("sec-type", "") != "body" {
			continue
		}
		index := sec.Index()
		ec.body.RemoveChild(sec)
		for _, tok := range append([]etree.Token(nil), sec.Child...) {
			sec.RemoveChild(tok)
			ec.body.InsertChildAt(index, tok)
			index++
		}
	}
}

// abstractSiblings are the article-meta children an abstract must precede,
// in DTD order.
var abstractSiblings = []string{"kwd-group", "funding-group", "support-group", "conference", "counts", "custom-meta-group"}

// moveAbstracts converts abstract sections (by sec-type or by literal
// "Abstract" title) into article-meta abstract elements at their required
// position.
func (ec *exportContext) moveAbstracts() {
	meta := childElement(ec.front, "article-meta")

	for _, sec := range findAll(ec.body, "sec") {
		secType := sec.SelectAttrValue("sec-type", "")
		isAbstract := strings.HasPrefix(secType, "abstract")
		if !isAbstract && secType == "" {
			if title := childElement(sec, "title"); title != nil && textContent(title) == "Abstract" {
				isAbstract = true
			}
		}
		if !isAbstract {
			continue
		}

		detach(sec)
		abstract := etree.NewElement("abstract")
		if suffix, ok := strings.CutPrefix(secType, "abstract-"); ok && suffix != "" {
			abstract.CreateAttr("abstract-type", suffix)
		}
		if title := childElement(sec, "title"); title != nil && textContent(title) == "Abstract" {
			sec.RemoveChild(title)
		}
		moveChildren(sec, abstract)

		inserted := false
		for _, tag := range abstractSiblings {
			if ref := childElement(meta, tag); ref != nil {
				insertBefore(meta, ref, abstract)
				inserted = true
				break
			}
		}
		if !inserted {
			meta.AddChild(abstract)
		}
	}
}

// moveFloatsGroup lifts the children of every floating-element section into
// a top-level floats-group sibling of body and back. The article content
// model allows at most one floats-group, so all sections feed the same one.
func (ec *exportContext) moveFloatsGroup() {
	var floats *etree.Element
	for _, sec := range findAll(ec.body, "sec") {
		if sec.SelectAttrValue("sec-type", "") != "floating-element" {
			continue
		}
		detach(sec)
		if title := childElement(sec, "title"); title != nil {
			sec.RemoveChild(title)
		}
		if len(sec.ChildElements()) == 0 {
			continue
		}
		if floats == nil {
			floats = ec.article.CreateElement("floats-group")
		}
		moveChildren(sec, floats)
	}
}

// removeBackmatterPlaceholder deletes the backmatter placeholder section.
// The DTD offers no slot for its content, so non-empty placeholders are
// dropped with a warning.
func (ec *exportContext) removeBackmatterPlaceholder() {
	for _, sec := range findAll(ec.body, "sec") {
		if sec.SelectAttrValue("sec-type", "") != "backmatter" {
			continue
		}
		if len(sec.ChildElements()) > 0 || strings.TrimSpace(textContent(sec)) != "" {
			ec.warnf("backmatter section %s is not empty, dropping its content", sec.SelectAttrValue("id", ""))
		}
		detach(sec)
	}
}

// fnTypeMap collapses source footnote-type synonyms into the JATS fn-type
// vocabulary. Values not in the table pass through unchanged.
var fnTypeMap = map[string]string{
	"abbreviations":   "abbr",
	"acknowledgment":  "other",
	"acknowledgments": "other",
	"coi":             "competing-interests",
	"conflict":        "competing-interests",
	"contributed-by":  "con",
	"financial":       "financial-disclosure",
	"funding":         "supported-by",
	"endnote":         "custom",
	"footnote":        "custom",
	"note":            "custom",
}

// retypeFootnotes canonicalizes every fn-type attribute in the document.
func (ec *exportContext) retypeFootnotes() {
	walkElements(ec.article, func(el *etree.Element) bool {
		if el.Tag != "fn" {
			return true
		}
		fnType := el.SelectAttrValue("fn-type", "")
		if mapped, ok := fnTypeMap[fnType]; ok {
			el.CreateAttr("fn-type", mapped)
		}
		return true
	})
}

// fillEmptyFootnotes appends an empty paragraph to any footnote left with
// no text content: the DTD requires fn to be non-empty.
func (ec *exportContext) fillEmptyFootnotes() {
	walkElements(ec.article, func(el *etree.Element) bool {
		if el.Tag != "fn" {
			return true
		}
		if strings.TrimSpace(textContent(el)) == "" {
			el.CreateElement("p")
		}
		return true
	})
}
