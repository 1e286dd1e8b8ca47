// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"strings"

	"github.com/beevik/etree"
)

// normalizeID makes a model ID usable as an XML id/rid value. Model IDs
// contain colons ("MPFigure:abc"), which are not valid in ID tokens.
func normalizeID(id string) string {
	return strings.ReplaceAll(id, ":", "_")
}

// walkElements visits el and its descendant elements in document order.
// Returning false from fn skips the current element's subtree.
func walkElements(el *etree.Element, fn func(*etree.Element) bool) {
	if el == nil || !fn(el) {
		return
	}
	for _, child := range el.ChildElements() {
		walkElements(child, fn)
	}
}

// findByID returns the first element under root (inclusive) whose id
// attribute equals id, or nil.
func findByID(root *etree.Element, id string) *etree.Element {
	var found *etree.Element
	walkElements(root, func(el *etree.Element) bool {
		if found != nil {
			return false
		}
		if el.SelectAttrValue("id", "") == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// findFirst returns the first descendant of root (exclusive) with the given
// tag, or nil.
func findFirst(root *etree.Element, tag string) *etree.Element {
	var found *etree.Element
	for _, child := range root.ChildElements() {
		if found != nil {
			break
		}
		if child.Tag == tag {
			return child
		}
		found = findFirst(child, tag)
	}
	return found
}

// findAll collects every descendant of root (exclusive) with the given tag,
// in document order.
func findAll(root *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range root.ChildElements() {
		if child.Tag == tag {
			out = append(out, child)
		}
		out = append(out, findAll(child, tag)...)
	}
	return out
}

// textContent concatenates all character data under el.
func textContent(el *etree.Element) string {
	var b strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			b.WriteString(textContent(t))
		}
	}
	return b.String()
}

// detach removes el from its parent, if any, and returns it.
func detach(el *etree.Element) *etree.Element {
	if p := el.Parent(); p != nil {
		p.RemoveChild(el)
	}
	return el
}

// insertBefore places el immediately before ref among ref's siblings.
func insertBefore(parent *etree.Element, ref, el *etree.Element) {
	detach(el)
	parent.InsertChildAt(ref.Index(), el)
}

// moveChildren appends every child token of src to dst, preserving order.
func moveChildren(src, dst *etree.Element) {
	for _, tok := range append([]etree.Token(nil), src.Child...) {
		src.RemoveChild(tok)
		dst.AddChild(tok)
	}
}

// childElement returns the first direct child with the given tag, or nil.
func childElement(el *etree.Element, tag string) *etree.Element {
	return el.SelectElement(tag)
}
