// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// inlineTags maps HTML inline elements that citation engines emit to their
// JATS equivalents. Anything outside the table is flattened to its text.
var inlineTags = map[string]string{
	"i":      "italic",
	"em":     "italic",
	"b":      "bold",
	"strong": "bold",
	"sub":    "sub",
	"sup":    "sup",
	"u":      "underline",
	"code":   "monospace",
}

// appendInlineFragment parses rendered citation text as an HTML fragment
// and appends it to el as JATS inline content. The built-in engine emits
// plain text; external CSL processors emit fragments with <i>/<b>/<sup>.
func appendInlineFragment(el *etree.Element, fragment string) {
	if !strings.ContainsRune(fragment, '<') {
		el.CreateText(fragment)
		return
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		el.CreateText(fragment)
		return
	}
	for _, n := range nodes {
		appendHTMLNode(el, n)
	}
}

func appendHTMLNode(parent *etree.Element, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		parent.CreateText(n.Data)
	case html.ElementNode:
		target := parent
		if tag, ok := inlineTags[n.Data]; ok {
			target = parent.CreateElement(tag)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			appendHTMLNode(target, c)
		}
	}
}
