// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tree defines the typed manuscript content tree consumed by the
// JATS exporter. The tree is built upstream (import is out of scope here);
// this package only models and traverses it.
// Implements: prd001-manuscript-model (R4-R6).
package tree

import "strings"

// NodeType discriminates content-tree nodes. The set is closed: the
// serializer switches over it exhaustively.
type NodeType string

const (
	Text               NodeType = "text"
	Paragraph          NodeType = "paragraph"
	Section            NodeType = "section"
	SectionTitle       NodeType = "section_title"
	SectionLabel       NodeType = "section_label"
	BulletList         NodeType = "bullet_list"
	OrderedList        NodeType = "ordered_list"
	ListItem           NodeType = "list_item"
	Blockquote         NodeType = "blockquote_element"
	Pullquote          NodeType = "pullquote_element"
	FigureElement      NodeType = "figure_element"
	Figure             NodeType = "figure"
	MissingFigure      NodeType = "missing_figure"
	Caption            NodeType = "caption"
	CaptionTitle       NodeType = "caption_title"
	TableElement       NodeType = "table_element"
	Table              NodeType = "table"
	TableRow           NodeType = "table_row"
	TableCell          NodeType = "table_cell"
	TableHeader        NodeType = "table_header"
	ListingElement     NodeType = "listing_element"
	Listing            NodeType = "listing"
	EquationElement    NodeType = "equation_element"
	Equation           NodeType = "equation"
	InlineEquation     NodeType = "inline_equation"
	Footnote           NodeType = "footnote"
	FootnotesElement   NodeType = "footnotes_element"
	FootnotesSection   NodeType = "footnotes_section"
	Citation           NodeType = "citation"
	CrossReference     NodeType = "cross_reference"
	Link               NodeType = "link"
	HardBreak          NodeType = "hard_break"
	Placeholder        NodeType = "placeholder"
	PlaceholderElement NodeType = "placeholder_element"
	Supplement         NodeType = "supplement"
	TOCElement         NodeType = "toc_element"
	TOCSection         NodeType = "toc_section"
	KeywordsElement    NodeType = "keywords_element"
	KeywordsSection    NodeType = "keywords_section"
)

// MarkType discriminates inline marks on text nodes.
type MarkType string

const (
	Bold          MarkType = "bold"
	Italic        MarkType = "italic"
	Underline     MarkType = "underline"
	Subscript     MarkType = "subscript"
	Superscript   MarkType = "superscript"
	Strikethrough MarkType = "strikethrough"
	Smallcaps     MarkType = "smallcaps"
	Styled        MarkType = "styled"
	Code          MarkType = "code"
	TrackedInsert MarkType = "tracked_insert"
	TrackedDelete MarkType = "tracked_delete"
)

// Mark is an inline mark with optional attributes (e.g. the styled mark's
// rid pointing at an MPInlineStyle record).
type Mark struct {
	Type  MarkType       `json:"type" yaml:"type"`
	Attrs map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Node is one content-tree node. Text nodes carry Text and Marks; element
// nodes carry Children. Attrs hold per-type attributes such as id, category,
// rids, contentType, rowspan.
type Node struct {
	Type     NodeType       `json:"type" yaml:"type"`
	Attrs    map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children []*Node        `json:"children,omitempty" yaml:"children,omitempty"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Marks    []Mark         `json:"marks,omitempty" yaml:"marks,omitempty"`
}

// ID returns the node's id attribute, or "".
func (n *Node) ID() string { return n.AttrString("id") }

// AttrString returns a string attribute, or "" when absent or mistyped.
func (n *Node) AttrString(key string) string {
	v, _ := n.Attrs[key].(string)
	return v
}

// AttrInt returns an integer attribute. YAML/JSON decoding may surface
// numbers as int, int64, or float64; all are accepted.
func (n *Node) AttrInt(key string) int {
	switch v := n.Attrs[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// AttrBool returns a boolean attribute, or false when absent.
func (n *Node) AttrBool(key string) bool {
	v, _ := n.Attrs[key].(bool)
	return v
}

// AttrStrings returns a string-slice attribute such as rids. Both []string
// and []any (from generic decoding) are accepted.
func (n *Node) AttrStrings(key string) []string {
	switch v := n.Attrs[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Rids returns the node's cross-reference target IDs.
func (n *Node) Rids() []string { return n.AttrStrings("rids") }

// HasMark reports whether a text node carries the given mark type.
func (n *Node) HasMark(t MarkType) bool {
	for _, m := range n.Marks {
		if m.Type == t {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth-first. Returning false from fn
// stops descent below the current node but continues with siblings.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// WalkAll visits every node of every fragment root in order.
func WalkAll(fragment []*Node, fn func(*Node) bool) {
	for _, n := range fragment {
		Walk(n, fn)
	}
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	var b strings.Builder
	Walk(n, func(c *Node) bool {
		b.WriteString(c.Text)
		return true
	})
	return b.String()
}
