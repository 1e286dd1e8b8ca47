// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/pdiddy/jats-press/internal/tree"
)

// nodeShape declares how one content-tree node type serializes: skipped
// entirely, a plain tag with fixed attributes and children inserted in
// place, or a custom builder. Keeping the table closed over tree.NodeType
// keeps the mapping reviewable in one place.
type nodeShape struct {
	skip   bool
	tag    string
	attrs  map[string]string
	custom func(ec *exportContext, n *tree.Node) (*etree.Element, error)
}

var nodeShapes map[tree.NodeType]nodeShape

func init() {
	nodeShapes = map[tree.NodeType]nodeShape{
		tree.Paragraph:    {tag: "p"},
		tree.Section:      {custom: buildSection},
		tree.SectionTitle: {tag: "title"},
		tree.SectionLabel: {tag: "label"},

		tree.BulletList:  {tag: "list", attrs: map[string]string{"list-type": "bullet"}},
		tree.OrderedList: {tag: "list", attrs: map[string]string{"list-type": "order"}},
		tree.ListItem:    {tag: "list-item"},

		tree.Blockquote: {tag: "disp-quote", attrs: map[string]string{"content-type": "quote"}},
		tree.Pullquote:  {tag: "disp-quote", attrs: map[string]string{"content-type": "pullquote"}},

		tree.FigureElement: {tag: "fig", attrs: map[string]string{"fig-type": "figure"}},
		tree.Figure:        {custom: buildFigure},
		tree.MissingFigure: {skip: true},
		tree.Caption:       {tag: "caption"},
		tree.CaptionTitle:  {tag: "title"},

		tree.TableElement: {tag: "table-wrap"},
		tree.Table:        {custom: buildTable},
		tree.TableRow:     {tag: "tr"},
		tree.TableCell:    {custom: buildTableCell},
		tree.TableHeader:  {custom: buildTableHeader},

		tree.ListingElement: {tag: "fig", attrs: map[string]string{"fig-type": "listing"}},
		tree.Listing:        {custom: buildListing},

		tree.EquationElement: {tag: "disp-formula"},
		tree.Equation:        {custom: buildEquation},
		tree.InlineEquation:  {custom: buildInlineEquation},

		tree.Footnote:         {custom: buildFootnote},
		tree.FootnotesElement: {tag: "fn-group"},
		tree.FootnotesSection: {custom: buildSection},

		tree.Citation:       {custom: buildCitation},
		tree.CrossReference: {custom: buildCrossReference},
		tree.Link:           {custom: buildLink},
		tree.HardBreak:      {tag: "break"},

		// Purely structural nodes with no JATS rendition: keywords and
		// supplements are rebuilt from models in front matter, TOC and
		// placeholders have no archival form.
		tree.Placeholder:        {skip: true},
		tree.PlaceholderElement: {skip: true},
		tree.Supplement:         {skip: true},
		tree.TOCElement:         {skip: true},
		tree.TOCSection:         {skip: true},
		tree.KeywordsElement:    {skip: true},
		tree.KeywordsSection:    {skip: true},
	}
}

// appendNode serializes n into parent. Unknown node types flatten into
// their children with a warning so one bad node cannot sink the export.
func (ec *exportContext) appendNode(parent *etree.Element, n *tree.Node) error {
	if n.Type == tree.Text {
		ec.appendText(parent, n)
		return nil
	}

	shape, ok := nodeShapes[n.Type]
	if !ok {
		ec.warnf("no serializer for node type %q, flattening", n.Type)
		return ec.appendChildren(parent, n)
	}
	if shape.skip {
		return nil
	}

	if shape.custom != nil {
		el, err := shape.custom(ec, n)
		if err != nil {
			return err
		}
		if el != nil {
			parent.AddChild(el)
		}
		return nil
	}

	el := parent.CreateElement(shape.tag)
	for k, v := range shape.attrs {
		el.CreateAttr(k, v)
	}
	if id := n.ID(); id != "" {
		el.CreateAttr("id", normalizeID(id))
	}
	return ec.appendChildren(el, n)
}

func (ec *exportContext) appendChildren(el *etree.Element, n *tree.Node) error {
	for _, c := range n.Children {
		if err := ec.appendNode(el, c); err != nil {
			return err
		}
	}
	return nil
}

// markShape maps one mark type to its JATS inline wrapper. A nil build with
// an empty tag means the mark contributes no wrapper.
type markShape struct {
	tag   string
	drop  bool
	style bool
}

var markShapes = map[tree.MarkType]markShape{
	tree.Bold:          {tag: "bold"},
	tree.Italic:        {tag: "italic"},
	tree.Underline:     {tag: "underline"},
	tree.Subscript:     {tag: "sub"},
	tree.Superscript:   {tag: "sup"},
	tree.Strikethrough: {tag: "strike"},
	tree.Smallcaps:     {tag: "sc"},
	tree.Code:          {tag: "monospace"},
	tree.Styled:        {style: true},

	// JATS has no inline tracked-change vocabulary: inserts render as
	// accepted content, deletes drop out.
	tree.TrackedInsert: {},
	tree.TrackedDelete: {drop: true},
}

// appendText emits a text run, wrapping it in nested mark elements from the
// outside in. Dropping marks are checked up front so a dropped run leaves no
// empty wrappers behind.
func (ec *exportContext) appendText(parent *etree.Element, n *tree.Node) {
	for _, m := range n.Marks {
		if shape, ok := markShapes[m.Type]; ok && shape.drop {
			return
		}
	}

	target := parent
	for _, m := range n.Marks {
		shape, ok := markShapes[m.Type]
		if !ok {
			ec.warnf("no serializer for mark type %q, dropping mark", m.Type)
			continue
		}
		switch {
		case shape.style:
			if styled := ec.styledWrapper(target, m); styled != nil {
				target = styled
			}
		case shape.tag != "":
			target = target.CreateElement(shape.tag)
		}
	}
	target.CreateText(n.Text)
}

// styledWrapper resolves a styled mark's MPInlineStyle reference to a
// styled-content element. A dangling reference leaves the run unwrapped.
func (ec *exportContext) styledWrapper(parent *etree.Element, m tree.Mark) *etree.Element {
	rid, _ := m.Attrs["rid"].(string)
	model, ok := ec.models[rid]
	if !ok || model.InlineStyle == nil || model.InlineStyle.Name == "" {
		return nil
	}
	el := parent.CreateElement("styled-content")
	el.CreateAttr("style", normalizeStyleName(model.InlineStyle.Name))
	return el
}

func normalizeStyleName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// --- custom builders ---

// buildSection emits a sec element typed by its category suffix
// ("MPSectionCategory:abstract" -> sec-type "abstract").
func buildSection(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	el := etree.NewElement("sec")
	if id := n.ID(); id != "" {
		el.CreateAttr("id", normalizeID(id))
	}
	if st := sectionType(n.AttrString("category")); st != "" {
		el.CreateAttr("sec-type", st)
	}
	return el, ec.appendChildren(el, n)
}

// sectionType strips the category prefix: "MPSectionCategory:abstract"
// yields "abstract". Bare category strings pass through.
func sectionType(category string) string {
	if category == "" {
		return ""
	}
	if i := strings.LastIndex(category, ":"); i >= 0 {
		return category[i+1:]
	}
	return category
}

// buildFigure emits a graphic with mimetype split from the node's
// contentType ("image/png" -> mimetype "image", mime-subtype "png").
func buildFigure(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	el := etree.NewElement("graphic")
	if id := n.ID(); id != "" {
		el.CreateAttr("id", normalizeID(id))
	}
	el.CreateAttr("xlink:href", n.AttrString("src"))
	if mime, subtype, ok := strings.Cut(n.AttrString("contentType"), "/"); ok {
		el.CreateAttr("mimetype", mime)
		el.CreateAttr("mime-subtype", subtype)
	}
	return el, nil
}

// buildTable wraps the flat row list in a single tbody; fixTable later
// splits out thead and tfoot.
func buildTable(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	el := etree.NewElement("table")
	if id := n.ID(); id != "" {
		el.CreateAttr("id", normalizeID(id))
	}
	tbody := el.CreateElement("tbody")
	return el, ec.appendChildren(tbody, n)
}

func buildTableCell(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	return ec.buildCell("td", n)
}

func buildTableHeader(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	return ec.buildCell("th", n)
}

func (ec *exportContext) buildCell(tag string, n *tree.Node) (*etree.Element, error) {
	el := etree.NewElement(tag)
	if v := n.AttrInt("rowspan"); v > 1 {
		el.CreateAttr("rowspan", strconv.Itoa(v))
	}
	if v := n.AttrInt("colspan"); v > 1 {
		el.CreateAttr("colspan", strconv.Itoa(v))
	}
	if v := n.AttrString("scope"); v != "" {
		el.CreateAttr("scope", v)
	}
	if v := n.AttrString("style"); v != "" {
		el.CreateAttr("style", v)
	}
	return el, ec.appendChildren(el, n)
}

// buildListing emits a code element; listing content lives in the node's
// contents attribute, falling back to child text.
func buildListing(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	el := etree.NewElement("code")
	if id := n.ID(); id != "" {
		el.CreateAttr("id", normalizeID(id))
	}
	if lang := n.AttrString("language"); lang != "" {
		el.CreateAttr("language", lang)
	}
	if contents := n.AttrString("contents"); contents != "" {
		el.CreateText(contents)
		return el, nil
	}
	return el, ec.appendChildren(el, n)
}

// buildEquation chooses between raw TeX and parsed MathML based on the
// node's format attribute.
func buildEquation(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	return ec.buildFormulaContent(n)
}

func buildInlineEquation(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	el := etree.NewElement("inline-formula")
	if id := n.ID(); id != "" {
		el.CreateAttr("id", normalizeID(id))
	}
	inner, err := ec.buildFormulaContent(n)
	if err != nil {
		return nil, err
	}
	if inner != nil {
		el.AddChild(inner)
	}
	return el, nil
}

func (ec *exportContext) buildFormulaContent(n *tree.Node) (*etree.Element, error) {
	contents := n.AttrString("contents")
	if n.AttrString("format") == "tex" || n.AttrString("format") == "latex" {
		el := etree.NewElement("tex-math")
		el.CreateText(contents)
		return el, nil
	}

	if contents != "" {
		parsed := etree.NewDocument()
		if err := parsed.ReadFromString(contents); err != nil {
			ec.warnf("equation %s: unparseable MathML, emitting tex-math", n.ID())
			el := etree.NewElement("tex-math")
			el.CreateText(contents)
			return el, nil
		}
		if root := parsed.Root(); root != nil {
			parsed.RemoveChild(root)
			return root, nil
		}
	}
	return nil, nil
}

// buildFootnote emits fn with the node's category as its provisional
// fn-type; retypeFootnotes canonicalizes it later.
func buildFootnote(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	el := etree.NewElement("fn")
	if id := n.ID(); id != "" {
		el.CreateAttr("id", normalizeID(id))
	}
	if kind := n.AttrString("kind"); kind != "" {
		el.CreateAttr("fn-type", kind)
	}
	return el, ec.appendChildren(el, n)
}

// buildCitation emits an xref carrying the citation's prerendered text. A
// missing entry in the citation table is a data-integrity failure: the
// rendering pass and the tree are out of sync.
func buildCitation(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	text, ok := ec.citationTexts[n.ID()]
	if !ok {
		return nil, fmt.Errorf("no rendered text for citation %s", n.ID())
	}

	el := etree.NewElement("xref")
	el.CreateAttr("ref-type", "bibr")
	if id := n.ID(); id != "" {
		el.CreateAttr("id", normalizeID(id))
	}
	if rids := n.Rids(); len(rids) > 0 {
		normalized := make([]string, len(rids))
		for i, rid := range rids {
			normalized[i] = normalizeID(rid)
		}
		el.CreateAttr("rid", strings.Join(normalized, " "))
	}
	appendInlineFragment(el, text)
	return el, nil
}

// xrefTypes maps referenced node types to the xref ref-type vocabulary.
var xrefTypes = map[tree.NodeType]string{
	tree.FigureElement:   "fig",
	tree.TableElement:    "table",
	tree.EquationElement: "disp-formula",
	tree.ListingElement:  "fig",
	tree.Section:         "sec",
	tree.Footnote:        "fn",
}

// buildCrossReference resolves the referenced node and emits a typed xref.
// When the target cannot be resolved the reference degrades to its plain
// label text.
func buildCrossReference(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	label := n.AttrString("label")

	rids := n.Rids()
	var target *tree.Node
	if len(rids) > 0 {
		target = ec.nodesByID[rids[0]]
	}
	if target == nil {
		ec.warnf("cross-reference %s: target not found, emitting label text", n.ID())
		if label != "" {
			el := etree.NewElement("x")
			el.CreateText(label)
			return el, nil
		}
		return nil, nil
	}

	if label == "" {
		if t, ok := ec.labels[target.ID()]; ok {
			label = t.Label
		}
	}

	el := etree.NewElement("xref")
	if refType, ok := xrefTypes[target.Type]; ok {
		el.CreateAttr("ref-type", refType)
	}
	if id := n.ID(); id != "" {
		el.CreateAttr("id", normalizeID(id))
	}
	normalized := make([]string, len(rids))
	for i, rid := range rids {
		normalized[i] = normalizeID(rid)
	}
	el.CreateAttr("rid", strings.Join(normalized, " "))
	el.CreateText(label)
	return el, nil
}

func buildLink(ec *exportContext, n *tree.Node) (*etree.Element, error) {
	el := etree.NewElement("ext-link")
	el.CreateAttr("ext-link-type", "uri")
	el.CreateAttr("xlink:href", n.AttrString("href"))
	return el, ec.appendChildren(el, n)
}
