// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"github.com/beevik/etree"

	"github.com/pdiddy/jats-press/internal/tree"
)

// buildBody serializes the fragment and runs the per-node fixups. The
// fixups are driven by attributes on the original tree nodes, so they
// cross-reference the tree by ID rather than inspecting the XML alone.
func (ec *exportContext) buildBody() error {
	ec.body = etree.NewElement("body")
	for _, n := range ec.fragment {
		if err := ec.appendNode(ec.body, n); err != nil {
			return err
		}
	}

	tree.WalkAll(ec.fragment, func(n *tree.Node) bool {
		if n.ID() != "" {
			ec.fixElement(n)
		}
		return true
	})

	ec.article.AddChild(ec.body)
	return nil
}

// fixElement applies captioned-element fixups for one tree node: label
// insertion, suppressed title/caption/label removal, table caption
// relocation, and table head/foot reconstruction.
func (ec *exportContext) fixElement(n *tree.Node) {
	el := findByID(ec.body, normalizeID(n.ID()))
	if el == nil {
		return
	}

	switch n.Type {
	case tree.Section:
		if n.AttrBool("titleSuppressed") {
			if title := childElement(el, "title"); title != nil {
				el.RemoveChild(title)
			}
		}

	case tree.FigureElement, tree.EquationElement, tree.ListingElement:
		ec.fixCaptioned(el, n)

	case tree.TableElement:
		ec.fixCaptioned(el, n)
		ec.relocateTableCaption(el, n)
		ec.fixTable(el, n.AttrBool("suppressHeader"), n.AttrBool("suppressFooter"))
	}
}

// fixCaptioned inserts the computed label and removes suppressed caption
// parts.
func (ec *exportContext) fixCaptioned(el *etree.Element, n *tree.Node) {
	if target, ok := ec.labels[n.ID()]; ok && !n.AttrBool("suppressLabel") {
		label := etree.NewElement("label")
		label.SetText(target.Label)
		el.InsertChildAt(0, label)
	}

	caption := childElement(el, "caption")
	if caption == nil {
		return
	}
	if n.AttrBool("suppressCaption") {
		el.RemoveChild(caption)
		return
	}
	if n.AttrBool("suppressTitle") {
		if title := childElement(caption, "title"); title != nil {
			caption.RemoveChild(title)
		}
	}
}

// relocateTableCaption moves the caption to immediately follow the label,
// or to the front when there is no label. Suppressed captions were already
// removed by fixCaptioned.
func (ec *exportContext) relocateTableCaption(el *etree.Element, n *tree.Node) {
	caption := childElement(el, "caption")
	if caption == nil {
		return
	}
	detach(caption)
	if label := childElement(el, "label"); label != nil {
		el.InsertChildAt(label.Index()+1, caption)
		return
	}
	el.InsertChildAt(0, caption)
}

// fixTable rebuilds thead/tbody/tfoot from the flat row list produced by
// per-row serialization. Header rows are row 0 plus any row containing a
// th with scope col or colgroup; the last remaining row becomes the footer.
// The suppress flags drop rows instead of relocating them.
func (ec *exportContext) fixTable(wrap *etree.Element, suppressHeader, suppressFooter bool) {
	table := findFirst(wrap, "table")
	if table == nil {
		return
	}
	tbody := childElement(table, "tbody")
	if tbody == nil {
		return
	}

	rows := tbody.SelectElements("tr")
	var headerRows, bodyRows []*etree.Element
	for i, row := range rows {
		if i == 0 || hasColumnHeader(row) {
			headerRows = append(headerRows, row)
		} else {
			bodyRows = append(bodyRows, row)
		}
	}

	if len(headerRows) > 0 {
		if suppressHeader {
			for _, row := range headerRows {
				tbody.RemoveChild(row)
			}
		} else {
			thead := etree.NewElement("thead")
			for _, row := range headerRows {
				detach(row)
				promoteCells(row)
				thead.AddChild(row)
			}
			table.InsertChildAt(tbody.Index(), thead)
		}
	}

	// A footer only exists when at least one row stays in the body:
	// an empty tbody is not valid.
	if len(bodyRows) >= 2 {
		last := bodyRows[len(bodyRows)-1]
		if suppressFooter {
			tbody.RemoveChild(last)
		} else {
			tfoot := etree.NewElement("tfoot")
			detach(last)
			tfoot.AddChild(last)
			table.InsertChildAt(tbody.Index(), tfoot)
		}
	}
}

// hasColumnHeader reports whether a row carries th cells scoped to columns.
func hasColumnHeader(row *etree.Element) bool {
	for _, cell := range row.SelectElements("th") {
		switch cell.SelectAttrValue("scope", "") {
		case "col", "colgroup":
			return true
		}
	}
	return false
}

// promoteCells upgrades legacy td cells in a header row to th.
func promoteCells(row *etree.Element) {
	for _, cell := range row.SelectElements("td") {
		cell.Tag = "th"
	}
}
