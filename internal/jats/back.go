// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"github.com/beevik/etree"
)

// ackTypes are section types relocated into back as an ack element.
var ackTypes = map[string]bool{
	"acknowledgment":   true,
	"acknowledgments":  true,
	"acknowledgements": true,
}

// fnGroupTypes are section types that become back-matter footnote groups.
var fnGroupTypes = map[string]bool{
	"competing-interests":  true,
	"con":                  true,
	"conflict":             true,
	"coi":                  true,
	"financial-disclosure": true,
}

// buildBack relocates back-matter sections out of body and appends the
// ref-list. The back element is attached to the article by the caller,
// after the competing-interest relocation.
func (ec *exportContext) buildBack() error {
	ec.back = etree.NewElement("back")

	var bibliographyTitle string
	for _, sec := range findAll(ec.body, "sec") {
		secType := sec.SelectAttrValue("sec-type", "")
		switch {
		case ackTypes[secType]:
			detach(sec)
			sec.Tag = "ack"
			sec.RemoveAttr("sec-type")
			ec.back.AddChild(sec)

		case secType == "appendices":
			detach(sec)
			group := ec.back.CreateElement("app-group")
			if id := sec.SelectAttrValue("id", ""); id != "" {
				group.CreateAttr("id", id)
			}
			if title := childElement(sec, "title"); title != nil {
				detach(title)
				group.AddChild(title)
			}
			for _, app := range sec.SelectElements("sec") {
				detach(app)
				app.Tag = "app"
				app.RemoveAttr("sec-type")
				group.AddChild(app)
			}
			// Loose content outside child sections becomes one app.
			if len(sec.ChildElements()) > 0 || textContent(sec) != "" {
				app := group.CreateElement("app")
				moveChildren(sec, app)
			}

		case secType == "availability":
			detach(sec)
			sec.CreateAttr("sec-type", "data-availability")
			ec.back.AddChild(sec)

		case fnGroupTypes[secType]:
			detach(sec)
			ec.back.AddChild(ec.sectionToFnGroup(sec, secType))

		case secType == "bibliography":
			if title := childElement(sec, "title"); title != nil {
				bibliographyTitle = textContent(title)
			}
			detach(sec)
		}
	}

	ec.buildRefList(bibliographyTitle)
	return nil
}

// sectionToFnGroup converts a footnote-category section into a fn-group
// holding a single typed fn with the section's content.
func (ec *exportContext) sectionToFnGroup(sec *etree.Element, secType string) *etree.Element {
	group := etree.NewElement("fn-group")
	if title := childElement(sec, "title"); title != nil {
		detach(title)
		group.AddChild(title)
	}

	fn := group.CreateElement("fn")
	if id := sec.SelectAttrValue("id", ""); id != "" {
		fn.CreateAttr("id", id)
	}
	fn.CreateAttr("fn-type", secType)
	moveChildren(sec, fn)
	return group
}

// buildRefList appends the ref-list built from the citation provider's
// bibliography order. A missing or empty bibliography is tolerated: an
// empty ref-list is synthesized with a warning.
func (ec *exportContext) buildRefList(title string) {
	refList := ec.back.CreateElement("ref-list")
	if title == "" {
		title = "References"
	}
	refList.CreateElement("title").SetText(title)

	ids, err := ec.provider.MakeBibliography()
	if err != nil {
		ec.warnf("bibliography unavailable (%v), emitting empty ref-list", err)
		return
	}
	if len(ids) == 0 {
		ec.warnf("no bibliography items, emitting empty ref-list")
		return
	}

	for _, id := range ids {
		item := ec.models.BibliographyItemByID(id)
		if item == nil {
			ec.warnf("bibliography item %s not found, skipping", id)
			continue
		}
		refList.AddChild(buildRef(id, item))
	}
}
