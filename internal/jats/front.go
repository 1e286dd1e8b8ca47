// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/pdiddy/jats-press/pkg/types"
)

// buildFront assembles journal-meta and article-meta. It is always built,
// including in front-matter-only mode.
func (ec *exportContext) buildFront() error {
	ec.front = ec.article.CreateElement("front")

	if jm := ec.buildJournalMeta(); jm != nil {
		ec.front.AddChild(jm)
	}

	meta := ec.front.CreateElement("article-meta")
	ec.buildArticleIDs(meta)
	ec.buildTitleGroup(meta)
	ec.buildContribGroup(meta)
	ec.buildAuthorNotes(meta)
	ec.buildHistory(meta)
	ec.buildSelfURIs(meta)
	ec.buildSupplements(meta)
	ec.buildKeywordGroups(meta)
	ec.buildCounts(meta)
	return nil
}

// buildJournalMeta returns a journal-meta element, or nil when the journal
// record produces no children (journal-meta is omitted entirely then).
func (ec *exportContext) buildJournalMeta() *etree.Element {
	var journal *types.Journal
	for _, model := range ec.models.OfType(types.ObjectJournal) {
		if model.Journal != nil {
			journal = model.Journal
			break
		}
	}
	if journal == nil {
		return nil
	}

	jm := etree.NewElement("journal-meta")

	for _, jid := range journal.JournalIdentifiers {
		if jid.Value == "" {
			continue
		}
		el := jm.CreateElement("journal-id")
		if jid.Type != "" {
			el.CreateAttr("journal-id-type", jid.Type)
		}
		el.SetText(jid.Value)
	}

	if journal.Title != "" || len(journal.AbbreviatedTitles) > 0 {
		group := jm.CreateElement("journal-title-group")
		if journal.Title != "" {
			group.CreateElement("journal-title").SetText(journal.Title)
		}
		for _, abbrev := range journal.AbbreviatedTitles {
			if abbrev.Value == "" {
				continue
			}
			el := group.CreateElement("abbrev-journal-title")
			if abbrev.Type != "" {
				el.CreateAttr("abbrev-type", abbrev.Type)
			}
			el.SetText(abbrev.Value)
		}
	}

	for _, issn := range journal.ISSNs {
		if issn.Value == "" {
			continue
		}
		el := jm.CreateElement("issn")
		if issn.Type != "" {
			el.CreateAttr("pub-type", issn.Type)
		}
		el.SetText(issn.Value)
	}

	if journal.PublisherName != "" {
		jm.CreateElement("publisher").CreateElement("publisher-name").SetText(journal.PublisherName)
	}

	if len(jm.ChildElements()) == 0 {
		return nil
	}
	return jm
}

func (ec *exportContext) buildArticleIDs(meta *etree.Element) {
	if ec.opts.ID != "" {
		el := meta.CreateElement("article-id")
		el.CreateAttr("pub-id-type", "publisher-id")
		el.SetText(ec.opts.ID)
	}
	doi := ec.opts.DOI
	if doi == "" {
		doi = ec.manuscript.DOI
	}
	if doi != "" {
		el := meta.CreateElement("article-id")
		el.CreateAttr("pub-id-type", "doi")
		el.SetText(doi)
	}
}

func (ec *exportContext) buildTitleGroup(meta *etree.Element) {
	group := meta.CreateElement("title-group")
	group.CreateElement("article-title").SetText(ec.manuscript.Title)
}

// buildContribGroup emits contributors ordered by priority, followed by
// their affiliations. A contributor without any bibliographic name is
// skipped with a warning; the export continues.
func (ec *exportContext) buildContribGroup(meta *etree.Element) {
	contributors := ec.models.OfType(types.ObjectContributor)
	affiliations := ec.models.OfType(types.ObjectAffiliation)
	if len(contributors) == 0 && len(affiliations) == 0 {
		return
	}

	sort.SliceStable(contributors, func(i, j int) bool {
		a, b := contributors[i], contributors[j]
		if a.Contributor == nil || b.Contributor == nil {
			return a.Contributor != nil
		}
		if a.Contributor.Priority != b.Contributor.Priority {
			return a.Contributor.Priority < b.Contributor.Priority
		}
		return a.ID < b.ID
	})
	sort.SliceStable(affiliations, func(i, j int) bool {
		a, b := affiliations[i], affiliations[j]
		if a.Affiliation == nil || b.Affiliation == nil {
			return a.Affiliation != nil
		}
		if a.Affiliation.Priority != b.Affiliation.Priority {
			return a.Affiliation.Priority < b.Affiliation.Priority
		}
		return a.ID < b.ID
	})

	group := meta.CreateElement("contrib-group")
	group.CreateAttr("content-type", "authors")

	for _, model := range contributors {
		c := model.Contributor
		if c == nil || c.BibliographicName.IsEmpty() {
			ec.warnf("contributor %s has no bibliographic name, skipping", model.ID)
			continue
		}

		contrib := group.CreateElement("contrib")
		contrib.CreateAttr("contrib-type", ec.roleName(c.Role))
		if c.IsCorresponding {
			contrib.CreateAttr("corresp", "yes")
		}
		contrib.CreateAttr("id", normalizeID(model.ID))

		if c.ORCID != "" {
			orcid := contrib.CreateElement("contrib-id")
			orcid.CreateAttr("contrib-id-type", "orcid")
			orcid.SetText(c.ORCID)
		}

		name := c.BibliographicName
		if name.Family == "" && name.Given == "" {
			contrib.CreateElement("string-name").SetText(name.Literal)
		} else {
			nameEl := contrib.CreateElement("name")
			if name.Family != "" {
				nameEl.CreateElement("surname").SetText(name.Family)
			}
			if name.Given != "" {
				nameEl.CreateElement("given-names").SetText(name.Given)
			}
			if name.Suffix != "" {
				nameEl.CreateElement("suffix").SetText(name.Suffix)
			}
		}

		if c.IsCorresponding && c.Email != "" {
			contrib.CreateElement("email").SetText(c.Email)
		}

		for _, affID := range c.Affiliations {
			xref := contrib.CreateElement("xref")
			xref.CreateAttr("ref-type", "aff")
			xref.CreateAttr("rid", normalizeID(affID))
		}
		for _, fnID := range c.Footnotes {
			xref := contrib.CreateElement("xref")
			xref.CreateAttr("ref-type", "fn")
			xref.CreateAttr("rid", normalizeID(fnID))
		}
	}

	for _, model := range affiliations {
		a := model.Affiliation
		if a == nil {
			continue
		}
		aff := group.CreateElement("aff")
		aff.CreateAttr("id", normalizeID(model.ID))
		if a.Department != "" {
			dept := aff.CreateElement("institution")
			dept.CreateAttr("content-type", "dept")
			dept.SetText(a.Department)
		}
		if a.Institution != "" {
			aff.CreateElement("institution").SetText(a.Institution)
		}
		if a.AddressLine1 != "" {
			aff.CreateElement("addr-line").SetText(a.AddressLine1)
		}
		if a.City != "" {
			aff.CreateElement("city").SetText(a.City)
		}
		if a.PostCode != "" {
			aff.CreateElement("postal-code").SetText(a.PostCode)
		}
		if a.Country != "" {
			aff.CreateElement("country").SetText(a.Country)
		}
	}

	if len(group.ChildElements()) == 0 {
		meta.RemoveChild(group)
	}
}

// roleName resolves a contributor role: an MPContributorRole reference, a
// plain role string, or "author" when empty. Dangling role references are
// tolerated.
func (ec *exportContext) roleName(role string) string {
	if role == "" {
		return "author"
	}
	if model, ok := ec.models[role]; ok && model.ContributorRole != nil && model.ContributorRole.Name != "" {
		return strings.ToLower(model.ContributorRole.Name)
	}
	if strings.HasPrefix(role, string(types.ObjectContributorRole)+":") {
		return "author"
	}
	return strings.ToLower(role)
}

// buildAuthorNotes emits corresp statements and author-level footnotes.
// The element is created only when it has content; competing-interest
// statements join it later during fixups.
func (ec *exportContext) buildAuthorNotes(meta *etree.Element) {
	notes := etree.NewElement("author-notes")

	corresponding := ec.models.OfType(types.ObjectCorresponding)
	sort.SliceStable(corresponding, func(i, j int) bool { return corresponding[i].ID < corresponding[j].ID })
	for _, model := range corresponding {
		c := model.Corresponding
		if c == nil || c.Contents == "" {
			continue
		}
		corresp := notes.CreateElement("corresp")
		corresp.CreateAttr("id", normalizeID(model.ID))
		if c.Label != "" {
			corresp.CreateElement("label").SetText(c.Label)
		}
		corresp.CreateText(c.Contents)
	}

	for _, model := range ec.models.OfType(types.ObjectAuthorNotes) {
		if model.AuthorNotes == nil {
			continue
		}
		for _, fnID := range model.AuthorNotes.Footnotes {
			fnModel, ok := ec.models[fnID]
			if !ok || fnModel.Footnote == nil {
				ec.warnf("author note footnote %s not found, skipping", fnID)
				continue
			}
			fn := notes.CreateElement("fn")
			fn.CreateAttr("id", normalizeID(fnID))
			if fnModel.Footnote.Kind != "" {
				fn.CreateAttr("fn-type", fnModel.Footnote.Kind)
			}
			fn.CreateElement("p").SetText(fnModel.Footnote.Contents)
		}
	}

	if len(notes.ChildElements()) > 0 {
		meta.AddChild(notes)
	}
}

// historyDates pairs manuscript date fields with JATS date-type values, in
// emission order.
func (ec *exportContext) buildHistory(meta *etree.Element) {
	dates := []struct {
		dateType string
		unix     int64
	}{
		{"received", ec.manuscript.ReceiveDate},
		{"rev-request", ec.manuscript.RevisionRequestDate},
		{"rev-recd", ec.manuscript.RevisionReceiveDate},
		{"accepted", ec.manuscript.AcceptanceDate},
		{"corrected", ec.manuscript.CorrectionDate},
		{"retracted", ec.manuscript.RetractionDate},
	}

	history := etree.NewElement("history")
	for _, d := range dates {
		if d.unix == 0 {
			continue
		}
		t := time.Unix(d.unix, 0).UTC()
		date := history.CreateElement("date")
		date.CreateAttr("date-type", d.dateType)
		date.CreateElement("day").SetText(strconv.Itoa(t.Day()))
		date.CreateElement("month").SetText(strconv.Itoa(int(t.Month())))
		date.CreateElement("year").SetText(strconv.Itoa(t.Year()))
	}
	if len(history.ChildElements()) > 0 {
		meta.AddChild(history)
	}
}

func (ec *exportContext) buildSelfURIs(meta *etree.Element) {
	contentTypes := make([]string, 0, len(ec.opts.Links))
	for ct := range ec.opts.Links {
		contentTypes = append(contentTypes, ct)
	}
	sort.Strings(contentTypes)
	for _, ct := range contentTypes {
		el := meta.CreateElement("self-uri")
		el.CreateAttr("content-type", ct)
		el.CreateAttr("xlink:href", ec.opts.Links[ct])
	}
}

func (ec *exportContext) buildSupplements(meta *etree.Element) {
	supplements := ec.models.OfType(types.ObjectSupplement)
	sort.SliceStable(supplements, func(i, j int) bool { return supplements[i].ID < supplements[j].ID })

	for _, model := range supplements {
		s := model.Supplement
		if s == nil {
			continue
		}
		el := meta.CreateElement("supplementary-material")
		el.CreateAttr("id", normalizeID(model.ID))
		if s.Href != "" {
			el.CreateAttr("xlink:href", s.Href)
		}
		if mime, subtype, ok := strings.Cut(s.MIME, "/"); ok {
			el.CreateAttr("mimetype", mime)
			el.CreateAttr("mime-subtype", subtype)
		}
		if s.Title != "" {
			el.CreateElement("caption").CreateElement("title").SetText(s.Title)
		}
	}
}

// buildKeywordGroups groups keywords by their containing group model.
// Keywords without a resolvable group land in a single untyped kwd-group.
func (ec *exportContext) buildKeywordGroups(meta *etree.Element) {
	keywords := ec.models.OfType(types.ObjectKeyword)
	if len(keywords) == 0 {
		return
	}
	sort.SliceStable(keywords, func(i, j int) bool {
		a, b := keywords[i], keywords[j]
		if a.Keyword == nil || b.Keyword == nil {
			return a.Keyword != nil
		}
		if a.Keyword.Priority != b.Keyword.Priority {
			return a.Keyword.Priority < b.Keyword.Priority
		}
		return a.ID < b.ID
	})

	grouped := make(map[string][]*types.Model)
	var groupIDs []string
	for _, model := range keywords {
		if model.Keyword == nil || model.Keyword.Name == "" {
			continue
		}
		gid := model.Keyword.ContainedGroup
		if _, ok := ec.models[gid]; !ok {
			gid = ""
		}
		if _, seen := grouped[gid]; !seen {
			groupIDs = append(groupIDs, gid)
		}
		grouped[gid] = append(grouped[gid], model)
	}
	sort.Strings(groupIDs)

	for _, gid := range groupIDs {
		group := meta.CreateElement("kwd-group")
		if gid != "" {
			groupModel := ec.models[gid]
			if groupModel.KeywordGroup != nil {
				if groupModel.KeywordGroup.Type != "" {
					group.CreateAttr("kwd-group-type", groupModel.KeywordGroup.Type)
				}
				if groupModel.KeywordGroup.Label != "" {
					group.CreateElement("label").SetText(groupModel.KeywordGroup.Label)
				}
				if groupModel.KeywordGroup.Title != "" {
					group.CreateElement("title").SetText(groupModel.KeywordGroup.Title)
				}
			}
		}
		for _, model := range grouped[gid] {
			group.CreateElement("kwd").SetText(model.Keyword.Name)
		}
	}
}

// buildCounts emits the counts block. Zero-valued counts are omitted; an
// all-zero manuscript gets no counts element at all.
func (ec *exportContext) buildCounts(meta *etree.Element) {
	counts := etree.NewElement("counts")

	for _, gc := range ec.manuscript.GenericCounts {
		if gc.Count == 0 || gc.CountType == "" {
			continue
		}
		el := counts.CreateElement("count")
		el.CreateAttr("count-type", gc.CountType)
		el.CreateAttr("count", strconv.Itoa(gc.Count))
	}

	fixed := []struct {
		tag   string
		value int
	}{
		{"fig-count", ec.manuscript.FigureCount},
		{"table-count", ec.manuscript.TableCount},
		{"equation-count", ec.manuscript.EquationCount},
		{"ref-count", ec.manuscript.ReferenceCount},
		{"word-count", ec.manuscript.WordCount},
	}
	for _, c := range fixed {
		if c.value == 0 {
			continue
		}
		counts.CreateElement(c.tag).CreateAttr("count", strconv.Itoa(c.value))
	}

	if len(counts.ChildElements()) > 0 {
		meta.AddChild(counts)
	}
}
