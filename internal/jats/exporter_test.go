// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/jats-press/internal/csl"
	"github.com/pdiddy/jats-press/internal/tree"
	"github.com/pdiddy/jats-press/pkg/types"
)

const manuscriptID = "MPManuscript:1"

func modelMapWith(manuscript types.Manuscript, extra ...*types.Model) types.ModelMap {
	if manuscript.Title == "" {
		manuscript.Title = "Sample manuscript"
	}
	m := types.ModelMap{
		manuscriptID: {
			ID:         manuscriptID,
			ObjectType: types.ObjectManuscript,
			Manuscript: &manuscript,
		},
	}
	for _, model := range extra {
		m[model.ID] = model
	}
	return m
}

func export(t *testing.T, fragment []*tree.Node, models types.ModelMap, opts Options) (*etree.Document, *bytes.Buffer) {
	t.Helper()
	var warnings bytes.Buffer
	opts.Warnings = &warnings
	if opts.CSL.Style == "" && opts.Provider == nil {
		opts.CSL.Style = csl.StyleNumeric
	}

	out, err := Serialize(context.Background(), fragment, models, manuscriptID, opts)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(out))
	return doc, &warnings
}

func para(id, text string) *tree.Node {
	n := &tree.Node{Type: tree.Paragraph, Children: []*tree.Node{{Type: tree.Text, Text: text}}}
	if id != "" {
		n.Attrs = map[string]any{"id": id}
	}
	return n
}

func TestSerializeVersionSelection(t *testing.T) {
	models := modelMapWith(types.Manuscript{})

	out, err := Serialize(context.Background(), nil, models, manuscriptID,
		Options{FrontMatterOnly: true, CSL: csl.Options{Style: csl.StyleNumeric}})
	require.NoError(t, err)
	assert.Contains(t, out, "v1.2 20190208")
	assert.Contains(t, out, "archiving/1.2/JATS-archivearticle1.dtd")

	out, err = Serialize(context.Background(), nil, models, manuscriptID,
		Options{Version: Version11, FrontMatterOnly: true, CSL: csl.Options{Style: csl.StyleNumeric}})
	require.NoError(t, err)
	assert.Contains(t, out, "v1.1 20151215")

	_, err = Serialize(context.Background(), nil, models, manuscriptID,
		Options{Version: "1.0", CSL: csl.Options{Style: csl.StyleNumeric}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"1.0"`)
}

func TestSerializeRequiresManuscript(t *testing.T) {
	_, err := Serialize(context.Background(), nil, types.ModelMap{}, manuscriptID,
		Options{CSL: csl.Options{Style: csl.StyleNumeric}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), manuscriptID)
}

func TestFrontMatterOnly(t *testing.T) {
	models := modelMapWith(types.Manuscript{Title: "Front only", DOI: "10.1000/stored"})
	fragment := []*tree.Node{para("p1", "body text")}

	doc, _ := export(t, fragment, models, Options{
		FrontMatterOnly: true,
		DOI:             "10.1000/override",
		ID:              "MS-42",
	})

	assert.Nil(t, doc.FindElement("//body"))
	assert.Nil(t, doc.FindElement("//back"))

	title := doc.FindElement("//article-meta/title-group/article-title")
	require.NotNil(t, title)
	assert.Equal(t, "Front only", title.Text())

	ids := doc.FindElements("//article-meta/article-id")
	require.Len(t, ids, 2)
	assert.Equal(t, "publisher-id", ids[0].SelectAttrValue("pub-id-type", ""))
	assert.Equal(t, "MS-42", ids[0].Text())
	assert.Equal(t, "doi", ids[1].SelectAttrValue("pub-id-type", ""))
	assert.Equal(t, "10.1000/override", ids[1].Text())
}

func TestArticleTypeDefaultsToOther(t *testing.T) {
	doc, _ := export(t, nil, modelMapWith(types.Manuscript{}), Options{FrontMatterOnly: true})
	assert.Equal(t, "other", doc.Root().SelectAttrValue("article-type", ""))

	doc, _ = export(t, nil, modelMapWith(types.Manuscript{ArticleType: "research-article"}),
		Options{FrontMatterOnly: true})
	assert.Equal(t, "research-article", doc.Root().SelectAttrValue("article-type", ""))
}

func TestCounts(t *testing.T) {
	models := modelMapWith(types.Manuscript{
		WordCount:     41,
		TableCount:    12,
		FigureCount:   23,
		GenericCounts: []types.GenericCount{{CountType: "foo", Count: 17}},
	})

	doc, _ := export(t, nil, models, Options{FrontMatterOnly: true})

	counts := doc.FindElement("//article-meta/counts")
	require.NotNil(t, counts)

	var tags []string
	for _, el := range counts.ChildElements() {
		tags = append(tags, el.Tag)
	}
	// Generic counts come first; zero-valued fixed counts are omitted.
	assert.Equal(t, []string{"count", "fig-count", "table-count", "word-count"}, tags)

	generic := counts.SelectElement("count")
	assert.Equal(t, "foo", generic.SelectAttrValue("count-type", ""))
	assert.Equal(t, "17", generic.SelectAttrValue("count", ""))
	assert.Equal(t, "23", counts.SelectElement("fig-count").SelectAttrValue("count", ""))
	assert.Equal(t, "12", counts.SelectElement("table-count").SelectAttrValue("count", ""))
	assert.Equal(t, "41", counts.SelectElement("word-count").SelectAttrValue("count", ""))
}

func TestCountsOmittedWhenAllZero(t *testing.T) {
	doc, _ := export(t, nil, modelMapWith(types.Manuscript{}), Options{FrontMatterOnly: true})
	assert.Nil(t, doc.FindElement("//counts"))
}

func TestSelfURILinks(t *testing.T) {
	doc, _ := export(t, nil, modelMapWith(types.Manuscript{}), Options{
		FrontMatterOnly: true,
		Links:           map[string]string{"pdf": "m1.pdf", "html": "m1.html"},
	})

	uris := doc.FindElements("//article-meta/self-uri")
	require.Len(t, uris, 2)
	assert.Equal(t, "html", uris[0].SelectAttrValue("content-type", ""))
	assert.Equal(t, "m1.html", uris[0].SelectAttrValue("xlink:href", ""))
	assert.Equal(t, "pdf", uris[1].SelectAttrValue("content-type", ""))
	assert.Equal(t, "m1.pdf", uris[1].SelectAttrValue("xlink:href", ""))
}

func TestContributorsSortedAndSkipped(t *testing.T) {
	models := modelMapWith(types.Manuscript{},
		&types.Model{ID: "MPContributor:2", ObjectType: types.ObjectContributor, Contributor: &types.Contributor{
			BibliographicName: types.BibliographicName{Given: "Ada", Family: "Byron"},
			Priority:          2,
			Affiliations:      []string{"MPAffiliation:1"},
		}},
		&types.Model{ID: "MPContributor:1", ObjectType: types.ObjectContributor, Contributor: &types.Contributor{
			BibliographicName: types.BibliographicName{Given: "Grace", Family: "Hopper"},
			Priority:          1,
			IsCorresponding:   true,
			Email:             "grace@example.org",
			ORCID:             "0000-0001-2345-6789",
		}},
		&types.Model{ID: "MPContributor:3", ObjectType: types.ObjectContributor, Contributor: &types.Contributor{
			Priority: 3,
		}},
		&types.Model{ID: "MPAffiliation:1", ObjectType: types.ObjectAffiliation, Affiliation: &types.Affiliation{
			Institution: "Analytical Engine Institute",
			Department:  "Computation",
			City:        "London",
			Country:     "UK",
		}},
	)

	doc, warnings := export(t, nil, models, Options{FrontMatterOnly: true})

	contribs := doc.FindElements("//contrib-group/contrib")
	require.Len(t, contribs, 2)
	assert.Equal(t, "Hopper", contribs[0].FindElement("name/surname").Text())
	assert.Equal(t, "yes", contribs[0].SelectAttrValue("corresp", ""))
	assert.Equal(t, "grace@example.org", contribs[0].FindElement("email").Text())
	assert.Equal(t, "0000-0001-2345-6789", contribs[0].FindElement("contrib-id").Text())
	assert.Equal(t, "Byron", contribs[1].FindElement("name/surname").Text())

	xref := contribs[1].FindElement("xref")
	require.NotNil(t, xref)
	assert.Equal(t, "aff", xref.SelectAttrValue("ref-type", ""))

	aff := doc.FindElement("//contrib-group/aff")
	require.NotNil(t, aff)
	assert.Equal(t, "Computation", aff.FindElement("institution").Text())

	assert.Contains(t, warnings.String(), "MPContributor:3 has no bibliographic name")
}

func TestJournalMeta(t *testing.T) {
	models := modelMapWith(types.Manuscript{},
		&types.Model{ID: "MPJournal:1", ObjectType: types.ObjectJournal, Journal: &types.Journal{
			Title:         "Journal of Examples",
			ISSNs:         []types.TypedValue{{Type: "epub", Value: "1234-5678"}},
			PublisherName: "Example Press",
		}},
	)

	doc, _ := export(t, nil, models, Options{FrontMatterOnly: true})

	jm := doc.FindElement("//journal-meta")
	require.NotNil(t, jm)
	assert.Equal(t, "Journal of Examples", jm.FindElement("journal-title-group/journal-title").Text())
	issn := jm.FindElement("issn")
	assert.Equal(t, "epub", issn.SelectAttrValue("pub-type", ""))
	assert.Equal(t, "Example Press", jm.FindElement("publisher/publisher-name").Text())
}

func TestJournalMetaOmittedWhenEmpty(t *testing.T) {
	doc, _ := export(t, nil, modelMapWith(types.Manuscript{}), Options{FrontMatterOnly: true})
	assert.Nil(t, doc.FindElement("//journal-meta"))
}

func TestAbstractPromotion(t *testing.T) {
	models := modelMapWith(types.Manuscript{},
		&types.Model{ID: "MPKeyword:1", ObjectType: types.ObjectKeyword, Keyword: &types.Keyword{Name: "testing"}},
	)
	fragment := []*tree.Node{
		{
			Type:  tree.Section,
			Attrs: map[string]any{"id": "MPSection:abs", "category": "MPSectionCategory:abstract"},
			Children: []*tree.Node{
				{Type: tree.SectionTitle, Children: []*tree.Node{{Type: tree.Text, Text: "Abstract"}}},
				para("", "The abstract paragraph."),
			},
		},
		para("p1", "Introduction text."),
	}

	doc, _ := export(t, fragment, models, Options{})

	abstracts := doc.FindElements("//article-meta/abstract")
	require.Len(t, abstracts, 1)
	assert.Nil(t, abstracts[0].FindElement("title"), "literal Abstract title is dropped")
	assert.Equal(t, "The abstract paragraph.", abstracts[0].FindElement("p").Text())

	// The abstract must precede kwd-group within article-meta.
	meta := doc.FindElement("//article-meta")
	kwdGroup := meta.SelectElement("kwd-group")
	require.NotNil(t, kwdGroup)
	assert.Less(t, abstracts[0].Index(), kwdGroup.Index())

	// Nothing abstract-shaped remains in body.
	for _, sec := range doc.FindElements("//body//sec") {
		assert.NotEqual(t, "abstract", sec.SelectAttrValue("sec-type", ""))
	}
}

func TestTableSegmentation(t *testing.T) {
	cell := func(text string) *tree.Node {
		return &tree.Node{Type: tree.TableCell, Children: []*tree.Node{{Type: tree.Text, Text: text}}}
	}
	headerCell := func(text string) *tree.Node {
		return &tree.Node{Type: tree.TableHeader, Attrs: map[string]any{"scope": "col"},
			Children: []*tree.Node{{Type: tree.Text, Text: text}}}
	}
	row := func(cells ...*tree.Node) *tree.Node {
		return &tree.Node{Type: tree.TableRow, Children: cells}
	}

	fragment := []*tree.Node{
		{
			Type:  tree.TableElement,
			Attrs: map[string]any{"id": "MPTableElement:1"},
			Children: []*tree.Node{
				{Type: tree.Caption, Children: []*tree.Node{para("", "A table.")}},
				{
					Type:  tree.Table,
					Attrs: map[string]any{"id": "MPTable:1"},
					Children: []*tree.Node{
						row(cell("legacy header a"), cell("legacy header b")),
						row(headerCell("col a"), headerCell("col b")),
						row(cell("1"), cell("2")),
						row(cell("3"), cell("4")),
						row(cell("total"), cell("6")),
					},
				},
			},
		},
	}

	doc, _ := export(t, fragment, modelMapWith(types.Manuscript{}), Options{})

	table := doc.FindElement("//table-wrap/table")
	require.NotNil(t, table)

	var sections []string
	for _, el := range table.ChildElements() {
		sections = append(sections, el.Tag)
	}
	// tfoot precedes tbody per the table model.
	assert.Equal(t, []string{"thead", "tfoot", "tbody"}, sections)

	thead := table.SelectElement("thead")
	require.Len(t, thead.SelectElements("tr"), 2)
	for _, tr := range thead.SelectElements("tr") {
		assert.Empty(t, tr.SelectElements("td"), "header cells are promoted to th")
		assert.Len(t, tr.SelectElements("th"), 2)
	}

	tbody := table.SelectElement("tbody")
	assert.Len(t, tbody.SelectElements("tr"), 2)
	tfoot := table.SelectElement("tfoot")
	require.Len(t, tfoot.SelectElements("tr"), 1)
	assert.Equal(t, "total", tfoot.FindElement("tr/td").Text())

	// Label precedes the relocated caption inside table-wrap.
	wrap := doc.FindElement("//table-wrap")
	children := wrap.ChildElements()
	require.True(t, len(children) >= 3)
	assert.Equal(t, "label", children[0].Tag)
	assert.Equal(t, "Table 1", children[0].Text())
	assert.Equal(t, "caption", children[1].Tag)
}

func TestFigureLabelsAndMediaPaths(t *testing.T) {
	fragment := []*tree.Node{
		{
			Type:  tree.FigureElement,
			Attrs: map[string]any{"id": "MPFigureElement:1"},
			Children: []*tree.Node{
				{Type: tree.Figure, Attrs: map[string]any{
					"id": "MPFigure:1", "src": "upload/raw.png", "contentType": "image/png",
				}},
				{Type: tree.Caption, Children: []*tree.Node{para("", "A figure.")}},
			},
		},
	}

	gen := MediaPathGeneratorFunc(func(_ context.Context, el *etree.Element, parentID string) (string, error) {
		return "graphics/" + parentID + ".png", nil
	})

	doc, _ := export(t, fragment, modelMapWith(types.Manuscript{}), Options{MediaPathGenerator: gen})

	fig := doc.FindElement("//body/fig")
	require.NotNil(t, fig)
	assert.Equal(t, "Figure 1", fig.FindElement("label").Text())

	graphic := fig.FindElement("graphic")
	require.NotNil(t, graphic)
	assert.Equal(t, "image", graphic.SelectAttrValue("mimetype", ""))
	assert.Equal(t, "png", graphic.SelectAttrValue("mime-subtype", ""))
	// The media path generator sees the figure's final rewritten id.
	assert.Equal(t, "graphics/"+fig.SelectAttrValue("id", "")+".png", graphic.SelectAttrValue("xlink:href", ""))
}

func TestIDRewriteKeepsReferentialIntegrity(t *testing.T) {
	models := modelMapWith(types.Manuscript{},
		&types.Model{ID: "MPBibliographyItem:b1", ObjectType: types.ObjectBibliographyItem,
			BibliographyItem: &types.BibliographyItem{Title: "Cited", Author: []types.BibliographicName{{Family: "Smith"}}}},
	)
	fragment := []*tree.Node{
		{
			Type:  tree.Section,
			Attrs: map[string]any{"id": "MPSection:one"},
			Children: []*tree.Node{
				{Type: tree.SectionTitle, Children: []*tree.Node{{Type: tree.Text, Text: "Results"}}},
				{Type: tree.Paragraph, Attrs: map[string]any{"id": "MPParagraphElement:p1"}, Children: []*tree.Node{
					{Type: tree.Text, Text: "See "},
					{Type: tree.CrossReference, Attrs: map[string]any{
						"id": "MPCrossReference:x1", "rids": []any{"MPFigureElement:1"},
					}},
					{Type: tree.Text, Text: " and "},
					{Type: tree.Citation, Attrs: map[string]any{
						"id": "MPCitation:c1", "rids": []any{"MPBibliographyItem:b1"},
					}},
					{Type: tree.Text, Text: "."},
				}},
				{Type: tree.FigureElement, Attrs: map[string]any{"id": "MPFigureElement:1"}},
			},
		},
	}

	doc, _ := export(t, fragment, models, Options{})

	ids := make(map[string]bool)
	var rids []string
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if id := el.SelectAttrValue("id", ""); id != "" {
			ids[id] = true
			assert.NotContains(t, id, ":", "rewritten ids carry no colons")
		}
		if rid := el.SelectAttrValue("rid", ""); rid != "" {
			rids = append(rids, strings.Fields(rid)...)
		}
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	walk(doc.Root())

	require.NotEmpty(t, rids)
	for _, rid := range rids {
		assert.True(t, ids[rid], "rid %s must resolve to a rewritten id", rid)
	}

	// The cross-reference renders the computed label, typed by its target.
	xref := doc.FindElement("//body//xref[@ref-type='fig']")
	require.NotNil(t, xref)
	assert.Equal(t, "Figure 1", xref.Text())

	// The citation carries its rendered numeric text and points at the ref.
	cit := doc.FindElement("//body//xref[@ref-type='bibr']")
	require.NotNil(t, cit)
	assert.Equal(t, "1", cit.Text())
	ref := doc.FindElement("//back/ref-list/ref")
	require.NotNil(t, ref)
	assert.Equal(t, ref.SelectAttrValue("id", ""), cit.SelectAttrValue("rid", ""))
}

func TestCrossReferenceMissingTargetDegradesToLabel(t *testing.T) {
	fragment := []*tree.Node{
		{Type: tree.Paragraph, Attrs: map[string]any{"id": "p1"}, Children: []*tree.Node{
			{Type: tree.CrossReference, Attrs: map[string]any{
				"id": "x1", "rids": []any{"MPFigureElement:gone"}, "label": "Figure 9",
			}},
		}},
	}

	doc, warnings := export(t, fragment, modelMapWith(types.Manuscript{}), Options{})

	assert.Nil(t, doc.FindElement("//body//xref"))
	x := doc.FindElement("//body/p/x")
	require.NotNil(t, x)
	assert.Equal(t, "Figure 9", x.Text())
	assert.Contains(t, warnings.String(), "target not found")
}

func TestCitationWithoutRenderedTextFails(t *testing.T) {
	fragment := []*tree.Node{
		{Type: tree.Paragraph, Children: []*tree.Node{
			{Type: tree.Citation, Attrs: map[string]any{"id": "MPCitation:c1"}},
		}},
	}

	// A provider that loses track of the request leaves the citation with no
	// text; that is a fatal export error, not a warning.
	provider := &stubProvider{}
	_, err := Serialize(context.Background(), fragment, modelMapWith(types.Manuscript{}), manuscriptID,
		Options{Provider: provider})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rendered text for citation MPCitation:c1")
}

type stubProvider struct{}

func (s *stubProvider) RebuildState(context.Context, []csl.CitationRequest) ([]csl.RenderedCitation, error) {
	return nil, nil
}

func (s *stubProvider) MakeBibliography() ([]string, error) { return nil, nil }

func TestBibliographyLiteralTakesPrecedence(t *testing.T) {
	models := modelMapWith(types.Manuscript{},
		&types.Model{ID: "MPBibliographyItem:lit", ObjectType: types.ObjectBibliographyItem,
			BibliographyItem: &types.BibliographyItem{
				Literal: "Smith, A. (2020). Alpha. Journal of Examples.",
				Title:   "Alpha",
				DOI:     "10.1000/alpha",
			}},
	)
	fragment := []*tree.Node{
		{Type: tree.Paragraph, Children: []*tree.Node{
			{Type: tree.Citation, Attrs: map[string]any{"id": "c1", "rids": []any{"MPBibliographyItem:lit"}}},
		}},
	}

	doc, _ := export(t, fragment, models, Options{})

	ref := doc.FindElement("//ref-list/ref")
	require.NotNil(t, ref)
	mixed := ref.FindElement("mixed-citation")
	require.NotNil(t, mixed, "literal items serialize verbatim")
	assert.Equal(t, "Smith, A. (2020). Alpha. Journal of Examples.", mixed.Text())
	assert.Nil(t, ref.FindElement("element-citation"))
}

func TestBackmatterSections(t *testing.T) {
	fragment := []*tree.Node{
		para("p1", "Body."),
		{
			Type:  tree.Section,
			Attrs: map[string]any{"id": "MPSection:ack", "category": "MPSectionCategory:acknowledgments"},
			Children: []*tree.Node{
				{Type: tree.SectionTitle, Children: []*tree.Node{{Type: tree.Text, Text: "Acknowledgments"}}},
				para("", "Thanks everyone."),
			},
		},
		{
			Type:  tree.Section,
			Attrs: map[string]any{"id": "MPSection:bib", "category": "MPSectionCategory:bibliography"},
			Children: []*tree.Node{
				{Type: tree.SectionTitle, Children: []*tree.Node{{Type: tree.Text, Text: "Works Cited"}}},
			},
		},
	}

	doc, _ := export(t, fragment, modelMapWith(types.Manuscript{}), Options{})

	back := doc.FindElement("//back")
	require.NotNil(t, back)
	ack := back.SelectElement("ack")
	require.NotNil(t, ack, "acknowledgments relocate to back as ack")
	assert.Equal(t, "Thanks everyone.", ack.FindElement("p").Text())

	refList := back.SelectElement("ref-list")
	require.NotNil(t, refList)
	// The bibliography section's title carries over to the ref-list.
	assert.Equal(t, "Works Cited", refList.FindElement("title").Text())
	assert.Nil(t, doc.FindElement("//body//sec[@sec-type='bibliography']"))
}

func TestFootnoteRetypeAndFill(t *testing.T) {
	fragment := []*tree.Node{
		para("p1", "Body."),
		{Type: tree.FootnotesElement, Attrs: map[string]any{"id": "MPFootnotesElement:1"}, Children: []*tree.Node{
			{Type: tree.Footnote, Attrs: map[string]any{"id": "MPFootnote:1", "kind": "footnote"}, Children: []*tree.Node{
				para("", "An endnote."),
			}},
			{Type: tree.Footnote, Attrs: map[string]any{"id": "MPFootnote:2", "kind": "funding"}},
		}},
	}

	doc, _ := export(t, fragment, modelMapWith(types.Manuscript{}), Options{})

	fns := doc.FindElements("//fn-group/fn")
	require.Len(t, fns, 2)
	assert.Equal(t, "custom", fns[0].SelectAttrValue("fn-type", ""))
	assert.Equal(t, "supported-by", fns[1].SelectAttrValue("fn-type", ""))
	// The empty footnote is filled so fn never serializes empty.
	require.NotNil(t, fns[1].FindElement("p"))
}

func TestMarksNestAndTrackChanges(t *testing.T) {
	models := modelMapWith(types.Manuscript{},
		&types.Model{ID: "MPInlineStyle:1", ObjectType: types.ObjectInlineStyle,
			InlineStyle: &types.InlineStyle{Name: "Gene Name"}},
	)
	fragment := []*tree.Node{
		{Type: tree.Paragraph, Attrs: map[string]any{"id": "p1"}, Children: []*tree.Node{
			{Type: tree.Text, Text: "bold italic", Marks: []tree.Mark{{Type: tree.Bold}, {Type: tree.Italic}}},
			{Type: tree.Text, Text: " kept", Marks: []tree.Mark{{Type: tree.TrackedInsert}}},
			{Type: tree.Text, Text: " dropped", Marks: []tree.Mark{{Type: tree.TrackedDelete}}},
			{Type: tree.Text, Text: "BRCA1", Marks: []tree.Mark{{Type: tree.Styled, Attrs: map[string]any{"rid": "MPInlineStyle:1"}}}},
		}},
	}

	doc, _ := export(t, fragment, models, Options{})

	p := doc.FindElement("//body/p")
	require.NotNil(t, p)
	bold := p.SelectElement("bold")
	require.NotNil(t, bold)
	assert.Equal(t, "bold italic", bold.FindElement("italic").Text())

	styled := p.SelectElement("styled-content")
	require.NotNil(t, styled)
	assert.Equal(t, "gene-name", styled.SelectAttrValue("style", ""))
	assert.Equal(t, "BRCA1", styled.Text())

	text := p.Text() + strings.Join(collectTails(p), "")
	assert.Contains(t, text, "kept")
	assert.NotContains(t, serialize(t, p), "dropped")
}

func collectTails(el *etree.Element) []string {
	var out []string
	for _, child := range el.Child {
		if cd, ok := child.(*etree.CharData); ok {
			out = append(out, cd.Data)
		}
	}
	return out
}

func serialize(t *testing.T, el *etree.Element) string {
	t.Helper()
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	out, err := doc.WriteToString()
	require.NoError(t, err)
	return out
}

func TestCoiStatementMovesToAuthorNotes(t *testing.T) {
	fragment := []*tree.Node{
		para("p1", "Body."),
		{
			Type:  tree.Section,
			Attrs: map[string]any{"id": "MPSection:coi", "category": "MPSectionCategory:competing-interests"},
			Children: []*tree.Node{
				{Type: tree.SectionTitle, Children: []*tree.Node{{Type: tree.Text, Text: "Competing Interests"}}},
				para("", "None declared."),
			},
		},
	}

	doc, _ := export(t, fragment, modelMapWith(types.Manuscript{}), Options{})

	fn := doc.FindElement("//article-meta/author-notes/fn")
	require.NotNil(t, fn)
	assert.Equal(t, "coi-statement", fn.SelectAttrValue("fn-type", ""))
	assert.Equal(t, "None declared.", fn.FindElement("p").Text())

	// The emptied fn-group does not survive in back.
	assert.Nil(t, doc.FindElement("//back/fn-group"))
}

func TestUnknownNodeTypeFlattensWithWarning(t *testing.T) {
	fragment := []*tree.Node{
		{Type: tree.Paragraph, Attrs: map[string]any{"id": "p1"}, Children: []*tree.Node{
			{Type: tree.NodeType("hologram"), Children: []*tree.Node{
				{Type: tree.Text, Text: "still here"},
			}},
		}},
	}

	doc, warnings := export(t, fragment, modelMapWith(types.Manuscript{}), Options{})

	p := doc.FindElement("//body/p")
	require.NotNil(t, p)
	assert.Equal(t, "still here", p.Text())
	assert.Contains(t, warnings.String(), `"hologram"`)
}

func TestStableIDGeneratorSeam(t *testing.T) {
	var seen []string
	gen := IDGeneratorFunc(func(_ context.Context, el *etree.Element) (string, error) {
		seen = append(seen, el.Tag)
		return "z-" + el.Tag, nil
	})

	fragment := []*tree.Node{
		{Type: tree.Section, Attrs: map[string]any{"id": "MPSection:1"}, Children: []*tree.Node{
			para("MPParagraphElement:1", "text"),
		}},
	}

	doc, _ := export(t, fragment, modelMapWith(types.Manuscript{}), Options{IDGenerator: gen})

	assert.Equal(t, []string{"sec", "p"}, seen, "generator runs in document order over id-bearing elements")
	assert.NotNil(t, doc.FindElement("//sec[@id='z-sec']"))
	assert.NotNil(t, doc.FindElement("//p[@id='z-p']"))
}

func TestBodyWrapperUnwrapped(t *testing.T) {
	fragment := []*tree.Node{
		{
			Type:  tree.Section,
			Attrs: map[string]any{"id": "MPSection:root", "category": "MPSectionCategory:body"},
			Children: []*tree.Node{
				{Type: tree.Section, Attrs: map[string]any{"id": "MPSection:a"}, Children: []*tree.Node{
					{Type: tree.SectionTitle, Children: []*tree.Node{{Type: tree.Text, Text: "One"}}},
					para("", "First."),
				}},
				{Type: tree.Section, Attrs: map[string]any{"id": "MPSection:b"}, Children: []*tree.Node{
					{Type: tree.SectionTitle, Children: []*tree.Node{{Type: tree.Text, Text: "Two"}}},
					para("", "Second."),
				}},
			},
		},
	}

	doc, _ := export(t, fragment, modelMapWith(types.Manuscript{}), Options{})

	body := doc.FindElement("//body")
	require.NotNil(t, body)
	secs := body.SelectElements("sec")
	require.Len(t, secs, 2, "wrapped sections become direct body children")
	assert.Equal(t, "One", secs[0].FindElement("title").Text())
	assert.Equal(t, "Two", secs[1].FindElement("title").Text())
	assert.Nil(t, doc.FindElement("//sec[@sec-type='body']"))
}

func TestFloatsGroupMergedAcrossSections(t *testing.T) {
	floating := func(secID, figID string) *tree.Node {
		return &tree.Node{
			Type:  tree.Section,
			Attrs: map[string]any{"id": secID, "category": "MPSectionCategory:floating-element"},
			Children: []*tree.Node{
				{Type: tree.SectionTitle, Children: []*tree.Node{{Type: tree.Text, Text: "Floating"}}},
				{Type: tree.FigureElement, Attrs: map[string]any{"id": figID}},
			},
		}
	}
	fragment := []*tree.Node{
		para("p1", "Body."),
		floating("MPSection:f1", "MPFigureElement:1"),
		floating("MPSection:f2", "MPFigureElement:2"),
	}

	doc, _ := export(t, fragment, modelMapWith(types.Manuscript{}), Options{})

	// One floats-group no matter how many floating sections fed it.
	groups := doc.FindElements("/article/floats-group")
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].SelectElements("fig"), 2)
	assert.Empty(t, doc.FindElements("//body//fig"))
}

func TestBackmatterPlaceholderRemoved(t *testing.T) {
	fragment := []*tree.Node{
		para("p1", "Body."),
		{
			Type:     tree.Section,
			Attrs:    map[string]any{"id": "MPSection:bm", "category": "MPSectionCategory:backmatter"},
			Children: []*tree.Node{para("", "Orphaned content.")},
		},
	}

	doc, warnings := export(t, fragment, modelMapWith(types.Manuscript{}), Options{})

	assert.Nil(t, doc.FindElement("//sec[@sec-type='backmatter']"))
	assert.NotContains(t, serialize(t, doc.Root()), "Orphaned content.")
	// Dropping non-empty placeholder content is lossy and warned about.
	assert.Contains(t, warnings.String(), "backmatter")
}

func TestAppendicesAndAvailabilityRelocate(t *testing.T) {
	fragment := []*tree.Node{
		para("p1", "Body."),
		{
			Type:  tree.Section,
			Attrs: map[string]any{"id": "MPSection:apps", "category": "MPSectionCategory:appendices"},
			Children: []*tree.Node{
				{Type: tree.SectionTitle, Children: []*tree.Node{{Type: tree.Text, Text: "Appendices"}}},
				{Type: tree.Section, Attrs: map[string]any{"id": "MPSection:appA"}, Children: []*tree.Node{
					{Type: tree.SectionTitle, Children: []*tree.Node{{Type: tree.Text, Text: "Appendix A"}}},
					para("", "Extra tables."),
				}},
			},
		},
		{
			Type:  tree.Section,
			Attrs: map[string]any{"id": "MPSection:data", "category": "MPSectionCategory:availability"},
			Children: []*tree.Node{
				{Type: tree.SectionTitle, Children: []*tree.Node{{Type: tree.Text, Text: "Data Availability"}}},
				para("", "Data on request."),
			},
		},
	}

	doc, _ := export(t, fragment, modelMapWith(types.Manuscript{}), Options{})

	back := doc.FindElement("//back")
	require.NotNil(t, back)

	group := back.SelectElement("app-group")
	require.NotNil(t, group)
	assert.Equal(t, "Appendices", group.FindElement("title").Text())
	apps := group.SelectElements("app")
	require.Len(t, apps, 1)
	assert.Equal(t, "Appendix A", apps[0].FindElement("title").Text())

	avail := back.SelectElement("sec")
	require.NotNil(t, avail)
	assert.Equal(t, "data-availability", avail.SelectAttrValue("sec-type", ""))
	assert.Equal(t, "Data on request.", avail.FindElement("p").Text())
	assert.Empty(t, doc.FindElements("//body//sec"))
}

func TestRidRemovedWhenAllTargetsStripped(t *testing.T) {
	gen := IDGeneratorFunc(func(_ context.Context, el *etree.Element) (string, error) {
		if el.Tag == "fig" {
			return "", nil
		}
		return "n-" + el.Tag, nil
	})

	fragment := []*tree.Node{
		{Type: tree.Paragraph, Attrs: map[string]any{"id": "p1"}, Children: []*tree.Node{
			{Type: tree.Text, Text: "See "},
			{Type: tree.CrossReference, Attrs: map[string]any{
				"id": "x1", "rids": []any{"MPFigureElement:1"},
			}},
			{Type: tree.Text, Text: "."},
		}},
		{Type: tree.FigureElement, Attrs: map[string]any{"id": "MPFigureElement:1"}},
	}

	doc, _ := export(t, fragment, modelMapWith(types.Manuscript{}), Options{IDGenerator: gen})

	fig := doc.FindElement("//body/fig")
	require.NotNil(t, fig)
	assert.Nil(t, fig.SelectAttr("id"), "generator returning empty strips the id")

	xref := doc.FindElement("//body//xref")
	require.NotNil(t, xref)
	assert.Nil(t, xref.SelectAttr("rid"), "rid vanishes when every target was stripped")
}

func TestDroppedRunLeavesNoWrappers(t *testing.T) {
	fragment := []*tree.Node{
		{Type: tree.Paragraph, Attrs: map[string]any{"id": "p1"}, Children: []*tree.Node{
			{Type: tree.Text, Text: "kept", Marks: []tree.Mark{{Type: tree.Bold}}},
			{Type: tree.Text, Text: "gone", Marks: []tree.Mark{{Type: tree.Bold}, {Type: tree.TrackedDelete}}},
		}},
	}

	doc, _ := export(t, fragment, modelMapWith(types.Manuscript{}), Options{})

	p := doc.FindElement("//body/p")
	require.NotNil(t, p)
	bolds := p.SelectElements("bold")
	require.Len(t, bolds, 1, "a dropped run contributes no wrapper elements")
	assert.Equal(t, "kept", bolds[0].Text())
	assert.NotContains(t, serialize(t, p), "gone")
}
