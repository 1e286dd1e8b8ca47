// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/pdiddy/jats-press/pkg/types"
)

// publicationTypes maps CSL item types to the JATS publication-type
// attribute. Everything else defaults to "journal".
var publicationTypes = map[string]string{
	"article-journal":  "journal",
	"book":             "book",
	"chapter":          "chapter",
	"paper-conference": "confproc",
	"thesis":           "thesis",
	"report":           "report",
	"webpage":          "webpage",
	"dataset":          "data",
	"patent":           "patent",
	"preprint":         "preprint",
	"software":         "software",
}

// pageRangePattern matches a simple hyphenated page range ("12-19").
var pageRangePattern = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)

// buildRef converts one bibliography item into a JATS ref. A literal item
// becomes a verbatim mixed-citation; everything else is structured.
func buildRef(id string, item *types.BibliographyItem) *etree.Element {
	ref := etree.NewElement("ref")
	ref.CreateAttr("id", normalizeID(id))

	if item.Literal != "" {
		mixed := ref.CreateElement("mixed-citation")
		mixed.SetText(item.Literal)
		return ref
	}

	citation := ref.CreateElement("element-citation")
	pubType, ok := publicationTypes[item.Type]
	if !ok {
		pubType = "journal"
	}
	citation.CreateAttr("publication-type", pubType)

	if len(item.Author) > 0 {
		group := citation.CreateElement("person-group")
		group.CreateAttr("person-group-type", "author")
		for _, a := range item.Author {
			if a.IsEmpty() {
				continue
			}
			if a.Family == "" && a.Given == "" {
				group.CreateElement("string-name").SetText(a.Literal)
				continue
			}
			name := group.CreateElement("name")
			if a.Family != "" {
				name.CreateElement("surname").SetText(a.Family)
			}
			if a.Given != "" {
				name.CreateElement("given-names").SetText(a.Given)
			}
			if a.Suffix != "" {
				name.CreateElement("suffix").SetText(a.Suffix)
			}
		}
	}

	if year := item.Issued.Year(); year != 0 {
		citation.CreateElement("year").SetText(strconv.Itoa(year))
	}
	if month := item.Issued.Month(); month != 0 {
		citation.CreateElement("month").SetText(strconv.Itoa(month))
	}
	if day := item.Issued.Day(); day != 0 {
		citation.CreateElement("day").SetText(strconv.Itoa(day))
	}

	if item.Title != "" {
		citation.CreateElement("article-title").SetText(item.Title)
	}
	if item.ContainerTitle != "" {
		citation.CreateElement("source").SetText(item.ContainerTitle)
	}
	if item.Volume != "" {
		citation.CreateElement("volume").SetText(item.Volume)
	}
	if item.Issue != "" {
		citation.CreateElement("issue").SetText(item.Issue)
	}
	if item.Supplement != "" {
		citation.CreateElement("supplement").SetText(item.Supplement)
	}

	buildPages(citation, item.Page)

	if item.DOI != "" {
		doi := citation.CreateElement("pub-id")
		doi.CreateAttr("pub-id-type", "doi")
		doi.SetText(item.DOI)
	}

	return ref
}

// buildPages classifies the page field: a single number yields fpage, a
// hyphenated range splits into fpage/lpage, and anything else is a
// free-form page-range.
func buildPages(citation *etree.Element, page string) {
	page = strings.TrimSpace(page)
	if page == "" {
		return
	}

	if m := pageRangePattern.FindStringSubmatch(page); m != nil {
		citation.CreateElement("fpage").SetText(m[1])
		citation.CreateElement("lpage").SetText(m[2])
		return
	}
	if _, err := strconv.Atoi(page); err == nil {
		citation.CreateElement("fpage").SetText(page)
		return
	}
	citation.CreateElement("page-range").SetText(page)
}
