// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csl renders citations and orders bibliographies from CSL-shaped
// bibliography items. Rendering is a batch operation: numbering, grouping,
// and ranged forms ("3–5") depend on the complete citation list, so the
// exporter rebuilds state once per export before serializing any node.
// Implements: prd002-citation-engine (R1-R5).
package csl

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/jats-press/pkg/types"
)

// Style identifiers supported by the built-in engine.
const (
	StyleNumeric    = "numeric"
	StyleAuthorDate = "author-date"
)

// Options selects the citation style and locale. Style is required; Locale
// defaults to "en-US".
type Options struct {
	Style  string `json:"style" yaml:"style"`
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
}

// LoadOptions reads Options from a YAML file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading csl options: %w", err)
	}
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing csl options: %w", err)
	}
	return opts, nil
}

// CitationItem references one cited bibliography item.
type CitationItem struct {
	ID string
}

// CitationRequest asks for the rendered text of one citation node.
type CitationRequest struct {
	// CitationID is the citation node's tree ID.
	CitationID string

	// Items lists the cited bibliography item IDs in source order.
	Items []CitationItem

	// NoteIndex is carried for engine compatibility; the built-in styles
	// ignore it.
	NoteIndex int
}

// RenderedCitation is the display text computed for one citation node.
type RenderedCitation struct {
	ID   string
	Text string
}

// Provider is the citation-engine contract consumed by the exporter.
// RebuildState must be called with the full citation list before
// MakeBibliography.
type Provider interface {
	RebuildState(ctx context.Context, requests []CitationRequest) ([]RenderedCitation, error)
	MakeBibliography() ([]string, error)
}

// locale holds the handful of strings that differ between locales.
type locale struct {
	groupDelim string
	rangeDelim string
	noDate     string
	etAl       string
	and        string
}

var locales = map[string]locale{
	"en-US": {groupDelim: ",", rangeDelim: "–", noDate: "n.d.", etAl: "et al.", and: "and"},
	"en-GB": {groupDelim: ",", rangeDelim: "–", noDate: "n.d.", etAl: "et al.", and: "and"},
	"de-DE": {groupDelim: ",", rangeDelim: "–", noDate: "o. J.", etAl: "et al.", and: "und"},
	"fr-FR": {groupDelim: ",", rangeDelim: "–", noDate: "s. d.", etAl: "et al.", and: "et"},
}

// Engine is the built-in Provider. One engine serves one export; it is not
// safe for concurrent use.
type Engine struct {
	style   string
	loc     locale
	items   map[string]*types.BibliographyItem
	itemIDs []string // deterministic order: sorted record IDs

	// cited is populated by RebuildState: item IDs by first appearance.
	cited   []string
	numbers map[string]int
}

// NewEngine builds an engine over the bibliography items in models.
// An empty or unknown style is an error; an unknown locale falls back to
// en-US strings.
func NewEngine(opts Options, models types.ModelMap) (*Engine, error) {
	switch opts.Style {
	case StyleNumeric, StyleAuthorDate:
	case "":
		return nil, fmt.Errorf("csl style is required")
	default:
		return nil, fmt.Errorf("unsupported csl style %q", opts.Style)
	}

	loc, ok := locales[opts.Locale]
	if !ok {
		loc = locales["en-US"]
	}

	e := &Engine{
		style:   opts.Style,
		loc:     loc,
		items:   make(map[string]*types.BibliographyItem),
		numbers: make(map[string]int),
	}
	for _, model := range models.OfType(types.ObjectBibliographyItem) {
		if model.BibliographyItem == nil {
			continue
		}
		e.items[model.ID] = model.BibliographyItem
		e.itemIDs = append(e.itemIDs, model.ID)
	}
	sort.Strings(e.itemIDs)
	return e, nil
}

// RebuildState renders every citation in the batch. Items referencing an
// unknown bibliography record are skipped; a citation whose items all fail
// to resolve renders as empty text.
func (e *Engine) RebuildState(ctx context.Context, requests []CitationRequest) ([]RenderedCitation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.cited = e.cited[:0]
	clear(e.numbers)
	for _, req := range requests {
		for _, item := range req.Items {
			if _, known := e.items[item.ID]; !known {
				continue
			}
			if _, seen := e.numbers[item.ID]; !seen {
				e.numbers[item.ID] = len(e.cited) + 1
				e.cited = append(e.cited, item.ID)
			}
		}
	}

	out := make([]RenderedCitation, len(requests))
	for i, req := range requests {
		text, err := e.render(req)
		if err != nil {
			return nil, fmt.Errorf("rendering citation %s: %w", req.CitationID, err)
		}
		out[i] = RenderedCitation{ID: req.CitationID, Text: text}
	}
	return out, nil
}

func (e *Engine) render(req CitationRequest) (string, error) {
	switch e.style {
	case StyleNumeric:
		return e.renderNumeric(req), nil
	case StyleAuthorDate:
		return e.renderAuthorDate(req), nil
	}
	return "", fmt.Errorf("unsupported style %q", e.style)
}

// renderNumeric produces forms like "3", "1,4", and "3–5". Runs of three or
// more consecutive numbers collapse into a range.
func (e *Engine) renderNumeric(req CitationRequest) string {
	var nums []int
	for _, item := range req.Items {
		if n, ok := e.numbers[item.ID]; ok {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return ""
	}
	sort.Ints(nums)
	nums = dedupeInts(nums)

	var parts []string
	for i := 0; i < len(nums); {
		j := i
		for j+1 < len(nums) && nums[j+1] == nums[j]+1 {
			j++
		}
		switch {
		case j-i >= 2:
			parts = append(parts, strconv.Itoa(nums[i])+e.loc.rangeDelim+strconv.Itoa(nums[j]))
			i = j + 1
		default:
			parts = append(parts, strconv.Itoa(nums[i]))
			i++
		}
	}
	return strings.Join(parts, e.loc.groupDelim)
}

// renderAuthorDate produces forms like "Smith, 2020; Doe and Roe, 2021".
func (e *Engine) renderAuthorDate(req CitationRequest) string {
	var parts []string
	for _, ref := range req.Items {
		item, ok := e.items[ref.ID]
		if !ok {
			continue
		}
		parts = append(parts, e.authorLabel(item)+", "+e.yearLabel(ref.ID, item))
	}
	return strings.Join(parts, "; ")
}

func (e *Engine) authorLabel(item *types.BibliographyItem) string {
	names := make([]string, 0, len(item.Author))
	for _, a := range item.Author {
		switch {
		case a.Family != "":
			names = append(names, a.Family)
		case a.Literal != "":
			names = append(names, a.Literal)
		}
	}
	switch len(names) {
	case 0:
		if item.Title != "" {
			return item.Title
		}
		return "Anonymous"
	case 1:
		return names[0]
	case 2:
		return names[0] + " " + e.loc.and + " " + names[1]
	default:
		return names[0] + " " + e.loc.etAl
	}
}

// yearLabel appends a disambiguating suffix (2020a, 2020b) when several
// items share the same author label and year.
func (e *Engine) yearLabel(id string, item *types.BibliographyItem) string {
	year := item.Issued.Year()
	if year == 0 {
		return e.loc.noDate
	}

	collisions := 0
	position := 0
	label := e.authorLabel(item)
	for _, otherID := range e.itemIDs {
		other := e.items[otherID]
		if other.Issued.Year() != year || e.authorLabel(other) != label {
			continue
		}
		collisions++
		if otherID == id {
			position = collisions
		}
	}
	if collisions <= 1 {
		return strconv.Itoa(year)
	}
	return strconv.Itoa(year) + string(rune('a'+position-1))
}

// MakeBibliography returns bibliography item IDs in presentation order:
// numeric style lists cited items first (citation order) then uncited items;
// author-date sorts by author label, year, and title.
func (e *Engine) MakeBibliography() ([]string, error) {
	if e.style == StyleNumeric {
		out := make([]string, 0, len(e.itemIDs))
		out = append(out, e.cited...)
		for _, id := range e.itemIDs {
			if _, cited := e.numbers[id]; !cited {
				out = append(out, id)
			}
		}
		return out, nil
	}

	out := make([]string, len(e.itemIDs))
	copy(out, e.itemIDs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := e.items[out[i]], e.items[out[j]]
		la, lb := e.authorLabel(a), e.authorLabel(b)
		if la != lb {
			return la < lb
		}
		if ya, yb := a.Issued.Year(), b.Issued.Year(); ya != yb {
			return ya < yb
		}
		return a.Title < b.Title
	})
	return out, nil
}

// Number returns the numeric index assigned to an item during the last
// RebuildState, or 0 if the item was never cited.
func (e *Engine) Number(itemID string) int {
	return e.numbers[itemID]
}

func dedupeInts(nums []int) []int {
	out := nums[:0]
	for i, n := range nums {
		if i == 0 || n != nums[i-1] {
			out = append(out, n)
		}
	}
	return out
}
