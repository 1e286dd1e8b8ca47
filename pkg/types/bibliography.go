// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CSLDate is a date in CSL date-parts form: [[year, month, day]], with
// month and day optional.
type CSLDate struct {
	DateParts [][]int `json:"date-parts" yaml:"date-parts"`
}

// Year returns the year part, or 0 when unset.
func (d *CSLDate) Year() int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) < 1 {
		return 0
	}
	return d.DateParts[0][0]
}

// Month returns the month part, or 0 when unset.
func (d *CSLDate) Month() int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) < 2 {
		return 0
	}
	return d.DateParts[0][1]
}

// Day returns the day part, or 0 when unset.
func (d *CSLDate) Day() int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) < 3 {
		return 0
	}
	return d.DateParts[0][2]
}

// BibliographyItem is a cited work in CSL shape. When Literal is non-empty
// the item is emitted verbatim as a mixed-citation and the structured fields
// are ignored.
type BibliographyItem struct {
	// Type is the CSL item type ("article-journal", "book", "chapter",
	// "paper-conference", ...). It maps to the JATS publication-type
	// attribute, defaulting to "journal".
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	Title          string `json:"title,omitempty" yaml:"title,omitempty"`
	ContainerTitle string `json:"container-title,omitempty" yaml:"container-title,omitempty"`
	Volume         string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue          string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Supplement     string `json:"supplement,omitempty" yaml:"supplement,omitempty"`

	// Page is a single page ("12"), a range ("12-19"), or free text
	// ("xii, 12-19"); the exporter classifies it on output.
	Page string `json:"page,omitempty" yaml:"page,omitempty"`

	// Literal is a preformatted citation string taking precedence over
	// every structured field.
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`

	DOI string `json:"DOI,omitempty" yaml:"DOI,omitempty"`

	Author []BibliographicName `json:"author,omitempty" yaml:"author,omitempty"`
	Issued *CSLDate            `json:"issued,omitempty" yaml:"issued,omitempty"`
}
