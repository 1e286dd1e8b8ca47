// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BibliographicName is a person name split CSL-style. A name with neither
// Given nor Family set is considered empty.
type BibliographicName struct {
	Given  string `json:"given,omitempty" yaml:"given,omitempty"`
	Family string `json:"family,omitempty" yaml:"family,omitempty"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`

	// Literal holds an unsplittable name (consortium, single-token name).
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
}

// IsEmpty reports whether the name carries no usable parts.
func (n BibliographicName) IsEmpty() bool {
	return n.Given == "" && n.Family == "" && n.Literal == ""
}

// Contributor is an article author or other credited person.
type Contributor struct {
	// BibliographicName is required; a contributor without one is skipped
	// at export time with a warning.
	BibliographicName BibliographicName `json:"bibliographicName" yaml:"bibliographicName"`

	// Role references an MPContributorRole record, or holds a plain role
	// string ("author" when empty). A dangling reference is tolerated.
	Role string `json:"role,omitempty" yaml:"role,omitempty"`

	// Priority orders contributors within the contrib-group.
	Priority int `json:"priority" yaml:"priority"`

	// IsCorresponding marks the corresponding author.
	IsCorresponding bool `json:"isCorresponding,omitempty" yaml:"isCorresponding,omitempty"`

	// ORCID is the contributor's ORCID iD URI, if known.
	ORCID string `json:"ORCIDIdentifier,omitempty" yaml:"ORCIDIdentifier,omitempty"`

	// Email is emitted only for corresponding contributors.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// Affiliations lists MPAffiliation record IDs, emitted as xref rids.
	Affiliations []string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`

	// Footnotes lists MPFootnote record IDs attached to this contributor.
	Footnotes []string `json:"footnotes,omitempty" yaml:"footnotes,omitempty"`
}

// Affiliation is an institutional affiliation record.
type Affiliation struct {
	Institution  string `json:"institution,omitempty" yaml:"institution,omitempty"`
	Department   string `json:"department,omitempty" yaml:"department,omitempty"`
	AddressLine1 string `json:"addressLine1,omitempty" yaml:"addressLine1,omitempty"`
	City         string `json:"city,omitempty" yaml:"city,omitempty"`
	Country      string `json:"country,omitempty" yaml:"country,omitempty"`
	PostCode     string `json:"postCode,omitempty" yaml:"postCode,omitempty"`

	// Priority orders affiliations within the contrib-group.
	Priority int `json:"priority" yaml:"priority"`
}

// Corresponding holds the corresponding-author statement for author-notes.
type Corresponding struct {
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Contents string `json:"contents" yaml:"contents"`
}

// AuthorNotes collects footnotes surfaced in the article-meta author-notes
// block rather than in back matter.
type AuthorNotes struct {
	// Footnotes lists MPFootnote record IDs in emission order.
	Footnotes []string `json:"footnotes,omitempty" yaml:"footnotes,omitempty"`
}

// ContributorRole names a CRediT-style contributor role.
type ContributorRole struct {
	Name string `json:"name" yaml:"name"`
}
