// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the manuscript object model consumed by the JATS
// exporter: flat, ID-addressed records with an objectType discriminator.
// Implements: prd001-manuscript-model (R1-R3);
//
//	docs/ARCHITECTURE § Manuscript Data.
package types

import "fmt"

// ObjectType discriminates the payload carried by a Model record.
type ObjectType string

const (
	ObjectManuscript       ObjectType = "MPManuscript"
	ObjectContributor      ObjectType = "MPContributor"
	ObjectAffiliation      ObjectType = "MPAffiliation"
	ObjectSection          ObjectType = "MPSection"
	ObjectKeyword          ObjectType = "MPKeyword"
	ObjectKeywordGroup     ObjectType = "MPKeywordGroup"
	ObjectBibliographyItem ObjectType = "MPBibliographyItem"
	ObjectJournal          ObjectType = "MPJournal"
	ObjectSupplement       ObjectType = "MPSupplement"
	ObjectFootnote         ObjectType = "MPFootnote"
	ObjectCorresponding    ObjectType = "MPCorresponding"
	ObjectAuthorNotes      ObjectType = "MPAuthorNotes"
	ObjectContributorRole  ObjectType = "MPContributorRole"
	ObjectInlineStyle      ObjectType = "MPInlineStyle"
)

// Model is the envelope for one record in a manuscript bundle. Exactly one
// payload field matching ObjectType is expected to be set; the exporter
// tolerates records whose payload is missing for optional object types.
type Model struct {
	// ID is the record identifier, e.g. "MPFigure:7e2a". IDs may contain
	// colons; they are normalized when emitted as XML id/rid values.
	ID string `json:"_id" yaml:"_id"`

	// ObjectType names the payload kind.
	ObjectType ObjectType `json:"objectType" yaml:"objectType"`

	Manuscript       *Manuscript       `json:"manuscript,omitempty" yaml:"manuscript,omitempty"`
	Contributor      *Contributor      `json:"contributor,omitempty" yaml:"contributor,omitempty"`
	Affiliation      *Affiliation      `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
	Section          *Section          `json:"section,omitempty" yaml:"section,omitempty"`
	Keyword          *Keyword          `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	KeywordGroup     *KeywordGroup     `json:"keywordGroup,omitempty" yaml:"keywordGroup,omitempty"`
	BibliographyItem *BibliographyItem `json:"bibliographyItem,omitempty" yaml:"bibliographyItem,omitempty"`
	Journal          *Journal          `json:"journal,omitempty" yaml:"journal,omitempty"`
	Supplement       *Supplement       `json:"supplement,omitempty" yaml:"supplement,omitempty"`
	Footnote         *Footnote         `json:"footnote,omitempty" yaml:"footnote,omitempty"`
	Corresponding    *Corresponding    `json:"corresponding,omitempty" yaml:"corresponding,omitempty"`
	AuthorNotes      *AuthorNotes      `json:"authorNotes,omitempty" yaml:"authorNotes,omitempty"`
	ContributorRole  *ContributorRole  `json:"contributorRole,omitempty" yaml:"contributorRole,omitempty"`
	InlineStyle      *InlineStyle      `json:"inlineStyle,omitempty" yaml:"inlineStyle,omitempty"`
}

// ModelMap indexes manuscript records by ID. The exporter treats it as
// read-only.
type ModelMap map[string]*Model

// ManuscriptByID resolves id to its Manuscript payload. A missing or
// mistyped record is an error: exports cannot proceed without a manuscript.
func (m ModelMap) ManuscriptByID(id string) (*Manuscript, error) {
	model, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("manuscript %s not found in model map", id)
	}
	if model.ObjectType != ObjectManuscript || model.Manuscript == nil {
		return nil, fmt.Errorf("model %s is not a manuscript (objectType %s)", id, model.ObjectType)
	}
	return model.Manuscript, nil
}

// OfType returns all records of the given object type in map-iteration
// order. Callers sort by their own criteria (e.g. Contributor.Priority).
func (m ModelMap) OfType(t ObjectType) []*Model {
	var out []*Model
	for _, model := range m {
		if model.ObjectType == t {
			out = append(out, model)
		}
	}
	return out
}

// BibliographyItemByID resolves id to a BibliographyItem payload, or nil if
// the record is absent or mistyped.
func (m ModelMap) BibliographyItemByID(id string) *BibliographyItem {
	model, ok := m[id]
	if !ok || model.BibliographyItem == nil {
		return nil
	}
	return model.BibliographyItem
}
