// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GenericCount is a named count carried in the manuscript counts block
// (e.g. {CountType: "contributors", Count: 4}).
type GenericCount struct {
	// CountType names the counted entity.
	CountType string `json:"countType" yaml:"countType"`

	// Count is the value. Zero-valued counts are omitted from output.
	Count int `json:"count" yaml:"count"`
}

// Manuscript is the root record of a manuscript bundle. Dates are UNIX
// seconds; zero means unset.
type Manuscript struct {
	// Title is the article title. May contain no markup; styled titles
	// live in the content tree.
	Title string `json:"title" yaml:"title"`

	// DOI is the manuscript's own DOI, if assigned upstream.
	DOI string `json:"DOI,omitempty" yaml:"DOI,omitempty"`

	// ArticleType maps to the article-type attribute (default "other").
	ArticleType string `json:"articleType,omitempty" yaml:"articleType,omitempty"`

	// PrimaryLanguage is a BCP 47 tag for the article body.
	PrimaryLanguage string `json:"primaryLanguageCode,omitempty" yaml:"primaryLanguageCode,omitempty"`

	WordCount      int `json:"wordCount,omitempty" yaml:"wordCount,omitempty"`
	FigureCount    int `json:"figureCount,omitempty" yaml:"figureCount,omitempty"`
	TableCount     int `json:"tableCount,omitempty" yaml:"tableCount,omitempty"`
	EquationCount  int `json:"equationCount,omitempty" yaml:"equationCount,omitempty"`
	ReferenceCount int `json:"referenceCount,omitempty" yaml:"referenceCount,omitempty"`

	// GenericCounts holds additional named counts emitted before the
	// fixed-name count elements.
	GenericCounts []GenericCount `json:"genericCounts,omitempty" yaml:"genericCounts,omitempty"`

	AcceptanceDate      int64 `json:"acceptanceDate,omitempty" yaml:"acceptanceDate,omitempty"`
	CorrectionDate      int64 `json:"correctionDate,omitempty" yaml:"correctionDate,omitempty"`
	RetractionDate      int64 `json:"retractionDate,omitempty" yaml:"retractionDate,omitempty"`
	ReceiveDate         int64 `json:"receiveDate,omitempty" yaml:"receiveDate,omitempty"`
	RevisionRequestDate int64 `json:"revisionRequestDate,omitempty" yaml:"revisionRequestDate,omitempty"`
	RevisionReceiveDate int64 `json:"revisionReceiveDate,omitempty" yaml:"revisionReceiveDate,omitempty"`
}
