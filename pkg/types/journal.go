// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TypedValue is a value qualified by a type attribute, used for journal
// identifiers, abbreviated titles, and ISSNs.
type TypedValue struct {
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Value string `json:"value" yaml:"value"`
}

// Journal carries journal-meta content. A journal record producing no
// children leaves journal-meta out of the document entirely.
type Journal struct {
	Title              string       `json:"title,omitempty" yaml:"title,omitempty"`
	JournalIdentifiers []TypedValue `json:"journalIdentifiers,omitempty" yaml:"journalIdentifiers,omitempty"`
	AbbreviatedTitles  []TypedValue `json:"abbreviatedTitles,omitempty" yaml:"abbreviatedTitles,omitempty"`
	ISSNs              []TypedValue `json:"ISSNs,omitempty" yaml:"ISSNs,omitempty"`
	PublisherName      string       `json:"publisherName,omitempty" yaml:"publisherName,omitempty"`
}

// Section carries metadata for a content-tree section: its category drives
// relocation (abstracts to front, acknowledgments to back, ...).
type Section struct {
	// Category is a section category ID, e.g. "MPSectionCategory:abstract".
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Priority int    `json:"priority" yaml:"priority"`
}

// Keyword is a single keyword referencing its containing group.
type Keyword struct {
	Name string `json:"name" yaml:"name"`

	// ContainedGroup references an MPKeywordGroup record. Keywords with no
	// group land in an untyped kwd-group.
	ContainedGroup string `json:"containedGroup,omitempty" yaml:"containedGroup,omitempty"`

	Priority int `json:"priority" yaml:"priority"`
}

// KeywordGroup types a set of keywords (e.g. kwd-group-type "author").
type KeywordGroup struct {
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Supplement describes supplementary material attached to the article.
type Supplement struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Href  string `json:"href,omitempty" yaml:"href,omitempty"`

	// MIME is the full media type, e.g. "application/pdf".
	MIME string `json:"MIME,omitempty" yaml:"MIME,omitempty"`
}

// Footnote is a footnote surfaced through author-notes or back matter.
type Footnote struct {
	// Kind is the source footnote type, canonicalized to the JATS fn-type
	// vocabulary on output.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	Contents string `json:"contents,omitempty" yaml:"contents,omitempty"`
}

// InlineStyle is a named character style referenced by styled marks.
type InlineStyle struct {
	Name string `json:"name" yaml:"name"`
}
