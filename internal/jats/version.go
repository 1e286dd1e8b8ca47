// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import "fmt"

// Version selects the JATS Archiving DTD the output must conform to.
type Version string

const (
	Version11 Version = "1.1"
	Version12 Version = "1.2"

	// DefaultVersion is used when the caller leaves the version unset.
	DefaultVersion = Version12
)

// doctype holds the public/system identifier pair for one DTD version.
type doctype struct {
	publicID string
	systemID string
}

// doctypes maps each supported version to the official JATS Archiving and
// Interchange DTD identifiers. Requesting a version outside this table is a
// hard error, never a silent fallback.
var doctypes = map[Version]doctype{
	Version11: {
		publicID: "-//NLM//DTD JATS (Z39.96) Journal Archiving and Interchange DTD v1.1 20151215//EN",
		systemID: "http://jats.nlm.nih.gov/archiving/1.1/JATS-archivearticle1.dtd",
	},
	Version12: {
		publicID: "-//NLM//DTD JATS (Z39.96) Journal Archiving and Interchange DTD v1.2 20190208//EN",
		systemID: "http://jats.nlm.nih.gov/archiving/1.2/JATS-archivearticle1.dtd",
	},
}

// doctypeFor resolves a requested version string.
func doctypeFor(v Version) (doctype, error) {
	if v == "" {
		v = DefaultVersion
	}
	dt, ok := doctypes[v]
	if !ok {
		return doctype{}, fmt.Errorf("unsupported JATS version %q", v)
	}
	return dt, nil
}
