// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package labels numbers cross-referenceable entities ahead of
// serialization, so captions and cross-references agree on "Figure 3"
// regardless of where they are rendered.
// Implements: prd003-jats-export (R2: target registry).
package labels

import (
	"fmt"

	"github.com/pdiddy/jats-press/internal/tree"
)

// Target is the computed label for one referenceable node.
type Target struct {
	Label string
}

// kindNames maps labeled node types to their label prefix. Only captioned
// float types are numbered; sections carry explicit labels in the tree.
var kindNames = map[tree.NodeType]string{
	tree.FigureElement:   "Figure",
	tree.TableElement:    "Table",
	tree.EquationElement: "Equation",
	tree.ListingElement:  "Listing",
}

// Compute walks the fragment in document order and assigns sequential
// labels per kind, keyed by node ID. Nodes without an ID are skipped.
func Compute(fragment []*tree.Node) map[string]Target {
	targets := make(map[string]Target)
	counters := make(map[tree.NodeType]int)

	tree.WalkAll(fragment, func(n *tree.Node) bool {
		name, ok := kindNames[n.Type]
		if !ok || n.ID() == "" {
			return true
		}
		counters[n.Type]++
		targets[n.ID()] = Target{Label: fmt.Sprintf("%s %d", name, counters[n.Type])}
		return true
	})
	return targets
}
