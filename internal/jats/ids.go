// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// defaultIDGenerator assigns "tag-N" ids with one counter per tag name.
// Counters are order-sensitive, which is why the rewrite pass invokes the
// generator strictly in document order.
type defaultIDGenerator struct {
	counters map[string]int
}

// NewDefaultIDGenerator returns the tag-counter generator used when the
// caller supplies none.
func NewDefaultIDGenerator() IDGenerator {
	return &defaultIDGenerator{counters: make(map[string]int)}
}

func (g *defaultIDGenerator) GenerateID(_ context.Context, el *etree.Element) (string, error) {
	g.counters[el.Tag]++
	return fmt.Sprintf("%s-%d", el.Tag, g.counters[el.Tag]), nil
}

// rewriteIDs reassigns every element id in document order and then remaps
// rid attributes through the recorded old-to-new table. Tokens whose target
// was stripped or never existed are dropped; a rid left with no surviving
// tokens is removed entirely, so no dangling references remain.
func (ec *exportContext) rewriteIDs(ctx context.Context, gen IDGenerator) error {
	mapping := make(map[string]string)

	var genErr error
	walkElements(ec.article, func(el *etree.Element) bool {
		if genErr != nil {
			return false
		}
		old := el.SelectAttrValue("id", "")
		if old == "" {
			return true
		}
		newID, err := gen.GenerateID(ctx, el)
		if err != nil {
			genErr = fmt.Errorf("generating id for %s: %w", el.Tag, err)
			return false
		}
		if newID == "" {
			el.RemoveAttr("id")
		} else {
			el.CreateAttr("id", newID)
		}
		mapping[old] = newID
		return true
	})
	if genErr != nil {
		return genErr
	}

	walkElements(ec.article, func(el *etree.Element) bool {
		rid := el.SelectAttrValue("rid", "")
		if rid == "" {
			return true
		}
		var kept []string
		for _, token := range strings.Fields(rid) {
			if newID, ok := mapping[token]; ok && newID != "" {
				kept = append(kept, newID)
			}
		}
		if len(kept) == 0 {
			el.RemoveAttr("rid")
		} else {
			el.CreateAttr("rid", strings.Join(kept, " "))
		}
		return true
	})
	return nil
}

// rewriteMediaPaths invokes the media path generator for every fig graphic
// and supplementary-material element, in document order, after the ID pass
// so generators observe final IDs. Generator failures abort the export.
func (ec *exportContext) rewriteMediaPaths(ctx context.Context, gen MediaPathGenerator) error {
	var genErr error
	walkElements(ec.article, func(el *etree.Element) bool {
		if genErr != nil {
			return false
		}

		var parentID string
		switch {
		case el.Tag == "graphic" && el.Parent() != nil && el.Parent().Tag == "fig":
			parentID = el.Parent().SelectAttrValue("id", "")
		case el.Tag == "supplementary-material":
			parentID = el.SelectAttrValue("id", "")
		default:
			return true
		}

		path, err := gen.GeneratePath(ctx, el, parentID)
		if err != nil {
			genErr = fmt.Errorf("generating media path for %s: %w", parentID, err)
			return false
		}
		el.CreateAttr("xlink:href", path)
		return true
	})
	return genErr
}
