// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bundle loads manuscript projects from disk: one file holding the
// manuscript ID, the content tree fragment, and the flat model records.
// Implements: prd001-manuscript-model (R7: bundle format).
package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/jats-press/internal/tree"
	"github.com/pdiddy/jats-press/pkg/types"
)

// Bundle is one manuscript project: a content tree plus its model records.
type Bundle struct {
	// ManuscriptID must resolve to an MPManuscript record in Models.
	ManuscriptID string `json:"manuscriptID" yaml:"manuscriptID"`

	// Fragment holds the top-level content-tree nodes in document order.
	Fragment []*tree.Node `json:"fragment" yaml:"fragment"`

	// Models holds the flat records referenced from the tree.
	Models []*types.Model `json:"models" yaml:"models"`
}

// Load reads a bundle from a .json, .yaml, or .yml file.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}

	var b Bundle
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("parsing bundle: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("parsing bundle: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported bundle format %q: use .json, .yaml, or .yml", ext)
	}

	if b.ManuscriptID == "" {
		return nil, fmt.Errorf("bundle has no manuscriptID")
	}
	return &b, nil
}

// ModelMap indexes the bundle's records by ID. Duplicate IDs keep the last
// record.
func (b *Bundle) ModelMap() types.ModelMap {
	m := make(types.ModelMap, len(b.Models))
	for _, model := range b.Models {
		if model != nil && model.ID != "" {
			m[model.ID] = model
		}
	}
	return m
}

// MissingReferences returns the sorted set of IDs referenced from the tree
// (rids) that do not resolve in the model map or the tree itself. Missing
// references are reported, not fatal: optional records may legitimately be
// absent.
func (b *Bundle) MissingReferences() []string {
	models := b.ModelMap()
	nodeIDs := make(map[string]bool)
	tree.WalkAll(b.Fragment, func(n *tree.Node) bool {
		if id := n.ID(); id != "" {
			nodeIDs[id] = true
		}
		return true
	})

	missing := make(map[string]bool)
	tree.WalkAll(b.Fragment, func(n *tree.Node) bool {
		for _, rid := range n.Rids() {
			if _, ok := models[rid]; ok {
				continue
			}
			if nodeIDs[rid] {
				continue
			}
			missing[rid] = true
		}
		return true
	})

	out := make([]string, 0, len(missing))
	for id := range missing {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
