// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jats serializes a manuscript content tree and model map into a
// DTD-valid JATS Archiving article. The export is a single pass: citation
// rendering first, then front/body/back assembly, then a fixed sequence of
// structural fixups, and finally a global id/rid rewrite.
// Implements: prd003-jats-export (R1-R9);
//
//	docs/ARCHITECTURE § JATS Export.
package jats

import (
	"context"
	"fmt"
	"io"

	"github.com/beevik/etree"

	"github.com/pdiddy/jats-press/internal/csl"
	"github.com/pdiddy/jats-press/internal/labels"
	"github.com/pdiddy/jats-press/internal/tree"
	"github.com/pdiddy/jats-press/pkg/types"
)

// IDGenerator assigns final IDs during the global rewrite pass. It is
// invoked once per id-bearing element, strictly in document order, because
// implementations may keep order-sensitive state (counters, registries) and
// may perform I/O. Returning an empty string strips the element's id.
type IDGenerator interface {
	GenerateID(ctx context.Context, el *etree.Element) (string, error)
}

// IDGeneratorFunc adapts a function to the IDGenerator interface.
type IDGeneratorFunc func(ctx context.Context, el *etree.Element) (string, error)

// GenerateID implements IDGenerator.
func (f IDGeneratorFunc) GenerateID(ctx context.Context, el *etree.Element) (string, error) {
	return f(ctx, el)
}

// MediaPathGenerator rewrites media hrefs after the ID pass, so generators
// see final IDs. parentID is the containing figure's ID, or the element's
// own ID for supplementary material. Invoked sequentially in document order;
// implementations may copy files and memoize by prior results.
type MediaPathGenerator interface {
	GeneratePath(ctx context.Context, el *etree.Element, parentID string) (string, error)
}

// MediaPathGeneratorFunc adapts a function to the MediaPathGenerator
// interface.
type MediaPathGeneratorFunc func(ctx context.Context, el *etree.Element, parentID string) (string, error)

// GeneratePath implements MediaPathGenerator.
func (f MediaPathGeneratorFunc) GeneratePath(ctx context.Context, el *etree.Element, parentID string) (string, error) {
	return f(ctx, el, parentID)
}

// Options configures one export.
type Options struct {
	// Version selects the target DTD (default 1.2). Unknown versions fail.
	Version Version

	// DOI overrides the manuscript's DOI in article-id.
	DOI string

	// ID is an external article identifier (pub-id-type "publisher-id").
	ID string

	// FrontMatterOnly skips body, back, and floats-group entirely.
	FrontMatterOnly bool

	// Links maps self-uri content types to hrefs, e.g. {"pdf": "123.pdf"}.
	Links map[string]string

	// IDGenerator rewrites every element id; nil selects the default
	// tag-counter generator.
	IDGenerator IDGenerator

	// MediaPathGenerator rewrites graphic and supplementary-material
	// hrefs; nil leaves them untouched.
	MediaPathGenerator MediaPathGenerator

	// CSL selects the citation style and locale for the built-in engine.
	CSL csl.Options

	// Provider overrides the built-in citation engine.
	Provider csl.Provider

	// Warnings receives "warning:" lines for recoverable problems; nil
	// discards them.
	Warnings io.Writer
}

// exportContext is the mutable state of one export. A fresh context is
// built per Serialize call; nothing is shared across exports.
type exportContext struct {
	doc     *etree.Document
	article *etree.Element
	front   *etree.Element
	body    *etree.Element
	back    *etree.Element

	fragment     []*tree.Node
	models       types.ModelMap
	manuscriptID string
	manuscript   *types.Manuscript
	opts         Options
	warnings     io.Writer

	labels        map[string]labels.Target
	citationTexts map[string]string
	provider      csl.Provider
	nodesByID     map[string]*tree.Node
}

func (ec *exportContext) warnf(format string, args ...any) {
	fmt.Fprintf(ec.warnings, "warning: "+format+"\n", args...)
}

// Serialize converts a content tree plus model map into JATS XML text.
// manuscriptID must resolve to an MPManuscript record. The returned string
// is the complete document including XML declaration and DOCTYPE; on error
// no partial output is produced.
func Serialize(ctx context.Context, fragment []*tree.Node, models types.ModelMap, manuscriptID string, opts Options) (string, error) {
	dt, err := doctypeFor(opts.Version)
	if err != nil {
		return "", err
	}

	manuscript, err := models.ManuscriptByID(manuscriptID)
	if err != nil {
		return "", err
	}

	warnings := opts.Warnings
	if warnings == nil {
		warnings = io.Discard
	}

	provider := opts.Provider
	if provider == nil {
		provider, err = csl.NewEngine(opts.CSL, models)
		if err != nil {
			return "", err
		}
	}

	ec := &exportContext{
		fragment:     fragment,
		models:       models,
		manuscriptID: manuscriptID,
		manuscript:   manuscript,
		opts:         opts,
		warnings:     warnings,
		provider:     provider,
		nodesByID:    indexNodes(fragment),
	}

	// Citation texts must exist before any node serialization: rendering
	// depends on the complete, ordered citation list.
	if err := ec.renderCitations(ctx); err != nil {
		return "", err
	}

	ec.doc = etree.NewDocument()
	ec.doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	ec.doc.CreateDirective(fmt.Sprintf("DOCTYPE article PUBLIC %q %q", dt.publicID, dt.systemID))

	ec.article = ec.doc.CreateElement("article")
	ec.article.CreateAttr("xmlns:xlink", "http://www.w3.org/1999/xlink")

	if err := ec.buildFront(); err != nil {
		return "", err
	}

	articleType := manuscript.ArticleType
	if articleType == "" {
		articleType = "other"
	}
	ec.article.CreateAttr("article-type", articleType)

	if !opts.FrontMatterOnly {
		ec.labels = labels.Compute(fragment)

		if err := ec.buildBody(); err != nil {
			return "", err
		}
		if err := ec.buildBack(); err != nil {
			return "", err
		}
		ec.moveCoiStatements()
		ec.article.AddChild(ec.back)

		ec.unwrapBodyContainer()
		ec.moveAbstracts()
		ec.moveFloatsGroup()
		ec.removeBackmatterPlaceholder()
		ec.retypeFootnotes()
		ec.fillEmptyFootnotes()
	}

	gen := opts.IDGenerator
	if gen == nil {
		gen = NewDefaultIDGenerator()
	}
	if err := ec.rewriteIDs(ctx, gen); err != nil {
		return "", err
	}

	if opts.MediaPathGenerator != nil {
		if err := ec.rewriteMediaPaths(ctx, opts.MediaPathGenerator); err != nil {
			return "", err
		}
	}

	ec.doc.Indent(2)
	return ec.doc.WriteToString()
}

// renderCitations collects every citation node in document order and
// submits the whole batch to the provider.
func (ec *exportContext) renderCitations(ctx context.Context) error {
	var requests []csl.CitationRequest
	tree.WalkAll(ec.fragment, func(n *tree.Node) bool {
		if n.Type != tree.Citation {
			return true
		}
		req := csl.CitationRequest{CitationID: n.ID()}
		for _, rid := range n.Rids() {
			req.Items = append(req.Items, csl.CitationItem{ID: rid})
		}
		requests = append(requests, req)
		return true
	})

	rendered, err := ec.provider.RebuildState(ctx, requests)
	if err != nil {
		return fmt.Errorf("rendering citations: %w", err)
	}

	ec.citationTexts = make(map[string]string, len(rendered))
	for _, r := range rendered {
		ec.citationTexts[r.ID] = r.Text
	}
	return nil
}

// indexNodes maps node IDs to nodes for the fixup passes, which are driven
// by tree attributes rather than the serialized XML.
func indexNodes(fragment []*tree.Node) map[string]*tree.Node {
	byID := make(map[string]*tree.Node)
	tree.WalkAll(fragment, func(n *tree.Node) bool {
		if id := n.ID(); id != "" {
			byID[id] = n
		}
		return true
	})
	return byID
}
