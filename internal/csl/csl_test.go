// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/jats-press/pkg/types"
)

func bibItem(id string, item types.BibliographyItem) *types.Model {
	return &types.Model{
		ID:               id,
		ObjectType:       types.ObjectBibliographyItem,
		BibliographyItem: &item,
	}
}

func issued(year int) *types.CSLDate {
	return &types.CSLDate{DateParts: [][]int{{year}}}
}

func testModels() types.ModelMap {
	return types.ModelMap{
		"bib1": bibItem("bib1", types.BibliographyItem{
			Title:  "Alpha",
			Author: []types.BibliographicName{{Family: "Smith", Given: "A"}},
			Issued: issued(2020),
		}),
		"bib2": bibItem("bib2", types.BibliographyItem{
			Title:  "Beta",
			Author: []types.BibliographicName{{Family: "Doe"}, {Family: "Roe"}},
			Issued: issued(2021),
		}),
		"bib3": bibItem("bib3", types.BibliographyItem{
			Title:  "Gamma",
			Author: []types.BibliographicName{{Family: "Lee"}, {Family: "Kim"}, {Family: "Park"}},
			Issued: issued(2019),
		}),
		"bib4": bibItem("bib4", types.BibliographyItem{
			Title:  "Delta",
			Author: []types.BibliographicName{{Family: "Smith", Given: "A"}},
			Issued: issued(2020),
		}),
		"bib5": bibItem("bib5", types.BibliographyItem{
			Title: "Undated",
		}),
	}
}

func TestNewEngineRejectsBadStyles(t *testing.T) {
	_, err := NewEngine(Options{}, testModels())
	require.Error(t, err)

	_, err = NewEngine(Options{Style: "chicago"}, testModels())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chicago")
}

func TestRenderNumeric(t *testing.T) {
	engine, err := NewEngine(Options{Style: StyleNumeric}, testModels())
	require.NoError(t, err)

	requests := []CitationRequest{
		{CitationID: "cit1", Items: []CitationItem{{ID: "bib1"}}},
		{CitationID: "cit2", Items: []CitationItem{{ID: "bib2"}, {ID: "bib3"}}},
		{CitationID: "cit3", Items: []CitationItem{{ID: "bib1"}, {ID: "bib2"}, {ID: "bib3"}}},
		{CitationID: "cit4", Items: []CitationItem{{ID: "bib4"}, {ID: "bib1"}}},
		{CitationID: "cit5", Items: []CitationItem{{ID: "missing"}}},
	}

	rendered, err := engine.RebuildState(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, rendered, 5)

	assert.Equal(t, "1", rendered[0].Text)
	assert.Equal(t, "2,3", rendered[1].Text)
	// Three consecutive numbers collapse into an en-dash range.
	assert.Equal(t, "1–3", rendered[2].Text)
	assert.Equal(t, "1,4", rendered[3].Text)
	// Unresolvable items render as empty text, not an error.
	assert.Equal(t, "", rendered[4].Text)

	assert.Equal(t, 1, engine.Number("bib1"))
	assert.Equal(t, 0, engine.Number("bib5"))
}

func TestRenderAuthorDate(t *testing.T) {
	engine, err := NewEngine(Options{Style: StyleAuthorDate}, testModels())
	require.NoError(t, err)

	requests := []CitationRequest{
		{CitationID: "cit1", Items: []CitationItem{{ID: "bib1"}, {ID: "bib2"}}},
		{CitationID: "cit2", Items: []CitationItem{{ID: "bib3"}}},
		{CitationID: "cit3", Items: []CitationItem{{ID: "bib4"}}},
		{CitationID: "cit4", Items: []CitationItem{{ID: "bib5"}}},
	}

	rendered, err := engine.RebuildState(context.Background(), requests)
	require.NoError(t, err)

	// bib1 and bib4 share author and year, so both carry a suffix.
	assert.Equal(t, "Smith, 2020a; Doe and Roe, 2021", rendered[0].Text)
	assert.Equal(t, "Lee et al., 2019", rendered[1].Text)
	assert.Equal(t, "Smith, 2020b", rendered[2].Text)
	assert.Equal(t, "Undated, n.d.", rendered[3].Text)
}

func TestMakeBibliographyNumericOrder(t *testing.T) {
	engine, err := NewEngine(Options{Style: StyleNumeric}, testModels())
	require.NoError(t, err)

	_, err = engine.RebuildState(context.Background(), []CitationRequest{
		{CitationID: "cit1", Items: []CitationItem{{ID: "bib3"}}},
		{CitationID: "cit2", Items: []CitationItem{{ID: "bib1"}}},
	})
	require.NoError(t, err)

	ids, err := engine.MakeBibliography()
	require.NoError(t, err)

	// Cited items in citation order, then uncited items in sorted ID order.
	assert.Equal(t, []string{"bib3", "bib1", "bib2", "bib4", "bib5"}, ids)
}

func TestMakeBibliographyAuthorDateOrder(t *testing.T) {
	engine, err := NewEngine(Options{Style: StyleAuthorDate}, testModels())
	require.NoError(t, err)

	ids, err := engine.MakeBibliography()
	require.NoError(t, err)

	// Doe and Roe < Lee et al. < Smith (2020 Alpha, 2020 Delta) < Undated.
	assert.Equal(t, []string{"bib2", "bib3", "bib1", "bib4", "bib5"}, ids)
}

func TestLocaleFallback(t *testing.T) {
	engine, err := NewEngine(Options{Style: StyleAuthorDate, Locale: "xx-XX"}, testModels())
	require.NoError(t, err)

	rendered, err := engine.RebuildState(context.Background(), []CitationRequest{
		{CitationID: "cit1", Items: []CitationItem{{ID: "bib2"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Doe and Roe, 2021", rendered[0].Text)
}

func TestGermanLocale(t *testing.T) {
	engine, err := NewEngine(Options{Style: StyleAuthorDate, Locale: "de-DE"}, testModels())
	require.NoError(t, err)

	rendered, err := engine.RebuildState(context.Background(), []CitationRequest{
		{CitationID: "cit1", Items: []CitationItem{{ID: "bib2"}}},
		{CitationID: "cit2", Items: []CitationItem{{ID: "bib5"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Doe und Roe, 2021", rendered[0].Text)
	assert.Equal(t, "Undated, o. J.", rendered[1].Text)
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("style: author-date\nlocale: en-GB\n"), 0o644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, Options{Style: StyleAuthorDate, Locale: "en-GB"}, opts)

	_, err = LoadOptions(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
