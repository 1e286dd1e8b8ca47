// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/jats-press/pkg/types"
)

func writeBundle(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const yamlBundle = `
manuscriptID: MPManuscript:1
fragment:
  - type: section
    attrs:
      id: MPSection:intro
    children:
      - type: paragraph
        attrs:
          id: MPParagraphElement:p1
        children:
          - type: citation
            attrs:
              id: MPCitation:c1
              rids: [MPBibliographyItem:b1, MPBibliographyItem:gone]
models:
  - _id: MPManuscript:1
    objectType: MPManuscript
    manuscript:
      title: Test
  - _id: MPBibliographyItem:b1
    objectType: MPBibliographyItem
    bibliographyItem:
      title: Cited work
`

func TestLoadYAML(t *testing.T) {
	path := writeBundle(t, "manuscript.yaml", yamlBundle)

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "MPManuscript:1", b.ManuscriptID)
	require.Len(t, b.Fragment, 1)
	require.Len(t, b.Models, 2)

	models := b.ModelMap()
	m, err := models.ManuscriptByID("MPManuscript:1")
	require.NoError(t, err)
	assert.Equal(t, "Test", m.Title)
}

func TestLoadJSON(t *testing.T) {
	path := writeBundle(t, "manuscript.json", `{
		"manuscriptID": "MPManuscript:1",
		"fragment": [{"type": "paragraph", "attrs": {"id": "p1"}}],
		"models": [{"_id": "MPManuscript:1", "objectType": "MPManuscript", "manuscript": {"title": "T"}}]
	}`)

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "MPManuscript:1", b.ManuscriptID)
	assert.Equal(t, types.ObjectManuscript, b.Models[0].ObjectType)
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "unsupported extension", file: "bundle.toml", content: "x = 1"},
		{name: "malformed yaml", file: "bundle.yaml", content: "manuscriptID: [unclosed"},
		{name: "missing manuscript id", file: "bundle.yaml", content: "models: []"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeBundle(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestMissingReferences(t *testing.T) {
	path := writeBundle(t, "manuscript.yaml", yamlBundle)
	b, err := Load(path)
	require.NoError(t, err)

	// b1 resolves through the model map; "gone" resolves nowhere.
	assert.Equal(t, []string{"MPBibliographyItem:gone"}, b.MissingReferences())
}
