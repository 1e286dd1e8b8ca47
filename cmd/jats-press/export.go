// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/jats-press/internal/bundle"
	"github.com/pdiddy/jats-press/internal/csl"
	"github.com/pdiddy/jats-press/internal/idreg"
	"github.com/pdiddy/jats-press/internal/jats"
)

var exportCmd = &cobra.Command{
	Use:   "export <bundle>",
	Short: "Export a manuscript bundle to JATS XML",
	Long: `Export loads a manuscript bundle (.json, .yaml, or .yml), renders its
citations, serializes the content tree, applies the structural fixups the
Archiving DTD requires, rewrites element IDs, and prints the document.

With --id-db, ID assignments are persisted in SQLite so re-exports of the
same manuscript keep stable IDs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bundle.Load(args[0])
		if err != nil {
			return err
		}

		for _, rid := range b.MissingReferences() {
			fmt.Fprintf(os.Stderr, "warning: unresolved reference %s\n", rid)
		}

		flags := cmd.Flags()
		jatsVersion, _ := flags.GetString("jats-version")
		doi, _ := flags.GetString("doi")
		articleID, _ := flags.GetString("id")
		frontOnly, _ := flags.GetBool("front-matter-only")
		linkPairs, _ := flags.GetStringSlice("link")
		style, _ := flags.GetString("style")
		locale, _ := flags.GetString("locale")
		cslPath, _ := flags.GetString("csl")
		outPath, _ := flags.GetString("out")
		idDB, _ := flags.GetString("id-db")

		links, err := parseLinks(linkPairs)
		if err != nil {
			return err
		}

		cslOpts := csl.Options{Style: style, Locale: locale}
		if cslPath != "" {
			cslOpts, err = csl.LoadOptions(cslPath)
			if err != nil {
				return err
			}
		}

		opts := jats.Options{
			Version:         jats.Version(jatsVersion),
			DOI:             doi,
			ID:              articleID,
			FrontMatterOnly: frontOnly,
			Links:           links,
			CSL:             cslOpts,
			Warnings:        os.Stderr,
		}

		if idDB != "" {
			registry, err := idreg.NewRegistry(idDB, b.ManuscriptID)
			if err != nil {
				return err
			}
			defer registry.Close()
			opts.IDGenerator = registry
		}

		xml, err := jats.Serialize(cmd.Context(), b.Fragment, b.ModelMap(), b.ManuscriptID, opts)
		if err != nil {
			return err
		}

		if outPath == "" {
			fmt.Fprintln(os.Stdout, xml)
			return nil
		}
		if err := os.WriteFile(outPath, []byte(xml+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	},
}

// parseLinks turns repeated "type=href" flags into the self-uri map.
func parseLinks(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	links := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		contentType, href, ok := strings.Cut(pair, "=")
		if !ok || contentType == "" || href == "" {
			return nil, fmt.Errorf("invalid --link %q: expected type=href", pair)
		}
		links[contentType] = href
	}
	return links, nil
}

func init() {
	exportCmd.Flags().String("jats-version", "", "target JATS version: 1.1 or 1.2 (default 1.2)")
	exportCmd.Flags().String("doi", "", "override the manuscript DOI")
	exportCmd.Flags().String("id", "", "external article identifier (publisher-id)")
	exportCmd.Flags().Bool("front-matter-only", false, "emit front matter only, no body or back")
	exportCmd.Flags().StringSlice("link", nil, "self-uri link as type=href, repeatable")
	exportCmd.Flags().String("style", "numeric", "citation style: numeric or author-date")
	exportCmd.Flags().String("locale", "", "citation locale, e.g. en-US")
	exportCmd.Flags().String("csl", "", "citation options YAML file, overrides --style and --locale")
	exportCmd.Flags().String("out", "", "output file (default stdout)")
	exportCmd.Flags().String("id-db", "", "SQLite database for stable ID assignments")

	rootCmd.AddCommand(exportCmd)
}
