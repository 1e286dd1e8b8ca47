// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/jats-press/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate an exported document against its DTD",
	Long: `Validate runs xmllint over an exported JATS document, checking it against
the DTD named in its DOCTYPE declaration. Uses xmllint from PATH when
available, otherwise a docker or podman container.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}

		image, _ := cmd.Flags().GetString("image")
		v, err := validate.DetectValidator(image)
		if err != nil {
			return err
		}

		if err := v.Validate(string(data)); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s is valid (%s)\n", args[0], v.Name())
		return nil
	},
}

func init() {
	validateCmd.Flags().String("image", "", "container image providing xmllint")

	rootCmd.AddCommand(validateCmd)
}
