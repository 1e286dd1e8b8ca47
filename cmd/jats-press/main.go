// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the jats-press CLI.
// Implements: prd001-manuscript-model, prd002-citation-engine,
//             prd003-jats-export (CLI surface).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the jats-press CLI.
var rootCmd = &cobra.Command{
	Use:   "jats-press",
	Short: "Export manuscript bundles to DTD-valid JATS XML",
	Long: `jats-press serializes manuscript bundles (a content tree plus flat model
records) into JATS Archiving XML, with citation rendering, figure and table
label assignment, structural fixups, and global ID rewriting.

Each stage is a subcommand: export produces the XML, validate checks an
exported document against its DTD.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./jats-press.yaml or ~/.config/jats-press/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("jats-press")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "jats-press"))
		}
	}

	viper.SetEnvPrefix("JATS_PRESS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
