// Package main provides the tagkitt binary: schema-aware tag queries from the
// command line, for schema authors checking what an editor will offer.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "tagkitt"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Schema-driven tag validity queries",
		Long: `tagkitt answers which tags a RelaxNG schema allows at a position in
a document: the children of a path, the parents of a tag, the sibling slots
still open, and the attributes a tag carries.

Schemas come from a grammar JSON file (--grammar), the registry (--schema),
or the active schema in tagkitt.yaml.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVarP(&g.grammarPath, "grammar", "g", "", "Grammar JSON file to query")
	pf.StringVarP(&g.schemaID, "schema", "s", "", "Registered schema id to query")
	pf.BoolVar(&g.jsonOut, "json", false, "Print JSON")

	cmd.AddCommand(
		childrenCmd(&g),
		parentsCmd(&g),
		resolveCmd(&g),
		attributesCmd(&g),
		searchCmd(&g),
		rootsCmd(&g),
		operationsCmd(&g),
		schemasCmd(&g),
		watchCmd(&g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}
