package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds the global flags shared by every subcommand.
type RootOptions struct {
	LogLevel  string
	LogFormat string
}

// NewRootCommand builds the sparqlflow root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "sparqlflow",
		Short:         "A streaming SPARQL algebra evaluation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (panic|fatal|error|warn|info|debug|trace)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log format (text|json)")

	cmd.AddCommand(NewQueryCommand(opts))

	return cmd
}

func validateMediaFormat(format string) error {
	switch format {
	case "sparql-json", "csv", "tree", "table":
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be one of sparql-json, csv, tree, table", format)
	}
}

// mediaType maps the CLI's short --format name to the MIME-ish string
// serialize.Mediator actors register under.
func mediaType(format string) string {
	switch format {
	case "sparql-json":
		return "application/sparql-results+json"
	case "csv":
		return "text/csv"
	case "tree":
		return "application/json"
	default:
		return "table"
	}
}
