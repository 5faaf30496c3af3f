package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/courier/internal/presentation/graph"
	"github.com/aretw0/courier/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List registered requests, behaviors and subscribers",
	Long: `Prints the dispatch catalog. The markdown format is rendered for the
terminal when stdout is a TTY; mermaid prints a flowchart (graph LR).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		app, _, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		cat := app.Catalog()
		out := cmd.OutOrStdout()

		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(cat)
		case "mermaid":
			_, err := fmt.Fprint(out, graph.GenerateMermaid(cat))
			return err
		case "markdown":
			md := tui.CatalogMarkdown(cat)
			if term.IsTerminal(int(os.Stdout.Fd())) {
				render, err := tui.NewRenderer()
				if err != nil {
					return err
				}
				if md, err = render(md); err != nil {
					return err
				}
			}
			_, err := fmt.Fprint(out, md)
			return err
		default:
			return fmt.Errorf("unknown format %q (want markdown, mermaid or json)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(handlersCmd)
	handlersCmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, mermaid or json")
}
