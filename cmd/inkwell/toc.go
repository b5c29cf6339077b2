package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/inkwell/internal/headings"
	"github.com/dgallion1/inkwell/internal/render"
)

func newTOCCmd() *cobra.Command {
	var (
		asJSON bool
		opts   headings.Options
	)
	cmd := &cobra.Command{
		Use:   "toc <file>",
		Short: "Print the headings and table of contents of an HTML or Markdown file",
		Long: `Print the heading outline of a file. Files ending in .md or .markdown are
rendered to HTML first; anything else is read as HTML. Use "-" for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			res := headings.Parse(doc, opts)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			if len(res.Headings) == 0 {
				fmt.Fprintln(out, "no headings")
				return nil
			}
			if opts.SkipTOC {
				for _, h := range res.Headings {
					printHeading(out, 0, h.Level, h.Text, h.ID)
				}
				return nil
			}
			headings.Walk(res.TOC, func(n headings.TocNode, depth int) {
				printHeading(out, depth-1, n.Level, n.Text, n.ID)
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().IntVar(&opts.MinLevel, "min-level", 0, "Lowest heading level to include (default 1)")
	cmd.Flags().IntVar(&opts.MaxLevel, "max-level", 0, "Highest heading level to include (default 6)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "Maximum TOC nesting depth (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.DisableIDs, "no-ids", false, "Do not generate ids for headings without one")
	cmd.Flags().BoolVar(&opts.RequireID, "require-id", false, "Drop headings that have no id")
	cmd.Flags().BoolVar(&opts.SkipTOC, "flat", false, "Print the flat heading list only")
	return cmd
}

func readDocument(cmd *cobra.Command, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return render.New().HTML(string(data))
	}
	return string(data), nil
}

func printHeading(w io.Writer, indent, level int, text, id string) {
	line := strings.Repeat("  ", indent) +
		levelStyle.Render(fmt.Sprintf("h%d", level)) + " " +
		headingStyle.Render(text)
	if id != "" {
		line += " " + idStyle.Render("#"+id)
	}
	fmt.Fprintln(w, line)
}
