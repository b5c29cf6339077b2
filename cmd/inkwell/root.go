package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	levelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	headingStyle = lipgloss.NewStyle().
			Bold(true)

	idStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "inkwell",
		Short: "Blog post tooling: table of contents and permalink checks",
		Long: `inkwell inspects post markup offline.

The toc command prints the heading outline of an HTML or Markdown file, and
match checks a URL path against a permalink format.`,
		SilenceUsage: true,
	}
	root.AddCommand(newTOCCmd(), newMatchCmd())
	return root
}
