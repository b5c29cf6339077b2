package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dgallion1/inkwell/internal/permalink"
)

func newMatchCmd() *cobra.Command {
	var (
		formatName string
		prefix     string
		file       string
	)
	cmd := &cobra.Command{
		Use:   "match <path>",
		Short: "Match a URL path against a permalink format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var custom []permalink.Format
			if file != "" {
				var err error
				if custom, err = permalink.LoadFile(file); err != nil {
					return err
				}
			}
			f, err := permalink.NewRegistry(custom...).Lookup(formatName)
			if err != nil {
				return err
			}

			m, ok := permalink.Resolve(args[0], f, prefix)
			if !ok {
				return fmt.Errorf("%q does not match %s (%s)", args[0], f.Name, f.Template)
			}

			out := cmd.OutOrStdout()
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "%s=%s\n", fieldStyle.Render(k), m[k])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", permalink.WithPrefix, "Permalink format name")
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Required first path segment for {prefix} formats")
	cmd.Flags().StringVar(&file, "formats-file", "", "YAML file with custom formats")
	return cmd
}
