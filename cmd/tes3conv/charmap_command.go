package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/transform"

	"tes3conv/internal/localize"
)

func newCharmapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "charmap",
		Short:       "Show the Cyrillic localization table",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, localize.Len())
			for _, p := range localize.Pairs() {
				rows = append(rows, []string{
					string(p.Native),
					fmt.Sprintf("U+%04X", p.Native),
					string(p.Legacy),
					fmt.Sprintf("U+%04X", p.Legacy),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tableView{Headers: []string{"Native", "Code", "Legacy", "Code"}, Rows: rows}.render())
			fmt.Fprintf(out, "%d pairs\n", localize.Len())
			return nil
		},
	}
	cmd.AddCommand(newCharmapApplyCommand())
	return cmd
}

func newCharmapApplyCommand() *cobra.Command {
	var native bool
	var output string

	cmd := &cobra.Command{
		Use:   "apply [file]",
		Short: "Rewrite UTF-8 text through the localization table",
		Long: "Rewrite native Cyrillic into its legacy stand-ins (or back with --native).\n" +
			"Reads the named file or stdin and writes stdout unless --output is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}

			dir := localize.Legacy
			if native {
				dir = localize.Native
			}

			if output == "" {
				return rewriteText(cmd.OutOrStdout(), in, dir)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := rewriteText(f, in, dir); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().BoolVar(&native, "native", false, "Rewrite legacy stand-ins back into Cyrillic")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func rewriteText(out io.Writer, in io.Reader, dir localize.Direction) error {
	if _, err := io.Copy(out, transform.NewReader(in, localize.Transformer(dir))); err != nil {
		return fmt.Errorf("rewrite text: %w", err)
	}
	return nil
}
