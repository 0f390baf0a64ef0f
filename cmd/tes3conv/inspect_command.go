package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tes3conv/internal/plugin"
)

type inspectReport struct {
	Path        string            `json:"path"`
	Size        int64             `json:"size"`
	Encoding    string            `json:"encoding"`
	Records     int               `json:"records"`
	Version     float32           `json:"version,omitempty"`
	Author      string            `json:"author,omitempty"`
	Description string            `json:"description,omitempty"`
	Masters     []string          `json:"masters,omitempty"`
	Tags        []plugin.TagCount `json:"tags"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var encoding string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <plugin>",
		Short: "Show a plugin's header and record counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if strings.TrimSpace(encoding) == "" {
				encoding = ctx.configValue().Conversion.PluginEncoding
			}
			codec, err := plugin.NewCodec(encoding)
			if err != nil {
				return fmt.Errorf("--encoding: %w", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}
			set, err := codec.Load(path)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}

			report := inspectReport{
				Path:     path,
				Size:     info.Size(),
				Encoding: codec.Encoding(),
				Records:  len(set),
				Tags:     plugin.Summarize(set),
			}
			if header, ok := codec.Header(set); ok {
				report.Version = header.Version
				report.Author = header.Author
				report.Description = header.Description
				report.Masters = header.Masters
			}

			if asJSON {
				return writeJSON(cmd, report)
			}
			printInspectReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&encoding, "encoding", "", "Plugin string encoding (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the report as JSON")
	return cmd
}

func printInspectReport(cmd *cobra.Command, report inspectReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Plugin:      %s\n", report.Path)
	fmt.Fprintf(out, "Size:        %s\n", humanize.IBytes(uint64(report.Size)))
	fmt.Fprintf(out, "Encoding:    %s\n", report.Encoding)
	if report.Version != 0 {
		fmt.Fprintf(out, "Version:     %s\n", strconv.FormatFloat(float64(report.Version), 'f', 2, 32))
	}
	if report.Author != "" {
		fmt.Fprintf(out, "Author:      %s\n", report.Author)
	}
	if report.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", report.Description)
	}
	if len(report.Masters) > 0 {
		fmt.Fprintf(out, "Masters:     %s\n", strings.Join(report.Masters, ", "))
	}

	rows := make([][]string, 0, len(report.Tags))
	for _, tc := range report.Tags {
		rows = append(rows, []string{tc.Tag, humanize.Comma(int64(tc.Count))})
	}
	fmt.Fprintln(out, tableView{
		Headers: []string{"Tag", "Count"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignRight},
		Footer:  []string{"Records", humanize.Comma(int64(report.Records))},
	}.render())
}
