package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reoring/dashschema"
	"github.com/reoring/dashschema/wizard"
)

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the schemas of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			type row struct {
				Name  string `json:"name"`
				Title string `json:"title,omitempty"`
			}
			var rows []row
			var lines []string
			for _, n := range c.Names() {
				idx, err := c.Index(n)
				if err != nil {
					return err
				}
				rows = append(rows, row{Name: n, Title: idx.Root().Title})
				lines = append(lines, strings.TrimRight(n+"\t"+idx.Root().Title, "\t"))
			}
			return a.print(cmd.OutOrStdout(), rows, lines...)
		},
	}
}

func searchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search SCHEMA KEYWORD...",
		Short: "Find schema nodes whose name or description contains every keyword",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			idx, err := c.Index(args[0])
			if err != nil {
				return err
			}
			view := wizard.NewSearchView(idx)
			if err := view.Run(strings.Join(args[1:], " ")); err != nil {
				return err
			}
			results := view.Results()
			lines := make([]string, 0, len(results))
			for _, r := range results {
				lines = append(lines, r.Path+"\t"+r.Display)
			}
			return a.print(cmd.OutOrStdout(), results, lines...)
		},
	}
}

func renderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render SCHEMA PATH",
		Short: "Replace path segments with node titles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			idx, err := c.Index(args[0])
			if err != nil {
				return err
			}
			display, err := idx.RenderPath(args[1])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), map[string]string{"path": args[1], "display": display}, display)
		},
	}
}

func describeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe SCHEMA PATH",
		Short: "Show the descriptive keywords of a schema node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			idx, err := c.Index(args[0])
			if err != nil {
				return err
			}
			desc, err := idx.Describe(args[1])
			if err != nil {
				return err
			}
			lines := strings.Split(desc, dashschema.LineBreak)
			return a.print(cmd.OutOrStdout(), map[string]string{"path": args[1], "description": desc}, lines...)
		},
	}
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate SCHEMA FILE",
		Short: "Validate a JSON document against a schema (FILE may be -)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			doc, err := readInput(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			err = c.Validate(args[0], doc)
			if dashschema.CodeOf(err) != dashschema.CodeSchemaViolation {
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), map[string]bool{"valid": true}, "valid")
			}
			type row struct {
				Path    string `json:"path"`
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			iss, _ := dashschema.AsIssues(err)
			rows := make([]row, 0, len(iss))
			lines := make([]string, 0, len(iss))
			for _, it := range iss {
				rows = append(rows, row{Path: it.Path, Code: it.Code, Message: it.Message})
				lines = append(lines, it.Path+"\t"+it.Message)
			}
			if perr := a.print(cmd.OutOrStdout(), rows, lines...); perr != nil {
				return perr
			}
			return fmt.Errorf("%s: %d violation(s)", args[1], len(iss))
		},
	}
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}
