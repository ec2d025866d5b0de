package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/homefront-labs/leadscout/internal/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect search templates",
	// Bare "leadscout templates" behaves like "templates list".
	RunE: func(cmd *cobra.Command, args []string) error {
		return templatesListCmd.RunE(cmd, args)
	},
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates by category",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := loadTemplates()
		if err != nil {
			return err
		}
		formatTemplateList(os.Stdout, reg)
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the full definition of a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadTemplates()
		if err != nil {
			return err
		}
		tmpl, err := reg.Get(args[0])
		if err != nil {
			return eris.Wrap(err, "templates show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tmpl)
	},
}

func formatTemplateList(w io.Writer, reg *templates.Registry) {
	byCat := reg.ByCategory()
	cats := make([]string, 0, len(byCat))
	for cat := range byCat {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cat := range cats {
		fmt.Fprintf(tw, "%s\n", cat)
		for _, name := range byCat[cat] {
			tmpl, err := reg.Get(name)
			if err != nil {
				continue
			}
			fmt.Fprintf(tw, "  %s\t%s\n", name, tmpl.Description)
		}
	}
	tw.Flush()
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	rootCmd.AddCommand(templatesCmd)
}
