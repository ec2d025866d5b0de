package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homefront-labs/leadscout/internal/export"
	"github.com/homefront-labs/leadscout/internal/store"
)

var (
	exportFormat   string
	exportOutput   string
	exportTemplate string
	exportLimit    int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored leads to a spreadsheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.GetAllLeads(ctx, store.LeadFilter{
			Template: exportTemplate,
			Limit:    exportLimit,
		})
		if err != nil {
			return eris.Wrap(err, "export: load leads")
		}
		if len(leads) == 0 {
			return eris.New("export: no leads to export")
		}

		exp := export.New(cfg.Export.OutputDir)

		var paths []string
		switch exportFormat {
		case "xlsx", "csv", "both":
		default:
			return eris.Errorf("export: unknown format %q (want xlsx, csv, or both)", exportFormat)
		}
		if exportFormat == "xlsx" || exportFormat == "both" {
			path, err := exp.XLSX(leads, exportOutput)
			if err != nil {
				return err
			}
			paths = append(paths, path)
		}
		if exportFormat == "csv" || exportFormat == "both" {
			path, err := exp.CSV(leads, exportOutput)
			if err != nil {
				return err
			}
			paths = append(paths, path)
		}

		zap.L().Info("export complete", zap.Int("leads", len(leads)), zap.Strings("paths", paths))
		for _, path := range paths {
			fmt.Printf("Exported %d lead(s) to %s\n", len(leads), path)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "output format: xlsx or csv")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output filename (default: timestamped)")
	exportCmd.Flags().StringVar(&exportTemplate, "template", "", "export only leads from this template")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "max leads to export (0 = all)")
	rootCmd.AddCommand(exportCmd)
}
