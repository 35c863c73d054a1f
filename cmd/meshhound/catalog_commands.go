package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/meshhound/internal/catalog"
	"github.com/aleister1102/meshhound/internal/common"
	"github.com/aleister1102/meshhound/internal/datastore"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/spf13/cobra"
)

const stampLayout = "2006-01-02 15:04:05"

func newListCommand(app *application) *cobra.Command {
	var search string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show catalogued files, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records := catalog.Filter(catalog.SortByDiscoveredDesc(app.catalog.List()), search)
			if asJSON {
				if records == nil {
					records = []models.FileRecord{}
				}
				return writeJSON(cmd, records)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				if strings.TrimSpace(search) != "" {
					fmt.Fprintf(out, "No files match %q.\n", search)
				} else {
					fmt.Fprintln(out, "No 3D files found yet.")
				}
				return nil
			}

			fmt.Fprintln(out, renderTable(out, []string{"Format", "File", "Origin", "Size", "Discovered", "URL"}, recordRows(records),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}))
			fmt.Fprintf(out, "%d file(s)\n", len(records))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive substring filter on the URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

func recordRows(records []models.FileRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Format.Badge(),
			catalog.DisplayName(r.URL),
			catalog.OriginHost(r.Origin),
			r.Size,
			r.DiscoveredAt.Local().Format(stampLayout),
			r.URL,
		})
	}
	return rows
}

func newClearCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every catalogued file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed := app.catalog.Len()
			app.catalog.Clear()
			if err := app.catalog.Flush(cmd.Context()); err != nil {
				return common.WrapError(err, "could not persist cleared catalog")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d file(s).\n", removed)
			return nil
		},
	}
}

func newExportCommand(app *application) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog to a .parquet or .json file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return common.NewValidationError("out", outPath, "--out is required")
			}
			records := app.catalog.List()
			if dir := filepath.Dir(outPath); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return common.WrapErrorf(err, "could not create %s", dir)
				}
			}

			switch strings.ToLower(filepath.Ext(outPath)) {
			case ".parquet":
				if err := datastore.WriteParquetFile(outPath, app.cfg.StorageConfig.CompressionCodec, records, app.logger); err != nil {
					return err
				}
			case ".json":
				if err := writeJSONFile(outPath, records); err != nil {
					return err
				}
			default:
				return common.NewValidationError("out", outPath, "extension must be .parquet or .json")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d file(s) to %s\n", len(records), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination file (.parquet or .json)")
	return cmd
}

// exportDocument is the JSON export layout.
type exportDocument struct {
	ExportedAt time.Time           `json:"exported_at"`
	Files      []models.FileRecord `json:"files"`
}

func writeJSONFile(path string, records []models.FileRecord) error {
	if records == nil {
		records = []models.FileRecord{}
	}
	data, err := json.MarshalIndent(exportDocument{ExportedAt: time.Now().UTC(), Files: records}, "", "  ")
	if err != nil {
		return common.WrapError(err, "could not encode export")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return common.WrapErrorf(err, "could not write %s", path)
	}
	return nil
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
