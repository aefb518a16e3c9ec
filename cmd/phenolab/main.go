package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"phenolab/adapters/api"
	csvadapter "phenolab/adapters/csv"
	"phenolab/adapters/excel"
	"phenolab/adapters/snapshot"
	"phenolab/app"
	"phenolab/domain/core"
	"phenolab/internal"
	"phenolab/internal/config"
	"phenolab/internal/events"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:   "phenolab",
		Short: "Metabolic phenotyping data analysis",
	}
	rootCmd.AddCommand(
		newServeCmd(),
		newExportCmd(),
		newSnapshotCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func bootstrap() (*config.Config, *internal.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, internal.NewDefaultLogger(), nil
}

// importFiles loads each CSV into one dataset; multi-table datasets come
// from repeated --file flags
func importFiles(cfg *config.Config, log *internal.Logger, hub *app.DataHub, name string, files []string) (*app.Dataset, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files given")
	}
	reader := csvadapter.NewReader()
	reader.Delimiter = cfg.Data.CSVDelimiter
	reader.TimeLayout = cfg.Data.TimeLayout

	var ds *app.Dataset
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		result, err := reader.Read(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		if ds == nil {
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			ds = app.NewDataset(name, result.Animals)
		}
		tableName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		table, err := app.NewDatatable(tableName, result.Table, result.Variables, result.SamplingInterval)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		ds.AddTable(table)
		log.Info("imported %s: %d rows, %d animals", path, result.Table.NumRows(), len(result.Animals))
	}
	hub.AddDataset(ds)
	return ds, nil
}

func newServeCmd() *cobra.Command {
	var files []string
	var name string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Import data files and serve the analysis API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			hub := app.NewDataHub(log, events.NewHub())
			if _, err := importFiles(cfg, log, hub, name, files); err != nil {
				return err
			}

			server := api.NewServer(hub, log)
			addr := ":" + cfg.Server.Port
			log.Info("listening on %s", addr)
			return http.ListenAndServe(addr, server)
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "CSV data file (repeatable)")
	cmd.Flags().StringVar(&name, "name", "", "dataset name (default: first file name)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var files []string
	var name, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run the configured pipeline and write an .xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			hub := app.NewDataHub(log, events.NewHub())
			ds, err := importFiles(cfg, log, hub, name, files)
			if err != nil {
				return err
			}

			writer := excel.NewWorkbookWriter()
			svc := app.NewExportService(hub, log, cfg.Data.ExportParallel)
			if err := svc.ExportDataset(cmd.Context(), ds.ID, app.AnalysisQuery{}, writer); err != nil {
				return err
			}

			outFile, err := os.Create(out)
			if err != nil {
				return err
			}
			defer outFile.Close()
			if err := writer.Save(outFile); err != nil {
				return err
			}
			log.Info("wrote %s", out)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "CSV data file (repeatable)")
	cmd.Flags().StringVar(&name, "name", "", "dataset name (default: first file name)")
	cmd.Flags().StringVarP(&out, "out", "o", "export.xlsx", "output workbook path")
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Persist and restore dataset configuration",
	}
	snapshotCmd.AddCommand(newSnapshotSaveCmd(), newSnapshotListCmd())
	return snapshotCmd
}

func newSnapshotSaveCmd() *cobra.Command {
	var files []string
	var name string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Import data files and store a configuration snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			hub := app.NewDataHub(log, events.NewHub())
			ds, err := importFiles(cfg, log, hub, name, files)
			if err != nil {
				return err
			}

			store, err := snapshot.Open(cfg.Store.Driver, cfg.Store.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := app.TakeSnapshot(ds)
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), snap); err != nil {
				return err
			}
			log.Info("saved snapshot %s for dataset %s", snap.ID, ds.Name)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "CSV data file (repeatable)")
	cmd.Flags().StringVar(&name, "name", "", "dataset name (default: first file name)")
	return cmd
}

func newSnapshotListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latest <dataset-id>",
		Short: "Show the most recent snapshot for a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := bootstrap()
			if err != nil {
				return err
			}
			id, err := core.ParseDatasetID(args[0])
			if err != nil {
				return err
			}

			store, err := snapshot.Open(cfg.Store.Driver, cfg.Store.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := store.Latest(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n%s\n", snap.ID, snap.CreatedAt, snap.Payload)
			return nil
		},
	}
	return cmd
}
