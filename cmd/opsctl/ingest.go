package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/andresuchdata/kitchenops/internal/drive"
	"github.com/andresuchdata/kitchenops/internal/ingest"
	"github.com/andresuchdata/kitchenops/internal/storage"
	"github.com/andresuchdata/kitchenops/pkg/logger"
	"github.com/urfave/cli/v2"
)

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Load POS item and order exports (CSV or XLSX)",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "file", Usage: "Export file to load (repeatable)"},
			&cli.StringFlag{Name: "dir", Usage: "Directory of export files"},
			&cli.StringFlag{Name: "drive-folder", Usage: "Google Drive folder path holding exports", EnvVars: []string{"DRIVE_FOLDER"}},
			&cli.StringFlag{Name: "s3-prefix", Usage: "Object prefix in the configured S3 bucket"},
			&cli.BoolFlag{Name: "close", Usage: "Run bulk close after loading"},
		},
		Action: runIngest,
	}
}

func runIngest(c *cli.Context) error {
	cfg := config.Load()
	a := appFrom(c)

	var sources []ingest.Source
	for _, path := range c.StringSlice("file") {
		sources = append(sources, ingest.FileSource(path))
	}
	if dir := c.String("dir"); dir != "" {
		found, err := dirSources(dir)
		if err != nil {
			return err
		}
		sources = append(sources, found...)
	}
	if folder := c.String("drive-folder"); folder != "" {
		svc, err := drive.NewService(c.Context, cfg.Sources.GoogleCredentialsJSON)
		if err != nil {
			return err
		}
		found, err := svc.ExportSources(c.Context, folder)
		if err != nil {
			return err
		}
		sources = append(sources, found...)
	}
	if c.IsSet("s3-prefix") {
		client, err := storage.NewS3Client(cfg.Sources)
		if err != nil {
			return err
		}
		found, err := storage.ExportSources(c.Context, client, c.String("s3-prefix"))
		if err != nil {
			return err
		}
		sources = append(sources, found...)
	}
	if len(sources) == 0 {
		return fmt.Errorf("nothing to ingest: pass --file, --dir, --drive-folder or --s3-prefix")
	}

	logger.Log.Info().Int("files", len(sources)).Msg("ingesting exports")
	results, err := a.Services.Ingester.IngestAll(c.Context, sources)
	if err != nil {
		return err
	}
	state, err := a.Services.Onboarding.CompleteIngest(c.Context)
	if err != nil {
		return err
	}

	out := map[string]any{"files": results, "onboarding": state}
	if c.Bool("close") {
		closed, err := a.Services.Close.RunBulkClose(c.Context)
		if err != nil {
			return err
		}
		out["bulk_close"] = closed
	}
	return printJSON(out)
}

func dirSources(dir string) ([]ingest.Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && ingest.IsExport(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	sources := make([]ingest.Source, 0, len(names))
	for _, name := range names {
		sources = append(sources, ingest.FileSource(filepath.Join(dir, name)))
	}
	return sources, nil
}
