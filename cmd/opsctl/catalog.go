package main

import (
	"fmt"
	"os"

	"github.com/andresuchdata/kitchenops/internal/ingest"
	"github.com/urfave/cli/v2"
)

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Load menu items, ingredients and recipes from a recipe sheet",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Recipe sheet (CSV or XLSX) with Menu Item, Ingredient, Unit and Qty Per Item columns",
				Required: true,
				EnvVars:  []string{"CATALOG_FILE"},
			},
		},
		Action: func(c *cli.Context) error {
			path := c.String("file")
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", path, err)
			}
			defer f.Close()

			records, err := ingest.ReadRecords(path, f)
			if err != nil {
				return err
			}
			rows, err := ingest.ParseCatalogSheet(records)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res, err := appFrom(c).Services.Catalog.ImportCatalog(c.Context, rows)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
}
