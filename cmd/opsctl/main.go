package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/andresuchdata/kitchenops/internal/app"
	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/pkg/logger"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const appKey ctxKey = "app"

func initApp(c *cli.Context) error {
	cfg := config.Load()
	if c.IsSet("store-driver") {
		cfg.Database.Driver = c.String("store-driver")
	}
	if c.IsSet("db-url") {
		cfg.Database.URL = c.String("db-url")
	}
	logger.Init(cfg.Server.Mode)
	logger.SetLevel(cfg.Server.LogLevel)

	a, err := app.New(c.Context, cfg)
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, appKey, a)
	return nil
}

func closeApp(c *cli.Context) error {
	if a, ok := c.Context.Value(appKey).(*app.App); ok && a != nil {
		return a.Close()
	}
	return nil
}

func appFrom(c *cli.Context) *app.App {
	return c.Context.Value(appKey).(*app.App)
}

func dateFlag(name, usage string, required bool) *cli.StringFlag {
	return &cli.StringFlag{Name: name, Usage: usage + " (YYYY-MM-DD)", Required: required}
}

func parseDateFlag(c *cli.Context, name string) (domain.Date, error) {
	d, err := domain.ParseDate(c.String(name))
	if err != nil {
		return domain.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	cliApp := &cli.App{
		Name:  "opsctl",
		Usage: "Operate the kitchen inventory ledger from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store-driver",
				Usage:   "Store driver: postgres, pgx or memory",
				EnvVars: []string{"STORE_DRIVER"},
			},
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Database connection string",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Before: initApp,
		After:  closeApp,
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply database migrations",
				Action: func(c *cli.Context) error {
					logger.Log.Info().Msg("migrations are up to date")
					return nil
				},
			},
			catalogCommand(),
			ingestCommand(),
			{
				Name:  "close",
				Usage: "Post CONSUME entries for one business date",
				Flags: []cli.Flag{dateFlag("date", "Business date", true)},
				Action: func(c *cli.Context) error {
					date, err := parseDateFlag(c, "date")
					if err != nil {
						return err
					}
					res, err := appFrom(c).Services.Close.RunDailyClose(c.Context, date)
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:  "reverse",
				Usage: "Undo the daily close of one business date",
				Flags: []cli.Flag{dateFlag("date", "Business date", true)},
				Action: func(c *cli.Context) error {
					date, err := parseDateFlag(c, "date")
					if err != nil {
						return err
					}
					res, err := appFrom(c).Services.Close.ReverseDailyClose(c.Context, date)
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:  "bulk-close",
				Usage: "Close every business date that has sales and no close",
				Action: func(c *cli.Context) error {
					res, err := appFrom(c).Services.Close.RunBulkClose(c.Context)
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:  "forecast",
				Usage: "Generate and print the ingredient demand forecast",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Usage: "Days ahead to forecast", Value: 7},
					dateFlag("reference-date", "First forecast day, defaults to today", false),
				},
				Action: runForecast,
			},
			{
				Name:  "predict-revenue",
				Usage: "Fit a linear trend to daily revenue and project it",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days-ahead", Usage: "Days to predict", Value: 7},
				},
				Action: func(c *cli.Context) error {
					res, err := appFrom(c).Services.Forecast.PredictRevenue(c.Context, c.Int("days-ahead"))
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:  "snapshot",
				Usage: "Print on-hand, days of supply and status per ingredient",
				Action: func(c *cli.Context) error {
					rows, err := appFrom(c).Services.Snapshot.GetInventorySnapshot(c.Context)
					if err != nil {
						return err
					}
					return printJSON(rows)
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runForecast(c *cli.Context) error {
	svc := appFrom(c).Services.Forecast
	ref := svc.Today()
	if c.IsSet("reference-date") {
		d, err := parseDateFlag(c, "reference-date")
		if err != nil {
			return err
		}
		ref = d
	}
	res, err := svc.GenerateForecast(c.Context, c.Int("days"), ref)
	if err != nil {
		return err
	}
	rows, err := svc.GetForecast(c.Context, ref, res.DaysForecasted)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"result": res, "ingredients": rows})
}
