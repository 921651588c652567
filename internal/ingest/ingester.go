package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Source is one export file from any location.
type Source struct {
	Name string
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// SalesWriter is the part of the sales service the ingester feeds.
type SalesWriter interface {
	IngestSales(ctx context.Context, rows []domain.SalesRow) (*domain.IngestSalesResult, error)
	IngestOrders(ctx context.Context, orders []domain.DailyOrder) (*domain.IngestOrdersResult, error)
}

type FileResult struct {
	Name             string `json:"name"`
	Kind             Kind   `json:"kind"`
	Rows             int    `json:"rows"`
	MenuItemsCreated int    `json:"menu_items_created"`
}

type Ingester struct {
	writer   SalesWriter
	workers  int
	location *time.Location
}

func NewIngester(writer SalesWriter, workers int) *Ingester {
	if workers <= 0 {
		workers = 4
	}
	return &Ingester{writer: writer, workers: workers, location: time.UTC}
}

// WithLocation sets the zone export timestamps are written in.
func (in *Ingester) WithLocation(loc *time.Location) *Ingester {
	if loc != nil {
		in.location = loc
	}
	return in
}

type parsedFile struct {
	kind   Kind
	sales  []domain.SalesRow
	orders []domain.DailyOrder
}

// IngestAll parses the files concurrently and then writes them one batch
// per file, in the order given.
func (in *Ingester) IngestAll(ctx context.Context, sources []Source) ([]FileResult, error) {
	parsed := make([]parsedFile, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)
	for i, src := range sources {
		g.Go(func() error {
			pf, err := in.parse(gctx, src)
			if err != nil {
				return err
			}
			parsed[i] = pf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(sources))
	for i, pf := range parsed {
		res := FileResult{Name: sources[i].Name, Kind: pf.kind}
		switch pf.kind {
		case KindItems:
			out, err := in.writer.IngestSales(ctx, pf.sales)
			if err != nil {
				return results, fmt.Errorf("%s: %w", res.Name, err)
			}
			res.Rows, res.MenuItemsCreated = out.RowsProcessed, out.MenuItemsCreated
		case KindOrders:
			out, err := in.writer.IngestOrders(ctx, pf.orders)
			if err != nil {
				return results, fmt.Errorf("%s: %w", res.Name, err)
			}
			res.Rows = out.RowsProcessed
		default:
			log.Warn().Str("file", res.Name).Msg("ingest: unrecognized export skipped")
		}
		log.Info().Str("file", res.Name).Str("kind", string(res.Kind)).Int("rows", res.Rows).Msg("ingest: file loaded")
		results = append(results, res)
	}
	return results, nil
}

func (in *Ingester) parse(ctx context.Context, src Source) (parsedFile, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return parsedFile{}, fmt.Errorf("open %s: %w", src.Name, err)
	}
	defer rc.Close()

	records, err := ReadRecords(src.Name, rc)
	if err != nil {
		return parsedFile{}, malformed(src.Name, err)
	}
	if len(records) == 0 {
		return parsedFile{kind: KindUnknown}, nil
	}

	pf := parsedFile{kind: DetectKind(records[0])}
	switch pf.kind {
	case KindItems:
		pf.sales, err = ParseItemExport(records)
	case KindOrders:
		pf.orders, err = ParseOrderExport(records, in.location)
	}
	if err != nil {
		return parsedFile{}, malformed(src.Name, err)
	}
	return pf, nil
}

// malformed reports a file whose content could not be read as an export.
func malformed(name string, err error) error {
	return &domain.ValidationError{Field: "file", Message: fmt.Sprintf("%s: %v", name, err), Err: err}
}
