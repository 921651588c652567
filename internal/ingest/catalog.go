package ingest

import (
	"fmt"

	"github.com/andresuchdata/kitchenops/internal/domain"
)

const (
	colIngredient   = "Ingredient"
	colUnit         = "Unit"
	colQtyPerItem   = "Qty Per Item"
	colReorderPoint = "Reorder Point"
	colLeadTime     = "Lead Time Days"
	colUnitCost     = "Unit Cost"
	colCategory     = "Category"
)

// ParseCatalogSheet reads a recipe sheet with one row per menu item and
// ingredient pair. Blank policy cells leave the ingredient's value alone.
func ParseCatalogSheet(records [][]string) ([]domain.CatalogRow, error) {
	if len(records) == 0 {
		return nil, nil
	}
	cols := newColumns(records[0])
	if err := cols.require(colMenuItem, colIngredient, colQtyPerItem); err != nil {
		return nil, err
	}

	var rows []domain.CatalogRow
	for i, record := range records[1:] {
		line := i + 2
		if isBlank(record) {
			continue
		}
		qty, err := parseAmount(cols.get(record, colQtyPerItem))
		if err != nil {
			return nil, fmt.Errorf("line %d: qty per item: %w", line, err)
		}
		row := domain.CatalogRow{
			MenuItemName: cols.get(record, colMenuItem),
			Category:     cols.get(record, colCategory),
			Ingredient:   cols.get(record, colIngredient),
			Unit:         cols.get(record, colUnit),
			QtyPerItem:   qty,
		}
		if row.ReorderPoint, err = optionalAmount(cols.get(record, colReorderPoint)); err != nil {
			return nil, fmt.Errorf("line %d: reorder point: %w", line, err)
		}
		if row.UnitCost, err = optionalAmount(cols.get(record, colUnitCost)); err != nil {
			return nil, fmt.Errorf("line %d: unit cost: %w", line, err)
		}
		if lead, err := optionalAmount(cols.get(record, colLeadTime)); err != nil {
			return nil, fmt.Errorf("line %d: lead time: %w", line, err)
		} else if lead != nil {
			days := int(*lead)
			row.LeadTimeDays = &days
		}
		if row.Category == "" {
			row.Category = cols.get(record, colSalesCategory)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func optionalAmount(raw string) (*float64, error) {
	if isBlank([]string{raw}) {
		return nil, nil
	}
	v, err := parseAmount(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
