package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
)

// Kind is the type of POS export a file holds.
type Kind string

const (
	KindItems   Kind = "items"
	KindOrders  Kind = "orders"
	KindUnknown Kind = "unknown"
)

const (
	colOrderDate     = "Order Date"
	colMenuItem      = "Menu Item"
	colSalesCategory = "Sales Category"
	colQty           = "Qty"
	colNetPrice      = "Net Price"
	colVoid          = "Void?"

	colOrderID       = "Order Id"
	colOpened        = "Opened"
	colClosed        = "Closed"
	colGuests        = "# of Guests"
	colServer        = "Server"
	colDiningArea    = "Dining Area"
	colService       = "Service"
	colDiningOptions = "Dining Options"
	colOrderSource   = "Order Source"
	colDiscount      = "Discount Amount"
	colAmount        = "Amount"
	colTax           = "Tax"
	colTip           = "Tip"
	colGratuity      = "Gratuity"
	colTotal         = "Total"
	colVoided        = "Voided"
)

// DetectKind inspects a header row.
func DetectKind(header []string) Kind {
	cols := newColumns(header)
	switch {
	case cols.has(colMenuItem) && cols.has(colQty):
		return KindItems
	case cols.has(colOrderID) && cols.has(colOpened):
		return KindOrders
	default:
		return KindUnknown
	}
}

// ParseItemExport sums the item-level export per business date and menu
// item. Voided lines are dropped. Output follows first appearance order.
func ParseItemExport(records [][]string) ([]domain.SalesRow, error) {
	if len(records) == 0 {
		return nil, nil
	}
	cols := newColumns(records[0])
	if err := cols.require(colOrderDate, colMenuItem, colQty); err != nil {
		return nil, err
	}

	type key struct {
		date string
		name string
	}
	totals := make(map[key]*domain.SalesRow)
	var order []key

	for i, record := range records[1:] {
		line := i + 2
		if isBlank(record) || parseFlag(cols.get(record, colVoid)) {
			continue
		}
		name := cols.get(record, colMenuItem)
		if name == "" {
			continue
		}
		date, err := parseExportDate(cols.get(record, colOrderDate))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		qty, err := parseAmount(cols.get(record, colQty))
		if err != nil {
			return nil, fmt.Errorf("line %d: qty: %w", line, err)
		}
		net, err := parseAmount(cols.get(record, colNetPrice))
		if err != nil {
			return nil, fmt.Errorf("line %d: net price: %w", line, err)
		}

		k := key{date.String(), name}
		row, ok := totals[k]
		if !ok {
			row = &domain.SalesRow{
				BusinessDate: date,
				MenuItemName: name,
				Category:     cols.get(record, colSalesCategory),
				Source:       domain.SalesSourceUpload,
			}
			totals[k] = row
			order = append(order, k)
		}
		row.Qty += qty
		row.NetSales += net
	}

	rows := make([]domain.SalesRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, *totals[k])
	}
	return rows, nil
}

// ParseOrderExport reads one order header per line. The business date is the
// calendar day the order was opened in loc.
func ParseOrderExport(records [][]string, loc *time.Location) ([]domain.DailyOrder, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	cols := newColumns(records[0])
	if err := cols.require(colOrderID, colOpened); err != nil {
		return nil, err
	}

	var orders []domain.DailyOrder
	for i, record := range records[1:] {
		line := i + 2
		if isBlank(record) {
			continue
		}
		id := strings.TrimSpace(cols.get(record, colOrderID))
		if id == "" {
			continue
		}
		opened, err := parseTimestamp(cols.get(record, colOpened), loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: opened: %w", line, err)
		}
		if opened == nil {
			return nil, fmt.Errorf("line %d: opened is required", line)
		}
		closed, err := parseTimestamp(cols.get(record, colClosed), loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: closed: %w", line, err)
		}

		order := domain.DailyOrder{
			OrderID:       id,
			BusinessDate:  domain.DateOf(*opened),
			OpenedAt:      opened,
			ClosedAt:      closed,
			ServerName:    cols.get(record, colServer),
			DiningArea:    cols.get(record, colDiningArea),
			ServicePeriod: cols.get(record, colService),
			DiningOption:  cols.get(record, colDiningOptions),
			OrderSource:   cols.get(record, colOrderSource),
			Voided:        parseFlag(cols.get(record, colVoided)),
		}
		if order.NumGuests, err = parseCount(cols.get(record, colGuests)); err != nil {
			return nil, fmt.Errorf("line %d: guests: %w", line, err)
		}
		money := []struct {
			col  string
			dest *float64
		}{
			{colDiscount, &order.DiscountAmount},
			{colAmount, &order.Subtotal},
			{colTax, &order.Tax},
			{colTip, &order.Tip},
			{colGratuity, &order.Gratuity},
			{colTotal, &order.Total},
		}
		for _, m := range money {
			if *m.dest, err = parseAmount(cols.get(record, m.col)); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, strings.ToLower(m.col), err)
			}
		}
		orders = append(orders, order)
	}
	return orders, nil
}
