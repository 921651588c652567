package ingest

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const itemCSV = "\xef\xbb\xbfOrder Date,Menu Item,Sales Category,Qty,Net Price,Void?\n" +
	"06/14/2024 12:31 PM,Pizza,Mains,2,\"$24.00\",false\n" +
	"06/14/2024 07:02 PM,Pizza,Mains,1,12,false\n" +
	"06/14/2024 07:05 PM,Pizza,Mains,5,60,true\n" +
	"06/15/2024,Tiramisu,,1,8.5,\n" +
	",,,,,\n"

const orderCSV = "Order Id,Opened,Closed,# of Guests,Server,Dining Area,Service,Dining Options,Order Source,Discount Amount,Amount,Tax,Tip,Gratuity,Total,Voided\n" +
	"1001,6/14/24 7:15 PM,6/14/24 8:40 PM,4,Alice,Patio,Dinner,Dine In,POS,(5.00),80,6.4,12,0,\"$93.40\",false\n" +
	"1002,6/14/24 12:05 PM,,1,Bob,Bar,Lunch,Takeout,Online,0,25,2,0,0,27,true\n"

func records(t *testing.T, csv string) [][]string {
	t.Helper()
	out, err := ReadRecords("export.csv", strings.NewReader(csv))
	require.NoError(t, err)
	return out
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindItems, DetectKind(records(t, itemCSV)[0]))
	assert.Equal(t, KindOrders, DetectKind(records(t, orderCSV)[0]))
	assert.Equal(t, KindUnknown, DetectKind([]string{"foo", "bar"}))
}

func TestParseItemExportAggregatesPerDay(t *testing.T) {
	rows, err := ParseItemExport(records(t, itemCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-06-14", rows[0].BusinessDate.String())
	assert.Equal(t, "Pizza", rows[0].MenuItemName)
	assert.Equal(t, "Mains", rows[0].Category)
	assert.Equal(t, 3.0, rows[0].Qty)
	assert.Equal(t, 36.0, rows[0].NetSales)
	assert.Equal(t, domain.SalesSourceUpload, rows[0].Source)

	assert.Equal(t, "Tiramisu", rows[1].MenuItemName)
	assert.Equal(t, "2024-06-15", rows[1].BusinessDate.String())
}

func TestParseItemExportErrors(t *testing.T) {
	_, err := ParseItemExport([][]string{{"Menu Item", "Qty"}})
	assert.ErrorContains(t, err, "Order Date")

	_, err = ParseItemExport([][]string{{"Order Date", "Menu Item", "Qty"}, {"not a date", "Pizza", "1"}})
	assert.ErrorContains(t, err, "line 2")

	rows, err := ParseItemExport(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseOrderExport(t *testing.T) {
	orders, err := ParseOrderExport(records(t, orderCSV), time.UTC)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	o := orders[0]
	assert.Equal(t, "1001", o.OrderID)
	assert.Equal(t, "2024-06-14", o.BusinessDate.String())
	require.NotNil(t, o.OpenedAt)
	assert.Equal(t, 19, o.OpenedAt.Hour())
	require.NotNil(t, o.ClosedAt)
	assert.Equal(t, 4, o.NumGuests)
	assert.Equal(t, "Dinner", o.ServicePeriod)
	assert.Equal(t, "Dine In", o.DiningOption)
	assert.Equal(t, -5.0, o.DiscountAmount)
	assert.Equal(t, 80.0, o.Subtotal)
	assert.Equal(t, 93.4, o.Total)
	assert.False(t, o.Voided)

	assert.Nil(t, orders[1].ClosedAt)
	assert.True(t, orders[1].Voided)
}

func TestReadRecordsFromWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Order Date", "Menu Item", "Qty", "Net Price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"06/14/2024", "Pizza", "2", "24"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	recs, err := ReadRecords("items.xlsx", &buf)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Pizza", recs[1][1])
}

func TestReadRecordsRejectsUnknownExtension(t *testing.T) {
	_, err := ReadRecords("invoice.pdf", strings.NewReader(""))
	assert.Error(t, err)
}

type recordingWriter struct {
	sales  [][]domain.SalesRow
	orders [][]domain.DailyOrder
}

func (w *recordingWriter) IngestSales(_ context.Context, rows []domain.SalesRow) (*domain.IngestSalesResult, error) {
	w.sales = append(w.sales, rows)
	return &domain.IngestSalesResult{Status: domain.StatusSuccess, RowsProcessed: len(rows), MenuItemsCreated: 1}, nil
}

func (w *recordingWriter) IngestOrders(_ context.Context, orders []domain.DailyOrder) (*domain.IngestOrdersResult, error) {
	w.orders = append(w.orders, orders)
	return &domain.IngestOrdersResult{Status: domain.StatusSuccess, RowsProcessed: len(orders)}, nil
}

func TestIngesterRoutesFilesByKind(t *testing.T) {
	w := &recordingWriter{}
	in := NewIngester(w, 2)

	results, err := in.IngestAll(context.Background(), []Source{
		BytesSource("items.csv", []byte(itemCSV)),
		BytesSource("orders.csv", []byte(orderCSV)),
		BytesSource("notes.csv", []byte("hello,world\n")),
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, KindItems, results[0].Kind)
	assert.Equal(t, 2, results[0].Rows)
	assert.Equal(t, KindOrders, results[1].Kind)
	assert.Equal(t, 2, results[1].Rows)
	assert.Equal(t, KindUnknown, results[2].Kind)
	assert.Len(t, w.sales, 1)
	assert.Len(t, w.orders, 1)
}

func TestIngesterStopsOnParseError(t *testing.T) {
	w := &recordingWriter{}
	_, err := NewIngester(w, 1).IngestAll(context.Background(), []Source{
		BytesSource("bad.csv", []byte("Order Date,Menu Item,Qty\nyesterday,Pizza,1\n")),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "bad.csv")
	assert.Empty(t, w.sales)
}

func TestIsExport(t *testing.T) {
	assert.True(t, IsExport("ItemSelectionDetails.csv"))
	assert.True(t, IsExport("OrderDetails.XLSX"))
	assert.False(t, IsExport("invoice.pdf"))
	assert.False(t, IsExport("README"))
}
