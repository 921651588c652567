package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogCSV = "Menu Item,Category,Ingredient,Unit,Qty Per Item,Reorder Point,Lead Time Days,Unit Cost\n" +
	"Pizza,Mains,Flour,kg,0.25,20,2,\"$1.10\"\n" +
	"Pizza,Mains,Mozzarella,kg,0.12,,,\n"

func TestParseCatalogSheet(t *testing.T) {
	rows, err := ParseCatalogSheet(records(t, catalogCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	flour := rows[0]
	assert.Equal(t, "Pizza", flour.MenuItemName)
	assert.Equal(t, "Mains", flour.Category)
	assert.Equal(t, "kg", flour.Unit)
	assert.Equal(t, 0.25, flour.QtyPerItem)
	require.NotNil(t, flour.ReorderPoint)
	assert.Equal(t, 20.0, *flour.ReorderPoint)
	require.NotNil(t, flour.LeadTimeDays)
	assert.Equal(t, 2, *flour.LeadTimeDays)
	require.NotNil(t, flour.UnitCost)
	assert.Equal(t, 1.1, *flour.UnitCost)

	assert.Nil(t, rows[1].ReorderPoint)
	assert.Nil(t, rows[1].LeadTimeDays)
}

func TestParseCatalogSheetRequiresColumns(t *testing.T) {
	_, err := ParseCatalogSheet([][]string{{"Menu Item", "Ingredient"}})
	assert.ErrorContains(t, err, "Qty Per Item")
}
