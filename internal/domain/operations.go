package domain

import (
	"time"

	"github.com/google/uuid"
)

// Catalog

type MenuItemInput struct {
	ID       *uuid.UUID `json:"id"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Active   *bool      `json:"active"`
}

type IngredientInput struct {
	ID           *uuid.UUID `json:"id"`
	Name         string     `json:"name"`
	Unit         string     `json:"unit"`
	ReorderPoint *float64   `json:"reorder_point"`
	LeadTimeDays *int       `json:"lead_time_days"`
	UnitCost     *float64   `json:"unit_cost"`
}

type MenuItemResult struct {
	Status   string    `json:"status"`
	Action   string    `json:"action,omitempty"`
	MenuItem *MenuItem `json:"menu_item"`
}

type IngredientResult struct {
	Status     string      `json:"status"`
	Action     string      `json:"action"`
	Ingredient *Ingredient `json:"ingredient"`
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

type BOMResult struct {
	Status string    `json:"status"`
	Entry  *BOMEntry `json:"entry,omitempty"`
	// Deleted is set by delete operations.
	Deleted bool `json:"deleted,omitempty"`
}

type RecipeLine struct {
	IngredientID uuid.UUID `json:"ingredient_id" db:"ingredient_id"`
	Name         string    `json:"name" db:"name"`
	Unit         string    `json:"unit" db:"unit"`
	QtyPerItem   float64   `json:"qty_per_item" db:"qty_per_item"`
}

type Recipe struct {
	MenuItem    MenuItem     `json:"menu_item"`
	Ingredients []RecipeLine `json:"ingredients"`
}

type Consumer struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Active     bool      `json:"active"`
	QtyPerItem float64   `json:"qty_per_item"`
}

// Ledger

type ReceiveResult struct {
	Status       string    `json:"status"`
	IngredientID uuid.UUID `json:"ingredient_id"`
	NewBalance   float64   `json:"new_balance"`
}

type CountResult struct {
	Status       string    `json:"status"`
	IngredientID uuid.UUID `json:"ingredient_id"`
	Delta        float64   `json:"delta"`
	NewBalance   float64   `json:"new_balance"`
}

// Sales

type SalesRow struct {
	BusinessDate Date    `json:"business_date"`
	MenuItemName string  `json:"menu_item_name"`
	Category     string  `json:"category"`
	Qty          float64 `json:"qty"`
	NetSales     float64 `json:"net_sales"`
	Source       string  `json:"source"`
}

type IngestSalesResult struct {
	Status           string `json:"status"`
	RowsProcessed    int    `json:"rows_processed"`
	MenuItemsCreated int    `json:"menu_items_created"`
}

type IngestOrdersResult struct {
	Status        string `json:"status"`
	RowsProcessed int    `json:"rows_processed"`
}

type TopItem struct {
	MenuItemID uuid.UUID `json:"menu_item_id" db:"menu_item_id"`
	Name       string    `json:"name" db:"name"`
	Qty        float64   `json:"qty" db:"qty"`
	NetSales   float64   `json:"net_sales" db:"net_sales"`
}

// Orders

type OrderLine struct {
	MenuItemName string  `json:"menu_item_name"`
	Category     string  `json:"category"`
	Qty          float64 `json:"qty"`
	// Price is the line amount, not the unit price.
	Price float64 `json:"price"`
}

type OrderPayload struct {
	OrderID        string      `json:"order_id"`
	BusinessDate   *Date       `json:"business_date"`
	OpenedAt       *time.Time  `json:"opened_at"`
	ClosedAt       *time.Time  `json:"closed_at"`
	NumGuests      int         `json:"num_guests"`
	ServerName     string      `json:"server_name"`
	DiningArea     string      `json:"dining_area"`
	ServicePeriod  string      `json:"service_period"`
	DiningOption   string      `json:"dining_option"`
	OrderSource    string      `json:"order_source"`
	DiscountAmount float64     `json:"discount_amount"`
	Subtotal       float64     `json:"subtotal"`
	Tax            float64     `json:"tax"`
	Tip            float64     `json:"tip"`
	Gratuity       float64     `json:"gratuity"`
	Total          float64     `json:"total"`
	Items          []OrderLine `json:"items"`
}

type RegisterOrderResult struct {
	Status              string `json:"status"`
	OrderID             string `json:"order_id"`
	ItemsProcessed      int    `json:"items_processed"`
	MenuItemsCreated    int    `json:"menu_items_created"`
	IngredientsConsumed int    `json:"ingredients_consumed"`
	Message             string `json:"message,omitempty"`
}

// Close

type CloseResult struct {
	Status             string `json:"status"`
	BusinessDate       Date   `json:"business_date"`
	ConsumeTxnsCreated int    `json:"consume_txns_created"`
	Message            string `json:"message,omitempty"`
}

type ReverseResult struct {
	Status       string `json:"status"`
	BusinessDate Date   `json:"business_date"`
	TxnsReversed int    `json:"txns_reversed"`
}

type BulkCloseResult struct {
	Status           string `json:"status"`
	DatesProcessed   int    `json:"dates_processed"`
	TotalConsumeTxns int    `json:"total_consume_txns"`
	Dates            []Date `json:"dates"`
}

// Forecast

type ForecastResult struct {
	Status              string `json:"status"`
	ReferenceDate       Date   `json:"reference_date"`
	DaysForecasted      int    `json:"days_forecasted"`
	ItemForecasts       int    `json:"item_forecasts"`
	IngredientForecasts int    `json:"ingredient_forecasts"`
}

type ForecastRow struct {
	ForecastDate     Date      `json:"forecast_date"`
	IngredientID     uuid.UUID `json:"ingredient_id"`
	Name             string    `json:"name"`
	Unit             string    `json:"unit"`
	QtyNeeded        float64   `json:"qty_needed"`
	CumulativeNeeded float64   `json:"cumulative_needed"`
	QtyOnHand        float64   `json:"qty_on_hand"`
	Shortfall        float64   `json:"shortfall"`
}

type RevenuePrediction struct {
	Date             Date    `json:"date"`
	PredictedRevenue float64 `json:"predicted_revenue"`
}

type RevenueForecast struct {
	Status         string              `json:"status"`
	Message        string              `json:"message,omitempty"`
	HistoricalDays int                 `json:"historical_days"`
	Slope          float64             `json:"slope"`
	Intercept      float64             `json:"intercept"`
	Trend          string              `json:"trend,omitempty"`
	Predictions    []RevenuePrediction `json:"predictions"`
	Summary        string              `json:"summary,omitempty"`
}

// Snapshot

type SnapshotRow struct {
	IngredientID  uuid.UUID       `json:"ingredient_id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	QtyOnHand     float64         `json:"qty_on_hand"`
	ReorderPoint  float64         `json:"reorder_point"`
	LeadTimeDays  int             `json:"lead_time_days"`
	AvgDailyUsage float64         `json:"avg_daily_usage"`
	DaysOfSupply  *float64        `json:"days_of_supply"`
	Status        InventoryStatus `json:"status"`
}

// CatalogRow is one line of a recipe sheet: a menu item, one of its
// ingredients and how much of it a single sale uses.
type CatalogRow struct {
	MenuItemName string   `json:"menu_item_name"`
	Category     string   `json:"category"`
	Ingredient   string   `json:"ingredient"`
	Unit         string   `json:"unit"`
	QtyPerItem   float64  `json:"qty_per_item"`
	ReorderPoint *float64 `json:"reorder_point,omitempty"`
	LeadTimeDays *int     `json:"lead_time_days,omitempty"`
	UnitCost     *float64 `json:"unit_cost,omitempty"`
}

type CatalogImportResult struct {
	Status             string `json:"status"`
	MenuItemsCreated   int    `json:"menu_items_created"`
	IngredientsCreated int    `json:"ingredients_created"`
	BOMEntries         int    `json:"bom_entries"`
}
