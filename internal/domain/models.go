package domain

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem is a sellable item. Items are deactivated, never removed.
type MenuItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Ingredient is a stocked raw material measured in Unit.
type Ingredient struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Unit         string    `json:"unit" db:"unit"`
	ReorderPoint float64   `json:"reorder_point" db:"reorder_point"`
	LeadTimeDays int       `json:"lead_time_days" db:"lead_time_days"`
	UnitCost     float64   `json:"unit_cost" db:"unit_cost"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// BOMEntry links a menu item to one ingredient it consumes per unit sold.
type BOMEntry struct {
	MenuItemID   uuid.UUID `json:"menu_item_id" db:"menu_item_id"`
	IngredientID uuid.UUID `json:"ingredient_id" db:"ingredient_id"`
	QtyPerItem   float64   `json:"qty_per_item" db:"qty_per_item"`
}

// InventoryBalance is the running on-hand total for an ingredient.
type InventoryBalance struct {
	IngredientID uuid.UUID `json:"ingredient_id" db:"ingredient_id"`
	QtyOnHand    float64   `json:"qty_on_hand" db:"qty_on_hand"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// InventoryTxn is an immutable ledger entry.
type InventoryTxn struct {
	ID           uuid.UUID `json:"id" db:"id"`
	IngredientID uuid.UUID `json:"ingredient_id" db:"ingredient_id"`
	Type         TxnType   `json:"txn_type" db:"txn_type"`
	QtyDelta     float64   `json:"qty_delta" db:"qty_delta"`
	BusinessDate *Date     `json:"business_date" db:"business_date"`
	Source       TxnSource `json:"source" db:"source"`
	OrderID      *string   `json:"order_id,omitempty" db:"order_id"`
	Note         string    `json:"note" db:"note"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SalesLineItem aggregates one menu item's sales on one business date.
// OrderQty is the part of Qty already consumed from inventory when the
// orders were registered.
type SalesLineItem struct {
	BusinessDate Date      `json:"business_date" db:"business_date"`
	MenuItemID   uuid.UUID `json:"menu_item_id" db:"menu_item_id"`
	Qty          float64   `json:"qty" db:"qty"`
	OrderQty     float64   `json:"order_qty" db:"order_qty"`
	NetSales     float64   `json:"net_sales" db:"net_sales"`
	Source       string    `json:"source" db:"source"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DailyOrder is one POS order keyed by its external order id.
type DailyOrder struct {
	OrderID        string     `json:"order_id" db:"order_id"`
	BusinessDate   Date       `json:"business_date" db:"business_date"`
	OpenedAt       *time.Time `json:"opened_at" db:"opened_at"`
	ClosedAt       *time.Time `json:"closed_at" db:"closed_at"`
	NumGuests      int        `json:"num_guests" db:"num_guests"`
	ServerName     string     `json:"server_name" db:"server_name"`
	DiningArea     string     `json:"dining_area" db:"dining_area"`
	ServicePeriod  string     `json:"service_period" db:"service_period"`
	DiningOption   string     `json:"dining_option" db:"dining_option"`
	OrderSource    string     `json:"order_source" db:"order_source"`
	DiscountAmount float64    `json:"discount_amount" db:"discount_amount"`
	Subtotal       float64    `json:"subtotal" db:"subtotal"`
	Tax            float64    `json:"tax" db:"tax"`
	Tip            float64    `json:"tip" db:"tip"`
	Gratuity       float64    `json:"gratuity" db:"gratuity"`
	Total          float64    `json:"total" db:"total"`
	Voided         bool       `json:"voided" db:"voided"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type ForecastItem struct {
	ForecastDate  Date      `json:"forecast_date" db:"forecast_date"`
	MenuItemID    uuid.UUID `json:"menu_item_id" db:"menu_item_id"`
	PredictedQty  float64   `json:"predicted_qty" db:"predicted_qty"`
	ReferenceDate Date      `json:"reference_date" db:"reference_date"`
	GeneratedAt   time.Time `json:"generated_at" db:"generated_at"`
}

type ForecastIngredient struct {
	ForecastDate  Date      `json:"forecast_date" db:"forecast_date"`
	IngredientID  uuid.UUID `json:"ingredient_id" db:"ingredient_id"`
	PredictedQty  float64   `json:"predicted_qty" db:"predicted_qty"`
	ReferenceDate Date      `json:"reference_date" db:"reference_date"`
	GeneratedAt   time.Time `json:"generated_at" db:"generated_at"`
}

// DailyClose marks a business date as closed.
type DailyClose struct {
	BusinessDate Date      `json:"business_date" db:"business_date"`
	ClosedAt     time.Time `json:"closed_at" db:"closed_at"`
	ConsumeTxns  int       `json:"consume_txns" db:"consume_txns"`
}

// DailyUsage is the absolute quantity of an ingredient consumed on one date.
type DailyUsage struct {
	IngredientID uuid.UUID `db:"ingredient_id"`
	BusinessDate Date      `db:"business_date"`
	Qty          float64   `db:"qty"`
}

// DailyRevenue is the sum of net sales across items for one date.
type DailyRevenue struct {
	BusinessDate Date    `json:"business_date" db:"business_date"`
	Revenue      float64 `json:"revenue" db:"revenue"`
}
