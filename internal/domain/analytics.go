package domain

import "time"

type PeriodBreakdown struct {
	Period  string  `json:"period"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type OptionBreakdown struct {
	Option  string  `json:"option"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type ServerBreakdown struct {
	Server  string  `json:"server"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
	Tips    float64 `json:"tips"`
}

type HourBreakdown struct {
	Hour    int     `json:"hour"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// DailyAnalytics summarizes the non-voided orders of one business date.
type DailyAnalytics struct {
	Status          string            `json:"status"`
	BusinessDate    Date              `json:"business_date"`
	TotalOrders     int               `json:"total_orders"`
	TotalRevenue    float64           `json:"total_revenue"`
	TotalGuests     int               `json:"total_guests"`
	TotalTips       float64           `json:"total_tips"`
	AvgOrderValue   float64           `json:"avg_order_value"`
	ByServicePeriod []PeriodBreakdown `json:"by_service_period"`
	ByDiningOption  []OptionBreakdown `json:"by_dining_option"`
	ByServer        []ServerBreakdown `json:"by_server"`
	ByHour          []HourBreakdown   `json:"by_hour"`
}

type RevenueTrendPoint struct {
	BusinessDate  Date    `json:"business_date"`
	Orders        int     `json:"orders"`
	Revenue       float64 `json:"revenue"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// OnboardingState tracks first-run history import.
type OnboardingState struct {
	SetupComplete       bool       `json:"setup_complete"`
	HistoryUploaded     bool       `json:"history_uploaded"`
	HistoryStartDate    *Date      `json:"history_start_date"`
	HistoryEndDate      *Date      `json:"history_end_date"`
	HistoryRowsIngested int        `json:"history_rows_ingested"`
	BulkCloseComplete   bool       `json:"bulk_close_complete"`
	CompletedAt         *time.Time `json:"completed_at"`
}

// SalesStats describes the imported sales history.
type SalesStats struct {
	Rows  int   `db:"row_count"`
	First *Date `db:"first_date"`
	Last  *Date `db:"last_date"`
}
