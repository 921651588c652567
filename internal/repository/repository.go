package repository

import (
	"context"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/google/uuid"
)

// Lookups by id return a *domain.NotFoundError when the row is missing.
// Find* and Get*Balance/Close/Config lookups return nil, nil instead.

type CatalogRepository interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error)
	FindMenuItemByName(ctx context.Context, name string) (*domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *domain.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error
	ListMenuItems(ctx context.Context, activeOnly bool) ([]domain.MenuItem, error)
	SearchMenuItems(ctx context.Context, term string, limit int) ([]domain.MenuItem, error)

	GetIngredient(ctx context.Context, id uuid.UUID) (*domain.Ingredient, error)
	FindIngredientByName(ctx context.Context, name string) (*domain.Ingredient, error)
	CreateIngredient(ctx context.Context, ing *domain.Ingredient) error
	UpdateIngredient(ctx context.Context, ing *domain.Ingredient) error
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)
	SearchIngredients(ctx context.Context, term string, limit int) ([]domain.Ingredient, error)

	UpsertBOMEntry(ctx context.Context, entry domain.BOMEntry) error
	DeleteBOMEntry(ctx context.Context, menuItemID, ingredientID uuid.UUID) (bool, error)
	ListBOM(ctx context.Context) ([]domain.BOMEntry, error)
	ListBOMByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]domain.BOMEntry, error)
	ListBOMByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]domain.BOMEntry, error)
}

type LedgerRepository interface {
	GetBalance(ctx context.Context, ingredientID uuid.UUID) (*domain.InventoryBalance, error)
	// LockBalance reads the balance row and holds it until the transaction ends.
	LockBalance(ctx context.Context, ingredientID uuid.UUID) (*domain.InventoryBalance, error)
	SaveBalance(ctx context.Context, balance domain.InventoryBalance) error
	ListBalances(ctx context.Context) ([]domain.InventoryBalance, error)

	InsertTxn(ctx context.Context, txn *domain.InventoryTxn) error
	ListTxns(ctx context.Context, ingredientID uuid.UUID, txnType *domain.TxnType) ([]domain.InventoryTxn, error)
	ListCloseTxns(ctx context.Context, date domain.Date) ([]domain.InventoryTxn, error)
	DeleteTxns(ctx context.Context, ids []uuid.UUID) error
	// ListDailyUsage sums |CONSUME| per ingredient and business date.
	ListDailyUsage(ctx context.Context) ([]domain.DailyUsage, error)
}

type SalesRepository interface {
	// ReplaceSalesLine overwrites qty and net sales for the key.
	ReplaceSalesLine(ctx context.Context, line domain.SalesLineItem) error
	// AccumulateSalesLine adds qty, order qty and net sales onto the key.
	AccumulateSalesLine(ctx context.Context, line domain.SalesLineItem) error
	ListSalesByDate(ctx context.Context, date domain.Date) ([]domain.SalesLineItem, error)
	ListSalesBetween(ctx context.Context, from, to domain.Date) ([]domain.SalesLineItem, error)
	ListSalesDates(ctx context.Context) ([]domain.Date, error)
	ListDailyRevenue(ctx context.Context) ([]domain.DailyRevenue, error)
	SalesStats(ctx context.Context) (domain.SalesStats, error)
	TopItems(ctx context.Context, from, to domain.Date, limit int) ([]domain.TopItem, error)
}

type OrderRepository interface {
	// UpsertOrder reports whether the order id was seen for the first time.
	UpsertOrder(ctx context.Context, order *domain.DailyOrder) (bool, error)
	FindOrder(ctx context.Context, orderID string) (*domain.DailyOrder, error)
	ListOrdersBetween(ctx context.Context, from, to domain.Date) ([]domain.DailyOrder, error)
	LatestOrderDate(ctx context.Context) (*domain.Date, error)
}

type CloseRepository interface {
	GetDailyClose(ctx context.Context, date domain.Date) (*domain.DailyClose, error)
	// InsertDailyClose fails with domain.ErrIntegrity when the date is already closed.
	InsertDailyClose(ctx context.Context, close domain.DailyClose) error
	DeleteDailyClose(ctx context.Context, date domain.Date) (bool, error)
	ListClosedDates(ctx context.Context) ([]domain.Date, error)
}

type ForecastRepository interface {
	ReplaceForecastItems(ctx context.Context, from, to domain.Date, rows []domain.ForecastItem) error
	ReplaceForecastIngredients(ctx context.Context, from, to domain.Date, rows []domain.ForecastIngredient) error
	ListForecastItems(ctx context.Context, from, to domain.Date) ([]domain.ForecastItem, error)
	ListForecastIngredients(ctx context.Context, from, to domain.Date) ([]domain.ForecastIngredient, error)
}

type ConfigRepository interface {
	GetConfig(ctx context.Context, key string) ([]byte, error)
	SetConfig(ctx context.Context, key string, value []byte) error
}

// Tx is the unit of work handed to WithTx callbacks.
type Tx interface {
	CatalogRepository
	LedgerRepository
	SalesRepository
	OrderRepository
	CloseRepository
	ForecastRepository
	ConfigRepository
}

// Store runs fn atomically: every write made through tx commits or none do.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
