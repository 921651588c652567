package domain

import "strings"

// TxnType is the kind of ledger entry.
type TxnType string

const (
	TxnReceive TxnType = "RECEIVE"
	TxnCount   TxnType = "COUNT"
	TxnConsume TxnType = "CONSUME"
)

// ParseTxnType returns the ledger type for a label (case-insensitive).
func ParseTxnType(label string) (TxnType, bool) {
	switch TxnType(strings.ToUpper(strings.TrimSpace(label))) {
	case TxnReceive:
		return TxnReceive, true
	case TxnCount:
		return TxnCount, true
	case TxnConsume:
		return TxnConsume, true
	}
	return "", false
}

// TxnSource records which operation produced a ledger entry.
type TxnSource string

const (
	SourceManual TxnSource = "manual"
	SourceClose  TxnSource = "close"
	SourceOrder  TxnSource = "order"
)

// Operation statuses carried in result payloads.
const (
	StatusSuccess          = "success"
	StatusSkipped          = "skipped"
	StatusNoData           = "no_data"
	StatusDuplicate        = "duplicate"
	StatusInsufficientData = "insufficient_data"
	StatusError            = "error"
)

// InventoryStatus classifies an ingredient's supply position.
type InventoryStatus string

const (
	InventoryUnknown     InventoryStatus = "unknown"
	InventoryCritical    InventoryStatus = "critical"
	InventoryReorderSoon InventoryStatus = "reorder_soon"
	InventoryOK          InventoryStatus = "ok"
)

// Revenue trend labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

const (
	DefaultCategory   = "Uncategorized"
	SalesSourceOrder  = "order"
	SalesSourceUpload = "upload"
)
