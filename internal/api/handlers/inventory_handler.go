package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	ledger   *service.LedgerService
	snapshot *service.SnapshotService
}

func NewInventoryHandler(ledger *service.LedgerService, snapshot *service.SnapshotService) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, snapshot: snapshot}
}

type receiveRequest struct {
	Qty  float64 `json:"qty"`
	Note string  `json:"note"`
}

type countRequest struct {
	ActualQty float64 `json:"actual_qty"`
	Note      string  `json:"note"`
}

func (h *InventoryHandler) Receive(c *gin.Context) {
	id, ok := uuidParam(c, "ingredientId")
	if !ok {
		return
	}
	var req receiveRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.ledger.Receive(c.Request.Context(), id, req.Qty, req.Note)
	if err != nil {
		respondError(c, "receive inventory", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *InventoryHandler) Count(c *gin.Context) {
	id, ok := uuidParam(c, "ingredientId")
	if !ok {
		return
	}
	var req countRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.ledger.Count(c.Request.Context(), id, req.ActualQty, req.Note)
	if err != nil {
		respondError(c, "count inventory", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *InventoryHandler) GetBalance(c *gin.Context) {
	id, ok := uuidParam(c, "ingredientId")
	if !ok {
		return
	}
	balance, err := h.ledger.GetBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, "fetch balance", err)
		return
	}
	if balance == nil {
		balance = &domain.InventoryBalance{IngredientID: id}
	}
	c.JSON(http.StatusOK, balance)
}

func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	id, ok := uuidParam(c, "ingredientId")
	if !ok {
		return
	}
	var txnType *domain.TxnType
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		t, valid := domain.ParseTxnType(raw)
		if !valid {
			badRequest(c, "invalid type: expected RECEIVE, COUNT or CONSUME")
			return
		}
		txnType = &t
	}
	txns, err := h.ledger.ListTransactions(c.Request.Context(), id, txnType)
	if err != nil {
		respondError(c, "list transactions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredient_id": id, "transactions": txns})
}

func (h *InventoryHandler) GetSnapshot(c *gin.Context) {
	rows, err := h.snapshot.GetInventorySnapshot(c.Request.Context())
	if err != nil {
		respondError(c, "fetch inventory snapshot", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}
