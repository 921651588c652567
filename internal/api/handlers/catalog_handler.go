package handlers

import (
	"net/http"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	service *service.CatalogService
}

func NewCatalogHandler(service *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) ListMenuItems(c *gin.Context) {
	items, err := h.service.ListMenuItems(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondError(c, "list menu items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CatalogHandler) SearchMenuItems(c *gin.Context) {
	items, err := h.service.SearchMenuItems(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, "search menu items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CatalogHandler) UpsertMenuItem(c *gin.Context) {
	var in domain.MenuItemInput
	if !bindJSON(c, &in) {
		return
	}
	result, err := h.service.UpsertMenuItem(c.Request.Context(), in)
	if err != nil {
		respondError(c, "save menu item", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) DeactivateMenuItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	result, err := h.service.DeactivateMenuItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deactivate menu item", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) GetRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	recipe, err := h.service.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, "fetch recipe", err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	items, err := h.service.ListIngredients(c.Request.Context())
	if err != nil {
		respondError(c, "list ingredients", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CatalogHandler) SearchIngredients(c *gin.Context) {
	items, err := h.service.SearchIngredients(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, "search ingredients", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CatalogHandler) UpsertIngredient(c *gin.Context) {
	var in domain.IngredientInput
	if !bindJSON(c, &in) {
		return
	}
	result, err := h.service.UpsertIngredient(c.Request.Context(), in)
	if err != nil {
		respondError(c, "save ingredient", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) GetConsumers(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	consumers, err := h.service.GetConsumersOf(c.Request.Context(), id)
	if err != nil {
		respondError(c, "fetch consumers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredient_id": id, "consumers": consumers})
}

type bomRequest struct {
	MenuItemID   uuid.UUID `json:"menu_item_id" binding:"required"`
	IngredientID uuid.UUID `json:"ingredient_id" binding:"required"`
	QtyPerItem   float64   `json:"qty_per_item"`
}

func (h *CatalogHandler) UpsertBOMEntry(c *gin.Context) {
	var req bomRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.UpsertBOMEntry(c.Request.Context(), req.MenuItemID, req.IngredientID, req.QtyPerItem)
	if err != nil {
		respondError(c, "save bom entry", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) DeleteBOMEntry(c *gin.Context) {
	menuItemID, ok := uuidParam(c, "menuItemId")
	if !ok {
		return
	}
	ingredientID, ok := uuidParam(c, "ingredientId")
	if !ok {
		return
	}
	result, err := h.service.DeleteBOMEntry(c.Request.Context(), menuItemID, ingredientID)
	if err != nil {
		respondError(c, "delete bom entry", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type catalogImportRequest struct {
	Rows []domain.CatalogRow `json:"rows"`
}

func (h *CatalogHandler) ImportCatalog(c *gin.Context) {
	var req catalogImportRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.ImportCatalog(c.Request.Context(), req.Rows)
	if err != nil {
		respondError(c, "import catalog", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
