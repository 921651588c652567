package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/andresuchdata/kitchenops/internal/cache"
	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/repository"
	"github.com/google/uuid"
)

const searchLimit = 20

// CatalogService maintains menu items, ingredients and the recipe graph.
// Snapshot and forecast reads depend on all three, so every write drops the
// inventory cache.
type CatalogService struct {
	store repository.Store
	cache cache.InventoryCache
}

func NewCatalogService(store repository.Store, cacheImpl cache.InventoryCache) *CatalogService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopInventoryCache()
	}
	return &CatalogService{store: store, cache: cacheImpl}
}

func (s *CatalogService) UpsertMenuItem(ctx context.Context, in domain.MenuItemInput) (*domain.MenuItemResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}

	result := &domain.MenuItemResult{Status: domain.StatusSuccess}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		existing, err := tx.FindMenuItemByName(ctx, name)
		if err != nil {
			return err
		}

		if in.ID == nil {
			if existing != nil {
				return domain.NewValidationError("name", "menu item %q already exists", name)
			}
			item := &domain.MenuItem{
				ID:       uuid.New(),
				Name:     name,
				Category: categoryOrDefault(in.Category),
				Active:   in.Active == nil || *in.Active,
			}
			if err := tx.CreateMenuItem(ctx, item); err != nil {
				return err
			}
			result.Action, result.MenuItem = domain.ActionCreated, item
			return nil
		}

		item, err := tx.GetMenuItem(ctx, *in.ID)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != item.ID {
			return domain.NewValidationError("name", "menu item %q already exists", name)
		}
		item.Name = name
		if c := strings.TrimSpace(in.Category); c != "" {
			item.Category = c
		}
		if in.Active != nil {
			item.Active = *in.Active
		}
		if err := tx.UpdateMenuItem(ctx, item); err != nil {
			return err
		}
		result.Action, result.MenuItem = domain.ActionUpdated, item
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateInventory(ctx, s.cache)
	return result, nil
}

// DeactivateMenuItem hides an item from forecasting. Its history stays.
func (s *CatalogService) DeactivateMenuItem(ctx context.Context, id uuid.UUID) (*domain.MenuItemResult, error) {
	result := &domain.MenuItemResult{Status: domain.StatusSuccess, Action: domain.ActionUpdated}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		item, err := tx.GetMenuItem(ctx, id)
		if err != nil {
			return err
		}
		item.Active = false
		if err := tx.UpdateMenuItem(ctx, item); err != nil {
			return err
		}
		result.MenuItem = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateInventory(ctx, s.cache)
	return result, nil
}

func (s *CatalogService) ListMenuItems(ctx context.Context, activeOnly bool) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		items, err = tx.ListMenuItems(ctx, activeOnly)
		return err
	})
	if items == nil {
		items = make([]domain.MenuItem, 0)
	}
	return items, err
}

func (s *CatalogService) SearchMenuItems(ctx context.Context, term string) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		items, err = tx.SearchMenuItems(ctx, strings.TrimSpace(term), searchLimit)
		return err
	})
	if items == nil {
		items = make([]domain.MenuItem, 0)
	}
	return items, err
}

func (s *CatalogService) UpsertIngredient(ctx context.Context, in domain.IngredientInput) (*domain.IngredientResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}
	if in.ReorderPoint != nil && !(*in.ReorderPoint >= 0) {
		return nil, domain.InvalidQuantity("reorder_point", "reorder point must not be negative")
	}
	if in.LeadTimeDays != nil && *in.LeadTimeDays < 0 {
		return nil, domain.InvalidQuantity("lead_time_days", "lead time must not be negative")
	}
	if in.UnitCost != nil && (!(*in.UnitCost >= 0) || math.IsInf(*in.UnitCost, 0)) {
		return nil, domain.InvalidQuantity("unit_cost", "unit cost must not be negative")
	}
	unit := strings.TrimSpace(in.Unit)

	result := &domain.IngredientResult{Status: domain.StatusSuccess}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		existing, err := tx.FindIngredientByName(ctx, name)
		if err != nil {
			return err
		}

		if in.ID == nil {
			if existing != nil {
				return domain.NewValidationError("name", "ingredient %q already exists", name)
			}
			if unit == "" {
				return domain.NewValidationError("unit", "unit is required")
			}
			ing := &domain.Ingredient{ID: uuid.New(), Name: name, Unit: unit}
			applyIngredientInput(ing, in)
			if err := tx.CreateIngredient(ctx, ing); err != nil {
				return err
			}
			result.Action, result.Ingredient = domain.ActionCreated, ing
			return nil
		}

		ing, err := tx.GetIngredient(ctx, *in.ID)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != ing.ID {
			return domain.NewValidationError("name", "ingredient %q already exists", name)
		}
		ing.Name = name
		if unit != "" {
			ing.Unit = unit
		}
		applyIngredientInput(ing, in)
		if err := tx.UpdateIngredient(ctx, ing); err != nil {
			return err
		}
		result.Action, result.Ingredient = domain.ActionUpdated, ing
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateInventory(ctx, s.cache)
	return result, nil
}

func applyIngredientInput(ing *domain.Ingredient, in domain.IngredientInput) {
	if in.ReorderPoint != nil {
		ing.ReorderPoint = *in.ReorderPoint
	}
	if in.LeadTimeDays != nil {
		ing.LeadTimeDays = *in.LeadTimeDays
	}
	if in.UnitCost != nil {
		ing.UnitCost = *in.UnitCost
	}
}

func (s *CatalogService) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	var ings []domain.Ingredient
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		ings, err = tx.ListIngredients(ctx)
		return err
	})
	if ings == nil {
		ings = make([]domain.Ingredient, 0)
	}
	return ings, err
}

func (s *CatalogService) SearchIngredients(ctx context.Context, term string) ([]domain.Ingredient, error) {
	var ings []domain.Ingredient
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		ings, err = tx.SearchIngredients(ctx, strings.TrimSpace(term), searchLimit)
		return err
	})
	if ings == nil {
		ings = make([]domain.Ingredient, 0)
	}
	return ings, err
}

// UpsertBOMEntry sets how much of an ingredient one unit of a menu item uses.
func (s *CatalogService) UpsertBOMEntry(ctx context.Context, menuItemID, ingredientID uuid.UUID, qtyPerItem float64) (*domain.BOMResult, error) {
	if !domain.PositiveQty(qtyPerItem) {
		return nil, domain.InvalidQuantity("qty_per_item", "qty_per_item must be at least 0.0001")
	}

	entry := domain.BOMEntry{MenuItemID: menuItemID, IngredientID: ingredientID, QtyPerItem: qtyPerItem}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetMenuItem(ctx, menuItemID); err != nil {
			return err
		}
		if _, err := tx.GetIngredient(ctx, ingredientID); err != nil {
			return err
		}
		return tx.UpsertBOMEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	invalidateInventory(ctx, s.cache)
	return &domain.BOMResult{Status: domain.StatusSuccess, Entry: &entry}, nil
}

func (s *CatalogService) DeleteBOMEntry(ctx context.Context, menuItemID, ingredientID uuid.UUID) (*domain.BOMResult, error) {
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		deleted, err := tx.DeleteBOMEntry(ctx, menuItemID, ingredientID)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.NewNotFound("bom entry", menuItemID.String()+"/"+ingredientID.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateInventory(ctx, s.cache)
	return &domain.BOMResult{Status: domain.StatusSuccess, Deleted: true}, nil
}

// GetRecipe lists the ingredients one unit of the menu item consumes.
func (s *CatalogService) GetRecipe(ctx context.Context, menuItemID uuid.UUID) (*domain.Recipe, error) {
	var recipe *domain.Recipe
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		item, err := tx.GetMenuItem(ctx, menuItemID)
		if err != nil {
			return err
		}
		entries, err := tx.ListBOMByMenuItem(ctx, menuItemID)
		if err != nil {
			return err
		}
		lines := make([]domain.RecipeLine, 0, len(entries))
		for _, e := range entries {
			ing, err := tx.GetIngredient(ctx, e.IngredientID)
			if err != nil {
				return err
			}
			lines = append(lines, domain.RecipeLine{
				IngredientID: ing.ID,
				Name:         ing.Name,
				Unit:         ing.Unit,
				QtyPerItem:   e.QtyPerItem,
			})
		}
		sort.Slice(lines, func(i, j int) bool { return lines[i].Name < lines[j].Name })
		recipe = &domain.Recipe{MenuItem: *item, Ingredients: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// GetConsumersOf lists the menu items whose recipe uses the ingredient.
func (s *CatalogService) GetConsumersOf(ctx context.Context, ingredientID uuid.UUID) ([]domain.Consumer, error) {
	consumers := make([]domain.Consumer, 0)
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetIngredient(ctx, ingredientID); err != nil {
			return err
		}
		entries, err := tx.ListBOMByIngredient(ctx, ingredientID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			item, err := tx.GetMenuItem(ctx, e.MenuItemID)
			if err != nil {
				return err
			}
			consumers = append(consumers, domain.Consumer{
				MenuItemID: item.ID,
				Name:       item.Name,
				Active:     item.Active,
				QtyPerItem: e.QtyPerItem,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(consumers, func(i, j int) bool { return consumers[i].Name < consumers[j].Name })
	return consumers, nil
}

func categoryOrDefault(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	return domain.DefaultCategory
}

// resolveMenuItem returns the menu item with the given name, creating an
// active one when none exists.
func resolveMenuItem(ctx context.Context, tx repository.Tx, name, category string) (*domain.MenuItem, bool, error) {
	item, err := tx.FindMenuItemByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if item != nil {
		return item, false, nil
	}
	item = &domain.MenuItem{
		ID:       uuid.New(),
		Name:     name,
		Category: categoryOrDefault(category),
		Active:   true,
	}
	if err := tx.CreateMenuItem(ctx, item); err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// ImportCatalog applies a recipe sheet in one transaction. Unknown menu items
// and ingredients are created; existing ingredients get the sheet's policy
// columns when present.
func (s *CatalogService) ImportCatalog(ctx context.Context, rows []domain.CatalogRow) (*domain.CatalogImportResult, error) {
	for i, row := range rows {
		if strings.TrimSpace(row.MenuItemName) == "" || strings.TrimSpace(row.Ingredient) == "" {
			return nil, domain.NewValidationError("rows", "row %d: menu item and ingredient are required", i+1)
		}
		if !domain.PositiveQty(row.QtyPerItem) {
			return nil, domain.InvalidQuantity("qty_per_item", "row %d: qty per item must be at least 0.0001", i+1)
		}
		if (row.ReorderPoint != nil && *row.ReorderPoint < 0) || (row.LeadTimeDays != nil && *row.LeadTimeDays < 0) || (row.UnitCost != nil && *row.UnitCost < 0) {
			return nil, domain.InvalidQuantity("rows", "row %d: policy values must not be negative", i+1)
		}
	}

	result := &domain.CatalogImportResult{Status: domain.StatusSuccess}
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		for i, row := range rows {
			item, created, err := resolveMenuItem(ctx, tx, strings.TrimSpace(row.MenuItemName), row.Category)
			if err != nil {
				return err
			}
			if created {
				result.MenuItemsCreated++
			}

			name := strings.TrimSpace(row.Ingredient)
			ing, err := tx.FindIngredientByName(ctx, name)
			if err != nil {
				return err
			}
			in := domain.IngredientInput{Name: name, Unit: row.Unit, ReorderPoint: row.ReorderPoint, LeadTimeDays: row.LeadTimeDays, UnitCost: row.UnitCost}
			if ing == nil {
				unit := strings.TrimSpace(row.Unit)
				if unit == "" {
					return domain.NewValidationError("unit", "row %d: unit is required for new ingredient %q", i+1, name)
				}
				ing = &domain.Ingredient{ID: uuid.New(), Name: name, Unit: unit}
				applyIngredientInput(ing, in)
				if err := tx.CreateIngredient(ctx, ing); err != nil {
					return err
				}
				result.IngredientsCreated++
			} else if row.ReorderPoint != nil || row.LeadTimeDays != nil || row.UnitCost != nil {
				applyIngredientInput(ing, in)
				if err := tx.UpdateIngredient(ctx, ing); err != nil {
					return err
				}
			}

			entry := domain.BOMEntry{MenuItemID: item.ID, IngredientID: ing.ID, QtyPerItem: row.QtyPerItem}
			if err := tx.UpsertBOMEntry(ctx, entry); err != nil {
				return err
			}
			result.BOMEntries++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateInventory(ctx, s.cache)
	return result, nil
}
