package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/google/uuid"
)

func (t *tx) GetMenuItem(_ context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	item, ok := t.state.menuItems[id]
	if !ok {
		return nil, domain.NewNotFound("menu item", id)
	}
	return &item, nil
}

func (t *tx) FindMenuItemByName(_ context.Context, name string) (*domain.MenuItem, error) {
	for _, item := range t.state.menuItems {
		if item.Name == name {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

func (t *tx) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	if existing, _ := t.FindMenuItemByName(ctx, item.Name); existing != nil {
		return domain.NewValidationError("name", "menu item %q already exists", item.Name)
	}
	now := t.now()
	item.CreatedAt, item.UpdatedAt = now, now
	t.state.menuItems[item.ID] = *item
	return nil
}

func (t *tx) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	current, ok := t.state.menuItems[item.ID]
	if !ok {
		return domain.NewNotFound("menu item", item.ID)
	}
	if existing, _ := t.FindMenuItemByName(ctx, item.Name); existing != nil && existing.ID != item.ID {
		return domain.NewValidationError("name", "menu item %q already exists", item.Name)
	}
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = t.now()
	t.state.menuItems[item.ID] = *item
	return nil
}

func (t *tx) ListMenuItems(_ context.Context, activeOnly bool) ([]domain.MenuItem, error) {
	items := make([]domain.MenuItem, 0, len(t.state.menuItems))
	for _, item := range t.state.menuItems {
		if activeOnly && !item.Active {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (t *tx) SearchMenuItems(ctx context.Context, term string, limit int) ([]domain.MenuItem, error) {
	all, _ := t.ListMenuItems(ctx, false)
	needle := strings.ToLower(term)
	var out []domain.MenuItem
	for _, item := range all {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			out = append(out, item)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (t *tx) GetIngredient(_ context.Context, id uuid.UUID) (*domain.Ingredient, error) {
	ing, ok := t.state.ingredients[id]
	if !ok {
		return nil, domain.NewNotFound("ingredient", id)
	}
	return &ing, nil
}

func (t *tx) FindIngredientByName(_ context.Context, name string) (*domain.Ingredient, error) {
	for _, ing := range t.state.ingredients {
		if ing.Name == name {
			found := ing
			return &found, nil
		}
	}
	return nil, nil
}

func (t *tx) CreateIngredient(ctx context.Context, ing *domain.Ingredient) error {
	if existing, _ := t.FindIngredientByName(ctx, ing.Name); existing != nil {
		return domain.NewValidationError("name", "ingredient %q already exists", ing.Name)
	}
	now := t.now()
	ing.CreatedAt, ing.UpdatedAt = now, now
	t.state.ingredients[ing.ID] = *ing
	return nil
}

func (t *tx) UpdateIngredient(ctx context.Context, ing *domain.Ingredient) error {
	current, ok := t.state.ingredients[ing.ID]
	if !ok {
		return domain.NewNotFound("ingredient", ing.ID)
	}
	if existing, _ := t.FindIngredientByName(ctx, ing.Name); existing != nil && existing.ID != ing.ID {
		return domain.NewValidationError("name", "ingredient %q already exists", ing.Name)
	}
	ing.CreatedAt = current.CreatedAt
	ing.UpdatedAt = t.now()
	t.state.ingredients[ing.ID] = *ing
	return nil
}

func (t *tx) ListIngredients(_ context.Context) ([]domain.Ingredient, error) {
	out := make([]domain.Ingredient, 0, len(t.state.ingredients))
	for _, ing := range t.state.ingredients {
		out = append(out, ing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *tx) SearchIngredients(ctx context.Context, term string, limit int) ([]domain.Ingredient, error) {
	all, _ := t.ListIngredients(ctx)
	needle := strings.ToLower(term)
	var out []domain.Ingredient
	for _, ing := range all {
		if strings.Contains(strings.ToLower(ing.Name), needle) {
			out = append(out, ing)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (t *tx) UpsertBOMEntry(_ context.Context, entry domain.BOMEntry) error {
	if _, ok := t.state.menuItems[entry.MenuItemID]; !ok {
		return domain.NewNotFound("menu item", entry.MenuItemID)
	}
	if _, ok := t.state.ingredients[entry.IngredientID]; !ok {
		return domain.NewNotFound("ingredient", entry.IngredientID)
	}
	t.state.bom[bomKey{entry.MenuItemID, entry.IngredientID}] = entry
	return nil
}

func (t *tx) DeleteBOMEntry(_ context.Context, menuItemID, ingredientID uuid.UUID) (bool, error) {
	key := bomKey{menuItemID, ingredientID}
	if _, ok := t.state.bom[key]; !ok {
		return false, nil
	}
	delete(t.state.bom, key)
	return true, nil
}

func (t *tx) ListBOM(_ context.Context) ([]domain.BOMEntry, error) {
	return t.filterBOM(func(domain.BOMEntry) bool { return true }), nil
}

func (t *tx) ListBOMByMenuItem(_ context.Context, menuItemID uuid.UUID) ([]domain.BOMEntry, error) {
	return t.filterBOM(func(e domain.BOMEntry) bool { return e.MenuItemID == menuItemID }), nil
}

func (t *tx) ListBOMByIngredient(_ context.Context, ingredientID uuid.UUID) ([]domain.BOMEntry, error) {
	return t.filterBOM(func(e domain.BOMEntry) bool { return e.IngredientID == ingredientID }), nil
}

func (t *tx) filterBOM(keep func(domain.BOMEntry) bool) []domain.BOMEntry {
	var out []domain.BOMEntry
	for _, e := range t.state.bom {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MenuItemID != out[j].MenuItemID {
			return out[i].MenuItemID.String() < out[j].MenuItemID.String()
		}
		return out[i].IngredientID.String() < out[j].IngredientID.String()
	})
	return out
}
