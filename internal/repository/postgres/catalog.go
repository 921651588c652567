package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/google/uuid"
)

const (
	menuItemColumns   = `id, name, category, active, created_at, updated_at`
	ingredientColumns = `id, name, unit, reorder_point, lead_time_days, unit_cost, created_at, updated_at`
)

func (r *txRepo) GetMenuItem(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := r.tx.GetContext(ctx, &item, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id)
	if isNoRows(err) {
		return nil, domain.NewNotFound("menu item", id)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting menu item: %w", err)
	}
	return &item, nil
}

func (r *txRepo) FindMenuItemByName(ctx context.Context, name string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := r.tx.GetContext(ctx, &item, `SELECT `+menuItemColumns+` FROM menu_items WHERE name = $1`, name)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding menu item: %w", err)
	}
	return &item, nil
}

func (r *txRepo) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	query := `
		INSERT INTO menu_items (id, name, category, active)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	if err := r.tx.QueryRowxContext(ctx, query, item.ID, item.Name, item.Category, item.Active).
		Scan(&item.CreatedAt, &item.UpdatedAt); err != nil {
		return classifyName("menu item", item.Name, fmt.Errorf("failed to create menu item: %w", err))
	}
	return nil
}

func (r *txRepo) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $2, category = $3, active = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.tx.QueryRowxContext(ctx, query, item.ID, item.Name, item.Category, item.Active).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	if isNoRows(err) {
		return domain.NewNotFound("menu item", item.ID)
	}
	if err != nil {
		return classifyName("menu item", item.Name, fmt.Errorf("failed to update menu item: %w", err))
	}
	return nil
}

func (r *txRepo) ListMenuItems(ctx context.Context, activeOnly bool) ([]domain.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE ($1 = FALSE OR active) ORDER BY name`
	var items []domain.MenuItem
	if err := r.tx.SelectContext(ctx, &items, query, activeOnly); err != nil {
		return nil, fmt.Errorf("error listing menu items: %w", err)
	}
	return items, nil
}

func (r *txRepo) SearchMenuItems(ctx context.Context, term string, limit int) ([]domain.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE name ILIKE '%' || $1 || '%' ORDER BY name LIMIT $2`
	var items []domain.MenuItem
	if err := r.tx.SelectContext(ctx, &items, query, term, limit); err != nil {
		return nil, fmt.Errorf("error searching menu items: %w", err)
	}
	return items, nil
}

func (r *txRepo) GetIngredient(ctx context.Context, id uuid.UUID) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	err := r.tx.GetContext(ctx, &ing, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1`, id)
	if isNoRows(err) {
		return nil, domain.NewNotFound("ingredient", id)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting ingredient: %w", err)
	}
	return &ing, nil
}

func (r *txRepo) FindIngredientByName(ctx context.Context, name string) (*domain.Ingredient, error) {
	var ing domain.Ingredient
	err := r.tx.GetContext(ctx, &ing, `SELECT `+ingredientColumns+` FROM ingredients WHERE name = $1`, name)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding ingredient: %w", err)
	}
	return &ing, nil
}

func (r *txRepo) CreateIngredient(ctx context.Context, ing *domain.Ingredient) error {
	query := `
		INSERT INTO ingredients (id, name, unit, reorder_point, lead_time_days, unit_cost)
		VALUES (:id, :name, :unit, :reorder_point, :lead_time_days, :unit_cost)
	`
	if _, err := r.tx.NamedExecContext(ctx, query, ing); err != nil {
		return classifyName("ingredient", ing.Name, fmt.Errorf("failed to create ingredient: %w", err))
	}
	return r.tx.QueryRowxContext(ctx, `SELECT created_at, updated_at FROM ingredients WHERE id = $1`, ing.ID).
		Scan(&ing.CreatedAt, &ing.UpdatedAt)
}

func (r *txRepo) UpdateIngredient(ctx context.Context, ing *domain.Ingredient) error {
	query := `
		UPDATE ingredients
		SET name = :name, unit = :unit, reorder_point = :reorder_point,
			lead_time_days = :lead_time_days, unit_cost = :unit_cost, updated_at = NOW()
		WHERE id = :id
	`
	res, err := r.tx.NamedExecContext(ctx, query, ing)
	if err != nil {
		return classifyName("ingredient", ing.Name, fmt.Errorf("failed to update ingredient: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFound("ingredient", ing.ID)
	}
	return r.tx.QueryRowxContext(ctx, `SELECT created_at, updated_at FROM ingredients WHERE id = $1`, ing.ID).
		Scan(&ing.CreatedAt, &ing.UpdatedAt)
}

func (r *txRepo) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	var out []domain.Ingredient
	if err := r.tx.SelectContext(ctx, &out, `SELECT `+ingredientColumns+` FROM ingredients ORDER BY name`); err != nil {
		return nil, fmt.Errorf("error listing ingredients: %w", err)
	}
	return out, nil
}

func (r *txRepo) SearchIngredients(ctx context.Context, term string, limit int) ([]domain.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE name ILIKE '%' || $1 || '%' ORDER BY name LIMIT $2`
	var out []domain.Ingredient
	if err := r.tx.SelectContext(ctx, &out, query, term, limit); err != nil {
		return nil, fmt.Errorf("error searching ingredients: %w", err)
	}
	return out, nil
}

func (r *txRepo) UpsertBOMEntry(ctx context.Context, entry domain.BOMEntry) error {
	query := `
		INSERT INTO bom (menu_item_id, ingredient_id, qty_per_item)
		VALUES (:menu_item_id, :ingredient_id, :qty_per_item)
		ON CONFLICT (menu_item_id, ingredient_id)
		DO UPDATE SET qty_per_item = EXCLUDED.qty_per_item
	`
	if _, err := r.tx.NamedExecContext(ctx, query, entry); err != nil {
		return classify(fmt.Errorf("failed to upsert bom entry: %w", err))
	}
	return nil
}

func (r *txRepo) DeleteBOMEntry(ctx context.Context, menuItemID, ingredientID uuid.UUID) (bool, error) {
	res, err := r.tx.ExecContext(ctx,
		`DELETE FROM bom WHERE menu_item_id = $1 AND ingredient_id = $2`, menuItemID, ingredientID)
	if err != nil {
		return false, fmt.Errorf("failed to delete bom entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const bomSelect = `SELECT menu_item_id, ingredient_id, qty_per_item FROM bom`

func (r *txRepo) ListBOM(ctx context.Context) ([]domain.BOMEntry, error) {
	var out []domain.BOMEntry
	if err := r.tx.SelectContext(ctx, &out, bomSelect+` ORDER BY menu_item_id, ingredient_id`); err != nil {
		return nil, fmt.Errorf("error listing bom: %w", err)
	}
	return out, nil
}

func (r *txRepo) ListBOMByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]domain.BOMEntry, error) {
	var out []domain.BOMEntry
	if err := r.tx.SelectContext(ctx, &out, bomSelect+` WHERE menu_item_id = $1 ORDER BY ingredient_id`, menuItemID); err != nil {
		return nil, fmt.Errorf("error listing recipe: %w", err)
	}
	return out, nil
}

func (r *txRepo) ListBOMByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]domain.BOMEntry, error) {
	var out []domain.BOMEntry
	if err := r.tx.SelectContext(ctx, &out, bomSelect+` WHERE ingredient_id = $1 ORDER BY menu_item_id`, ingredientID); err != nil {
		return nil, fmt.Errorf("error listing consumers: %w", err)
	}
	return out, nil
}
