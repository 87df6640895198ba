// Package store loads kitchen records from the database and maps them onto the
// costing types. Every record passes through the costing normalisation step on
// the way out so the engine only sees complete inputs.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"brigade/internal/costing"
	applog "brigade/internal/log"
	"brigade/internal/pricelist"
	"brigade/models"
)

var (
	// ErrNotFound reports a missing recipe, dish or ingredient.
	ErrNotFound = errors.New("store: record not found")
	// ErrNoDatabase reports a Store without a database handle.
	ErrNoDatabase = errors.New("store: database handle is nil")
)

// Store reads and writes kitchen records.
type Store struct {
	db *gorm.DB
}

// New wraps a gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrNoDatabase
	}
	return s.db.WithContext(ctx), nil
}

func translate(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return fmt.Errorf("load %s %d: %w", what, id, err)
}

// ToIngredient maps a persisted ingredient onto the costing type.
func ToIngredient(m models.Ingredient) costing.Ingredient {
	return costing.NormalizeIngredient(costing.Ingredient{
		ID:                  m.ID,
		Name:                m.Name,
		BaseUnit:            m.BaseUnit,
		CostPerUnit:         m.CostPerUnit,
		CostPerUnitInclTrim: m.CostPerUnitInclTrim,
		WastePercent:        m.TrimPercent,
		YieldPercent:        m.YieldPercent,
		Category:            m.Category,
		Supplier:            m.Supplier,
	})
}

func toLine(ctx context.Context, owner string, ownerID, ingredientID uint, ingredient *models.Ingredient, quantity float64, unit string) (costing.IngredientLine, bool) {
	if ingredient == nil {
		applog.Warn(ctx, "ingredient line references a missing ingredient", owner, ownerID, "ingredient_id", ingredientID)
		return costing.IngredientLine{}, false
	}
	return costing.NormalizeLine(costing.IngredientLine{
		Ingredient: ToIngredient(*ingredient),
		Quantity:   quantity,
		Unit:       unit,
	}), true
}

func recipeLines(ctx context.Context, rows []models.RecipeIngredient) []costing.IngredientLine {
	lines := make([]costing.IngredientLine, 0, len(rows))
	for _, row := range rows {
		if line, ok := toLine(ctx, "recipe_id", row.RecipeID, row.IngredientID, row.Ingredient, row.Quantity, row.Unit); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// ToRecipe maps a persisted recipe, including any preloaded lines.
func ToRecipe(ctx context.Context, m models.Recipe) costing.Recipe {
	return costing.NormalizeRecipe(costing.Recipe{
		ID:           m.ID,
		Name:         m.Name,
		Yield:        m.Yield,
		YieldUnit:    m.YieldUnit,
		Instructions: m.Instructions,
		Lines:        recipeLines(ctx, m.Ingredients),
	})
}

// Ingredients lists every ingredient ordered by name.
func (s *Store) Ingredients(ctx context.Context) ([]costing.Ingredient, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []models.Ingredient
	if err := conn.Order("name asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	out := make([]costing.Ingredient, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToIngredient(row))
	}
	return out, nil
}

// Recipe loads one recipe with its ingredient lines.
func (s *Store) Recipe(ctx context.Context, id uint) (costing.Recipe, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return costing.Recipe{}, err
	}
	var row models.Recipe
	if err := conn.Preload("Ingredients.Ingredient").First(&row, id).Error; err != nil {
		return costing.Recipe{}, translate(err, "recipe", id)
	}
	return ToRecipe(ctx, row), nil
}

// Recipes loads recipe headers without lines. Unknown ids are skipped; the
// result keeps the order of ids. With no ids every recipe is returned by name.
func (s *Store) Recipes(ctx context.Context, ids []uint) ([]costing.Recipe, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []models.Recipe
	query := conn.Order("name asc")
	if len(ids) > 0 {
		query = conn.Where("id IN ?", ids)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	if len(ids) == 0 {
		out := make([]costing.Recipe, 0, len(rows))
		for _, row := range rows {
			out = append(out, ToRecipe(ctx, row))
		}
		return out, nil
	}

	byID := make(map[uint]models.Recipe, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	out := make([]costing.Recipe, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			out = append(out, ToRecipe(ctx, row))
			delete(byID, id)
		}
	}
	return out, nil
}

// RecipeLines loads the ingredient lines of one recipe.
func (s *Store) RecipeLines(ctx context.Context, recipeID uint) ([]costing.IngredientLine, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var exists int64
	if err := conn.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&exists).Error; err != nil {
		return nil, translate(err, "recipe", recipeID)
	}
	if exists == 0 {
		return nil, translate(gorm.ErrRecordNotFound, "recipe", recipeID)
	}
	var rows []models.RecipeIngredient
	if err := conn.Preload("Ingredient").Where("recipe_id = ?", recipeID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, translate(err, "recipe lines", recipeID)
	}
	return recipeLines(ctx, rows), nil
}

// BatchRecipeLines loads the lines of many recipes in one query. Every existing
// recipe has an entry, possibly empty; unknown ids are absent.
func (s *Store) BatchRecipeLines(ctx context.Context, recipeIDs []uint) (map[uint][]costing.IngredientLine, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uint][]costing.IngredientLine, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}

	var existing []uint
	if err := conn.Model(&models.Recipe{}).Where("id IN ?", recipeIDs).Pluck("id", &existing).Error; err != nil {
		return nil, fmt.Errorf("batch recipes: %w", err)
	}
	for _, id := range existing {
		out[id] = []costing.IngredientLine{}
	}

	var rows []models.RecipeIngredient
	if err := conn.Preload("Ingredient").Where("recipe_id IN ?", recipeIDs).Order("recipe_id asc, id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("batch recipe lines: %w", err)
	}
	for _, row := range rows {
		if _, ok := out[row.RecipeID]; !ok {
			continue
		}
		if line, ok := toLine(ctx, "recipe_id", row.RecipeID, row.IngredientID, row.Ingredient, row.Quantity, row.Unit); ok {
			out[row.RecipeID] = append(out[row.RecipeID], line)
		}
	}
	return out, nil
}

// Dish loads a dish with its nested recipes and standalone ingredients.
func (s *Store) Dish(ctx context.Context, id uint) (costing.Dish, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return costing.Dish{}, err
	}
	var row models.Dish
	err = conn.
		Preload("Recipes.Recipe.Ingredients.Ingredient").
		Preload("Ingredients.Ingredient").
		First(&row, id).Error
	if err != nil {
		return costing.Dish{}, translate(err, "dish", id)
	}

	dish := costing.Dish{
		ID:           row.ID,
		Name:         row.Name,
		SellingPrice: row.SellingPrice,
		Portions:     row.Portions,
	}
	for _, link := range row.Recipes {
		if link.Recipe == nil {
			applog.Warn(ctx, "dish references a missing recipe", "dish_id", row.ID, "recipe_id", link.RecipeID)
			continue
		}
		dish.Recipes = append(dish.Recipes, costing.DishRecipe{
			Recipe:   ToRecipe(ctx, *link.Recipe),
			Quantity: link.Quantity,
		})
	}
	for _, item := range row.Ingredients {
		if line, ok := toLine(ctx, "dish_id", row.ID, item.IngredientID, item.Ingredient, item.Quantity, item.Unit); ok {
			dish.Ingredients = append(dish.Ingredients, line)
		}
	}
	return costing.NormalizeDish(dish), nil
}

// ImportSummary counts the outcome of UpsertPrices.
type ImportSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// UpsertPrices writes price list entries in one transaction. An entry updates
// the ingredient with the same name, compared case-insensitively, or creates a
// new one. Optional fields left empty in the list keep their stored values.
func (s *Store) UpsertPrices(ctx context.Context, entries []pricelist.Entry) (ImportSummary, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return ImportSummary{}, err
	}

	var summary ImportSummary
	err = conn.Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			name := strings.TrimSpace(entry.Name)
			if name == "" {
				continue
			}

			var existing models.Ingredient
			err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				ingredient := models.Ingredient{
					Name:         name,
					BaseUnit:     entry.Unit,
					CostPerUnit:  entry.Cost,
					YieldPercent: 100,
					Category:     entry.Category,
					Supplier:     entry.Supplier,
				}
				if entry.TrimPercent != nil {
					ingredient.TrimPercent = *entry.TrimPercent
				}
				if entry.YieldPercent != nil {
					ingredient.YieldPercent = *entry.YieldPercent
				}
				if err := tx.Create(&ingredient).Error; err != nil {
					return fmt.Errorf("create ingredient %q: %w", name, err)
				}
				summary.Created++
			case err != nil:
				return fmt.Errorf("find ingredient %q: %w", name, err)
			default:
				updates := map[string]any{
					"base_unit":     entry.Unit,
					"cost_per_unit": entry.Cost,
				}
				if entry.TrimPercent != nil {
					updates["trim_percent"] = *entry.TrimPercent
				}
				if entry.YieldPercent != nil {
					updates["yield_percent"] = *entry.YieldPercent
				}
				if entry.Category != "" {
					updates["category"] = entry.Category
				}
				if entry.Supplier != "" {
					updates["supplier"] = entry.Supplier
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return fmt.Errorf("update ingredient %q: %w", name, err)
				}
				summary.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}

	applog.Info(ctx, "price list imported", "created", summary.Created, "updated", summary.Updated)
	return summary, nil
}
