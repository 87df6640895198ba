package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"brigade/internal/costing"
	"brigade/internal/db"
	applog "brigade/internal/log"
	"brigade/models"
)

// DemoEmail and DemoPassword identify the seeded account.
const (
	DemoEmail    = "chef@brigade.app"
	DemoPassword = "mise-en-place"
)

const defaultDSN = "file:brigade-mock?mode=memory&cache=shared"

// New returns an in-memory sqlite database seeded with a small kitchen.
func New(ctx context.Context) (*gorm.DB, error) {
	return Open(ctx, defaultDSN)
}

// Open is New with an explicit sqlite DSN so tests can isolate their databases.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	var existing int64
	if err := database.WithContext(ctx).Model(&models.Ingredient{}).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing == 0 {
		if err := seed(ctx, database); err != nil {
			return nil, err
		}
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func floatPtr(v float64) *float64 {
	return &v
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &models.User{
			Name:         "Sam Pass",
			Email:        DemoEmail,
			PasswordHash: string(password),
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		flour := models.Ingredient{Name: "Plain Flour", BaseUnit: "kg", CostPerUnit: 2, TrimPercent: 10, YieldPercent: 100, Category: "Dry Goods", Supplier: "Millbrook"}
		butter := models.Ingredient{Name: "Unsalted Butter", BaseUnit: "kg", CostPerUnit: 9, YieldPercent: 100, Category: "Dairy", Supplier: "Valley Creamery"}
		eggs := models.Ingredient{Name: "Free Range Eggs", BaseUnit: "dozen", CostPerUnit: 4.2, YieldPercent: 90, Category: "Dairy", Supplier: "Valley Creamery"}
		shallots := models.Ingredient{Name: "Shallots", BaseUnit: "kg", CostPerUnit: 3.5, TrimPercent: 15, YieldPercent: 95, Category: "Produce", Supplier: "Greenline"}
		cream := models.Ingredient{Name: "Double Cream", BaseUnit: "l", CostPerUnit: 4.8, YieldPercent: 100, Category: "Dairy", Supplier: "Valley Creamery"}
		beef := models.Ingredient{Name: "Beef Tenderloin", BaseUnit: "kg", CostPerUnit: 38, CostPerUnitInclTrim: floatPtr(45), YieldPercent: 100, Category: "Meat", Supplier: "Hillside Butchery"}
		herbs := models.Ingredient{Name: "Micro Herbs", BaseUnit: "g", CostPerUnit: 0.12, TrimPercent: 5, YieldPercent: 100, Category: "Produce", Supplier: "Greenline"}
		box := models.Ingredient{Name: "Takeaway Box", BaseUnit: "each", CostPerUnit: 0.35, Category: costing.CategoryConsumables, Supplier: "PackRight"}

		ingredients := []*models.Ingredient{&flour, &butter, &eggs, &shallots, &cream, &beef, &herbs, &box}
		for _, ingredient := range ingredients {
			if err := tx.Create(ingredient).Error; err != nil {
				return err
			}
		}

		pastry := models.Recipe{
			Name:         "Shortcrust Pastry",
			Yield:        4,
			YieldUnit:    "tart shells",
			Instructions: "Rub butter into flour, bind with egg, rest 30 minutes before rolling.",
			Ingredients: []models.RecipeIngredient{
				{IngredientID: flour.ID, Quantity: 500, Unit: "g"},
				{IngredientID: butter.ID, Quantity: 250, Unit: "g"},
				{IngredientID: eggs.ID, Quantity: 2, Unit: "each"},
			},
		}
		sauce := models.Recipe{
			Name:         "Shallot Cream Sauce",
			Yield:        10,
			YieldUnit:    "portions",
			Instructions: "Sweat shallots in butter, add cream and reduce by a third.",
			Ingredients: []models.RecipeIngredient{
				{IngredientID: shallots.ID, Quantity: 300, Unit: "g"},
				{IngredientID: cream.ID, Quantity: 1, Unit: "l"},
				{IngredientID: butter.ID, Quantity: 50, Unit: "g"},
			},
		}
		for _, recipe := range []*models.Recipe{&pastry, &sauce} {
			if err := tx.Create(recipe).Error; err != nil {
				return err
			}
		}

		dishes := []*models.Dish{
			{
				Name:         "Beef Tenderloin, Shallot Cream",
				SellingPrice: 32,
				Portions:     1,
				Recipes:      []models.DishRecipe{{RecipeID: sauce.ID, Quantity: 1}},
				Ingredients: []models.DishIngredient{
					{IngredientID: beef.ID, Quantity: 180, Unit: "g"},
					{IngredientID: herbs.ID, Quantity: 5, Unit: "g"},
				},
			},
			{
				Name:         "Shallot Tart To Go",
				SellingPrice: 9.5,
				Portions:     1,
				Recipes: []models.DishRecipe{
					{RecipeID: pastry.ID, Quantity: 1},
					{RecipeID: sauce.ID, Quantity: 0.5},
				},
				Ingredients: []models.DishIngredient{
					{IngredientID: herbs.ID, Quantity: 3, Unit: "g"},
					{IngredientID: box.ID, Quantity: 1, Unit: "each"},
				},
			},
		}
		for _, dish := range dishes {
			if err := tx.Create(dish).Error; err != nil {
				return err
			}
		}

		applog.Debug(ctx, "mock database seeded", "ingredients", len(ingredients), "dishes", len(dishes))
		return nil
	})
}
