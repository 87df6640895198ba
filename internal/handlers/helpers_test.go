package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"brigade/internal/costing"
	"brigade/internal/db/mock"
	"brigade/internal/scheduler"
	"brigade/internal/store"
	"brigade/models"
)

var testDBSeq atomic.Int64

func withTestSessionManager(t *testing.T) (*scs.SessionManager, func()) {
	t.Helper()
	original := sessionManager
	sm := scs.New()
	sessionManager = sm
	return sm, func() {
		sessionManager = original
	}
}

// withTestKitchen installs a freshly seeded mock kitchen and a pricing scheduler
// reading from it.
func withTestKitchen(t *testing.T) *gorm.DB {
	t.Helper()
	prevDB, prevKitchen, prevPricer, prevVisible := database, kitchen, pricer, visible

	dsn := fmt.Sprintf("file:handlers-%d-%d?mode=memory&cache=shared", time.Now().UnixNano(), testDBSeq.Add(1))
	db, err := mock.Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to open mock database: %v", err)
	}

	database = db
	kitchen = store.New(db)
	ConfigurePricing(scheduler.New(scheduler.Options{
		Fetch:      kitchen.RecipeLines,
		BatchFetch: kitchen.BatchRecipeLines,
		Policy:     costing.DefaultPolicy(),
	}), 5*time.Millisecond)

	t.Cleanup(func() {
		if visible != nil {
			visible.debouncer.Stop()
		}
		database, kitchen, pricer, visible = prevDB, prevKitchen, prevPricer, prevVisible
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func withSession(t *testing.T, sm *scs.SessionManager, req *http.Request) *http.Request {
	t.Helper()
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	return req.WithContext(ctx)
}

func recipeIDByName(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	var recipe models.Recipe
	if err := db.Where("name = ?", name).First(&recipe).Error; err != nil {
		t.Fatalf("find recipe %q: %v", name, err)
	}
	return recipe.ID
}

func dishIDByName(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	var dish models.Dish
	if err := db.Where("name = ?", name).First(&dish).Error; err != nil {
		t.Fatalf("find dish %q: %v", name, err)
	}
	return dish.ID
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1e-9
}
