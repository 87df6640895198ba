package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"brigade/models"
)

const pastryTotal = 1.0/0.9 + 2.25 + 0.7/0.9

func TestRecipeCost(t *testing.T) {
	db := withTestKitchen(t)
	id := recipeIDByName(t, db, "Shortcrust Pastry")

	w := httptest.NewRecorder()
	RecipeResource(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/recipes/%d/cost", id), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp recipeCostResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !almostEqual(resp.TotalCost, pastryTotal) {
		t.Fatalf("TotalCost = %v, want %v", resp.TotalCost, pastryTotal)
	}
	if !almostEqual(resp.CostPerPortion, pastryTotal/4) {
		t.Fatalf("CostPerPortion = %v, want %v", resp.CostPerPortion, pastryTotal/4)
	}
	if len(resp.Lines) != 3 {
		t.Fatalf("expected 3 cost lines, got %d", len(resp.Lines))
	}
	if resp.Recommendation == nil || resp.Recommendation.Price != 3.95 {
		t.Fatalf("Recommendation = %+v, want price 3.95", resp.Recommendation)
	}
	if len(resp.Strategies) != 3 {
		t.Fatalf("expected one recommendation per strategy, got %d", len(resp.Strategies))
	}
}

func TestRecipeCostErrors(t *testing.T) {
	db := withTestKitchen(t)

	broken := models.Recipe{Name: "Stock Base", Yield: 1}
	if err := db.Create(&broken).Error; err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if err := db.Model(&broken).Update("yield", 0).Error; err != nil {
		t.Fatalf("clear yield: %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown recipe", http.MethodGet, "/app/api/recipes/9999/cost", http.StatusNotFound},
		{"invalid yield", http.MethodGet, fmt.Sprintf("/app/api/recipes/%d/cost", broken.ID), http.StatusUnprocessableEntity},
		{"unknown action", http.MethodGet, fmt.Sprintf("/app/api/recipes/%d/history", broken.ID), http.StatusNotFound},
		{"bad id", http.MethodGet, "/app/api/recipes/abc/cost", http.StatusNotFound},
		{"wrong method", http.MethodPost, fmt.Sprintf("/app/api/recipes/%d/cost", broken.ID), http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		RecipeResource(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != tt.want {
			t.Fatalf("%s: status = %d, want %d", tt.name, w.Code, tt.want)
		}
	}
}

func TestRecipePreview(t *testing.T) {
	db := withTestKitchen(t)
	id := recipeIDByName(t, db, "Shortcrust Pastry")

	w := httptest.NewRecorder()
	RecipeResource(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/recipes/%d/preview?yield=8", id), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp recipePreviewResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Factor != 2 || len(resp.Lines) != 3 {
		t.Fatalf("preview = %+v", resp.RecipePreview)
	}
	if resp.Lines[0].Quantity != 1000 || !strings.Contains(resp.Lines[0].Display, "kg") {
		t.Fatalf("flour line = %+v", resp.Lines[0])
	}
	if !almostEqual(resp.BatchCost, 2*pastryTotal) {
		t.Fatalf("BatchCost = %v, want %v", resp.BatchCost, 2*pastryTotal)
	}

	w = httptest.NewRecorder()
	RecipeResource(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/recipes/%d/preview?yield=-1", id), nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative yield, got %d", w.Code)
	}
}

func TestDishCost(t *testing.T) {
	db := withTestKitchen(t)
	id := dishIDByName(t, db, "Beef Tenderloin, Shallot Cream")

	w := httptest.NewRecorder()
	DishResource(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/dishes/%d/cost", id), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp dishCostResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	sauce := (1.05/0.85/0.95 + 4.8 + 0.45) / 10
	want := sauce + 8.1 + 0.6/0.95
	if !almostEqual(resp.TotalCOGS, want) {
		t.Fatalf("TotalCOGS = %v, want %v", resp.TotalCOGS, want)
	}
	if !almostEqual(resp.RecipeCost, sauce) {
		t.Fatalf("RecipeCost = %v, want %v", resp.RecipeCost, sauce)
	}
	if len(resp.Recipes) != 1 || resp.Recipes[0].Multiplier != 0.1 {
		t.Fatalf("Recipes = %+v", resp.Recipes)
	}
	if resp.Actual == nil || resp.Actual.Price != 32 {
		t.Fatalf("Actual = %+v, want metrics at the selling price", resp.Actual)
	}
	if !almostEqual(resp.Actual.FoodCostPercent, want/32*100) {
		t.Fatalf("Actual.FoodCostPercent = %v, want %v", resp.Actual.FoodCostPercent, want/32*100)
	}
	if resp.Recommendation == nil || resp.Recommendation.Price != 31.95 {
		t.Fatalf("Recommendation = %+v, want 31.95", resp.Recommendation)
	}

	w = httptest.NewRecorder()
	DishResource(w, httptest.NewRequest(http.MethodGet, "/app/api/dishes/9999/cost", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown dish, got %d", w.Code)
	}
}

func TestIngredientsFilter(t *testing.T) {
	withTestKitchen(t)

	w := httptest.NewRecorder()
	Ingredients(w, httptest.NewRequest(http.MethodGet, "/app/api/ingredients?category=consumables", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp []ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Name != "Takeaway Box" || !resp[0].Consumable {
		t.Fatalf("ingredients = %+v", resp)
	}

	w = httptest.NewRecorder()
	Ingredients(w, httptest.NewRequest(http.MethodGet, "/app/api/ingredients", nil))
	resp = nil
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 8 {
		t.Fatalf("expected every seeded ingredient, got %d", len(resp))
	}
}

func TestIngredientsWithoutDatabase(t *testing.T) {
	prev := kitchen
	kitchen = nil
	t.Cleanup(func() { kitchen = prev })

	w := httptest.NewRecorder()
	Ingredients(w, httptest.NewRequest(http.MethodGet, "/app/api/ingredients", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without database, got %d", w.Code)
	}
}

func TestRecipeCostReport(t *testing.T) {
	db := withTestKitchen(t)
	id := recipeIDByName(t, db, "Shortcrust Pastry")

	prevNow := nowFunc
	nowFunc = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { nowFunc = prevNow })

	w := httptest.NewRecorder()
	RecipeCostReport(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/reports/recipes/%d", id), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, token := range []string{"Shortcrust Pastry", "$4.14", "$3.95", "19 Oct 2026", "Plain Flour"} {
		if !strings.Contains(body, token) {
			t.Fatalf("expected report to contain %q: %s", token, body)
		}
	}

	w = httptest.NewRecorder()
	RecipeCostReport(w, httptest.NewRequest(http.MethodGet, "/app/reports/recipes/9999", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown recipe, got %d", w.Code)
	}
}

func TestDashboard(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)
	withTestKitchen(t)

	req := withSession(t, sm, httptest.NewRequest(http.MethodGet, "/app", nil))
	sm.Put(req.Context(), sessionUserNameKey, "Sam Pass")
	w := httptest.NewRecorder()
	Dashboard(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, token := range []string{"Sam Pass", "Shortcrust Pastry", "Shallot Cream Sauce", "$3.95", "<!DOCTYPE html>"} {
		if !strings.Contains(body, token) {
			t.Fatalf("expected dashboard to contain %q: %s", token, body)
		}
	}

	req.Header.Set("HX-Request", "true")
	w = httptest.NewRecorder()
	Dashboard(w, req)
	if strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Fatal("expected partial for HTMX request")
	}
}
