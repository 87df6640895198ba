package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"brigade/internal/costing"
	"brigade/internal/scheduler"
	"brigade/models"
)

func TestBatchPricing(t *testing.T) {
	db := withTestKitchen(t)
	pastry := recipeIDByName(t, db, "Shortcrust Pastry")
	sauce := recipeIDByName(t, db, "Shallot Cream Sauce")

	body := fmt.Sprintf(`{"recipe_ids":[%d,%d,%d,9999]}`, pastry, sauce, pastry)
	w := httptest.NewRecorder()
	BatchPricing(w, httptest.NewRequest(http.MethodPost, "/app/api/pricing/batch", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp pricingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Prices) != 2 {
		t.Fatalf("expected two priced recipes, got %+v", resp.Prices)
	}
	if resp.Prices[pastry].Price != 3.95 {
		t.Fatalf("pastry price = %v, want 3.95", resp.Prices[pastry].Price)
	}
	if len(resp.Prices[sauce].Alternatives) != 3 {
		t.Fatalf("sauce alternatives = %v", resp.Prices[sauce].Alternatives)
	}
	if !almostEqual(resp.Costs[pastry].TotalCost, pastryTotal) {
		t.Fatalf("pastry cost = %+v", resp.Costs[pastry])
	}
	if msg, ok := resp.Errors[9999]; !ok || !strings.Contains(msg, "not found") {
		t.Fatalf("Errors = %v, want not found for 9999", resp.Errors)
	}
}

func TestBatchPricingRejectsBadInput(t *testing.T) {
	withTestKitchen(t)

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"invalid json", http.MethodPost, `{"recipe_ids":`, http.StatusBadRequest},
		{"empty ids", http.MethodPost, `{"recipe_ids":[]}`, http.StatusBadRequest},
		{"only zero ids", http.MethodPost, `{"recipe_ids":[0]}`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, ``, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		BatchPricing(w, httptest.NewRequest(tt.method, "/app/api/pricing/batch", strings.NewReader(tt.body)))
		if w.Code != tt.want {
			t.Fatalf("%s: status = %d, want %d", tt.name, w.Code, tt.want)
		}
	}
}

func TestBatchPricingWithoutScheduler(t *testing.T) {
	withTestKitchen(t)
	ConfigurePricing(nil, 0)

	w := httptest.NewRecorder()
	BatchPricing(w, httptest.NewRequest(http.MethodPost, "/app/api/pricing/batch", strings.NewReader(`{"recipe_ids":[1]}`)))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without scheduler, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	VisiblePricing(w, httptest.NewRequest(http.MethodGet, "/app/api/pricing/visible", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for visible pricing without scheduler, got %d", w.Code)
	}
}

func TestVisiblePricingKeepsLatestSet(t *testing.T) {
	db := withTestKitchen(t)
	pastry := recipeIDByName(t, db, "Shortcrust Pastry")
	sauce := recipeIDByName(t, db, "Shallot Cream Sauce")
	ConfigurePricing(pricer, 100*time.Millisecond)

	for _, body := range []string{
		fmt.Sprintf(`{"recipe_ids":[%d]}`, pastry),
		fmt.Sprintf(`{"recipe_ids":[%d,%d]}`, pastry, sauce),
		fmt.Sprintf(`{"recipe_ids":[%d]}`, sauce),
	} {
		w := httptest.NewRecorder()
		VisiblePricing(w, httptest.NewRequest(http.MethodPost, "/app/api/pricing/visible", strings.NewReader(body)))
		if w.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", w.Code)
		}
	}

	var resp visibleResponse
	deadline := time.Now().Add(2 * time.Second)
	for {
		w := httptest.NewRecorder()
		VisiblePricing(w, httptest.NewRequest(http.MethodGet, "/app/api/pricing/visible", nil))
		resp = visibleResponse{}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		latest := len(resp.RecipeIDs) == 1 && resp.RecipeIDs[0] == sauce
		if (resp.PricedAt != nil && latest) || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if resp.PricedAt == nil {
		t.Fatal("visible set was never priced")
	}
	if len(resp.RecipeIDs) != 1 || resp.RecipeIDs[0] != sauce {
		t.Fatalf("RecipeIDs = %v, want only the latest set", resp.RecipeIDs)
	}
	if _, ok := resp.Prices[sauce]; !ok || len(resp.Prices) != 1 {
		t.Fatalf("Prices = %+v", resp.Prices)
	}
}

func TestBatchPricingKeepsConcurrentSessionsApart(t *testing.T) {
	db := withTestKitchen(t)
	sm, restore := withTestSessionManager(t)
	defer restore()
	pastry := recipeIDByName(t, db, "Shortcrust Pastry")

	// Both requests must be fetching at the same time before either returns.
	var arrived sync.WaitGroup
	arrived.Add(2)
	ConfigurePricing(scheduler.New(scheduler.Options{
		Fetch: func(ctx context.Context, id uint) ([]costing.IngredientLine, error) {
			arrived.Done()
			done := make(chan struct{})
			go func() {
				arrived.Wait()
				close(done)
			}()
			select {
			case <-done:
				return kitchen.RecipeLines(ctx, id)
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
				return nil, errors.New("second session never arrived")
			}
		},
		Policy: costing.DefaultPolicy(),
	}), 5*time.Millisecond)

	body := fmt.Sprintf(`{"recipe_ids":[%d]}`, pastry)
	responses := make([]*httptest.ResponseRecorder, 2)
	var wg sync.WaitGroup
	for i, userID := range []int{1, 2} {
		req := withSession(t, sm, httptest.NewRequest(http.MethodPost, "/app/api/pricing/batch", strings.NewReader(body)))
		sm.Put(req.Context(), sessionUserIDKey, userID)
		responses[i] = httptest.NewRecorder()
		wg.Add(1)
		go func() {
			defer wg.Done()
			BatchPricing(responses[i], req)
		}()
	}
	wg.Wait()

	for i, w := range responses {
		if w.Code != http.StatusOK {
			t.Fatalf("response %d: status = %d: %s", i, w.Code, w.Body.String())
		}
		var resp pricingResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response %d: decode: %v", i, err)
		}
		if len(resp.Errors) != 0 {
			t.Fatalf("response %d: Errors = %v, want none", i, resp.Errors)
		}
		if resp.Prices[pastry].Price != 3.95 {
			t.Fatalf("response %d: pastry price = %v, want 3.95", i, resp.Prices[pastry].Price)
		}
	}
}

func TestPricingStream(t *testing.T) {
	sm, restore := withTestSessionManager(t)
	defer restore()

	anonymous := withSession(t, sm, httptest.NewRequest(http.MethodGet, "/app", nil))
	if got := pricingStream(anonymous, "dashboard"); got != "dashboard/anonymous" {
		t.Fatalf("pricingStream(anonymous) = %q", got)
	}

	signedIn := withSession(t, sm, httptest.NewRequest(http.MethodGet, "/app", nil))
	sm.Put(signedIn.Context(), sessionUserIDKey, 4)
	if got := pricingStream(signedIn, "batch"); got != "batch/user:4" {
		t.Fatalf("pricingStream(user 4) = %q, want batch/user:4", got)
	}
}

func TestVisiblePricingClearsOnEmptyPayload(t *testing.T) {
	db := withTestKitchen(t)
	sauce := recipeIDByName(t, db, "Shallot Cream Sauce")

	post := func(body string) {
		t.Helper()
		w := httptest.NewRecorder()
		VisiblePricing(w, httptest.NewRequest(http.MethodPost, "/app/api/pricing/visible", strings.NewReader(body)))
		if w.Code != http.StatusAccepted {
			t.Fatalf("POST %s: status = %d, want 202", body, w.Code)
		}
	}
	waitFor := func(want int) visibleResponse {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for {
			w := httptest.NewRecorder()
			VisiblePricing(w, httptest.NewRequest(http.MethodGet, "/app/api/pricing/visible", nil))
			var resp visibleResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if (resp.PricedAt != nil && len(resp.RecipeIDs) == want) || time.Now().After(deadline) {
				return resp
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	post(fmt.Sprintf(`{"recipe_ids":[%d]}`, sauce))
	if resp := waitFor(1); len(resp.RecipeIDs) != 1 {
		t.Fatalf("RecipeIDs = %v, want [%d]", resp.RecipeIDs, sauce)
	}

	post(`{}`)
	resp := waitFor(0)
	if len(resp.RecipeIDs) != 0 || len(resp.Prices) != 0 {
		t.Fatalf("after empty payload RecipeIDs = %v, Prices = %v, want both empty", resp.RecipeIDs, resp.Prices)
	}
}

func priceListUpload(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("price_list", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/app/tools/import-ingredients", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestToolsImportIngredients(t *testing.T) {
	db := withTestKitchen(t)

	csv := "name,unit,cost,category\nShallots,kg,4.10,Produce\nCeleriac,kg,2.20,Produce\nSaffron,pinch,12,Spice\n"
	w := httptest.NewRecorder()
	ToolsImportIngredients(w, priceListUpload(t, "greenline.csv", csv))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp importResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Created != 1 || resp.Updated != 1 || len(resp.Issues) != 1 {
		t.Fatalf("import summary = %+v", resp)
	}

	var shallots models.Ingredient
	if err := db.Where("name = ?", "Shallots").First(&shallots).Error; err != nil {
		t.Fatalf("find shallots: %v", err)
	}
	if shallots.CostPerUnit != 4.1 {
		t.Fatalf("shallots cost = %v, want 4.1", shallots.CostPerUnit)
	}
}

func TestToolsImportIngredientsRejectsUnreadableLists(t *testing.T) {
	withTestKitchen(t)

	w := httptest.NewRecorder()
	ToolsImportIngredients(w, priceListUpload(t, "notes.txt", "nothing priced here"))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/app/tools/import-ingredients", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ToolsImportIngredients(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without multipart upload, got %d", w.Code)
	}
}
