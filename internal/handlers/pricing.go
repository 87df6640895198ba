package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"brigade/internal/costing"
	applog "brigade/internal/log"
	"brigade/internal/scheduler"
	"brigade/internal/store"
)

const maxBatchRecipes = 500

var (
	pricer  *scheduler.Scheduler
	visible *visibleSet
)

// ConfigurePricing installs the batch pricing scheduler and the window used to
// debounce visible-set updates.
func ConfigurePricing(s *scheduler.Scheduler, debounce time.Duration) {
	if visible != nil {
		visible.debouncer.Stop()
	}
	pricer = s
	visible = nil
	if s != nil {
		visible = newVisibleSet(debounce)
	}
}

func currentPolicy() costing.Policy {
	if pricer == nil {
		return costing.DefaultPolicy()
	}
	return pricer.Policy()
}

type pricingRequest struct {
	RecipeIDs []uint `json:"recipe_ids"`
}

type recipeCostSummary struct {
	RecipeID       uint    `json:"recipe_id"`
	RecipeName     string  `json:"recipe_name"`
	Yield          float64 `json:"yield"`
	YieldUnit      string  `json:"yield_unit"`
	TotalCost      float64 `json:"total_cost"`
	CostPerPortion float64 `json:"cost_per_portion"`
	SkippedLines   int     `json:"skipped_lines"`
}

type pricingResponse struct {
	Prices   map[uint]costing.Recommendation `json:"prices"`
	Costs    map[uint]recipeCostSummary      `json:"costs"`
	Errors   map[uint]string                 `json:"errors,omitempty"`
	PricedAt *time.Time                      `json:"priced_at,omitempty"`
}

func summarizeCost(cost costing.RecipeCost) recipeCostSummary {
	return recipeCostSummary{
		RecipeID:       cost.RecipeID,
		RecipeName:     cost.RecipeName,
		Yield:          cost.Yield,
		YieldUnit:      cost.YieldUnit,
		TotalCost:      cost.TotalCost,
		CostPerPortion: cost.CostPerPortion,
		SkippedLines:   len(cost.Skipped),
	}
}

func newPricingResponse(result scheduler.Result) pricingResponse {
	resp := pricingResponse{
		Prices: result.Prices,
		Costs:  make(map[uint]recipeCostSummary, len(result.Costs)),
		Errors: result.ErrorStrings(),
	}
	if resp.Prices == nil {
		resp.Prices = map[uint]costing.Recommendation{}
	}
	for id, cost := range result.Costs {
		resp.Costs[id] = summarizeCost(cost)
	}
	return resp
}

// pricingStream names the request stream whose newer requests supersede older
// ones: one per surface and session, falling back to the signed-in user.
func pricingStream(r *http.Request, surface string) string {
	if sessionManager != nil {
		if token := sessionManager.Token(r.Context()); token != "" {
			return surface + "/session:" + token
		}
	}
	if id, ok := currentUserID(r); ok {
		return fmt.Sprintf("%s/user:%d", surface, id)
	}
	return surface + "/anonymous"
}

// priceRecipes loads the headers of ids and prices them through the scheduler.
// Ids without a recipe are reported as not found.
func priceRecipes(ctx context.Context, ids []uint) (scheduler.Result, error) {
	if pricer == nil {
		return scheduler.Result{}, scheduler.ErrNoFetcher
	}
	recipes, err := kitchen.Recipes(ctx, ids)
	if err != nil {
		return scheduler.Result{}, err
	}
	result, err := pricer.Price(ctx, recipes)
	if err != nil {
		return result, err
	}
	found := make(map[uint]bool, len(recipes))
	for _, recipe := range recipes {
		found[recipe.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			result.Errors[id] = fmt.Errorf("%w: recipe %d", store.ErrNotFound, id)
		}
	}
	return result, nil
}

func decodePricingRequest(w http.ResponseWriter, r *http.Request) ([]uint, bool) {
	var payload pricingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON payload")
		return nil, false
	}
	if len(payload.RecipeIDs) > maxBatchRecipes {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("at most %d recipe ids per request", maxBatchRecipes))
		return nil, false
	}
	ids := slices.DeleteFunc(slices.Clone(payload.RecipeIDs), func(id uint) bool { return id == 0 })
	return ids, true
}

// BatchPricing prices every requested recipe in one pass. Per-recipe failures
// are returned next to the successful prices.
func BatchPricing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ids, ok := decodePricingRequest(w, r)
	if !ok {
		return
	}
	if len(ids) == 0 {
		writeJSONError(w, http.StatusBadRequest, "recipe_ids is required")
		return
	}

	result, err := priceRecipes(scheduler.WithStream(r.Context(), pricingStream(r, "batch")), ids)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	applog.Debug(r.Context(), "batch priced", "requested", len(ids), "priced", len(result.Prices), "failed", len(result.Errors))
	writeJSON(w, http.StatusOK, newPricingResponse(result))
}

// visibleSet keeps the latest prices of the recipes currently on screen.
type visibleSet struct {
	debouncer *scheduler.Debouncer

	mu       sync.RWMutex
	seq      uint64
	ids      []uint
	result   scheduler.Result
	pricedAt time.Time
}

func newVisibleSet(wait time.Duration) *visibleSet {
	v := &visibleSet{}
	v.debouncer = scheduler.NewDebouncer(wait, v.price)
	return v
}

func (v *visibleSet) price(ids []uint) {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	ctx := scheduler.WithStream(context.Background(), "visible")
	result := scheduler.Result{}
	if len(ids) > 0 {
		var err error
		result, err = priceRecipes(ctx, ids)
		if err != nil {
			applog.Warn(ctx, "visible recipes could not be priced", "recipes", len(ids), "error", err)
			return
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		return
	}
	v.ids = ids
	v.result = result
	v.pricedAt = nowFunc().UTC()
}

func (v *visibleSet) snapshot() ([]uint, scheduler.Result, time.Time) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.ids), v.result, v.pricedAt
}

type visibleResponse struct {
	RecipeIDs []uint `json:"recipe_ids"`
	pricingResponse
}

// VisiblePricing records the recipes currently on screen (POST) and returns the
// prices computed for the most recent set (GET). Bursts of updates are priced
// once after the debounce window.
func VisiblePricing(w http.ResponseWriter, r *http.Request) {
	if visible == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "pricing not available")
		return
	}
	switch r.Method {
	case http.MethodPost:
		ids, ok := decodePricingRequest(w, r)
		if !ok {
			return
		}
		visible.debouncer.Update(ids)
		writeJSON(w, http.StatusAccepted, map[string]int{"pending": len(ids)})
	case http.MethodGet:
		ids, result, pricedAt := visible.snapshot()
		resp := visibleResponse{RecipeIDs: ids, pricingResponse: newPricingResponse(result)}
		if resp.RecipeIDs == nil {
			resp.RecipeIDs = []uint{}
		}
		if !pricedAt.IsZero() {
			resp.PricedAt = &pricedAt
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
