// Package scheduler computes price recommendations for many recipes at once. It
// coalesces identical batch fetches, falls back to bounded per-recipe fetches and
// discards results of requests that a newer request for the same recipe replaced.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"brigade/internal/costing"
	applog "brigade/internal/log"
)

// DefaultMaxConcurrency bounds the per-recipe fallback when no limit is configured.
const DefaultMaxConcurrency = 8

var (
	// ErrSuperseded reports that a newer request for the same recipe replaced this one.
	ErrSuperseded = errors.New("scheduler: superseded by a newer request")
	// ErrNoFetcher reports that neither a batch nor a per-recipe fetcher is configured.
	ErrNoFetcher = errors.New("scheduler: no fetch function configured")
	// ErrMissingLines reports that no fetcher returned lines for a recipe.
	ErrMissingLines = errors.New("scheduler: no ingredient lines returned")
)

// FetchFunc loads the ingredient lines of one recipe.
type FetchFunc func(ctx context.Context, recipeID uint) ([]costing.IngredientLine, error)

// BatchFetchFunc loads the ingredient lines of many recipes in one call. Recipes
// absent from the returned map are fetched again one by one.
type BatchFetchFunc func(ctx context.Context, recipeIDs []uint) (map[uint][]costing.IngredientLine, error)

// Options configures a Scheduler.
type Options struct {
	Fetch          FetchFunc
	BatchFetch     BatchFetchFunc
	Policy         costing.Policy
	MaxConcurrency int
}

// Result holds the outcome of one Price call. A recipe id appears in Errors when
// its lines could not be fetched or costed, or when its request was superseded.
// Recipes that cost nothing have an entry in Costs but none in Prices.
type Result struct {
	Prices map[uint]costing.Recommendation `json:"prices"`
	Costs  map[uint]costing.RecipeCost     `json:"costs"`
	Errors map[uint]error                  `json:"-"`
}

// ErrorStrings renders Errors for JSON responses.
func (r Result) ErrorStrings() map[uint]string {
	out := make(map[uint]string, len(r.Errors))
	for id, err := range r.Errors {
		out[id] = err.Error()
	}
	return out
}

type inflight struct {
	gen    uint64
	cancel context.CancelFunc
}

// inflightKey scopes a recipe id to the request stream that asked for it.
type inflightKey struct {
	stream string
	id     uint
}

type streamKey struct{}

// WithStream tags ctx with the request stream a Price call belongs to. A request
// only supersedes earlier requests for the same recipe id on the same stream;
// untagged calls share the empty stream.
func WithStream(ctx context.Context, stream string) context.Context {
	return context.WithValue(ctx, streamKey{}, stream)
}

// Stream returns the request stream stored in ctx.
func Stream(ctx context.Context) string {
	stream, _ := ctx.Value(streamKey{}).(string)
	return stream
}

// Scheduler owns the in-flight registry and the batch coalescing group.
type Scheduler struct {
	fetch          FetchFunc
	batchFetch     BatchFetchFunc
	policy         costing.Policy
	maxConcurrency int

	mu       sync.Mutex
	gen      uint64
	inflight map[inflightKey]*inflight

	batches singleflight.Group
}

// New constructs a Scheduler.
func New(opts Options) *Scheduler {
	limit := opts.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}
	return &Scheduler{
		fetch:          opts.Fetch,
		batchFetch:     opts.BatchFetch,
		policy:         opts.Policy,
		maxConcurrency: limit,
		inflight:       make(map[inflightKey]*inflight),
	}
}

// Policy returns the pricing policy applied to every recipe.
func (s *Scheduler) Policy() costing.Policy {
	return s.policy
}

// register supersedes any outstanding request for key and returns the new one.
func (s *Scheduler) register(ctx context.Context, key inflightKey) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.inflight[key]; ok {
		prev.cancel()
		applog.Debug(ctx, "pricing request superseded", "stream", key.stream, "recipe_id", key.id, "generation", prev.gen)
	}
	s.gen++
	reqCtx, cancel := context.WithCancel(ctx)
	s.inflight[key] = &inflight{gen: s.gen, cancel: cancel}
	return reqCtx, s.gen
}

// current reports whether gen is still the latest request for key.
func (s *Scheduler) current(key inflightKey, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.inflight[key]
	return ok && entry.gen == gen
}

// release drops key from the registry when gen is still the latest request.
func (s *Scheduler) release(key inflightKey, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.inflight[key]; ok && entry.gen == gen {
		entry.cancel()
		delete(s.inflight, key)
	}
}

// InFlight returns the number of outstanding recipe requests across all streams.
func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

type ticket struct {
	recipe costing.Recipe
	key    inflightKey
	ctx    context.Context
	gen    uint64
}

// Price fetches the lines of every recipe, costs them and recommends a price for
// each. Recipe fields other than Lines are taken from recipes; duplicate ids are
// priced once. Supersession is scoped to the stream set with WithStream.
// Per-recipe failures are reported in Result.Errors and never fail
// the call. The returned error is non-nil only when ctx ends before completion.
func (s *Scheduler) Price(ctx context.Context, recipes []costing.Recipe) (Result, error) {
	result := Result{
		Prices: make(map[uint]costing.Recommendation, len(recipes)),
		Costs:  make(map[uint]costing.RecipeCost, len(recipes)),
		Errors: make(map[uint]error),
	}
	if len(recipes) == 0 {
		return result, nil
	}
	if s.fetch == nil && s.batchFetch == nil {
		return result, ErrNoFetcher
	}

	stream := Stream(ctx)
	tickets := make(map[uint]ticket, len(recipes))
	ids := make([]uint, 0, len(recipes))
	for _, recipe := range recipes {
		if _, seen := tickets[recipe.ID]; seen {
			continue
		}
		key := inflightKey{stream: stream, id: recipe.ID}
		reqCtx, gen := s.register(ctx, key)
		tickets[recipe.ID] = ticket{recipe: recipe, key: key, ctx: reqCtx, gen: gen}
		ids = append(ids, recipe.ID)
	}
	defer func() {
		for _, t := range tickets {
			s.release(t.key, t.gen)
		}
	}()

	lines := s.fetchBatch(ctx, ids)

	var mu sync.Mutex
	record := func(id uint, fetched []costing.IngredientLine, err error) {
		t := tickets[id]
		if !s.current(t.key, t.gen) {
			err = ErrSuperseded
		}

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Errors[id] = err
			return
		}
		recipe := t.recipe
		recipe.Lines = fetched
		cost, costErr := costing.CostRecipe(costing.NormalizeRecipe(recipe))
		if costErr != nil {
			result.Errors[id] = costErr
			return
		}
		result.Costs[id] = cost
		if rec, ok := costing.Recommend(cost.CostPerPortion, s.policy); ok {
			result.Prices[id] = rec
		}
	}

	var missing []uint
	for _, id := range ids {
		if fetched, ok := lines[id]; ok {
			record(id, fetched, nil)
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		if s.fetch == nil {
			for _, id := range missing {
				record(id, nil, ErrMissingLines)
			}
		} else {
			applog.Debug(ctx, "pricing per-recipe fallback", "recipes", len(missing))
			var g errgroup.Group
			g.SetLimit(s.maxConcurrency)
			for _, id := range missing {
				t := tickets[id]
				g.Go(func() error {
					fetched, err := s.fetch(t.ctx, id)
					if err != nil {
						if !errors.Is(err, context.Canceled) || s.current(t.key, t.gen) {
							applog.Warn(ctx, "recipe fetch failed", "recipe_id", id, "error", err)
						}
						err = fmt.Errorf("fetch recipe %d: %w", id, err)
					}
					record(id, fetched, err)
					return nil
				})
			}
			_ = g.Wait()
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// fetchBatch returns the lines the batch fetcher produced for ids. Concurrent
// calls for the same id set share one fetch. Failures yield an empty map so the
// caller falls back to per-recipe fetches.
func (s *Scheduler) fetchBatch(ctx context.Context, ids []uint) map[uint][]costing.IngredientLine {
	if s.batchFetch == nil {
		return nil
	}

	key := batchKey(ids)
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	ch := s.batches.DoChan(key, func() (any, error) {
		// Shared by every caller with this key, so one caller leaving must not cancel it.
		return s.batchFetch(context.WithoutCancel(ctx), sorted)
	})

	select {
	case <-ctx.Done():
		return nil
	case res := <-ch:
		if res.Err != nil {
			applog.Warn(ctx, "batch fetch failed", "recipes", len(ids), "error", res.Err)
			return nil
		}
		lines, _ := res.Val.(map[uint][]costing.IngredientLine)
		if len(lines) == 0 {
			applog.Debug(ctx, "batch fetch returned nothing", "recipes", len(ids))
		} else if res.Shared {
			applog.Debug(ctx, "batch fetch shared", "key", key)
		}
		return lines
	}
}

// batchKey normalises an id set so that ordering and duplicates do not matter.
func batchKey(ids []uint) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
