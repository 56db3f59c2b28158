package recommend

import (
	"sync"
	"time"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Recipes is the catalog view the engine needs.
type Recipes interface {
	Recipes() []domain.Recipe
	Get(id string) (*domain.Recipe, error)
	Taxonomy() *domain.Taxonomy
}

// Records is the engagement view the engine needs.
type Records interface {
	Get(id string) domain.EngagementRecord
}

// Option configures the engine.
type Option func(*Engine)

// WithWeights replaces the scoring table.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// Engine caches one score per recipe id. Scores are recomputed in bulk at
// startup and per recipe when its engagement changes.
type Engine struct {
	recipes Recipes
	records Records
	now     func() time.Time
	log     *logger.Logger
	weights Weights

	mu     sync.RWMutex
	scores map[string]float64
}

// NewEngine creates an engine with an empty cache.
func NewEngine(recipes Recipes, records Records, now func() time.Time, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		recipes: recipes,
		records: records,
		now:     now,
		log:     log,
		weights: DefaultWeights(),
		scores:  make(map[string]float64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalculateAllScores rebuilds the cache for every recipe in the catalog.
func (e *Engine) CalculateAllScores() {
	now := e.now()
	tax := e.recipes.Taxonomy()
	all := e.recipes.Recipes()

	fresh := make(map[string]float64, len(all))
	for i := range all {
		fresh[all[i].ID] = Score(&all[i], e.records.Get(all[i].ID), tax, now, e.weights)
	}

	e.mu.Lock()
	e.scores = fresh
	e.mu.Unlock()
	e.log.Debug("scored %d recipes", len(fresh))
}

// UpdateScoreForRecipe recomputes one cached score and returns it.
func (e *Engine) UpdateScoreForRecipe(id string) float64 {
	s := e.compute(id)

	e.mu.Lock()
	e.scores[id] = s
	e.mu.Unlock()
	e.log.Debug("score %s = %.2f", id, s)
	return s
}

// GetScore returns the cached score, computing and caching it on a miss.
func (e *Engine) GetScore(id string) float64 {
	e.mu.RLock()
	s, ok := e.scores[id]
	e.mu.RUnlock()
	if ok {
		return s
	}
	return e.UpdateScoreForRecipe(id)
}

// compute scores a recipe. Ids missing from the catalog score from their
// engagement record only.
func (e *Engine) compute(id string) float64 {
	r, err := e.recipes.Get(id)
	if err != nil {
		r = nil
	}
	return Score(r, e.records.Get(id), e.recipes.Taxonomy(), e.now(), e.weights)
}
