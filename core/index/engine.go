// Package index maintains the catalog of analyzed repositories with search,
// tagging, similarity and combination suggestions.
package index

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// Engine owns one in-memory index and persists it after every mutation.
// All methods are safe for concurrent use.
type Engine struct {
	mu    sync.Mutex
	store contract.IndexStore
	index *schema.RepositoryIndex
	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides how global tag ids are generated.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// New creates an engine backed by store. A nil store keeps the index in
// memory only. Load failures and invalid documents start an empty index.
func New(store contract.IndexStore, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	e.index = e.load()
	return e
}

func (e *Engine) load() *schema.RepositoryIndex {
	if e.store == nil {
		return schema.NewRepositoryIndex(e.now())
	}
	idx, err := e.store.Load()
	if err != nil {
		contract.LogWarn("Starting with an empty repository index", &schema.PersistenceError{Op: "load", Err: err})
		return schema.NewRepositoryIndex(e.now())
	}
	if idx == nil {
		return schema.NewRepositoryIndex(e.now())
	}
	if err := validateIndex(idx); err != nil {
		contract.LogWarn("Discarding invalid repository index", err)
		return schema.NewRepositoryIndex(e.now())
	}
	idx.Normalize(e.now())
	return idx
}

// validateIndex rejects documents whose entries lack ids or paths or repeat them.
func validateIndex(idx *schema.RepositoryIndex) error {
	ids := make(map[string]bool)
	paths := make(map[string]bool)
	for _, r := range idx.Repositories {
		if r.ID == "" || r.Path == "" {
			return &schema.ValidationError{Field: "repositories", Message: "entry without id or path"}
		}
		if ids[r.ID] || paths[r.Path] {
			return &schema.ValidationError{Field: "repositories", Message: "duplicate entry " + r.ID}
		}
		ids[r.ID] = true
		paths[r.Path] = true
	}
	for _, t := range idx.Tags {
		if t.ID == "" {
			return &schema.ValidationError{Field: "tags", Message: "tag without id"}
		}
	}
	return nil
}

// persist writes the current index. Callers hold e.mu.
func (e *Engine) persist() error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Save(e.index.Clone()); err != nil {
		return &schema.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// touch stamps the index and persists it. Callers hold e.mu.
func (e *Engine) touch() error {
	e.index.LastUpdated = e.now()
	return e.persist()
}

func (e *Engine) position(id string) int {
	for i, r := range e.index.Repositories {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) positionByPath(path string) int {
	id := RepositoryID(path)
	for i, r := range e.index.Repositories {
		if r.Path == path || r.ID == id {
			return i
		}
	}
	return -1
}

func repoNotFound(id string) error {
	return &schema.NotFoundError{Kind: "repository", ID: id}
}

// AddRepository indexes an analysis. Re-adding a path replaces its entry in
// place, keeping the id, the first AddedAt and any user tags.
func (e *Engine) AddRepository(analysis *schema.RepositoryAnalysis) (schema.IndexedRepository, error) {
	if err := validateAnalysis(analysis); err != nil {
		return schema.IndexedRepository{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	entry := extract(analysis, e.now())
	i := e.positionByPath(analysis.Path)
	if i >= 0 {
		prev := e.index.Repositories[i]
		entry.ID = prev.ID
		entry.AddedAt = prev.AddedAt
		entry.Tags = mergeTags(entry.Tags, e.userTags(prev.Tags))
		e.index.Repositories[i] = entry
	} else {
		e.index.Repositories = append(e.index.Repositories, entry)
		i = len(e.index.Repositories) - 1
	}
	recomputeRelationships(e.index, i)
	return entry.Clone(), e.touch()
}

// UpdateRepository re-extracts the entry with the given id from analysis.
func (e *Engine) UpdateRepository(id string, analysis *schema.RepositoryAnalysis) (schema.IndexedRepository, error) {
	if err := validateAnalysis(analysis); err != nil {
		return schema.IndexedRepository{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.position(id)
	if i < 0 {
		return schema.IndexedRepository{}, repoNotFound(id)
	}
	if j := e.positionByPath(analysis.Path); j >= 0 && j != i {
		return schema.IndexedRepository{}, &schema.ValidationError{
			Field:   "path",
			Message: "already indexed as " + e.index.Repositories[j].ID,
		}
	}
	prev := e.index.Repositories[i]
	entry := extract(analysis, e.now())
	entry.ID = prev.ID
	entry.AddedAt = prev.AddedAt
	entry.Tags = mergeTags(entry.Tags, e.userTags(prev.Tags))
	e.index.Repositories[i] = entry
	recomputeRelationships(e.index, i)
	return entry.Clone(), e.touch()
}

// RemoveRepository deletes an entry and its relationships.
func (e *Engine) RemoveRepository(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.position(id)
	if i < 0 {
		return repoNotFound(id)
	}
	e.index.Repositories = append(e.index.Repositories[:i], e.index.Repositories[i+1:]...)
	e.index.Relationships = dropRelationships(e.index.Relationships, id)
	return e.touch()
}

// GetRepository returns a copy of one entry.
func (e *Engine) GetRepository(id string) (schema.IndexedRepository, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.position(id)
	if i < 0 {
		return schema.IndexedRepository{}, repoNotFound(id)
	}
	return e.index.Repositories[i].Clone(), nil
}

// ListRepositories returns copies of all entries in index order.
func (e *Engine) ListRepositories() []schema.IndexedRepository {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]schema.IndexedRepository, len(e.index.Repositories))
	for i, r := range e.index.Repositories {
		out[i] = r.Clone()
	}
	return out
}

// SearchRepositories filters the index. An empty query returns everything.
func (e *Engine) SearchRepositories(query schema.SearchQuery) []schema.SearchResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return search(e.index.Repositories, query)
}

// FindSimilarRepositories scores every other repository against id, best first.
func (e *Engine) FindSimilarRepositories(id string) ([]schema.SimilarityResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.position(id)
	if i < 0 {
		return nil, repoNotFound(id)
	}
	target := e.index.Repositories[i]
	results := []schema.SimilarityResult{}
	for j, other := range e.index.Repositories {
		if j == i {
			continue
		}
		score, bd := similarity(target, other)
		results = append(results, schema.SimilarityResult{
			Repository: other.Clone(),
			Similarity: score,
			Reason:     similarityReason(target, other, bd),
			Breakdown:  bd,
		})
	}
	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Similarity != results[b].Similarity {
			return results[a].Similarity > results[b].Similarity
		}
		return results[a].Repository.Name < results[b].Repository.Name
	})
	return results, nil
}

// SuggestCombinations ranks combinations of the given repositories. Duplicate
// ids are ignored and fewer than two distinct ids yield no suggestions.
func (e *Engine) SuggestCombinations(ids []string, maxSize int) ([]schema.CombinationSuggestion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var repos []schema.IndexedRepository
	seen := make(map[string]bool)
	for _, id := range ids {
		i := e.position(id)
		if i < 0 {
			return nil, repoNotFound(id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		repos = append(repos, e.index.Repositories[i])
	}
	if len(repos) < 2 {
		return []schema.CombinationSuggestion{}, nil
	}
	return suggest(repos, maxSize), nil
}

// Relationships returns the relationships touching id.
func (e *Engine) Relationships(id string) ([]schema.RepositoryRelationship, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.position(id) < 0 {
		return nil, repoNotFound(id)
	}
	out := []schema.RepositoryRelationship{}
	for _, rel := range e.index.Relationships {
		if involves(rel, id) {
			out = append(out, rel)
		}
	}
	return out, nil
}

// Save persists the current index.
func (e *Engine) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persist()
}

// Snapshot returns a deep copy of the index.
func (e *Engine) Snapshot() *schema.RepositoryIndex {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.Clone()
}

// Stats summarizes the index.
func (e *Engine) Stats() schema.IndexStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.Stats()
}
