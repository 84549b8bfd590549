package index

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/reposcope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memStore is an in-memory IndexStore.
type memStore struct {
	mu      sync.Mutex
	index   *schema.RepositoryIndex
	loadErr error
	saveErr error
	saves   int
}

func (s *memStore) Load() (*schema.RepositoryIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.index == nil {
		return nil, nil
	}
	return s.index.Clone(), nil
}

func (s *memStore) Save(index *schema.RepositoryIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.index = index.Clone()
	return nil
}

func (s *memStore) GetStatus() (schema.StoreStatus, error) {
	return schema.StoreStatus{}, nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// tickClock returns a clock that advances one minute per call.
func tickClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

// seqIDs returns an id generator yielding tag-1, tag-2, ...
func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("tag-%d", n)
	}
}

func analysisOf(path, name string, languages, frameworks []string) *schema.RepositoryAnalysis {
	return &schema.RepositoryAnalysis{
		Path:       path,
		Name:       name,
		Languages:  languages,
		Frameworks: frameworks,
		FileCount:  10,
	}
}

func webApp() *schema.RepositoryAnalysis {
	return analysisOf("/repos/web", "web-app", []string{"TypeScript", "JavaScript"}, []string{"React"})
}

func apiServer() *schema.RepositoryAnalysis {
	return analysisOf("/repos/api", "api-server", []string{"TypeScript"}, []string{"Express"})
}

func dataUtils() *schema.RepositoryAnalysis {
	return analysisOf("/repos/lib", "data-utils", []string{"Python"}, nil)
}

func newEngine(t *testing.T, store *memStore) *Engine {
	t.Helper()
	return New(store, WithClock(tickClock()), WithIDGenerator(seqIDs()))
}

func TestAddRepository(t *testing.T) {
	store := &memStore{}
	e := newEngine(t, store)

	repo, err := e.AddRepository(webApp())
	require.NoError(t, err)
	assert.Equal(t, RepositoryID("/repos/web"), repo.ID)
	assert.Equal(t, []string{"TypeScript", "JavaScript"}, repo.Languages)
	assert.Equal(t, []string{"typescript", "react", "frontend"}, repo.Tags)
	assert.Equal(t, 1, store.saveCount())

	got, err := e.GetRepository(repo.ID)
	require.NoError(t, err)
	assert.Equal(t, repo, got)
}

func TestAddRepositoryDefaultsNilCollections(t *testing.T) {
	e := New(nil, WithClock(tickClock()))
	repo, err := e.AddRepository(analysisOf("/repos/bare", "bare", nil, nil))
	require.NoError(t, err)
	assert.NotNil(t, repo.Languages)
	assert.NotNil(t, repo.Frameworks)
	assert.Empty(t, repo.Languages)
}

func TestAddRepositorySamePathUpdatesInPlace(t *testing.T) {
	e := newEngine(t, &memStore{})

	first, err := e.AddRepository(webApp())
	require.NoError(t, err)
	_, err = e.AddRepository(apiServer())
	require.NoError(t, err)
	_, err = e.AddRepositoryTag(first.ID, "favorite", "", "")
	require.NoError(t, err)

	updated := webApp()
	updated.Description = "Customer dashboard"
	second, err := e.AddRepository(updated)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.AddedAt, second.AddedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.True(t, second.HasTag("favorite"))

	repos := e.ListRepositories()
	require.Len(t, repos, 2)
	assert.Equal(t, first.ID, repos[0].ID, "position is preserved")
	assert.Equal(t, "Customer dashboard", repos[0].Description)
}

func TestReAddRecomputesDerivedTags(t *testing.T) {
	e := newEngine(t, &memStore{})

	first, err := e.AddRepository(webApp())
	require.NoError(t, err)
	require.True(t, first.HasTag("react"))
	_, err = e.AddRepositoryTag(first.ID, "favorite", "", "")
	require.NoError(t, err)

	vue := analysisOf("/repos/web", "web-app", []string{"TypeScript", "JavaScript"}, []string{"Vue"})
	second, err := e.AddRepository(vue)
	require.NoError(t, err)
	assert.False(t, second.HasTag("react"), "stale framework tag is dropped")
	assert.True(t, second.HasTag("vue"))
	assert.True(t, second.HasTag("favorite"))

	third, err := e.UpdateRepository(first.ID, analysisOf("/repos/web", "web-app", []string{"TypeScript"}, nil))
	require.NoError(t, err)
	assert.False(t, third.HasTag("vue"))
	assert.Contains(t, third.Tags, "typescript")
	assert.Equal(t, "favorite", third.Tags[len(third.Tags)-1], "user tags follow derived ones")
}

func TestAddRepositoryValidation(t *testing.T) {
	store := &memStore{}
	e := newEngine(t, store)

	cases := map[string]*schema.RepositoryAnalysis{
		"nil":      nil,
		"no path":  analysisOf("", "x", nil, nil),
		"no name":  analysisOf("/repos/x", " ", nil, nil),
		"negative": {Path: "/repos/x", Name: "x", FileCount: -1},
	}
	for name, analysis := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.AddRepository(analysis)
			require.Error(t, err)
			assert.True(t, schema.IsValidation(err))
		})
	}
	assert.Empty(t, e.ListRepositories())
	assert.Equal(t, 0, store.saveCount())
}

func TestAddRepositoryPersistenceFailure(t *testing.T) {
	store := &memStore{saveErr: errors.New("disk full")}
	e := newEngine(t, store)

	repo, err := e.AddRepository(webApp())
	require.Error(t, err)
	assert.True(t, schema.IsPersistence(err))
	assert.False(t, schema.IsNotFound(err))
	assert.Contains(t, err.Error(), "disk full")

	got, err := e.GetRepository(repo.ID)
	require.NoError(t, err, "in-memory mutation is kept")
	assert.Equal(t, "web-app", got.Name)
}

func TestNewRecoversFromBadStore(t *testing.T) {
	t.Run("load error", func(t *testing.T) {
		e := New(&memStore{loadErr: errors.New("unexpected end of JSON input")})
		assert.Empty(t, e.ListRepositories())
		assert.NotNil(t, e.Snapshot().Tags)
	})
	t.Run("missing ids", func(t *testing.T) {
		idx := schema.NewRepositoryIndex(time.Now())
		idx.Repositories = append(idx.Repositories, schema.IndexedRepository{Name: "ghost"})
		e := New(&memStore{index: idx})
		assert.Empty(t, e.ListRepositories())
	})
	t.Run("duplicate ids", func(t *testing.T) {
		idx := schema.NewRepositoryIndex(time.Now())
		idx.Repositories = append(idx.Repositories,
			schema.IndexedRepository{ID: "a", Path: "/a"},
			schema.IndexedRepository{ID: "a", Path: "/b"},
		)
		e := New(&memStore{index: idx})
		assert.Empty(t, e.ListRepositories())
	})
	t.Run("missing collections", func(t *testing.T) {
		idx := &schema.RepositoryIndex{Repositories: []schema.IndexedRepository{{ID: "a", Path: "/a", Name: "a"}}}
		e := New(&memStore{index: idx})
		repos := e.ListRepositories()
		require.Len(t, repos, 1)
		assert.NotNil(t, repos[0].Tags)
		snap := e.Snapshot()
		assert.NotNil(t, snap.Relationships)
		assert.False(t, snap.LastUpdated.IsZero())
	})
}

func TestReloadFromStore(t *testing.T) {
	store := &memStore{}
	e := newEngine(t, store)
	repo, err := e.AddRepository(webApp())
	require.NoError(t, err)
	_, err = e.AddRepositoryTag(repo.ID, "favorite", "status", "gold")
	require.NoError(t, err)

	reloaded := New(store)
	got, err := reloaded.GetRepository(repo.ID)
	require.NoError(t, err)
	assert.True(t, got.HasTag("favorite"))
	require.Len(t, reloaded.ListTags(), 1)
	assert.Equal(t, "gold", reloaded.ListTags()[0].Color)
}

func TestUpdateRepository(t *testing.T) {
	e := newEngine(t, &memStore{})
	web, err := e.AddRepository(webApp())
	require.NoError(t, err)
	api, err := e.AddRepository(apiServer())
	require.NoError(t, err)

	moved := webApp()
	moved.Languages = []string{"JavaScript"}
	got, err := e.UpdateRepository(web.ID, moved)
	require.NoError(t, err)
	assert.Equal(t, web.ID, got.ID)
	assert.Equal(t, []string{"JavaScript"}, got.Languages)

	_, err = e.UpdateRepository("missing", webApp())
	var nf *schema.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)

	_, err = e.UpdateRepository(api.ID, webApp())
	assert.True(t, schema.IsValidation(err), "path already indexed under another id")
}

func TestRemoveRepository(t *testing.T) {
	e := newEngine(t, &memStore{})
	web, err := e.AddRepository(webApp())
	require.NoError(t, err)
	_, err = e.AddRepository(apiServer())
	require.NoError(t, err)
	require.NotEmpty(t, e.Snapshot().Relationships)

	require.NoError(t, e.RemoveRepository(web.ID))
	assert.Len(t, e.ListRepositories(), 1)
	assert.Empty(t, e.Snapshot().Relationships)

	err = e.RemoveRepository(web.ID)
	assert.True(t, schema.IsNotFound(err))
	assert.Contains(t, err.Error(), web.ID)
}

func TestRelationships(t *testing.T) {
	e := newEngine(t, &memStore{})
	web, err := e.AddRepository(webApp())
	require.NoError(t, err)
	api, err := e.AddRepository(apiServer())
	require.NoError(t, err)

	rels, err := e.Relationships(web.ID)
	require.NoError(t, err)
	var found bool
	for _, rel := range rels {
		if rel.Type == schema.RelationComplementary {
			found = true
			assert.ElementsMatch(t, []string{web.ID, api.ID}, []string{rel.SourceID, rel.TargetID})
			assert.Equal(t, ComplementaryStrength, rel.Strength)
		}
	}
	assert.True(t, found)

	_, err = e.Relationships("missing")
	assert.True(t, schema.IsNotFound(err))
}

func TestRepositoryTags(t *testing.T) {
	store := &memStore{}
	e := newEngine(t, store)
	repo, err := e.AddRepository(webApp())
	require.NoError(t, err)

	first, err := e.AddRepositoryTag(repo.ID, "favorite", "status", "gold")
	require.NoError(t, err)
	second, err := e.AddRepositoryTag(repo.ID, "favorite", "", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := e.GetRepository(repo.ID)
	require.NoError(t, err)
	count := 0
	for _, tag := range got.Tags {
		if tag == "favorite" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, e.ListTags(), 1)

	require.NoError(t, e.RemoveRepositoryTag(repo.ID, "favorite"))
	got, err = e.GetRepository(repo.ID)
	require.NoError(t, err)
	assert.False(t, got.HasTag("favorite"))
	assert.Len(t, e.ListTags(), 1, "global catalog is untouched")

	_, err = e.AddRepositoryTag(repo.ID, "  ", "", "")
	assert.True(t, schema.IsValidation(err))

	_, err = e.AddRepositoryTag("missing", "x", "", "")
	assert.True(t, schema.IsNotFound(err))
}

func TestRemoveRepositoryTagNotFound(t *testing.T) {
	e := newEngine(t, &memStore{})
	repo, err := e.AddRepository(webApp())
	require.NoError(t, err)

	err = e.RemoveRepositoryTag(repo.ID, "never-attached")
	var nf *schema.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "tag", nf.Kind)
	assert.Equal(t, repo.ID, nf.ParentID)
	assert.Contains(t, err.Error(), "never-attached")
	assert.Contains(t, err.Error(), repo.ID)

	err = e.RemoveRepositoryTag("missing", "x")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "repository", nf.Kind)
}

func TestGlobalTags(t *testing.T) {
	e := newEngine(t, &memStore{})
	repo, err := e.AddRepository(webApp())
	require.NoError(t, err)

	a, err := e.AddTag("team", "owner", "")
	require.NoError(t, err)
	b, err := e.AddTag("team", "owner", "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID, "names are not unique")
	assert.Len(t, e.ListTags(), 2)

	_, err = e.AddRepositoryTag(repo.ID, "team", "", "")
	require.NoError(t, err)
	assert.Len(t, e.ListTags(), 2, "existing tag is reused by name")

	require.NoError(t, e.RemoveTag(a.ID))
	got, err := e.GetRepository(repo.ID)
	require.NoError(t, err)
	assert.False(t, got.HasTag("team"))
	assert.Len(t, e.ListTags(), 1)

	err = e.RemoveTag(a.ID)
	assert.True(t, schema.IsNotFound(err))

	_, err = e.AddTag("", "", "")
	assert.True(t, schema.IsValidation(err))
}

func TestFindSimilarRepositories(t *testing.T) {
	e := newEngine(t, &memStore{})
	web, err := e.AddRepository(webApp())
	require.NoError(t, err)

	results, err := e.FindSimilarRepositories(web.ID)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	_, err = e.AddRepository(dataUtils())
	require.NoError(t, err)
	_, err = e.AddRepository(apiServer())
	require.NoError(t, err)

	results, err = e.FindSimilarRepositories(web.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "api-server", results[0].Repository.Name)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
	for _, r := range results {
		assert.NotEqual(t, web.ID, r.Repository.ID)
		assert.NotEmpty(t, r.Reason)
	}

	_, err = e.FindSimilarRepositories("missing")
	assert.True(t, schema.IsNotFound(err))
}

func TestSuggestCombinations(t *testing.T) {
	e := newEngine(t, &memStore{})
	web, err := e.AddRepository(webApp())
	require.NoError(t, err)
	api, err := e.AddRepository(apiServer())
	require.NoError(t, err)

	got, err := e.SuggestCombinations([]string{web.ID, web.ID}, 3)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = e.SuggestCombinations([]string{web.ID, api.ID, api.ID}, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.ElementsMatch(t, []schema.Role{schema.RoleFrontend, schema.RoleBackend}, got[0].Roles)
	assert.Contains(t, got[0].Rationale, "frontend pairs with backend")

	_, err = e.SuggestCombinations([]string{web.ID, "missing"}, 2)
	var nf *schema.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)
}

func TestStats(t *testing.T) {
	e := newEngine(t, &memStore{})
	for _, a := range []*schema.RepositoryAnalysis{webApp(), apiServer(), dataUtils()} {
		_, err := e.AddRepository(a)
		require.NoError(t, err)
	}
	stats := e.Stats()
	assert.Equal(t, 3, stats.Repositories)
	assert.Equal(t, map[string]int{"TypeScript": 2, "Python": 1}, stats.Languages)
}

func TestSaveWithoutStore(t *testing.T) {
	e := New(nil)
	_, err := e.AddRepository(webApp())
	require.NoError(t, err)
	assert.NoError(t, e.Save())
}

func TestConcurrentOperations(t *testing.T) {
	store := &memStore{}
	e := newEngine(t, store)
	repo, err := e.AddRepository(webApp())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, _ = e.AddRepositoryTag(repo.ID, "shared", "", "")
		}()
		go func(i int) {
			defer wg.Done()
			_, _ = e.AddRepository(analysisOf(fmt.Sprintf("/repos/r%d", i), fmt.Sprintf("r%d", i), []string{"Go"}, nil))
		}(i)
		go func() {
			defer wg.Done()
			_ = e.SearchRepositories(schema.SearchQuery{Keywords: []string{"web"}})
		}()
	}
	wg.Wait()

	got, err := e.GetRepository(repo.ID)
	require.NoError(t, err)
	count := 0
	for _, tag := range got.Tags {
		if tag == "shared" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, e.ListRepositories(), 21)
	assert.Len(t, e.ListTags(), 1)
}
