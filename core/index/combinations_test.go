package index

import (
	"testing"

	"github.com/huangsam/reposcope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombinations(t *testing.T) {
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {1, 2}}, combinations(3, 2))
	assert.Len(t, combinations(4, 2), 6)
	assert.Equal(t, [][]int{{0, 1, 2}}, combinations(3, 3))
	assert.Nil(t, combinations(2, 3))
	assert.Nil(t, combinations(2, 0))
}

func TestInferRole(t *testing.T) {
	cases := []struct {
		repo schema.IndexedRepository
		want schema.Role
	}{
		{indexed("shop", nil, []string{"React"}), schema.RoleFrontend},
		{indexed("shop", nil, []string{"React Native"}), schema.RoleMobile},
		{indexed("shop", nil, []string{"Express"}), schema.RoleBackend},
		{indexed("shop", nil, []string{"Cobra"}), schema.RoleTool},
		{indexed("billing-api", nil, nil), schema.RoleBackend},
		{indexed("admin-dashboard", nil, nil), schema.RoleFrontend},
		{indexed("deploy-cli", nil, nil), schema.RoleTool},
		{indexed("string-utils", nil, nil), schema.RoleLibrary},
		{indexed("notebook", nil, nil), schema.RoleApplication},
	}
	for _, tc := range cases {
		t.Run(tc.repo.Name+"/"+string(tc.want), func(t *testing.T) {
			assert.Equal(t, tc.want, inferRole(tc.repo))
		})
	}
}

func TestRoleFit(t *testing.T) {
	assert.Equal(t, FrontendBackendFit, roleFit(schema.RoleBackend, schema.RoleFrontend))
	assert.Equal(t, MobileBackendFit, roleFit(schema.RoleMobile, schema.RoleBackend))
	assert.Equal(t, SameRoleFit, roleFit(schema.RoleLibrary, schema.RoleLibrary))
	assert.Equal(t, SupportingRoleFit, roleFit(schema.RoleTool, schema.RoleApplication))
	assert.Equal(t, DefaultRoleFit, roleFit(schema.RoleFrontend, schema.RoleApplication))
}

func TestSuggest(t *testing.T) {
	web := indexed("web", []string{"TypeScript"}, []string{"React"})
	api := indexed("api", []string{"TypeScript"}, []string{"Express"})
	cli := indexed("ops-cli", []string{"Go"}, nil)
	repos := []schema.IndexedRepository{web, api, cli}

	pairs := suggest(repos, 0)
	require.Len(t, pairs, 3, "sizes below two fall back to pairs")

	all := suggest(repos, 10)
	require.Len(t, all, 4, "size is capped by the number of repositories")

	best := all[0]
	assert.ElementsMatch(t, []string{web.ID, api.ID}, best.RepositoryIDs)
	assert.Equal(t, FrontendBackendFit, best.Breakdown.Architecture)
	assert.Equal(t, 1.0, best.Breakdown.Functionality)
	assert.Contains(t, best.Rationale, "frontend pairs with backend")
	assert.Contains(t, best.Rationale, "shared ecosystem")

	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Score, all[i].Score)
	}
	for _, s := range all {
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 1.0)
		assert.Len(t, s.Names, len(s.RepositoryIDs))
	}
}

func TestSuggestCapsSize(t *testing.T) {
	var repos []schema.IndexedRepository
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		repos = append(repos, indexed(name, []string{"Go"}, nil))
	}
	for _, s := range suggest(repos, 99) {
		assert.LessOrEqual(t, len(s.RepositoryIDs), MaxCombinationSize)
	}
	// C(6,2) + C(6,3) + C(6,4)
	assert.Len(t, suggest(repos, 99), 15+20+15)
}
