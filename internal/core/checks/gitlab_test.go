package checks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/pl/internal/core/todo"
)

const issuesJSON = `[
  {"iid": 7, "project_id": 2, "title": "Upgrade PHP", "web_url": "https://git.example.org/ops/web/-/issues/7",
   "labels": ["maintenance"], "due_date": null, "references": {"full": "ops/web#7"}},
  {"iid": 3, "project_id": 2, "title": "Patch XSS", "web_url": "https://git.example.org/ops/web/-/issues/3",
   "labels": ["Security"], "references": {"full": "ops/web#3"}},
  {"iid": 1, "project_id": 9, "title": "Renew contract", "web_url": "https://git.example.org/ops/admin/-/issues/1",
   "labels": [], "due_date": "2026-03-01", "references": {"full": "ops/admin#1"}}
]`

func TestGitLab_Check(t *testing.T) {
	var gotToken, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("PRIVATE-TOKEN")
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/api/v4/issues", r.URL.Path)
		_, _ = w.Write([]byte(issuesJSON))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.GitLab.URL = srv.URL + "/"
	cfg.GitLab.Token = "glpat-secret"

	env := testEnv(cfg, nil)
	env.HTTP = srv.Client()

	items, err := GitLab{}.Check(context.Background(), env)
	require.NoError(t, err)
	requireValid(t, items)

	assert.Equal(t, "glpat-secret", gotToken)
	assert.Contains(t, gotQuery, "scope=assigned_to_me")
	assert.Contains(t, gotQuery, "state=opened")

	require.Len(t, items, 3)
	assert.Equal(t, []string{"GIT-001", "GIT-002", "GIT-003"}, ids(items))

	// Ordered by project then iid.
	assert.Equal(t, "Patch XSS", items[0].Title)
	assert.Equal(t, todo.PriorityHigh, items[0].Priority, "security label")
	assert.Equal(t, "Upgrade PHP", items[1].Title)
	assert.Equal(t, todo.PriorityMedium, items[1].Priority)
	assert.Equal(t, "Renew contract", items[2].Title)
	assert.Equal(t, todo.PriorityHigh, items[2].Priority, "overdue")
	assert.Equal(t, "https://git.example.org/ops/admin/-/issues/1", items[2].Action)
	assert.Contains(t, items[2].Description, "ops/admin#1")
}

func TestGitLab_Unconfigured(t *testing.T) {
	cfg := testConfig(t)
	items, err := GitLab{}.Check(context.Background(), testEnv(cfg, nil))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGitLab_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.GitLab.URL = srv.URL
	cfg.GitLab.Token = "bad"

	env := testEnv(cfg, nil)
	env.HTTP = srv.Client()

	_, err := GitLab{}.Check(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGitLab_FollowsPagination(t *testing.T) {
	pages := map[string]string{
		"1": `[{"iid": 1, "project_id": 1, "title": "first page", "web_url": "https://git.example.org/a/-/issues/1"}]`,
		"2": `[{"iid": 2, "project_id": 1, "title": "second page", "web_url": "https://git.example.org/a/-/issues/2"}]`,
	}
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requested = append(requested, page)
		if page == "1" {
			w.Header().Set("X-Next-Page", "2")
		}
		_, _ = w.Write([]byte(pages[page]))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.GitLab.URL = srv.URL
	cfg.GitLab.Token = "glpat-secret"

	env := testEnv(cfg, nil)
	env.HTTP = srv.Client()

	items, err := GitLab{}.Check(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, requested)
	require.Len(t, items, 2)
	assert.Equal(t, "first page", items[0].Title)
	assert.Equal(t, "second page", items[1].Title)
}
