package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/colonyops/pl/internal/core/todo"
)

// GitLab reports open issues assigned to the operator.
type GitLab struct{}

func (GitLab) Category() todo.Category { return todo.CategoryGitLab }

type gitlabIssue struct {
	IID     int      `json:"iid"`
	Title   string   `json:"title"`
	WebURL  string   `json:"web_url"`
	Labels  []string `json:"labels"`
	DueDate string   `json:"due_date"`
	Project int      `json:"project_id"`
	Refs    struct {
		Full string `json:"full"`
	} `json:"references"`
}

func (GitLab) Check(ctx context.Context, env Env) ([]todo.Item, error) {
	gl := env.Config.GitLab
	if gl.URL == "" || gl.Token == "" {
		env.Log.Debug().Msg("gitlab url or token not configured")
		return nil, nil
	}

	issues, err := fetchAssignedIssues(ctx, env, strings.TrimRight(gl.URL, "/"), gl.Token)
	if err != nil {
		return nil, err
	}

	// Oldest reference first so ids survive new issues being opened.
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Project != issues[j].Project {
			return issues[i].Project < issues[j].Project
		}
		return issues[i].IID < issues[j].IID
	})

	now := env.now()
	seq := todo.NewIDSeq(todo.CategoryGitLab)
	items := make([]todo.Item, 0, len(issues))
	for _, issue := range issues {
		ref := issue.Refs.Full
		if ref == "" {
			ref = fmt.Sprintf("#%d", issue.IID)
		}

		items = append(items, todo.Item{
			ID:          seq.Next(),
			Category:    todo.CategoryGitLab,
			Priority:    issuePriority(issue, now),
			Title:       issue.Title,
			Description: fmt.Sprintf("GitLab issue %s assigned to you", ref),
			Action:      issue.WebURL,
		})
	}

	return items, nil
}

// maxIssuePages bounds pagination against a server that never stops
// returning X-Next-Page.
const maxIssuePages = 50

// fetchAssignedIssues walks every page of the assigned-issues listing,
// following GitLab's X-Next-Page header.
func fetchAssignedIssues(ctx context.Context, env Env, baseURL, token string) ([]gitlabIssue, error) {
	var all []gitlabIssue

	page := "1"
	for n := 0; page != "" && n < maxIssuePages; n++ {
		q := url.Values{}
		q.Set("scope", "assigned_to_me")
		q.Set("state", "opened")
		q.Set("per_page", "100")
		q.Set("page", page)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v4/issues?"+q.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("build gitlab request: %w", err)
		}
		req.Header.Set("PRIVATE-TOKEN", token)
		req.Header.Set("Accept", "application/json")

		issues, next, err := doIssuesRequest(env.httpClient(), req)
		if err != nil {
			return nil, err
		}
		all = append(all, issues...)
		page = next
	}

	return all, nil
}

func doIssuesRequest(client *http.Client, req *http.Request) ([]gitlabIssue, string, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("gitlab request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("gitlab request: unexpected status %s", resp.Status)
	}

	var issues []gitlabIssue
	if err := json.NewDecoder(resp.Body).Decode(&issues); err != nil {
		return nil, "", fmt.Errorf("decode gitlab issues: %w", err)
	}
	return issues, strings.TrimSpace(resp.Header.Get("X-Next-Page")), nil
}

func issuePriority(issue gitlabIssue, now time.Time) todo.Priority {
	for _, label := range issue.Labels {
		l := strings.ToLower(label)
		if slices.Contains([]string{"security", "critical", "urgent"}, l) {
			return todo.PriorityHigh
		}
	}

	if issue.DueDate != "" {
		due, err := time.Parse(time.DateOnly, issue.DueDate)
		if err == nil && due.Before(now.Truncate(24*time.Hour)) {
			return todo.PriorityHigh
		}
	}

	return todo.PriorityMedium
}
