package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nethaiah/commitlens/logger"
	"github.com/Nethaiah/commitlens/models"
	"github.com/Nethaiah/commitlens/stats"
)

func init() {
	// Initialize logger for tests
	_ = logger.Initialize("debug")
}

// testClient points a Client at the given test server.
func testClient(server *httptest.Server) *Client {
	baseURL, _ := url.Parse(server.URL)
	return &Client{
		token:      "test-token",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-token")

	assert.NotNil(t, client)
	assert.Equal(t, "test-token", client.token)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestFetchRecentCommits(t *testing.T) {
	testCases := []struct {
		name           string
		mockStatusCode int
		mockBody       any
		expectedCount  int
		expectedError  bool
	}{
		{
			name:           "successful fetch",
			mockStatusCode: http.StatusOK,
			mockBody: []map[string]any{
				{
					"sha": "abc123",
					"commit": map[string]any{
						"message": "Test commit",
						"author": map[string]any{
							"name": "Test Author",
							"date": "2024-01-01T00:00:00Z",
						},
					},
				},
			},
			expectedCount: 1,
			expectedError: false,
		},
		{
			name:           "repository not found",
			mockStatusCode: http.StatusNotFound,
			expectedError:  true,
		},
		{
			name:           "unauthorized",
			mockStatusCode: http.StatusUnauthorized,
			expectedError:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
				assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
				assert.Equal(t, apiVersion, r.Header.Get("X-GitHub-Api-Version"))
				assert.Equal(t, "/repos/test-owner/test-repo/commits", r.URL.Path)
				assert.Equal(t, "10", r.URL.Query().Get("per_page"))

				w.WriteHeader(tc.mockStatusCode)
				if tc.mockBody != nil {
					json.NewEncoder(w).Encode(tc.mockBody)
				}
			}))
			defer server.Close()

			client := testClient(server)
			commits, err := client.FetchRecentCommits(context.Background(), "test-owner", "test-repo", 10)

			if tc.expectedError {
				assert.ErrorIs(t, err, ErrUpstreamUnavailable)
				assert.Nil(t, commits)
			} else {
				assert.NoError(t, err)
				assert.Len(t, commits, tc.expectedCount)
				assert.Equal(t, "abc123", commits[0].SHA)
				assert.Equal(t, "Test commit", commits[0].Commit.Message)
				assert.Equal(t, "Test Author", commits[0].Commit.Author.Name)
			}
		})
	}
}

func TestFetchViewerLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/graphql", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"viewer": map[string]any{"login": "octocat"}},
		})
	}))
	defer server.Close()

	login, err := testClient(server).FetchViewerLogin(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "octocat", login)
}

func TestFetchViewerLoginGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data":   map[string]any{},
			"errors": []map[string]any{{"message": "bad credentials"}},
		})
	}))
	defer server.Close()

	_, err := testClient(server).FetchViewerLogin(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "bad credentials")
}

func TestFetchContributionCalendar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2024-01-01T00:00:00Z", req.Variables["from"])
		assert.Equal(t, "2024-01-31T00:00:00Z", req.Variables["to"])

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"viewer": map[string]any{
					"contributionsCollection": map[string]any{
						"contributionCalendar": map[string]any{
							"totalContributions": 42,
							"weeks": []map[string]any{
								{
									"firstDay": "2024-01-01",
									"contributionDays": []map[string]any{
										{"date": "2024-01-01", "contributionCount": 3, "weekday": 1},
										{"date": "2024-01-02", "contributionCount": 0, "weekday": 2},
									},
								},
							},
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	total, weeks, err := testClient(server).FetchContributionCalendar(context.Background(), "2024-01-01T00:00:00Z", "2024-01-31T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	require.Len(t, weeks, 1)
	assert.Equal(t, "2024-01-01", weeks[0].FirstDay)
	require.Len(t, weeks[0].Days, 2)
	assert.Equal(t, 3, weeks[0].Days[0].Count)
	assert.Equal(t, 1, weeks[0].Days[0].Weekday)
}

func TestFetchViewerRepositories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"viewer": map[string]any{
					"repositories": map[string]any{
						"nodes": []map[string]any{
							{
								"id":              "R_1",
								"name":            "commitlens",
								"description":     "developer analytics",
								"stargazerCount":  12,
								"isPrivate":       false,
								"isFork":          false,
								"isArchived":      false,
								"owner":           map[string]any{"login": "octocat", "__typename": "User"},
								"primaryLanguage": map[string]any{"name": "Go"},
								"defaultBranchRef": map[string]any{
									"name": "main",
									"target": map[string]any{
										"history": map[string]any{
											"totalCount": 120,
											"edges": []map[string]any{
												{"node": map[string]any{
													"committedDate":   "2024-06-01T12:00:00Z",
													"oid":             "deadbeef",
													"messageHeadline": "tune streaks",
													"author":          map[string]any{"name": "Octo Cat"},
												}},
											},
										},
									},
								},
								"refs":      map[string]any{"totalCount": 3},
								"updatedAt": "2024-06-01T12:00:00Z",
								"forkCount": 2,
							},
							{
								"id":             "R_2",
								"name":           "scratch",
								"stargazerCount": 0,
								"isPrivate":      true,
								"isFork":         true,
								"isArchived":     false,
								"owner":          map[string]any{"login": "acme", "__typename": "Organization"},
								"updatedAt":      "2024-05-01T12:00:00Z",
								"forkCount":      0,
							},
						},
						"pageInfo": map[string]any{"hasNextPage": true, "endCursor": "cursor-1"},
					},
				},
			},
		})
	}))
	defer server.Close()

	page, err := testClient(server).FetchViewerRepositories(context.Background(), 50, "")
	require.NoError(t, err)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, "cursor-1", page.EndCursor)
	require.Len(t, page.Repositories, 2)

	first := page.Repositories[0]
	assert.Equal(t, "commitlens", first.Name)
	assert.Equal(t, "Go", first.Language)
	assert.Equal(t, 12, first.Stars)
	assert.Equal(t, 120, first.TotalCommits)
	assert.Equal(t, "main", first.DefaultBranch)
	assert.Equal(t, 3, first.Branches)
	require.Len(t, first.Commits, 1)
	assert.Equal(t, "deadbeef", first.Commits[0].Hash)
	assert.Equal(t, "Octo Cat", first.Commits[0].Author)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), first.Commits[0].Date)

	second := page.Repositories[1]
	assert.Equal(t, "Unknown", second.Language)
	assert.True(t, second.Private)
	assert.True(t, second.Fork)
	assert.Equal(t, "acme", second.OwnerLogin)
	assert.Equal(t, 0, second.BestCommitCount())
}

func TestFetchRecentCommitsRateLimited(t *testing.T) {
	reset := time.Now().Add(time.Hour)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	start := time.Now()
	commits, err := testClient(server).FetchRecentCommits(context.Background(), "test-owner", "test-repo", 10)

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "rate limit exceeded")
	assert.Nil(t, commits)
	// The call must fail straight away, not wait out the reset window.
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNullPrimaryLanguageBucketsAsOther(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"viewer": map[string]any{
					"repositories": map[string]any{
						"nodes": []map[string]any{
							{
								"id":              "R_1",
								"name":            "notes",
								"stargazerCount":  0,
								"primaryLanguage": nil,
								"defaultBranchRef": map[string]any{
									"name": "main",
									"target": map[string]any{
										"history": map[string]any{"totalCount": 4},
									},
								},
							},
							{
								"id":              "R_2",
								"name":            "commitlens",
								"stargazerCount":  1,
								"primaryLanguage": map[string]any{"name": "Go"},
								"defaultBranchRef": map[string]any{
									"name": "main",
									"target": map[string]any{
										"history": map[string]any{"totalCount": 6},
									},
								},
							},
						},
						"pageInfo": map[string]any{"hasNextPage": false},
					},
				},
			},
		})
	}))
	defer server.Close()

	page, err := testClient(server).FetchViewerRepositories(context.Background(), 50, "")
	require.NoError(t, err)
	require.Len(t, page.Repositories, 2)

	ranked := stats.RankLanguages(page.Repositories, models.AllRepositories)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Go", ranked[0].Name)
	assert.Equal(t, "Other", ranked[1].Name)
	assert.Equal(t, 4, ranked[1].Commits)
}
