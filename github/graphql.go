package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Nethaiah/commitlens/logger"
	"github.com/Nethaiah/commitlens/models"
)

const viewerLoginQuery = `query { viewer { login } }`

// parseGraphQLTime parses the RFC3339 timestamps of the GraphQL API.
func parseGraphQLTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

const contributionCalendarQuery = `
query ViewerContributions($from: DateTime!, $to: DateTime!) {
  viewer {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        totalContributions
        weeks {
          firstDay
          contributionDays {
            date
            contributionCount
            weekday
          }
        }
      }
    }
  }
}`

const viewerRepositoriesQuery = `
query ViewerRepos($first: Int!, $after: String) {
  viewer {
    repositories(
      first: $first
      after: $after
      orderBy: { field: UPDATED_AT, direction: DESC }
      affiliations: [OWNER, COLLABORATOR, ORGANIZATION_MEMBER]
    ) {
      nodes {
        id
        name
        description
        stargazerCount
        isPrivate
        isFork
        isArchived
        owner { login __typename }
        primaryLanguage { name }
        defaultBranchRef {
          name
          target {
            ... on Commit {
              history(first: 1) {
                totalCount
                edges { node { committedDate oid messageHeadline author { name } } }
              }
            }
          }
        }
        refs(refPrefix: "refs/heads/", first: 1) { totalCount }
        updatedAt
        forkCount
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

// graphqlDo posts a GraphQL query and decodes the data field into out.
func (c *Client) graphqlDo(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("failed to encode graphql request: %w", err)
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: "/graphql"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("GraphQL request failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		logger.Error("GraphQL request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", text))
		return fmt.Errorf("%w: graphql status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, text)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: decode graphql response: %v", ErrUpstreamUnavailable, err)
	}
	if len(envelope.Errors) > 0 {
		logger.Error("GraphQL returned errors", zap.String("message", envelope.Errors[0].Message))
		return fmt.Errorf("%w: graphql errors: %s", ErrUpstreamUnavailable, envelope.Errors[0].Message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: decode graphql data: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

// FetchViewerLogin returns the login of the token's user.
func (c *Client) FetchViewerLogin(ctx context.Context) (string, error) {
	var data struct {
		Viewer struct {
			Login string `json:"login"`
		} `json:"viewer"`
	}
	if err := c.graphqlDo(ctx, viewerLoginQuery, nil, &data); err != nil {
		return "", err
	}
	return data.Viewer.Login, nil
}

// FetchContributionCalendar returns the contribution total and the
// weekly day buckets for an explicit UTC date range.
func (c *Client) FetchContributionCalendar(ctx context.Context, from, to string) (int, []models.ContributionWeek, error) {
	var data struct {
		Viewer struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					TotalContributions int `json:"totalContributions"`
					Weeks              []struct {
						FirstDay         string `json:"firstDay"`
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
							Weekday           int    `json:"weekday"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"viewer"`
	}

	err := c.graphqlDo(ctx, contributionCalendarQuery, map[string]any{"from": from, "to": to}, &data)
	if err != nil {
		return 0, nil, err
	}

	cal := data.Viewer.ContributionsCollection.ContributionCalendar
	weeks := make([]models.ContributionWeek, 0, len(cal.Weeks))
	for _, w := range cal.Weeks {
		week := models.ContributionWeek{FirstDay: w.FirstDay}
		for _, d := range w.ContributionDays {
			week.Days = append(week.Days, models.ContributionDay{
				Date:    d.Date,
				Count:   d.ContributionCount,
				Weekday: d.Weekday,
			})
		}
		weeks = append(weeks, week)
	}

	logger.Info("Fetched contribution calendar",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("total", cal.TotalContributions),
		zap.Int("weeks", len(weeks)))

	return cal.TotalContributions, weeks, nil
}

// RepositoryPage is one page of the viewer's repositories.
type RepositoryPage struct {
	Repositories []models.Repository
	HasNextPage  bool
	EndCursor    string
}

// FetchViewerRepositories returns one page of the viewer's
// repositories, newest first, projected onto the domain model.
func (c *Client) FetchViewerRepositories(ctx context.Context, first int, after string) (*RepositoryPage, error) {
	variables := map[string]any{"first": first}
	if after != "" {
		variables["after"] = after
	} else {
		variables["after"] = nil
	}

	var data struct {
		Viewer struct {
			Repositories struct {
				Nodes []struct {
					ID              string  `json:"id"`
					Name            string  `json:"name"`
					Description     *string `json:"description"`
					StargazerCount  int     `json:"stargazerCount"`
					IsPrivate       bool    `json:"isPrivate"`
					IsFork          bool    `json:"isFork"`
					IsArchived      bool    `json:"isArchived"`
					Owner           *struct {
						Login    string `json:"login"`
						TypeName string `json:"__typename"`
					} `json:"owner"`
					PrimaryLanguage *struct {
						Name string `json:"name"`
					} `json:"primaryLanguage"`
					DefaultBranchRef *struct {
						Name   string `json:"name"`
						Target *struct {
							History *struct {
								TotalCount int `json:"totalCount"`
								Edges      []struct {
									Node struct {
										CommittedDate   string `json:"committedDate"`
										OID             string `json:"oid"`
										MessageHeadline string `json:"messageHeadline"`
										Author          *struct {
											Name string `json:"name"`
										} `json:"author"`
									} `json:"node"`
								} `json:"edges"`
							} `json:"history"`
						} `json:"target"`
					} `json:"defaultBranchRef"`
					Refs *struct {
						TotalCount int `json:"totalCount"`
					} `json:"refs"`
					UpdatedAt string `json:"updatedAt"`
					ForkCount int    `json:"forkCount"`
				} `json:"nodes"`
				PageInfo struct {
					HasNextPage bool    `json:"hasNextPage"`
					EndCursor   *string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"repositories"`
		} `json:"viewer"`
	}

	if err := c.graphqlDo(ctx, viewerRepositoriesQuery, variables, &data); err != nil {
		return nil, err
	}

	page := &RepositoryPage{
		HasNextPage: data.Viewer.Repositories.PageInfo.HasNextPage,
	}
	if cursor := data.Viewer.Repositories.PageInfo.EndCursor; cursor != nil {
		page.EndCursor = *cursor
	}

	for _, n := range data.Viewer.Repositories.Nodes {
		repo := models.Repository{
			ID:       n.ID,
			Name:     n.Name,
			Language: "Unknown",
			Stars:    n.StargazerCount,
			Private:  n.IsPrivate,
			Fork:     n.IsFork,
			Archived: n.IsArchived,
			Forks:    n.ForkCount,
		}
		if n.Description != nil {
			repo.Description = *n.Description
		}
		if n.PrimaryLanguage != nil {
			repo.Language = n.PrimaryLanguage.Name
		}
		if n.Owner != nil {
			repo.OwnerLogin = n.Owner.Login
			repo.OwnerType = models.OwnerTypeUser
			if n.Owner.TypeName == "Organization" {
				repo.OwnerType = models.OwnerTypeOrganization
			}
		}
		if n.Refs != nil {
			repo.Branches = n.Refs.TotalCount
		}
		if ref := n.DefaultBranchRef; ref != nil {
			repo.DefaultBranch = ref.Name
			if ref.Target != nil && ref.Target.History != nil {
				repo.TotalCommits = ref.Target.History.TotalCount
				if len(ref.Target.History.Edges) > 0 {
					edge := ref.Target.History.Edges[0].Node
					commit := models.Commit{
						ID:      edge.OID,
						Hash:    edge.OID,
						Message: edge.MessageHeadline,
						Author:  repo.OwnerLogin,
					}
					if edge.Author != nil && edge.Author.Name != "" {
						commit.Author = edge.Author.Name
					}
					if t, err := parseGraphQLTime(edge.CommittedDate); err == nil {
						commit.Date = t
					}
					repo.Commits = []models.Commit{commit}
				}
			}
		}
		page.Repositories = append(page.Repositories, repo)
	}

	logger.Info("Fetched repository page",
		zap.Int("count", len(page.Repositories)),
		zap.Bool("has_next", page.HasNextPage))

	return page, nil
}
