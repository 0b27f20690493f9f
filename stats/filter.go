package stats

import (
	"sort"
	"strings"

	"github.com/Nethaiah/commitlens/models"
)

// Filter scope values.
const (
	ScopeAll          = "all"
	ScopeOwner        = "owner"
	ScopeCollaborator = "collaborator"
	ScopeOrganization = "organization"
)

// Sort keys accepted by FilterOptions.SortBy.
const (
	SortByName    = "name"
	SortByStars   = "stars"
	SortByCommits = "commits"
	SortByUpdated = "updated"
)

// FilterOptions selects and orders the repository list. Zero values
// mean "no constraint": empty Query matches everything, and empty or
// "all" Language/Visibility/Scope disable those filters. SortBy
// defaults to most recently updated.
type FilterOptions struct {
	Query        string
	Language     string
	Visibility   string // "all", "public" or "private"
	Scope        string
	HideForks    bool
	HideArchived bool
	SortBy       string
	ViewerLogin  string // session login used by the owner scope
}

// FilterRepositories applies the filter/sort pipeline and returns a
// new slice. The input is never reordered or mutated, and equal sort
// keys keep their relative order, so applying the same options twice
// yields the same list.
func FilterRepositories(repos []models.Repository, opts FilterOptions) []models.Repository {
	query := strings.ToLower(opts.Query)

	filtered := make([]models.Repository, 0, len(repos))
	for _, r := range repos {
		if query != "" &&
			!strings.Contains(strings.ToLower(r.Name), query) &&
			!strings.Contains(strings.ToLower(r.Description), query) {
			continue
		}
		if opts.Language != "" && opts.Language != "all" && r.Language != opts.Language {
			continue
		}
		switch opts.Visibility {
		case "private":
			if !r.Private {
				continue
			}
		case "public":
			if r.Private {
				continue
			}
		}
		if !matchesScope(r, opts.Scope, opts.ViewerLogin) {
			continue
		}
		if opts.HideForks && r.Fork {
			continue
		}
		if opts.HideArchived && r.Archived {
			continue
		}
		filtered = append(filtered, r)
	}

	cmp := less(opts.SortBy)
	sort.SliceStable(filtered, func(i, j int) bool {
		return cmp(filtered[i], filtered[j])
	})
	return filtered
}

func matchesScope(r models.Repository, scope, viewerLogin string) bool {
	isOwner := r.OwnerLogin == viewerLogin
	isOrg := r.OwnerType == models.OwnerTypeOrganization
	switch scope {
	case ScopeOwner:
		return isOwner
	case ScopeCollaborator:
		return !isOwner && !isOrg
	case ScopeOrganization:
		return isOrg
	default:
		return true
	}
}

func less(sortBy string) func(a, b models.Repository) bool {
	switch sortBy {
	case SortByName:
		return func(a, b models.Repository) bool {
			return a.Name < b.Name
		}
	case SortByStars:
		return func(a, b models.Repository) bool {
			return a.Stars > b.Stars
		}
	case SortByCommits:
		return func(a, b models.Repository) bool {
			return a.BestCommitCount() > b.BestCommitCount()
		}
	default:
		// Most recent commit first; repositories without a sampled
		// commit date sort as epoch 0, i.e. oldest.
		return func(a, b models.Repository) bool {
			return a.LastCommitDate().After(b.LastCommitDate())
		}
	}
}
