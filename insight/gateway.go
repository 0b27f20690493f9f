// Package insight generates and caches natural-language productivity
// insights. Generation either asks the configured text model or, when
// no credential is present, derives the same semantic fields directly
// from the stats snapshot. The cache is strictly an optimization:
// persistence failures are logged and never surfaced.
package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Nethaiah/commitlens/db"
	"github.com/Nethaiah/commitlens/logger"
	"github.com/Nethaiah/commitlens/models"
	"github.com/Nethaiah/commitlens/stats"
)

// Gateway errors
var (
	// ErrNotFound signals a cache miss, including misses caused by
	// storage failures or unrecognizable payload shapes.
	ErrNotFound = fmt.Errorf("insight not found")

	// ErrMalformedGeneratedText signals that the text model's
	// response was not parseable as the required JSON shape even
	// after fence stripping. This is a hard failure: once the
	// external call has been attempted, there is no silent fallback.
	ErrMalformedGeneratedText = fmt.Errorf("malformed generated text")
)

// Store abstracts the insight persistence operations needed by the gateway
// (for testability)
type Store interface {
	GetInsight(ctx context.Context, userID, rangeKey, repo string) (*db.InsightRecord, error)
	ReplaceInsight(ctx context.Context, userID, rangeKey, repo string, data []byte) error
}

// TextGenerator abstracts the external text-generation collaborator.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gateway is the keyed insight cache plus the two generation paths.
type Gateway struct {
	store     Store
	generator TextGenerator
}

// NewGateway creates a gateway. generator may be nil, in which case
// every Generate call takes the deterministic fallback path.
func NewGateway(store Store, generator TextGenerator) *Gateway {
	return &Gateway{store: store, generator: generator}
}

// Fetch returns the cached insight for the key triple. Legacy
// fixed-field rows are upgraded to the paragraph shape at read time.
// Storage failures and unrecognizable payloads are both reported as
// ErrNotFound, never as errors in their own right.
func (g *Gateway) Fetch(ctx context.Context, userID, rangeKey, repo string) (models.InsightPayload, error) {
	record, err := g.store.GetInsight(ctx, userID, rangeKey, repo)
	if err != nil {
		if !errors.Is(err, db.ErrInsightNotFound) {
			logger.Warn("Insight cache read failed, treating as miss",
				zap.Error(err),
				zap.String("user_id", userID))
		}
		return models.InsightPayload{}, ErrNotFound
	}

	payload, ok := models.DecodeInsight(record.Data)
	if !ok {
		return models.InsightPayload{}, ErrNotFound
	}
	return payload, nil
}

// Generate computes a fresh insight payload for the snapshot and
// best-effort caches it. The payload is returned even when the cache
// write fails; only a malformed model response is a hard failure.
func (g *Gateway) Generate(ctx context.Context, userID string, snapshot models.StatsSnapshot) (models.InsightPayload, error) {
	var payload models.InsightPayload

	if g.generator == nil {
		payload = fallbackPayload(snapshot)
	} else {
		text, err := g.generator.Generate(ctx, BuildPrompt(snapshot))
		if err != nil {
			return models.InsightPayload{}, fmt.Errorf("failed to generate insight: %w", err)
		}
		payload, err = parseGenerated(text)
		if err != nil {
			return models.InsightPayload{}, err
		}
	}

	g.writeCache(ctx, userID, snapshot, payload)
	return payload, nil
}

// writeCache replaces the cached record for the snapshot's key triple.
// Failures are logged and swallowed.
func (g *Gateway) writeCache(ctx context.Context, userID string, snapshot models.StatsSnapshot, payload models.InsightPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("Failed to encode insight for caching", zap.Error(err))
		return
	}
	if err := g.store.ReplaceInsight(ctx, userID, snapshot.RangeKey, snapshot.Repo, data); err != nil {
		logger.Warn("Insight cache write failed",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("range_key", snapshot.RangeKey),
			zap.String("repo", snapshot.Repo))
	}
}

// parseGenerated decodes the model response, tolerating a fenced
// ```json code block around the payload.
func parseGenerated(text string) (models.InsightPayload, error) {
	var payload models.InsightPayload
	if err := json.Unmarshal([]byte(text), &payload); err == nil && payload.Paragraphs != nil {
		return payload, nil
	}

	cleaned := stripFence(text)
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil || payload.Paragraphs == nil {
		return models.InsightPayload{}, fmt.Errorf("%w: %.80s", ErrMalformedGeneratedText, text)
	}
	return payload, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "```json"); ok {
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "```"); ok {
		s = rest
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// fallbackPayload assembles the insight paragraphs purely from the
// snapshot, mirroring the semantic fields the model is asked for.
func fallbackPayload(snapshot models.StatsSnapshot) models.InsightPayload {
	topLang := "Unknown"
	topPct := 0
	if len(snapshot.Languages) > 0 {
		topLang = snapshot.Languages[0].Name
		topPct = snapshot.Languages[0].Percentage
	}

	peakDay := "Sunday"
	peakVal := 0
	if n := len(snapshot.ContributionWeeks); n > 0 {
		peakDay, peakVal = stats.PeakDay(snapshot.ContributionWeeks[n-1].Days)
	}

	overview := snapshot.Overview
	paragraphs := make([]string, 0, 4)
	if snapshot.Repo == models.AllRepositories {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"Across all repositories, you average %.2f commits/day with %d total commits and %d active days.",
			overview.AvgCommitsPerDay, overview.TotalCommits, overview.ActiveDays))
	} else {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"In %s, you average %.2f commits/day with %d commits.",
			snapshot.Repo, overview.AvgCommitsPerDay, overview.TotalCommits))
	}
	paragraphs = append(paragraphs, fmt.Sprintf(
		"Your most productive day tends to be %s, averaging %d commits. %s is the dominant language at %d%%.",
		peakDay, peakVal, topLang, topPct))
	paragraphs = append(paragraphs, fmt.Sprintf(
		"You're on a %d-day streak; your record is %d days. Keep momentum to set a new high.",
		overview.CurrentStreak, overview.LongestStreak))

	switch snapshot.CountMode {
	case "all":
		paragraphs = append(paragraphs,
			"Counting mode is set to All Authored Commits, which includes commits that may not count toward GitHub contributions (e.g., work on forks or non-default branches).")
	case "contrib":
		paragraphs = append(paragraphs,
			"Counting mode is set to Contributions, matching GitHub's contribution rules (default branch or gh-pages, merged PRs).")
	}

	return models.InsightPayload{Paragraphs: paragraphs}
}
