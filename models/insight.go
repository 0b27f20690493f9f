package models

import (
	"encoding/json"
	"fmt"
)

// InsightPayload is the paragraph-based insight shape. This is the only
// shape written to the cache; the legacy fixed-field shape is upgraded
// to it at read time.
type InsightPayload struct {
	Paragraphs []string `json:"paragraphs"`
}

// LegacyInsight is the superseded fixed-field insight shape that may
// still exist in cache rows written before the schema change.
type LegacyInsight struct {
	PeakPerformance         string `json:"peakPerformance"`
	AvgCommitsOnPeak        int    `json:"avgCommitsOnPeak"`
	LanguageFocus           string `json:"languageFocus"`
	LanguageFocusPercentage int    `json:"languageFocusPercentage"`
	ConsistencyStreak       int    `json:"consistencyStreak"`
	ConsistencyRecord       int    `json:"consistencyRecord"`
}

// Upgrade templates the legacy fields into the paragraph shape.
func (l LegacyInsight) Upgrade() InsightPayload {
	return InsightPayload{
		Paragraphs: []string{
			fmt.Sprintf("Your most productive day tends to be %s, averaging %d commits on that day.",
				l.PeakPerformance, l.AvgCommitsOnPeak),
			fmt.Sprintf("%s is your most used language at %d%%.",
				l.LanguageFocus, l.LanguageFocusPercentage),
			fmt.Sprintf("You're currently on a %d-day streak. Your best streak so far is %d days.",
				l.ConsistencyStreak, l.ConsistencyRecord),
		},
	}
}

// DecodeInsight interprets a raw cache row as either the paragraph
// shape or the legacy shape, upgrading the latter. The second return
// value is false when the blob matches neither shape; callers treat
// that as a cache miss.
func DecodeInsight(raw []byte) (InsightPayload, bool) {
	var payload InsightPayload
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Paragraphs != nil {
		return payload, true
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return InsightPayload{}, false
	}
	for _, field := range []string{
		"peakPerformance", "avgCommitsOnPeak", "languageFocus",
		"languageFocusPercentage", "consistencyStreak", "consistencyRecord",
	} {
		if _, ok := probe[field]; !ok {
			return InsightPayload{}, false
		}
	}

	var legacy LegacyInsight
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return InsightPayload{}, false
	}
	return legacy.Upgrade(), true
}
