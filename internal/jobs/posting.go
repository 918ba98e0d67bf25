// Package jobs queries public job sources and normalizes their listings into postings.
package jobs

import (
	"regexp"
	"strings"
	"time"

	"github.com/spigell/job-matcher/internal/utils"
)

// Posting is a normalized job listing. URL is its identity.
type Posting struct {
	ID           int64     `json:"id,omitempty"`
	OwnerID      int64     `json:"owner_id,omitempty"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	URL          string    `json:"url"`
	Source       string    `json:"source"`
	Summary      string    `json:"summary"`
	DiscoveredAt time.Time `json:"discovered_at,omitempty"`
	FullText     string    `json:"-"`
}

// FallbackText is the scoring input used when the posting page cannot be fetched.
func (p *Posting) FallbackText() string {
	return strings.TrimSpace(strings.Join([]string{p.Title, p.Company, p.Summary}, " "))
}

const (
	maxSkillTerms = 3
	minSkillRunes = 2
	fallbackSkill = "Developer"
)

var parenthetical = regexp.MustCompile(`\s*\(.*?\)`)

// CleanSkills turns profile skills into search terms: the first three skills with
// parenthetical notes removed, at least two runes long and without duplicates.
// It falls back to a generic term when nothing qualifies; the second result reports that.
func CleanSkills(skills []string) ([]string, bool) {
	if len(skills) > maxSkillTerms {
		skills = skills[:maxSkillTerms]
	}

	terms := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		term := strings.TrimSpace(parenthetical.ReplaceAllString(skill, ""))
		if len([]rune(term)) < minSkillRunes {
			continue
		}
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, term)
	}

	if len(terms) == 0 {
		return []string{fallbackSkill}, true
	}

	return terms, false
}

// containsAny reports whether text contains any of terms, ignoring case.
func containsAny(text string, terms ...string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}

func cut(s string, limit int) string {
	return utils.Cut(strings.TrimSpace(s), limit)
}
