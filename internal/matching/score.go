// Package matching scores job postings against a candidate profile and keeps the results.
package matching

import (
	"math"
	"time"
)

// DefaultSubScore replaces a sub-score the model did not return.
const DefaultSubScore = 50

// Weights of the composite score.
const (
	weightTechnical   = 0.40
	weightExperience  = 0.25
	weightEducation   = 0.15
	weightLanguage    = 0.10
	weightCertificate = 0.10
)

// SubScores are the five rubric categories, each 0..100. A nil field was not
// returned by the model.
type SubScores struct {
	Technical   *int `json:"technical"`
	Experience  *int `json:"experience"`
	Education   *int `json:"education"`
	Language    *int `json:"language"`
	Certificate *int `json:"certificate"`
}

// Resolved returns a copy where every missing sub-score is DefaultSubScore and
// every value is clamped to 0..100.
func (s SubScores) Resolved() SubScores {
	return SubScores{
		Technical:   resolve(s.Technical),
		Experience:  resolve(s.Experience),
		Education:   resolve(s.Education),
		Language:    resolve(s.Language),
		Certificate: resolve(s.Certificate),
	}
}

func resolve(v *int) *int {
	out := DefaultSubScore
	if v != nil {
		out = min(max(*v, 0), 100)
	}
	return &out
}

// Composite is round(0.40T + 0.25E + 0.15Ed + 0.10L + 0.10C). Products are
// summed left to right in float64 and the sum rounds half to even, so values
// such as 74.50000000000001 round up and 43.49999999999999 rounds down.
func Composite(s SubScores) int {
	r := s.Resolved()

	// Each conversion rounds the product, so no step is fused into a multiply-add.
	sum := float64(float64(*r.Technical) * weightTechnical)
	sum += float64(float64(*r.Experience) * weightExperience)
	sum += float64(float64(*r.Education) * weightEducation)
	sum += float64(float64(*r.Language) * weightLanguage)
	sum += float64(float64(*r.Certificate) * weightCertificate)

	return int(math.RoundToEven(sum))
}

// Assessment is a scored fit of one posting for one profile.
type Assessment struct {
	Score           int       `json:"score"`
	SubScores       SubScores `json:"sub_scores"`
	FitReason       string    `json:"fit_reason,omitempty"`
	MatchedSkills   []string  `json:"matched_skills,omitempty"`
	MissingSkills   []string  `json:"missing_skills,omitempty"`
	ExperienceFit   string    `json:"experience_fit,omitempty"`
	EducationFit    string    `json:"education_fit,omitempty"`
	LanguageFit     string    `json:"language_fit,omitempty"`
	Strengths       []string  `json:"strengths,omitempty"`
	Improvements    []string  `json:"improvements,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	Model           string    `json:"model,omitempty"`
}

// NewAssessment sets Score from the sub-scores. The composite is never taken from the model.
func NewAssessment(sub SubScores) *Assessment {
	return &Assessment{
		Score:     Composite(sub),
		SubScores: sub.Resolved(),
	}
}

// Match is the stored assessment of a (profile, posting) pair. One exists per pair.
type Match struct {
	ID         int64       `json:"id"`
	ProfileID  int64       `json:"profile_id"`
	PostingID  int64       `json:"posting_id"`
	Assessment *Assessment `json:"assessment"`
	UpdatedAt  time.Time   `json:"updated_at"`

	// Set by listings that join the posting.
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Score is the composite score, zero when no assessment is attached.
func (m *Match) Score() int {
	if m.Assessment == nil {
		return 0
	}
	return m.Assessment.Score
}
