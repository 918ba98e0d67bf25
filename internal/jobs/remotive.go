package jobs

import (
	"context"
	"net/url"
)

const remotiveURL = "https://remotive.com/api/remote-jobs"

type remotiveJob struct {
	Title                     string `json:"title"`
	URL                       string `json:"url"`
	CompanyName               string `json:"company_name"`
	CandidateRequiredLocation string `json:"candidate_required_location"`
}

// Remotive reads the remote jobs API. Generic developer and engineer titles
// are kept even without a skill match.
type Remotive struct {
	client *Client
	URL    string
	Limit  string
}

func NewRemotive(client *Client) *Remotive {
	return &Remotive{client: client, URL: remotiveURL, Limit: "50"}
}

func (s *Remotive) Name() string { return "Remotive" }

func (s *Remotive) Search(ctx context.Context, skills []string) ([]Posting, error) {
	q := url.Values{}
	q.Set("limit", s.Limit)

	listings, err := getItems[remotiveJob](ctx, s.client, s.URL, q, "jobs")
	if err != nil {
		return nil, err
	}

	var postings []Posting
	for _, job := range listings {
		if job.URL == "" {
			continue
		}
		if !containsAny(job.Title, skills...) && !containsAny(job.Title, "developer", "engineer") {
			continue
		}
		postings = append(postings, Posting{
			Title:   job.Title,
			Company: job.CompanyName,
			URL:     job.URL,
			Source:  "Remotive",
			Summary: "Remote - " + orDefault(job.CandidateRequiredLocation, "Worldwide"),
		})
	}

	return postings, nil
}
