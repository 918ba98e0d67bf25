package jobs

import (
	"context"
	"fmt"
	"strings"
)

const findworkURL = "https://findwork.dev/api/jobs/"

type findworkJob struct {
	Role        string   `json:"role"`
	URL         string   `json:"url"`
	CompanyName string   `json:"company_name"`
	Location    string   `json:"location"`
	Keywords    []string `json:"keywords"`
}

// FindWork reads the developer jobs API and matches skills against role or keywords.
type FindWork struct {
	client *Client
	URL    string
	Limit  int
}

func NewFindWork(client *Client) *FindWork {
	return &FindWork{client: client, URL: findworkURL, Limit: 25}
}

func (s *FindWork) Name() string { return "FindWork.dev" }

func (s *FindWork) Search(ctx context.Context, skills []string) ([]Posting, error) {
	listings, err := getItems[findworkJob](ctx, s.client, s.URL, nil, "results")
	if err != nil {
		return nil, err
	}

	if len(listings) > s.Limit {
		listings = listings[:s.Limit]
	}

	var postings []Posting
	for _, job := range listings {
		if job.URL == "" {
			continue
		}
		if !containsAny(job.Role, skills...) && !containsAny(strings.Join(job.Keywords, " "), skills...) {
			continue
		}
		postings = append(postings, Posting{
			Title:   job.Role,
			Company: orDefault(job.CompanyName, "FindWork"),
			URL:     job.URL,
			Source:  "FindWork.dev",
			Summary: fmt.Sprintf("%s - %s", orDefault(job.Location, "Remote"), strings.Join(firstN(job.Keywords, 3), ", ")),
		})
	}

	return postings, nil
}
