package jobs

import (
	"context"
	"fmt"
	"strings"
)

const arbeitnowURL = "https://www.arbeitnow.com/api/job-board-api"

type arbeitnowJob struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	CompanyName string   `json:"company_name"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
}

// Arbeitnow reads the public job board API and keeps titles matching a skill.
type Arbeitnow struct {
	client *Client
	URL    string
	Limit  int
}

func NewArbeitnow(client *Client) *Arbeitnow {
	return &Arbeitnow{client: client, URL: arbeitnowURL, Limit: 30}
}

func (s *Arbeitnow) Name() string { return "Arbeitnow" }

func (s *Arbeitnow) Search(ctx context.Context, skills []string) ([]Posting, error) {
	listings, err := getItems[arbeitnowJob](ctx, s.client, s.URL, nil, "data")
	if err != nil {
		return nil, err
	}

	if len(listings) > s.Limit {
		listings = listings[:s.Limit]
	}

	var postings []Posting
	for _, job := range listings {
		if job.URL == "" || !containsAny(job.Title, skills...) {
			continue
		}
		postings = append(postings, Posting{
			Title:   job.Title,
			Company: orDefault(job.CompanyName, "Arbeitnow"),
			URL:     job.URL,
			Source:  "Arbeitnow",
			Summary: fmt.Sprintf("%s - %s", orDefault(job.Location, "Remote"), strings.Join(firstN(job.Tags, 3), ", ")),
		})
	}

	return postings, nil
}
