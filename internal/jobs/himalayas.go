package jobs

import (
	"context"
	"net/url"
	"strings"
)

const himalayasURL = "https://himalayas.app/jobs/api"

type himalayasJob struct {
	Title                string   `json:"title"`
	CompanyName          string   `json:"companyName"`
	ApplicationLink      string   `json:"applicationLink"`
	Slug                 string   `json:"slug"`
	LocationRestrictions []string `json:"locationRestrictions"`
}

// Himalayas reads the remote jobs API.
type Himalayas struct {
	client  *Client
	URL     string
	JobRoot string
	Limit   string
}

func NewHimalayas(client *Client) *Himalayas {
	return &Himalayas{
		client:  client,
		URL:     himalayasURL,
		JobRoot: "https://himalayas.app/jobs/",
		Limit:   "30",
	}
}

func (s *Himalayas) Name() string { return "Himalayas" }

func (s *Himalayas) Search(ctx context.Context, skills []string) ([]Posting, error) {
	q := url.Values{}
	q.Set("limit", s.Limit)

	listings, err := getItems[himalayasJob](ctx, s.client, s.URL, q, "jobs")
	if err != nil {
		return nil, err
	}

	var postings []Posting
	for _, job := range listings {
		if !containsAny(job.Title, skills...) {
			continue
		}

		link := strings.TrimSpace(job.ApplicationLink)
		if link == "" {
			link = s.JobRoot + job.Slug
		}

		postings = append(postings, Posting{
			Title:   job.Title,
			Company: orDefault(job.CompanyName, "Himalayas"),
			URL:     link,
			Source:  "Himalayas",
			Summary: "Remote - " + orDefault(strings.Join(job.LocationRestrictions, ", "), "Worldwide"),
		})
	}

	return postings, nil
}
