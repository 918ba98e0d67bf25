package jobs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/job-matcher/internal/utils"
)

const linkedinURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"

// LinkedIn reads the public guest search endpoint page by page.
type LinkedIn struct {
	client    *Client
	URL       string
	Location  string
	Starts    []int
	PageDelay time.Duration
}

func NewLinkedIn(client *Client) *LinkedIn {
	return &LinkedIn{
		client:    client,
		URL:       linkedinURL,
		Location:  "Turkey",
		Starts:    []int{0, 25, 50},
		PageDelay: 500 * time.Millisecond,
	}
}

func (s *LinkedIn) Name() string { return "LinkedIn" }

// Search walks the result pages. A page answered with a non-200 status is
// skipped; a transport failure ends the walk. An error is reported only when
// no page could be read.
func (s *LinkedIn) Search(ctx context.Context, skills []string) ([]Posting, error) {
	if len(skills) == 0 {
		return nil, nil
	}

	var (
		postings  []Posting
		read      bool
		statusErr error
	)
	for i, start := range s.Starts {
		q := url.Values{}
		q.Set("keywords", skills[0])
		q.Set("location", s.Location)
		q.Set("start", strconv.Itoa(start))

		doc, err := s.client.getDocument(ctx, s.URL, q)
		if err != nil {
			var bad *StatusError
			if errors.As(err, &bad) {
				statusErr = fmt.Errorf("page start=%d: %w", start, err)
				continue
			}
			return postings, fmt.Errorf("page start=%d: %w", start, err)
		}
		read = true

		items := doc.Find("li")
		if items.Length() == 0 {
			break
		}

		items.Each(func(_ int, item *goquery.Selection) {
			if p, ok := parseLinkedInItem(item); ok {
				postings = append(postings, p)
			}
		})

		if i < len(s.Starts)-1 {
			if err := utils.WaitFor(ctx, s.PageDelay); err != nil {
				return postings, err
			}
		}
	}

	if !read && statusErr != nil {
		return postings, statusErr
	}

	return postings, nil
}

func parseLinkedInItem(item *goquery.Selection) (Posting, bool) {
	title := strings.TrimSpace(item.Find("h3.base-search-card__title").First().Text())
	href, ok := item.Find("a.base-card__full-link").First().Attr("href")
	company := strings.TrimSpace(item.Find("h4.base-search-card__subtitle").First().Text())
	if title == "" || !ok || company == "" {
		return Posting{}, false
	}

	link, _, _ := strings.Cut(strings.TrimSpace(href), "?")
	location := orDefault(item.Find("span.job-search-card__location").First().Text(), "Türkiye")

	return Posting{
		Title:   title,
		Company: company,
		URL:     link,
		Source:  "LinkedIn",
		Summary: location,
	}, true
}
