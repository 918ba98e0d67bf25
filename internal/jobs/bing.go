package jobs

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	bingURL     = "https://www.bing.com/search"
	bingResults = 10
)

// Bing searches for LinkedIn and Indeed postings through the public result page.
type Bing struct {
	client *Client
	URL    string
}

func NewBing(client *Client) *Bing {
	return &Bing{client: client, URL: bingURL}
}

func (s *Bing) Name() string { return "Bing" }

func (s *Bing) Search(ctx context.Context, skills []string) ([]Posting, error) {
	if len(skills) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("q", skills[0]+" job turkey site:linkedin.com OR site:indeed.com")

	doc, err := s.client.getDocument(ctx, s.URL, q)
	if err != nil {
		return nil, err
	}

	results := doc.Find("li.b_algo")
	var postings []Posting
	results.Slice(0, min(results.Length(), bingResults)).Each(func(_ int, r *goquery.Selection) {
		a := r.Find("a[href]").First()
		link, _ := a.Attr("href")
		link = strings.TrimSpace(link)

		var source string
		switch {
		case strings.Contains(link, "linkedin"):
			source = "LinkedIn (Bing)"
		case strings.Contains(link, "indeed"):
			source = "Indeed (Bing)"
		default:
			return
		}

		postings = append(postings, Posting{
			Title:   cut(strings.TrimSpace(a.Text()), 100),
			Company: "Bing Search",
			URL:     link,
			Source:  source,
		})
	})

	return postings, nil
}
