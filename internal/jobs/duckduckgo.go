package jobs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	duckduckgoURL     = "https://html.duckduckgo.com/html/"
	duckduckgoRegion  = "tr-tr"
	duckduckgoResults = 10
	defaultCompany    = "İş İlanı"
)

// siteQueries are the site-restricted templates; %s is the quoted primary skill.
var siteQueries = []string{
	`site:kariyer.net %s iş ilanı`,
	`site:yenibiris.com %s`,
	`site:secretcv.com %s`,
	`site:eleman.net %s`,
	`site:glassdoor.com %s turkey OR türkiye`,
	`site:boards.greenhouse.io %s`,
	`site:jobs.lever.co %s`,
	`site:indeed.com %s türkiye OR istanbul`,
	`site:startupjobs.com %s turkey`,
	`site:wellfound.com %s`,
}

var siteLabels = []struct {
	marker string
	label  string
}{
	{"kariyer.net", "Kariyer.net"},
	{"yenibiris", "Yenibiris"},
	{"secretcv", "SecretCV"},
	{"eleman.net", "Eleman.net"},
	{"glassdoor", "Glassdoor"},
	{"greenhouse", "Greenhouse"},
	{"lever.co", "Lever"},
	{"indeed", "Indeed"},
	{"startupjobs", "StartupJobs"},
	{"wellfound", "Wellfound"},
	{"workable", "Workable"},
}

var titleSeparators = []string{" - ", " | ", " — ", " at ", " · "}

// DuckDuckGo runs one site-restricted web search per known job board.
type DuckDuckGo struct {
	client     *Client
	URL        string
	Region     string
	QueryDelay time.Duration
}

func NewDuckDuckGo(client *Client) *DuckDuckGo {
	return &DuckDuckGo{
		client:     client,
		URL:        duckduckgoURL,
		Region:     duckduckgoRegion,
		QueryDelay: 800 * time.Millisecond,
	}
}

func (s *DuckDuckGo) Name() string { return "DuckDuckGo" }

func (s *DuckDuckGo) Search(ctx context.Context, skills []string) ([]Posting, error) {
	if len(skills) == 0 {
		return nil, nil
	}

	// A non-positive delay yields rate.Inf.
	limiter := rate.NewLimiter(rate.Every(s.QueryDelay), 1)

	var (
		postings []Posting
		errs     []error
	)
	for _, tmpl := range siteQueries {
		if err := limiter.Wait(ctx); err != nil {
			return postings, err
		}

		query := fmt.Sprintf(tmpl, `"`+skills[0]+`"`)
		results, err := s.query(ctx, query)
		if err != nil {
			errs = append(errs, fmt.Errorf("query %q: %w", query, err))
			continue
		}

		for _, r := range results {
			if p, ok := searchResultPosting(r, skills); ok {
				postings = append(postings, p)
			}
		}
	}

	if len(postings) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return postings, nil
}

type searchResult struct {
	Title   string
	URL     string
	Snippet string
}

func (s *DuckDuckGo) query(ctx context.Context, query string) ([]searchResult, error) {
	form := url.Values{}
	form.Set("q", query)
	form.Set("kl", s.Region)

	doc, err := s.client.postForm(ctx, s.URL, form, map[string]string{"Referer": "https://html.duckduckgo.com/"})
	if err != nil {
		return nil, err
	}

	var results []searchResult
	doc.Find(".result, .web-result").EachWithBreak(func(_ int, r *goquery.Selection) bool {
		link := r.Find("a.result__a, .result__title a, a.result-link").First()
		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if !ok || title == "" {
			return true
		}

		results = append(results, searchResult{
			Title:   title,
			URL:     unwrapDuckDuckGoURL(href),
			Snippet: strings.TrimSpace(r.Find(".result__snippet, .result__body").First().Text()),
		})
		return len(results) < duckduckgoResults
	})

	return results, nil
}

// unwrapDuckDuckGoURL resolves the //duckduckgo.com/l/?uddg= redirect wrapper.
func unwrapDuckDuckGoURL(href string) string {
	href = strings.TrimSpace(href)
	if !strings.Contains(href, "duckduckgo.com/l/") {
		return href
	}

	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}

	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func searchResultPosting(r searchResult, skills []string) (Posting, bool) {
	if !strings.HasPrefix(r.URL, "http") {
		return Posting{}, false
	}

	text := r.Title + " " + r.Snippet
	if !containsAny(text, skills...) && !containsAny(text, "developer", "engineer", "yazılım", "geliştirici") {
		return Posting{}, false
	}

	title, company := splitTitle(r.Title)

	return Posting{
		Title:   cut(title, 100),
		Company: cut(company, 50),
		URL:     r.URL,
		Source:  classifySite(r.URL),
		Summary: cut(r.Snippet, 150),
	}, true
}

// splitTitle recovers "title" and "company" from "title - company" style search titles.
func splitTitle(full string) (string, string) {
	for _, sep := range titleSeparators {
		if !strings.Contains(full, sep) {
			continue
		}
		parts := strings.Split(full, sep)
		company := defaultCompany
		if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
			company = strings.TrimSpace(parts[1])
		}
		return strings.TrimSpace(parts[0]), company
	}
	return full, defaultCompany
}

func classifySite(link string) string {
	for _, site := range siteLabels {
		if strings.Contains(link, site.marker) {
			return site.label
		}
	}
	return "Web"
}
