package jobs

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	indeedRoot  = "https://tr.indeed.com"
	indeedCards = 20
)

// Indeed scrapes the Turkish Indeed result page.
type Indeed struct {
	client   *Client
	URL      string
	Root     string
	Location string
}

func NewIndeed(client *Client) *Indeed {
	return &Indeed{
		client:   client,
		URL:      indeedRoot + "/jobs",
		Root:     indeedRoot,
		Location: "Türkiye",
	}
}

func (s *Indeed) Name() string { return "Indeed" }

func (s *Indeed) Search(ctx context.Context, skills []string) ([]Posting, error) {
	if len(skills) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("q", skills[0])
	q.Set("l", s.Location)

	doc, err := s.client.getDocument(ctx, s.URL, q)
	if err != nil {
		return nil, err
	}

	cards := doc.Find("div.job_seen_beacon")
	if cards.Length() == 0 {
		cards = doc.Find("td.resultContent")
	}

	var postings []Posting
	cards.Slice(0, min(cards.Length(), indeedCards)).Each(func(_ int, card *goquery.Selection) {
		if p, ok := s.parseCard(card); ok {
			postings = append(postings, p)
		}
	})

	return postings, nil
}

func (s *Indeed) parseCard(card *goquery.Selection) (Posting, bool) {
	titleElem := card.Find("h2.jobTitle").First()
	if titleElem.Length() == 0 {
		titleElem = card.Find("a[data-jk]").First()
	}
	if titleElem.Length() == 0 {
		return Posting{}, false
	}
	// The "new" badge is rendered inside the title element.
	title := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(titleElem.Text()), "new"))

	href, ok := card.Find("a[href]").First().Attr("href")
	if !ok || title == "" {
		return Posting{}, false
	}

	link := strings.TrimSpace(href)
	if strings.HasPrefix(link, "/") {
		link = s.Root + link
	}
	if !strings.Contains(link, "indeed.com") {
		return Posting{}, false
	}

	company := firstText(card, `span[data-testid="company-name"]`, "span.companyName")
	location := firstText(card, `div[data-testid="text-location"]`, "div.companyLocation")

	return Posting{
		Title:   title,
		Company: orDefault(company, "Indeed İlanı"),
		URL:     link,
		Source:  "Indeed",
		Summary: location,
	}, true
}

// firstText returns the trimmed text of the first selector that matches.
func firstText(s *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		if found := s.Find(selector).First(); found.Length() > 0 {
			return strings.TrimSpace(found.Text())
		}
	}
	return ""
}
