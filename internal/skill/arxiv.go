package skill

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ArxivConfig holds arXiv API settings.
type ArxivConfig struct {
	Endpoint string
}

// Paper is one arXiv result.
type Paper struct {
	Title           string    `json:"title"`
	Authors         []string  `json:"authors"`
	Summary         string    `json:"summary"`
	Published       time.Time `json:"published"`
	Updated         time.Time `json:"updated"`
	DOI             string    `json:"doi,omitempty"`
	PrimaryCategory string    `json:"primary_category"`
	Categories      []string  `json:"categories"`
	Links           []string  `json:"links"`
	PDFURL          string    `json:"pdf_url,omitempty"`
}

// ArxivSkill queries the arXiv Atom API for papers.
type ArxivSkill struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewArxivSkill creates the paper search skill.
func NewArxivSkill(cfg ArxivConfig, logger *zap.Logger) *ArxivSkill {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://export.arxiv.org/api/query"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArxivSkill{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

// Initialize probes the API with a one-result query.
func (s *ArxivSkill) Initialize(ctx context.Context) error {
	_, err := s.Search(ctx, "electron", 1, "")
	return err
}

// Atom feed shapes. Fields are matched by local name; the arxiv-namespaced
// extensions (doi, primary_category) resolve the same way.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
	DOI       string `xml:"doi"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Links []struct {
		Href string `xml:"href,attr"`
		Rel  string `xml:"rel,attr"`
		Type string `xml:"type,attr"`
	} `xml:"link"`
	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"primary_category"`
	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
}

// Search returns up to maxResults papers matching the query, newest first.
// A non-empty category narrows the search to that arXiv category.
func (s *ArxivSkill) Search(ctx context.Context, query string, maxResults int, category string) ([]Paper, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	search := query
	if category != "" {
		search = fmt.Sprintf("cat:%s AND (%s)", category, query)
	}

	params := url.Values{}
	params.Set("search_query", search)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		papers = append(papers, convertEntry(e))
	}
	s.logger.Debug("paper search complete",
		zap.String("query", search),
		zap.Int("papers", len(papers)))
	return papers, nil
}

func convertEntry(e atomEntry) Paper {
	p := Paper{
		// arXiv wraps titles and abstracts across lines.
		Title:           strings.Join(strings.Fields(e.Title), " "),
		Summary:         strings.TrimSpace(e.Summary),
		DOI:             e.DOI,
		PrimaryCategory: e.PrimaryCategory.Term,
	}
	p.Published, _ = time.Parse(time.RFC3339, e.Published)
	p.Updated, _ = time.Parse(time.RFC3339, e.Updated)
	for _, a := range e.Authors {
		p.Authors = append(p.Authors, a.Name)
	}
	for _, c := range e.Categories {
		p.Categories = append(p.Categories, c.Term)
	}
	for _, l := range e.Links {
		p.Links = append(p.Links, l.Href)
		if l.Type == "application/pdf" {
			p.PDFURL = l.Href
		}
	}
	return p
}
