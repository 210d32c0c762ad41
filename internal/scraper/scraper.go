// Package scraper fetches Fandom and MediaWiki articles and turns them into chunked documents.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/phuslu/log"

	"wikiqa/internal/chunker"
	"wikiqa/internal/domain"
	"wikiqa/internal/logging"
)

// Defaults for the HTTP fetch.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "wikiqa/1.0 (+https://github.com/wikiqa)"
	contentSelector  = "div.mw-parser-output"
)

// Config configures the scraper.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// Scraper downloads a page and splits its article body by headings.
type Scraper struct {
	client    *http.Client
	userAgent string
	chunker   *chunker.SectionChunker
	logger    *log.Logger
}

var _ domain.Scraper = (*Scraper)(nil)

// New creates a scraper. A nil chunker uses the default section chunker.
func New(cfg Config, ch *chunker.SectionChunker, logger *log.Logger) *Scraper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if ch == nil {
		ch = chunker.NewSectionChunker()
	}
	return &Scraper{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		chunker:   ch,
		logger:    logging.OrNop(logger),
	}
}

// Scrape fetches url. Transport failures and non-2xx responses return *domain.FetchError;
// a page without an article body returns *domain.StructureError.
func (s *Scraper) Scrape(ctx context.Context, url string) (*domain.Document, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("parse html: %w", err)}
	}
	document, err := Parse(doc, url, s.chunker)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("url", url).
		Str("title", document.Title).
		Int("chunks", len(document.Chunks)).
		Dur("duration", time.Since(start)).
		Msg("page scraped")
	return document, nil
}

// Parse extracts the title and section chunks from an already loaded page.
func Parse(doc *goquery.Document, url string, ch *chunker.SectionChunker) (*domain.Document, error) {
	content := doc.Find(contentSelector).First()
	if content.Length() == 0 {
		return nil, &domain.StructureError{URL: url, Missing: contentSelector}
	}

	var blocks []chunker.Block
	content.Find("h2, h3, p").Each(func(_ int, sel *goquery.Selection) {
		text := collapse(sel.Text())
		if goquery.NodeName(sel) == "p" {
			blocks = append(blocks, chunker.Block{Kind: chunker.Paragraph, Text: text})
			return
		}
		blocks = append(blocks, chunker.Block{Kind: chunker.Heading, Text: text})
	})

	return &domain.Document{
		Title:  collapse(doc.Find("h1").First().Text()),
		URL:    url,
		Chunks: ch.Chunk(blocks),
	}, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
