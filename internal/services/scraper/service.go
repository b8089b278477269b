package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/reperio/internal/common"
	"github.com/ternarybob/reperio/internal/interfaces"
	"github.com/ternarybob/reperio/internal/models"
)

var (
	spaceRegex   = regexp.MustCompile(`[ \t]+`)
	newlineRegex = regexp.MustCompile(`\n{3,}`)
)

// Service fetches a page over HTTP and extracts readable text content.
type Service struct {
	config     common.ScraperConfig
	logger     arbor.ILogger
	httpClient *http.Client
	limiter    *RateLimiter
}

// NewService creates a new scraper service
func NewService(config common.ScraperConfig, logger arbor.ILogger) interfaces.ScraperService {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Service{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    NewRateLimiter(config.RequestDelay),
	}
}

// Scrape fetches targetURL and returns its title and extracted content
func (s *Service) Scrape(ctx context.Context, targetURL string) (*models.ScrapeResult, error) {
	if err := s.limiter.Wait(ctx, targetURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", targetURL, err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	s.logger.Debug().Str("url", targetURL).Msg("Scraping URL")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", targetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, targetURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("unsupported content type %q for %s", contentType, targetURL)
	}

	body := io.Reader(resp.Body)
	if s.config.MaxBodySize > 0 {
		body = io.LimitReader(resp.Body, s.config.MaxBodySize)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", targetURL, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	content, err := s.extractContent(doc, targetURL)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("no extractable content at %s", targetURL)
	}

	s.logger.Debug().
		Str("url", targetURL).
		Str("title", title).
		Int("content_length", len(content)).
		Msg("Scrape complete")

	return &models.ScrapeResult{
		URL:       targetURL,
		Title:     title,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}, nil
}

// extractContent strips boilerplate and returns either plain text or a
// markdown rendering of the main content depending on config
func (s *Service) extractContent(doc *goquery.Document, baseURL string) (string, error) {
	root := doc.Selection
	main := root.Find("main, article, [role=main]").First()
	if main.Length() > 0 {
		root = main
	} else {
		root.Find("nav, header, footer, aside").Remove()
	}
	root.Find("script, style, noscript").Remove()

	if s.config.OutputFormat == "markdown" {
		html, err := goquery.OuterHtml(root)
		if err != nil {
			return "", fmt.Errorf("failed to serialize content: %w", err)
		}
		converter := md.NewConverter(baseURL, true, nil)
		markdown, err := converter.ConvertString(html)
		if err != nil {
			return "", fmt.Errorf("failed to convert content to markdown: %w", err)
		}
		return strings.TrimSpace(markdown), nil
	}

	return cleanWhitespace(root.Text()), nil
}

func cleanWhitespace(text string) string {
	text = spaceRegex.ReplaceAllString(text, " ")
	text = newlineRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
