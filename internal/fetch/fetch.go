// Package fetch downloads job postings and reduces their HTML to plain text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultTimeout bounds a single page download
	DefaultTimeout = 20 * time.Second
	// DefaultUserAgent is sent with every request
	DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeEnhancer/1.0)"
	// MaxPageBytes caps how much of a page body is read
	MaxPageBytes = 4 << 20
)

// Error describes why a page could not be turned into a job description
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Page is a downloaded HTML document
type Page struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Client fetches job postings over HTTP. Unless AllowPrivateNetworks is
// given it refuses to connect to non-public addresses.
type Client struct {
	http         *http.Client
	userAgent    string
	allowPrivate bool
}

// NewClient returns a client with the given timeout; zero uses DefaultTimeout
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{userAgent: DefaultUserAgent}
	for _, opt := range opts {
		opt(c)
	}
	c.http = &http.Client{Timeout: timeout, Transport: newTransport(c.allowPrivate)}
	return c
}

// Get downloads a page. Only http and https URLs are accepted. A non-200
// response returns the page together with an *Error.
func (c *Client) Get(ctx context.Context, rawURL string) (*Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if errors.Is(err, ErrBlockedAddress) {
		return nil, &Error{URL: rawURL, Message: "destination not allowed", Cause: err}
	}
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPageBytes))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	page := &Page{
		URL:         rawURL,
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return page, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return page, nil
}

// JobPosting downloads a job posting and returns its description text,
// using the selectors of the job board the URL belongs to
func (c *Client) JobPosting(ctx context.Context, rawURL string) (string, error) {
	page, err := c.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}

	board := DetectBoard(rawURL)
	text, err := ExtractMainText(page.HTML, board.ContentSelectors(), board.NoiseSelectors()...)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to parse page", Cause: err}
	}
	if text == "" {
		return "", &Error{URL: rawURL, Message: "page has no readable text"}
	}
	return text, nil
}

// ExtractMainText parses HTML and returns the text of the first element
// matching contentSelectors, or of the body when none match. Navigation,
// scripts and elements matching noiseSelectors are removed first.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, iframe, .ad, .advertisement, .sidebar, .cookie-banner, .popup").Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	content := doc.Find("body")
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}

	// Block elements carry no newline of their own in Text()
	content.Find("p, li, br, h1, h2, h3, h4, h5, h6, div, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(content.Text()), nil
}

// cleanWhitespace trims every line and drops the empty ones
func cleanWhitespace(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
