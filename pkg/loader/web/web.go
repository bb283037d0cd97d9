package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/astrea-space/astrea/backend/pkg/loader"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

const (
	fetchTimeout = 10 * time.Second
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// Pages whose readable content falls below this are navigation
	// shells or bot walls, not articles.
	minContentLength = 50
)

// WebGraphLoader fetches web pages and extracts readable text. Readability
// handles the common article layouts; a plain HTML text walk covers pages
// it cannot parse.
type WebGraphLoader struct {
	client *http.Client

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewWebGraphLoader creates a new web loader.
func NewWebGraphLoader() *WebGraphLoader {
	return &WebGraphLoader{
		client: &http.Client{Timeout: fetchTimeout},
		cache:  make(map[string][]byte),
	}
}

// GetFileText fetches a URL and extracts its readable text content.
// Results are cached per URL.
func (l *WebGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		text, err := l.fetchReadableText(ctx, file.FilePath)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = text
		l.cacheMu.Unlock()

		return text, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

func (l *WebGraphLoader) fetchReadableText(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("failed to fetch url: status %d", resp.StatusCode)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	text := ""
	if article, err := readability.FromDocument(doc, parsed); err == nil {
		var builder strings.Builder
		if err := article.RenderText(&builder); err == nil {
			text = builder.String()
		}
	}
	if strings.TrimSpace(text) == "" {
		text = extractBodyText(doc)
	}

	text = collapseWhitespace(text)
	if len(text) < minContentLength {
		return nil, fmt.Errorf("insufficient content extracted from %s", pageURL)
	}

	return []byte(text), nil
}

// skipElements never contribute article text.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"noscript": true,
}

// extractBodyText walks the DOM collecting text nodes, skipping chrome
// elements. It is the fallback for pages readability cannot handle.
func extractBodyText(doc *html.Node) string {
	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
			builder.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return builder.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
