// Package fetcher resolves URLs into plain text for ingestion.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

const (
	userAgent    = "Mozilla/5.0 (compatible; KnowledgeInbox/1.0)"
	maxRedirects = 5
)

type Fetcher struct {
	client   *http.Client
	markdown goldmark.Markdown
}

func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Fetch retrieves url and reduces the response body to plain text. HTML is
// stripped of boilerplate elements, markdown is rendered first, plain text
// passes through. Anything else is rejected.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	log.Info().Str("url", url).Msg("fetching URL")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	var text string
	switch {
	case strings.Contains(contentType, "text/html"):
		text, err = ExtractText(string(body))
	case strings.Contains(contentType, "text/markdown"), strings.Contains(contentType, "text/x-markdown"):
		var buf bytes.Buffer
		if err = f.markdown.Convert(body, &buf); err == nil {
			text, err = ExtractText(buf.String())
		}
	case strings.Contains(contentType, "text/plain"):
		text = collapseWhitespace(string(body))
	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", url, err)
	}

	log.Info().Str("url", url).Int("text_length", len(text)).Msg("URL fetched successfully")
	return text, nil
}

// Elements whose text is navigation or machinery rather than content.
var skippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
	"aside":  true,
	"head":   true,
}

// ExtractText strips markup from an HTML document, dropping boilerplate
// subtrees and collapsing whitespace.
func ExtractText(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return collapseWhitespace(b.String()), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
