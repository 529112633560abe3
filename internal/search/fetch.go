package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"fintel/internal/cui"
	"fintel/internal/logging"
)

// DefaultFetchLimit caps fallback page reads at one megabyte.
const DefaultFetchLimit int64 = 1 << 20

// browserHeaders make the fallback fetch look like an ordinary visit;
// registry aggregators answer bot-looking requests with challenge pages.
func browserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "ro-RO,ro;q=0.9,en;q=0.8")
}

// fallbackExtract fetches pageURL and mines its visible text for
// identifiers at demoted confidence. Fetch problems degrade to zero
// candidates; the caller already has a better error to report.
func (c *Client) fallbackExtract(ctx context.Context, pageURL string) []cui.Candidate {
	if pageURL == "" {
		return nil
	}
	text, err := c.fetchPageText(ctx, pageURL)
	if err != nil {
		logging.SearchWarn("Fallback fetch of %s failed: %v", pageURL, err)
		return nil
	}
	logging.SearchDebug("Fallback fetched %s: %d chars of text", pageURL, len(text))
	return cui.ExtractCandidatesDemoted(text, pageURL)
}

func (c *Client) fetchPageText(ctx context.Context, pageURL string) (string, error) {
	session, err := c.sessions.Acquire(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	browserHeaders(req)

	resp, err := session.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page fetch returned status %d", resp.StatusCode)
	}

	limit := c.cfg.FetchLimitBytes
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	return htmlText(io.LimitReader(resp.Body, limit)), nil
}

// htmlText flattens a parsed document to its visible text, skipping
// script and style subtrees.
func htmlText(r io.Reader) string {
	doc, err := html.Parse(r)
	if err != nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return b.String()
}
