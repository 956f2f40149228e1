package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/osintlab/ecoprofiler/internal/model"
	"github.com/osintlab/ecoprofiler/internal/util"
)

const defaultRedditBaseURL = "https://www.reddit.com"

// SocialClient searches Reddit's public JSON API for posts about a
// region. When the JSON endpoint is unavailable it falls back to
// scraping the old-reddit search page.
type SocialClient struct {
	client             *Client
	robots             *util.RobotsChecker
	baseURL            string
	searchTerms        []string
	maxPostsPerQuery   int
	maxCommentsPerPost int
	verbose            bool
}

// NewSocialClient creates a Reddit searcher.
func NewSocialClient(client *Client, robots *util.RobotsChecker, baseURL string, cfg model.SocialConfig, verbose bool) *SocialClient {
	if baseURL == "" {
		baseURL = defaultRedditBaseURL
	}
	return &SocialClient{
		client:             client,
		robots:             robots,
		baseURL:            strings.TrimRight(baseURL, "/"),
		searchTerms:        cfg.SearchTerms,
		maxPostsPerQuery:   cfg.MaxPostsPerQuery,
		maxCommentsPerPost: cfg.MaxCommentsPerPost,
		verbose:            verbose,
	}
}

// Fetch searches for each configured term combined with the region name,
// deduplicates by post ID, attaches top comments, and scores sentiment.
func (s *SocialClient) Fetch(ctx context.Context, region string) ([]model.SocialPost, error) {
	seen := map[string]bool{}
	var posts []model.SocialPost

	for _, term := range s.searchTerms {
		query := term + " " + region
		found, err := s.search(ctx, query)
		if err != nil {
			s.logf("search %q failed: %v", query, err)
			continue
		}
		for _, p := range found {
			if p.ID == "" || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			posts = append(posts, p)
		}
	}

	for i := range posts {
		if s.maxCommentsPerPost > 0 && posts[i].Permalink != "" {
			if comments, err := s.fetchComments(ctx, posts[i].Permalink); err == nil {
				posts[i].TopComments = comments
			}
		}
		text := posts[i].Title + " " + posts[i].Body
		posts[i].Sentiment, posts[i].Subjectivity = AnalyzeSentiment(text)
	}
	return posts, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data model.SocialPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (s *SocialClient) search(ctx context.Context, query string) ([]model.SocialPost, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "relevance")
	params.Set("t", "month")
	params.Set("limit", fmt.Sprintf("%d", s.maxPostsPerQuery))
	searchURL := s.baseURL + "/search.json?" + params.Encode()

	if s.robots != nil && !s.robots.IsAllowed(ctx, searchURL) {
		return nil, fmt.Errorf("disallowed by robots.txt: %s", searchURL)
	}

	body, err := s.client.Get(ctx, searchURL, nil)
	if err != nil {
		s.logf("json search failed, trying html fallback: %v", err)
		return s.searchHTML(ctx, query)
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("parse search listing: %w", err)
	}

	posts := make([]model.SocialPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// searchHTML scrapes the old-reddit search results page. Only titles,
// permalinks, and subreddits are recoverable from the markup.
func (s *SocialClient) searchHTML(ctx context.Context, query string) ([]model.SocialPost, error) {
	params := url.Values{}
	params.Set("q", query)
	searchURL := "https://old.reddit.com/search?" + params.Encode()

	if s.robots != nil && !s.robots.IsAllowed(ctx, searchURL) {
		return nil, fmt.Errorf("disallowed by robots.txt: %s", searchURL)
	}

	body, err := s.client.Get(ctx, searchURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, fmt.Errorf("html search: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse search html: %w", err)
	}
	return parseSearchResults(doc), nil
}

// parseSearchResults walks the document collecting search-title anchors.
func parseSearchResults(doc *html.Node) []model.SocialPost {
	var posts []model.SocialPost
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "search-title") {
			post := model.SocialPost{
				Title:     textContent(n),
				Permalink: attr(n, "href"),
			}
			post.ID = idFromPermalink(post.Permalink)
			post.Channel = subredditFromPermalink(post.Permalink)
			if post.ID != "" {
				posts = append(posts, post)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return posts
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// idFromPermalink extracts the post ID from /r/<sub>/comments/<id>/<slug>.
func idFromPermalink(permalink string) string {
	parts := strings.Split(strings.Trim(stripHost(permalink), "/"), "/")
	for i, p := range parts {
		if p == "comments" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func subredditFromPermalink(permalink string) string {
	parts := strings.Split(strings.Trim(stripHost(permalink), "/"), "/")
	if len(parts) >= 2 && parts[0] == "r" {
		return parts[1]
	}
	return ""
}

func stripHost(link string) string {
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		return u.Path
	}
	return link
}

type commentListing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				Body   string `json:"body"`
				Score  int    `json:"score"`
				Author string `json:"author"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (s *SocialClient) fetchComments(ctx context.Context, permalink string) ([]model.Comment, error) {
	commentsURL := s.baseURL + strings.TrimSuffix(stripHost(permalink), "/") + ".json"
	if s.robots != nil && !s.robots.IsAllowed(ctx, commentsURL) {
		return nil, fmt.Errorf("disallowed by robots.txt: %s", commentsURL)
	}

	body, err := s.client.Get(ctx, commentsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}

	// The comments endpoint returns [postListing, commentListing].
	var listings []commentListing
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, fmt.Errorf("parse comment listing: %w", err)
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var comments []model.Comment
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		body := child.Data.Body
		if runes := []rune(body); len(runes) > 500 {
			body = string(runes[:500])
		}
		comments = append(comments, model.Comment{
			Body:   body,
			Score:  child.Data.Score,
			Author: child.Data.Author,
		})
		if len(comments) >= s.maxCommentsPerPost {
			break
		}
	}
	return comments, nil
}

func (s *SocialClient) logf(format string, args ...interface{}) {
	if s.verbose {
		fmt.Fprintf(os.Stderr, "[social] "+format+"\n", args...)
	}
}
