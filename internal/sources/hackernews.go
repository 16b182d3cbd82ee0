package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/xscout/xscout/internal/models"
)

const hackerNewsSearchURL = "https://hn.algolia.com/api/v1/search_by_date"

// HackerNewsProvider searches Hacker News via the Algolia API. It needs
// no credentials, so it is always enabled.
type HackerNewsProvider struct {
	client  *resty.Client
	baseURL string
}

type hackerNewsSearchResponse struct {
	Hits []hackerNewsHit `json:"hits"`
}

type hackerNewsHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	StoryText   string `json:"story_text"`
	CommentText string `json:"comment_text"`
	Author      string `json:"author"`
	CreatedAtI  int64  `json:"created_at_i"`
}

// NewHackerNewsProvider creates a new Hacker News provider
func NewHackerNewsProvider() *HackerNewsProvider {
	return &HackerNewsProvider{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "XScout/1.0"),
		baseURL: hackerNewsSearchURL,
	}
}

func (h *HackerNewsProvider) Name() string {
	return "hackernews"
}

func (h *HackerNewsProvider) Enabled() bool {
	return true
}

// Search queries stories and comments, newest first.
func (h *HackerNewsProvider) Search(ctx context.Context, query string, limit int) ([]models.Post, error) {
	searchURL := fmt.Sprintf("%s?query=%s&tags=(story,comment)&hitsPerPage=%d",
		h.baseURL, url.QueryEscape(query), limit)

	resp, err := h.client.R().
		SetContext(ctx).
		Get(searchURL)

	if err != nil {
		return nil, fmt.Errorf("hacker news search request failed: %w", err)
	}

	if resp.StatusCode() == 429 {
		return nil, fmt.Errorf("hacker news search for %q: %w", query, ErrRateLimited)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("hacker news API returned status %d", resp.StatusCode())
	}

	var searchResp hackerNewsSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse Hacker News response: %w", err)
	}

	var posts []models.Post
	for _, hit := range searchResp.Hits {
		text := hit.Title
		if hit.StoryText != "" {
			text += " " + hit.StoryText
		}
		if hit.CommentText != "" {
			text += " " + hit.CommentText
		}

		posts = append(posts, models.Post{
			Platform:   "HackerNews",
			PostID:     "hackernews_" + hit.ObjectID,
			Username:   hit.Author,
			ProfileURL: "https://news.ycombinator.com/item?id=" + hit.ObjectID,
			PostText:   text,
			Timestamp:  time.Unix(hit.CreatedAtI, 0).UTC(),
		})
	}

	logrus.Debugf("Hacker News returned %d posts for '%s'", len(posts), query)
	return posts, nil
}
