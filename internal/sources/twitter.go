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

const twitterSearchURL = "https://api.twitter.com/2/tweets/search/recent"

// TwitterProvider searches recent tweets via the X API v2
type TwitterProvider struct {
	bearerToken string
	client      *resty.Client
	baseURL     string
}

type twitterSearchResponse struct {
	Data []twitterTweet `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

type twitterTweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	AuthorID  string `json:"author_id"`
	CreatedAt string `json:"created_at"`
}

// NewTwitterProvider creates a new Twitter provider
func NewTwitterProvider(bearerToken string) *TwitterProvider {
	return &TwitterProvider{
		bearerToken: bearerToken,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "XScout/1.0"),
		baseURL: twitterSearchURL,
	}
}

func (t *TwitterProvider) Name() string {
	return "twitter"
}

func (t *TwitterProvider) Enabled() bool {
	return t.bearerToken != ""
}

// Search queries the recent search endpoint, excluding retweets. A 429
// response is reported as ErrRateLimited.
func (t *TwitterProvider) Search(ctx context.Context, query string, limit int) ([]models.Post, error) {
	if !t.Enabled() {
		logrus.Debugf("Twitter provider disabled - skipping search for '%s'", query)
		return nil, nil
	}

	// The recent search endpoint accepts max_results between 10 and 100
	maxResults := limit
	if maxResults < 10 {
		maxResults = 10
	}
	if maxResults > 100 {
		maxResults = 100
	}

	searchQuery := url.QueryEscape(fmt.Sprintf("%s -is:retweet lang:en", query))
	searchURL := fmt.Sprintf("%s?query=%s&max_results=%d&tweet.fields=created_at,author_id",
		t.baseURL, searchQuery, maxResults)

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+t.bearerToken).
		Get(searchURL)

	if err != nil {
		return nil, fmt.Errorf("twitter search request failed: %w", err)
	}

	if resp.StatusCode() == 429 {
		return nil, fmt.Errorf("twitter search for %q: %w", query, ErrRateLimited)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("twitter API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp twitterSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse Twitter response: %w", err)
	}

	var posts []models.Post
	for _, tweet := range searchResp.Data {
		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			createdAt = time.Now().UTC()
		}

		posts = append(posts, models.Post{
			Platform:   "Twitter",
			PostID:     "twitter_" + tweet.ID,
			Username:   tweet.AuthorID, // resolving handles needs a user expansion call
			ProfileURL: fmt.Sprintf("https://twitter.com/i/user/%s", tweet.AuthorID),
			PostText:   tweet.Text,
			Timestamp:  createdAt,
		})
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}

	logrus.Debugf("Twitter returned %d posts for '%s'", len(posts), query)
	return posts, nil
}
