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

const (
	redditAuthURL   = "https://www.reddit.com/api/v1/access_token"
	redditSearchURL = "https://oauth.reddit.com/search.json"
)

// RedditProvider searches Reddit posts via the OAuth API
type RedditProvider struct {
	clientID     string
	clientSecret string
	client       *resty.Client
	authURL      string
	searchURL    string

	accessToken string
	tokenExpiry time.Time
}

type redditAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditSearchResponse struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Selftext  string  `json:"selftext"`
	Author    string  `json:"author"`
	Permalink string  `json:"permalink"`
	Created   float64 `json:"created_utc"`
}

// NewRedditProvider creates a new Reddit provider
func NewRedditProvider(clientID, clientSecret string) *RedditProvider {
	return &RedditProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       resty.New().SetTimeout(30 * time.Second),
		authURL:      redditAuthURL,
		searchURL:    redditSearchURL,
	}
}

func (r *RedditProvider) Name() string {
	return "reddit"
}

func (r *RedditProvider) Enabled() bool {
	return r.clientID != "" && r.clientSecret != ""
}

// Search queries site-wide Reddit search sorted by newest. A 429 from
// either the token or search endpoint is reported as ErrRateLimited.
func (r *RedditProvider) Search(ctx context.Context, query string, limit int) ([]models.Post, error) {
	if !r.Enabled() {
		logrus.Debugf("Reddit provider disabled - skipping search for '%s'", query)
		return nil, nil
	}

	if err := r.authenticate(ctx); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%s?q=%s&sort=new&limit=%d", r.searchURL, url.QueryEscape(query), limit)

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+r.accessToken).
		SetHeader("User-Agent", "XScout/1.0").
		Get(searchURL)

	if err != nil {
		return nil, fmt.Errorf("reddit search request failed: %w", err)
	}

	if resp.StatusCode() == 429 {
		return nil, fmt.Errorf("reddit search for %q: %w", query, ErrRateLimited)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	var searchResp redditSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse Reddit response: %w", err)
	}

	var posts []models.Post
	for _, child := range searchResp.Data.Children {
		post := child.Data
		text := post.Title
		if post.Selftext != "" {
			text += " " + post.Selftext
		}

		posts = append(posts, models.Post{
			Platform:   "Reddit",
			PostID:     "reddit_" + post.ID,
			Username:   post.Author,
			ProfileURL: "https://reddit.com" + post.Permalink,
			PostText:   text,
			Timestamp:  time.Unix(int64(post.Created), 0).UTC(),
		})
	}

	logrus.Debugf("Reddit returned %d posts for '%s'", len(posts), query)
	return posts, nil
}

func (r *RedditProvider) authenticate(ctx context.Context) error {
	if r.accessToken != "" && time.Now().Before(r.tokenExpiry) {
		return nil
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", "XScout/1.0").
		SetBasicAuth(r.clientID, r.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
		}).
		Post(r.authURL)

	if err != nil {
		return fmt.Errorf("reddit authentication failed: %w", err)
	}

	if resp.StatusCode() == 429 {
		return fmt.Errorf("reddit authentication: %w", ErrRateLimited)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("reddit authentication returned status %d", resp.StatusCode())
	}

	var authResp redditAuthResponse
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		return fmt.Errorf("failed to parse Reddit auth response: %w", err)
	}

	r.accessToken = authResp.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn-60) * time.Second)
	return nil
}
