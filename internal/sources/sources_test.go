package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwitterProvider_Name(t *testing.T) {
	provider := NewTwitterProvider("token")
	assert.Equal(t, "twitter", provider.Name())
}

func TestTwitterProvider_Enabled(t *testing.T) {
	assert.True(t, NewTwitterProvider("token").Enabled())
	assert.False(t, NewTwitterProvider("").Enabled())
}

func TestTwitterProvider_SearchDisabled(t *testing.T) {
	provider := NewTwitterProvider("")

	posts, err := provider.Search(context.Background(), "need a website", 10)
	assert.NoError(t, err)
	assert.Empty(t, posts, "unconfigured provider must not attempt a network call")
}

func TestTwitterProvider_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [
				{"id": "111", "text": "I need a website urgently", "author_id": "42", "created_at": "2025-08-01T12:00:00Z"}
			],
			"meta": {"result_count": 1}
		}`))
	}))
	defer server.Close()

	provider := NewTwitterProvider("token")
	provider.baseURL = server.URL

	posts, err := provider.Search(context.Background(), "need a website", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "Twitter", posts[0].Platform)
	assert.Equal(t, "twitter_111", posts[0].PostID)
	assert.Equal(t, "42", posts[0].Username)
	assert.Equal(t, "I need a website urgently", posts[0].PostText)
	assert.Equal(t, "https://twitter.com/i/user/42", posts[0].ProfileURL)
}

func TestTwitterProvider_SearchRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewTwitterProvider("token")
	provider.baseURL = server.URL

	_, err := provider.Search(context.Background(), "need a website", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited), "429 must map to ErrRateLimited, got: %v", err)
}

func TestTwitterProvider_SearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewTwitterProvider("token")
	provider.baseURL = server.URL

	_, err := provider.Search(context.Background(), "need a website", 10)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRateLimited), "only 429 maps to ErrRateLimited")
}

func TestRedditProvider_Name(t *testing.T) {
	provider := NewRedditProvider("id", "secret")
	assert.Equal(t, "reddit", provider.Name())
}

func TestRedditProvider_Enabled(t *testing.T) {
	tests := []struct {
		name         string
		clientID     string
		clientSecret string
		expected     bool
	}{
		{"Both credentials provided", "id", "secret", true},
		{"Missing client ID", "", "secret", false},
		{"Missing client secret", "id", "", false},
		{"Both missing", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewRedditProvider(tt.clientID, tt.clientSecret)
			assert.Equal(t, tt.expected, provider.Enabled())
		})
	}
}

func TestRedditProvider_SearchDisabled(t *testing.T) {
	provider := NewRedditProvider("", "")

	posts, err := provider.Search(context.Background(), "need a logo", 10)
	assert.NoError(t, err)
	assert.Empty(t, posts)
}

func TestRedditProvider_Search(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token": "abc", "token_type": "bearer", "expires_in": 3600}`))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"data": {"children": [
				{"data": {"id": "abc1", "title": "Need a logo designer", "selftext": "budget ready", "author": "someone", "permalink": "/r/forhire/abc1", "created_utc": 1754049600}}
			]}
		}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	provider := NewRedditProvider("id", "secret")
	provider.authURL = server.URL + "/token"
	provider.searchURL = server.URL + "/search"

	posts, err := provider.Search(context.Background(), "need a logo", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "Reddit", posts[0].Platform)
	assert.Equal(t, "reddit_abc1", posts[0].PostID)
	assert.Equal(t, "someone", posts[0].Username)
	assert.Equal(t, "Need a logo designer budget ready", posts[0].PostText)
	assert.Equal(t, "https://reddit.com/r/forhire/abc1", posts[0].ProfileURL)
}

func TestRedditProvider_SearchRateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token": "abc", "token_type": "bearer", "expires_in": 3600}`))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	provider := NewRedditProvider("id", "secret")
	provider.authURL = server.URL + "/token"
	provider.searchURL = server.URL + "/search"

	_, err := provider.Search(context.Background(), "need a logo", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
}

func TestHackerNewsProvider_Name(t *testing.T) {
	provider := NewHackerNewsProvider()
	assert.Equal(t, "hackernews", provider.Name())
}

func TestHackerNewsProvider_Enabled(t *testing.T) {
	// Hacker News needs no credentials
	assert.True(t, NewHackerNewsProvider().Enabled())
}

func TestHackerNewsProvider_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"hits": [
				{"objectID": "999", "title": "Ask HN: need a website fast", "story_text": "DM me", "author": "pg", "created_at_i": 1754049600}
			]
		}`))
	}))
	defer server.Close()

	provider := NewHackerNewsProvider()
	provider.baseURL = server.URL

	posts, err := provider.Search(context.Background(), "need a website", 5)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "HackerNews", posts[0].Platform)
	assert.Equal(t, "hackernews_999", posts[0].PostID)
	assert.Equal(t, "pg", posts[0].Username)
	assert.Equal(t, "Ask HN: need a website fast DM me", posts[0].PostText)
	assert.Equal(t, "https://news.ycombinator.com/item?id=999", posts[0].ProfileURL)
}
