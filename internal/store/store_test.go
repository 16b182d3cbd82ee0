package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xscout/xscout/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testLead(postID string) *models.Lead {
	return &models.Lead{
		Post: models.Post{
			Platform:   "Twitter",
			PostID:     postID,
			Username:   "12345",
			ProfileURL: "https://twitter.com/i/user/12345",
			PostText:   "I need a website urgently, budget is $500, DM me",
			Timestamp:  time.Now().UTC(),
		},
		MatchedKeyword: "need a website",
		IntentScore:    9,
		IntentLabel:    "High",
		ContactInfo:    "Request: DM/Inbox",
	}
}

func TestInsert_Idempotent(t *testing.T) {
	s := openTestStore(t)

	lead := testLead("tw_1")
	assert.True(t, s.Insert(lead))
	assert.False(t, s.Insert(lead), "second insert for the same post_id must be a no-op")

	leads, err := s.Leads(LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}

func TestExists(t *testing.T) {
	s := openTestStore(t)

	assert.False(t, s.Exists("tw_1"))
	require.True(t, s.Insert(testLead("tw_1")))
	assert.True(t, s.Exists("tw_1"))
	assert.False(t, s.Exists("tw_2"))
}

func TestMarkNotified(t *testing.T) {
	s := openTestStore(t)

	require.True(t, s.Insert(testLead("tw_1")))

	s.MarkNotified("tw_1")
	// Marking a missing lead must not fail
	s.MarkNotified("missing")

	leads, err := s.Leads(LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.True(t, leads[0].Notified)
}

func TestLeads_OrderAndFilters(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		lead := testLead(fmt.Sprintf("tw_%d", i))
		lead.DetectedAt = base.Add(time.Duration(i) * time.Minute)
		require.True(t, s.Insert(lead))
	}

	reddit := testLead("rd_1")
	reddit.Platform = "Reddit"
	reddit.IntentLabel = "Low"
	reddit.IntentScore = 3
	reddit.DetectedAt = base.Add(time.Hour)
	require.True(t, s.Insert(reddit))

	leads, err := s.Leads(LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 4)
	assert.Equal(t, "rd_1", leads[0].PostID, "newest first")
	assert.Equal(t, "tw_2", leads[1].PostID)
	assert.Equal(t, "tw_0", leads[3].PostID)

	byPlatform, err := s.Leads(LeadFilter{Platform: "Reddit"})
	require.NoError(t, err)
	require.Len(t, byPlatform, 1)
	assert.Equal(t, "rd_1", byPlatform[0].PostID)

	byLabel, err := s.Leads(LeadFilter{Label: "High"})
	require.NoError(t, err)
	assert.Len(t, byLabel, 3)

	limited, err := s.Leads(LeadFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestLogs(t *testing.T) {
	s := openTestStore(t)

	s.AppendLog("INFO", "first")
	s.AppendLog("WARNING", "second")
	s.AppendLog("ERROR", "third")

	entries, err := s.Logs(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Message, "newest first")
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, "second", entries[1].Message)
}

// TestNilStore verifies every operation is a safe no-op without a backing
// database, so the agent can run unconfigured.
func TestNilStore(t *testing.T) {
	var s *Store

	assert.False(t, s.Exists("tw_1"))
	assert.False(t, s.Insert(testLead("tw_1")))
	s.MarkNotified("tw_1")
	s.AppendLog("INFO", "ignored")

	leads, err := s.Leads(LeadFilter{})
	assert.NoError(t, err)
	assert.Empty(t, leads)

	logs, err := s.Logs(10)
	assert.NoError(t, err)
	assert.Empty(t, logs)

	assert.NoError(t, s.Close())
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	require.NoError(t, err)
	require.True(t, s1.Insert(testLead("tw_1")))
	require.NoError(t, s1.Close())

	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()

	assert.True(t, s2.Exists("tw_1"), "data survives reopen")
}
