package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatwire/pkg/types"
)

func fill(b *Buffer, n int) {
	for i := 0; i < n; i++ {
		b.Append(types.Message{
			ID:        fmt.Sprintf("msg-%d", i),
			Sender:    "alice",
			Body:      fmt.Sprintf("body %d", i),
			Timestamp: time.Now(),
		})
	}
}

func TestPageWindows(t *testing.T) {
	testCases := []struct {
		name     string
		total    int
		offset   int
		pageSize int
		wantIDs  []string
	}{
		{"empty buffer", 0, 0, 10, nil},
		{"offset zero returns newest page", 25, 0, 10, []string{
			"msg-15", "msg-16", "msg-17", "msg-18", "msg-19",
			"msg-20", "msg-21", "msg-22", "msg-23", "msg-24",
		}},
		{"second page", 25, 10, 10, []string{
			"msg-5", "msg-6", "msg-7", "msg-8", "msg-9",
			"msg-10", "msg-11", "msg-12", "msg-13", "msg-14",
		}},
		{"partial oldest page", 25, 20, 10, []string{
			"msg-0", "msg-1", "msg-2", "msg-3", "msg-4",
		}},
		{"offset past start", 25, 30, 10, nil},
		{"offset exactly at length", 5, 5, 10, nil},
		{"buffer smaller than page", 3, 0, 10, []string{"msg-0", "msg-1", "msg-2"}},
		{"negative offset", 5, -1, 10, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuffer()
			fill(b, tc.total)

			page := b.Page(tc.offset, tc.pageSize)

			ids := make([]string, 0, len(page))
			for _, m := range page {
				ids = append(ids, m.ID)
			}
			if tc.wantIDs == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tc.wantIDs, ids)
			}
		})
	}
}

// Walking offsets 0, pageSize, 2*pageSize, ... must reconstruct the full log
// exactly once per message, oldest message last reached.
func TestPageFullCoverage(t *testing.T) {
	const total, pageSize = 47, 10

	b := NewBuffer()
	fill(b, total)

	seen := make(map[string]int)
	var pages int
	for offset := 0; ; offset += pageSize {
		page := b.Page(offset, pageSize)
		if len(page) == 0 {
			break
		}
		pages++
		for _, m := range page {
			seen[m.ID]++
		}
	}

	require.Len(t, seen, total)
	for id, count := range seen {
		assert.Equal(t, 1, count, "message %s seen %d times", id, count)
	}
	assert.Equal(t, 5, pages)

	// The last non-empty page holds the oldest message.
	last := b.Page(40, pageSize)
	require.NotEmpty(t, last)
	assert.Equal(t, "msg-0", last[0].ID)
}

func TestPageReturnsCopy(t *testing.T) {
	b := NewBuffer()
	fill(b, 5)

	page := b.Page(0, 10)
	require.Len(t, page, 5)
	page[0].Body = "mutated"

	again := b.Page(0, 10)
	assert.Equal(t, "body 0", again[0].Body)
}

func TestSetReaction(t *testing.T) {
	b := NewBuffer()
	fill(b, 3)

	require.True(t, b.SetReaction("msg-1", "❤️"))

	page := b.Page(0, 10)
	assert.Equal(t, "❤️", page[1].Reaction)
	assert.Empty(t, page[0].Reaction)
	assert.Empty(t, page[2].Reaction)
}

func TestSetReactionLastWriteWins(t *testing.T) {
	b := NewBuffer()
	fill(b, 1)

	require.True(t, b.SetReaction("msg-0", "👍"))
	require.True(t, b.SetReaction("msg-0", "🔥"))

	assert.Equal(t, "🔥", b.Page(0, 1)[0].Reaction)
}

func TestSetReactionUnknownIDIsNoOp(t *testing.T) {
	b := NewBuffer()
	fill(b, 2)

	assert.False(t, b.SetReaction("missing", "❤️"))
	for _, m := range b.Page(0, 10) {
		assert.Empty(t, m.Reaction)
	}
}

func TestLen(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, 0, b.Len())
	fill(b, 7)
	assert.Equal(t, 7, b.Len())
}
