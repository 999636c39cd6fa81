package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLiteJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func sqliteEntries(t *testing.T, j *SQLiteJournal) []Entry {
	t.Helper()
	rows, err := j.db.Query(`SELECT timestamp, user_id, user_message, bot_reply FROM interactions ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		require.NoError(t, rows.Scan(&ts, &e.UserID, &e.UserMessage, &e.BotReply))
		e.Timestamp, err = time.Parse(TimeFormat, ts)
		require.NoError(t, err)
		entries = append(entries, e)
	}
	require.NoError(t, rows.Err())
	return entries
}

func jsonlEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e), "line: %s", scanner.Text())
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func assertOrdered(t *testing.T, entries []Entry, n int) {
	t.Helper()
	require.Len(t, entries, n)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("user-%d", i%3), e.UserID)
		assert.Equal(t, fmt.Sprintf("question %d", i), e.UserMessage)
		assert.Equal(t, fmt.Sprintf("answer %d", i), e.BotReply)
		assert.Equal(t, time.UTC, e.Timestamp.Location())
		if i > 0 {
			assert.False(t, e.Timestamp.Before(entries[i-1].Timestamp), "timestamps must not decrease")
		}
	}
}

func recordN(t *testing.T, r Recorder, from, to int) {
	t.Helper()
	for i := from; i < to; i++ {
		err := r.Record(context.Background(), fmt.Sprintf("user-%d", i%3), fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
	}
}

func TestSQLiteRecordsInOrder(t *testing.T) {
	j := newTestSQLite(t)

	recordN(t, j, 0, 5)
	first := sqliteEntries(t, j)
	recordN(t, j, 5, 8)

	all := sqliteEntries(t, j)
	assertOrdered(t, all, 8)
	assert.Equal(t, first, all[:5], "earlier entries must not change")
}

func TestSQLiteRejectsMutation(t *testing.T) {
	j := newTestSQLite(t)
	recordN(t, j, 0, 1)

	_, err := j.db.Exec(`UPDATE interactions SET bot_reply = 'x'`)
	assert.Error(t, err)
	_, err = j.db.Exec(`DELETE FROM interactions`)
	assert.Error(t, err)
	assert.Len(t, sqliteEntries(t, j), 1)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLiteJournal(path)
	require.NoError(t, err)
	recordN(t, j, 0, 2)
	require.NoError(t, j.Close())

	j, err = NewSQLiteJournal(path)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	recordN(t, j, 2, 4)
	assertOrdered(t, sqliteEntries(t, j), 4)
}

func TestSQLiteClosedStoreFails(t *testing.T) {
	j, err := NewSQLiteJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	require.NoError(t, j.Close())

	err = j.Record(context.Background(), "u", "q", "a")
	assert.Error(t, err)
}

func TestJSONLRecordsOnePerLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "conversations.jsonl")
	j, err := NewJSONLJournal(path)
	require.NoError(t, err)

	recordN(t, j, 0, 4)
	require.NoError(t, j.Close())

	// reopening appends instead of truncating
	j, err = NewJSONLJournal(path)
	require.NoError(t, err)
	recordN(t, j, 4, 6)
	require.NoError(t, j.Close())

	assertOrdered(t, jsonlEntries(t, path), 6)
}

func TestJSONLEscapesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.jsonl")
	j, err := NewJSONLJournal(path)
	require.NoError(t, err)

	require.NoError(t, j.Record(context.Background(), "42", "line one\nline two", `quote " and emoji 😢`))
	require.NoError(t, j.Close())

	entries := jsonlEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "line one\nline two", entries[0].UserMessage)
	assert.Equal(t, `quote " and emoji 😢`, entries[0].BotReply)
}

func TestConcurrentRecords(t *testing.T) {
	const writers, perWriter = 8, 25

	tests := []struct {
		name    string
		open    func(t *testing.T, path string) Recorder
		entries func(t *testing.T, r Recorder, path string) []Entry
	}{
		{
			name: "sqlite",
			open: func(t *testing.T, path string) Recorder {
				j, err := NewSQLiteJournal(path)
				require.NoError(t, err)
				return j
			},
			entries: func(t *testing.T, r Recorder, _ string) []Entry {
				return sqliteEntries(t, r.(*SQLiteJournal))
			},
		},
		{
			name: "jsonl",
			open: func(t *testing.T, path string) Recorder {
				j, err := NewJSONLJournal(path)
				require.NoError(t, err)
				return j
			},
			entries: func(t *testing.T, r Recorder, path string) []Entry {
				require.NoError(t, r.Close())
				return jsonlEntries(t, path)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "journal."+tt.name)
			r := tt.open(t, path)
			t.Cleanup(func() { r.Close() })

			var wg sync.WaitGroup
			errs := make(chan error, writers*perWriter)
			for w := 0; w < writers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perWriter; i++ {
						errs <- r.Record(context.Background(),
							fmt.Sprintf("user-%d", w),
							fmt.Sprintf("question %d-%d", w, i),
							fmt.Sprintf("answer %d-%d", w, i))
					}
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			entries := tt.entries(t, r, path)
			require.Len(t, entries, writers*perWriter)

			seen := make(map[string]bool, len(entries))
			next := make(map[string]int, writers)
			for i, e := range entries {
				var w, n int
				_, err := fmt.Sscanf(e.UserMessage, "question %d-%d", &w, &n)
				require.NoError(t, err, "entry %d", i)
				assert.Equal(t, fmt.Sprintf("user-%d", w), e.UserID)
				assert.Equal(t, fmt.Sprintf("answer %d-%d", w, n), e.BotReply)
				assert.Equal(t, next[e.UserID], n, "per-writer order")
				next[e.UserID] = n + 1
				seen[e.UserMessage] = true
				if i > 0 {
					assert.False(t, e.Timestamp.Before(entries[i-1].Timestamp), "timestamps must not decrease")
				}
			}
			assert.Len(t, seen, writers*perWriter)
		})
	}
}

func TestClockNeverGoesBackwards(t *testing.T) {
	c := newClock()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Hour), base.Add(time.Second)}
	i := 0
	c.now = func() time.Time {
		ts := times[i]
		i++
		return ts
	}

	assert.Equal(t, base, c.stamp())
	assert.Equal(t, base, c.stamp())
	assert.Equal(t, base.Add(time.Second), c.stamp())
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("csv", filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}
