package repository

import (
	"context"
	"sync"
	"testing"

	"circler/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionRepository_InsertIfAbsent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSubmissionRepository(testDB.DB)
	ctx := context.Background()

	t.Run("first submission is recorded", func(t *testing.T) {
		submission := testutil.CreateTestSubmission(100, 1001, "2024-06-01", 92)

		inserted, err := repo.InsertIfAbsent(ctx, submission)
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.NotZero(t, submission.ID)
		assert.False(t, submission.RecordedAt.IsZero())
	})

	t.Run("second submission same day is rejected", func(t *testing.T) {
		first := testutil.CreateTestSubmission(100, 1002, "2024-06-01", 85)
		inserted, err := repo.InsertIfAbsent(ctx, first)
		require.NoError(t, err)
		require.True(t, inserted)

		second := testutil.CreateTestSubmission(100, 1002, "2024-06-01", 99)
		inserted, err = repo.InsertIfAbsent(ctx, second)
		require.NoError(t, err)
		assert.False(t, inserted)

		// The stored score must still be the first one
		stored, err := repo.GetByUserDay(ctx, 100, 1002, "2024-06-01")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, 85.0, stored.Score)
	})

	t.Run("same user may submit on a different day", func(t *testing.T) {
		inserted, err := repo.InsertIfAbsent(ctx, testutil.CreateTestSubmission(100, 1003, "2024-06-01", 70))
		require.NoError(t, err)
		require.True(t, inserted)

		inserted, err = repo.InsertIfAbsent(ctx, testutil.CreateTestSubmission(100, 1003, "2024-06-02", 75))
		require.NoError(t, err)
		assert.True(t, inserted)
	})

	t.Run("same user may submit in a different channel", func(t *testing.T) {
		inserted, err := repo.InsertIfAbsent(ctx, testutil.CreateTestSubmission(200, 1004, "2024-06-01", 60))
		require.NoError(t, err)
		require.True(t, inserted)

		inserted, err = repo.InsertIfAbsent(ctx, testutil.CreateTestSubmission(201, 1004, "2024-06-01", 61))
		require.NoError(t, err)
		assert.True(t, inserted)
	})

	t.Run("concurrent submissions record exactly one", func(t *testing.T) {
		const attempts = 10

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			recorded int
		)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(score float64) {
				defer wg.Done()
				submission := testutil.CreateTestSubmission(300, 2000, "2024-06-05", score)
				inserted, err := repo.InsertIfAbsent(ctx, submission)
				assert.NoError(t, err)
				if inserted {
					mu.Lock()
					recorded++
					mu.Unlock()
				}
			}(float64(50 + i))
		}
		wg.Wait()

		assert.Equal(t, 1, recorded)

		entries, err := repo.RankedEntries(ctx, 300, "2024-06-05")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestSubmissionRepository_GetByUserDay(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSubmissionRepository(testDB.DB)
	ctx := context.Background()

	t.Run("absent submission returns nil", func(t *testing.T) {
		submission, err := repo.GetByUserDay(ctx, 400, 3000, "2024-06-01")
		require.NoError(t, err)
		assert.Nil(t, submission)
	})

	t.Run("read does not modify state", func(t *testing.T) {
		original := testutil.CreateTestSubmission(400, 3001, "2024-06-01", 88)
		inserted, err := repo.InsertIfAbsent(ctx, original)
		require.NoError(t, err)
		require.True(t, inserted)

		first, err := repo.GetByUserDay(ctx, 400, 3001, "2024-06-01")
		require.NoError(t, err)
		second, err := repo.GetByUserDay(ctx, 400, 3001, "2024-06-01")
		require.NoError(t, err)

		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.Equal(t, first, second)
		assert.Equal(t, 88.0, first.Score)
	})
}

func TestSubmissionRepository_RankedEntries(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSubmissionRepository(testDB.DB)
	ctx := context.Background()

	t.Run("empty day yields empty leaderboard", func(t *testing.T) {
		entries, err := repo.RankedEntries(ctx, 500, "2024-06-01")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("entries ordered by score with earlier submission winning ties", func(t *testing.T) {
		// Insert in a deliberately shuffled order; recorded_at follows
		// insertion order so 5002 submitted its 80 before 5003 did.
		for _, s := range []struct {
			discordID int64
			score     float64
		}{
			{5001, 95},
			{5002, 80},
			{5003, 80},
			{5004, 99},
		} {
			inserted, err := repo.InsertIfAbsent(ctx, testutil.CreateTestSubmission(500, s.discordID, "2024-06-02", s.score))
			require.NoError(t, err)
			require.True(t, inserted)
		}

		entries, err := repo.RankedEntries(ctx, 500, "2024-06-02")
		require.NoError(t, err)
		require.Len(t, entries, 4)

		assert.Equal(t, int64(5004), entries[0].DiscordID)
		assert.Equal(t, int64(5001), entries[1].DiscordID)
		assert.Equal(t, int64(5002), entries[2].DiscordID)
		assert.Equal(t, int64(5003), entries[3].DiscordID)

		for i, entry := range entries {
			assert.Equal(t, i+1, entry.Rank)
		}
	})

	t.Run("historical day remains readable", func(t *testing.T) {
		inserted, err := repo.InsertIfAbsent(ctx, testutil.CreateTestSubmission(500, 5005, "2024-01-15", 72))
		require.NoError(t, err)
		require.True(t, inserted)

		inserted, err = repo.InsertIfAbsent(ctx, testutil.CreateTestSubmission(500, 5005, "2024-06-03", 90))
		require.NoError(t, err)
		require.True(t, inserted)

		entries, err := repo.RankedEntries(ctx, 500, "2024-01-15")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 72.0, entries[0].Score)
	})
}

func TestSubmissionRepository_Rank(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSubmissionRepository(testDB.DB)
	ctx := context.Background()

	for _, s := range []struct {
		discordID int64
		score     float64
	}{
		{6001, 90},
		{6002, 95},
		{6003, 40},
	} {
		inserted, err := repo.InsertIfAbsent(ctx, testutil.CreateTestSubmission(600, s.discordID, "2024-06-04", s.score))
		require.NoError(t, err)
		require.True(t, inserted)
	}

	t.Run("rank reflects ordering", func(t *testing.T) {
		rank, err := repo.Rank(ctx, 600, "2024-06-04", 6001)
		require.NoError(t, err)
		assert.Equal(t, 2, rank)

		rank, err = repo.Rank(ctx, 600, "2024-06-04", 6003)
		require.NoError(t, err)
		assert.Equal(t, 3, rank)
	})

	t.Run("unknown user has no rank", func(t *testing.T) {
		_, err := repo.Rank(ctx, 600, "2024-06-04", 9999)
		assert.Error(t, err)
	})
}
