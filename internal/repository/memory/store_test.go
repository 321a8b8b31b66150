package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-backend/internal/entity/game_runtime"
	"rpg-backend/internal/model/gamemodel"
	"rpg-backend/internal/repository/interfaces"
)

func newSession(t *testing.T, token string, createdAt time.Time) *game_runtime.BattleSession {
	t.Helper()
	s, err := game_runtime.NewBattleSession(token, "char-1",
		gamemodel.NewSessionSnapshot(gamemodel.StageContent{Chapter: 1, Stage: 1}, 1), createdAt, 10*time.Minute)
	require.NoError(t, err)
	return s
}

func TestSessionRepo_MarkUsedOnce(t *testing.T) {
	store := NewStore()
	repo := store.Sessions()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, nil, newSession(t, "tok", time.Now())))
	assert.ErrorIs(t, repo.Create(ctx, nil, newSession(t, "tok", time.Now())), interfaces.ErrDuplicate)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.MarkUsed(ctx, nil, "tok", time.Now())
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())

	s, ok := store.Session("tok")
	require.True(t, ok)
	assert.True(t, s.IsUsed)
	assert.True(t, s.UsedAt.Valid)

	_, err := repo.GetByToken(ctx, nil, "missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Sessions().Create(ctx, nil, newSession(t, "tok", time.Now())))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, exec boil.ContextExecutor) error {
		ok, err := store.Sessions().MarkUsed(ctx, exec, "tok", time.Now())
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	s, _ := store.Session("tok")
	assert.False(t, s.IsUsed)
}

func TestSessionRepo_PurgeExpiredBefore(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	old := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, store.Sessions().Create(ctx, nil, newSession(t, "old", old)))
	require.NoError(t, store.Sessions().Create(ctx, nil, newSession(t, "old-used", old)))
	require.NoError(t, store.Sessions().Create(ctx, nil, newSession(t, "fresh", time.Now())))
	ok, err := store.Sessions().MarkUsed(ctx, nil, "old-used", old.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	n, err := store.Sessions().PurgeExpiredBefore(ctx, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, store.SessionCount())

	_, ok = store.Session("old")
	assert.False(t, ok)
	used, ok := store.Session("old-used")
	require.True(t, ok)
	assert.True(t, used.IsUsed)
}

func TestCharacterRepo(t *testing.T) {
	store := NewStore()
	repo := store.Characters()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, nil, &game_runtime.Character{ID: "a", UserID: "u1", Name: "Aria"}))
	assert.ErrorIs(t, repo.Create(ctx, nil, &game_runtime.Character{ID: "b", UserID: "u1", Name: "Aria"}), interfaces.ErrDuplicate)
	require.NoError(t, repo.Create(ctx, nil, &game_runtime.Character{ID: "b", UserID: "u2", Name: "Aria"}))

	n, err := repo.CountByUser(ctx, nil, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c, err := repo.GetByIDForUpdate(ctx, nil, "a")
	require.NoError(t, err)
	c.Gold = 500
	require.NoError(t, repo.UpdateProgress(ctx, nil, c))
	stored, _ := store.Character("a")
	assert.Equal(t, int64(500), stored.Gold)

	store.SetUpdateError(errors.New("disk full"))
	assert.Error(t, repo.UpdateProgress(ctx, nil, c))
	store.SetUpdateError(nil)

	require.NoError(t, repo.Delete(ctx, nil, "a"))
	assert.ErrorIs(t, repo.Delete(ctx, nil, "a"), interfaces.ErrNotFound)
	assert.Equal(t, 1, store.CharacterCount())
}
