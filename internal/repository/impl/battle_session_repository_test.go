package impl

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-backend/internal/entity/game_runtime"
	"rpg-backend/internal/model/gamemodel"
	"rpg-backend/internal/repository/interfaces"
)

func newSession(t *testing.T, token string) *game_runtime.BattleSession {
	t.Helper()
	snap := gamemodel.NewSessionSnapshot(gamemodel.StageContent{Chapter: 1, Stage: 2}, 7)
	s, err := game_runtime.NewBattleSession(token, "char-1", snap, time.Now(), 10*time.Minute)
	require.NoError(t, err)
	return s
}

func TestBattleSessionRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBattleSessionRepository(db)
	ctx := context.Background()
	session := newSession(t, "tok-1")

	t.Run("成功创建会话", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO game_runtime.battle_sessions").
			WithArgs("tok-1", "char-1", 1, 2, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, nil, session))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("令牌冲突", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO game_runtime.battle_sessions").
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, nil, session)
		assert.ErrorIs(t, err, interfaces.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("其他数据库错误", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO game_runtime.battle_sessions").
			WillReturnError(errors.New("connection reset"))

		err := repo.Create(ctx, nil, session)
		require.Error(t, err)
		assert.False(t, errors.Is(err, interfaces.ErrDuplicate))
	})
}

func TestBattleSessionRepository_GetByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBattleSessionRepository(db)
	ctx := context.Background()
	now := time.Now()
	snapshot, err := json.Marshal(gamemodel.NewSessionSnapshot(gamemodel.StageContent{Chapter: 3, Stage: 4}, 99))
	require.NoError(t, err)

	columns := []string{"session_token", "character_id", "chapter", "stage", "snapshot",
		"created_at", "expires_at", "is_used", "used_at"}

	t.Run("成功获取会话", func(t *testing.T) {
		mock.ExpectQuery("SELECT .+ FROM game_runtime.battle_sessions WHERE session_token = \\$1").
			WithArgs("tok-1").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("tok-1", "char-1", 3, 4, snapshot, now, now.Add(10*time.Minute), false, nil))

		s, err := repo.GetByToken(ctx, nil, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "char-1", s.CharacterID)
		assert.False(t, s.UsedAt.Valid)

		snap, err := s.DecodeSnapshot()
		require.NoError(t, err)
		assert.Equal(t, int64(99), snap.Seed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("会话不存在", func(t *testing.T) {
		mock.ExpectQuery("SELECT .+ FROM game_runtime.battle_sessions").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(columns))

		s, err := repo.GetByToken(ctx, nil, "missing")
		assert.Nil(t, s)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})
}

func TestBattleSessionRepository_MarkUsed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBattleSessionRepository(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE game_runtime.battle_sessions SET is_used = true, used_at = \\$2 WHERE session_token = \\$1 AND is_used = false").
		WithArgs("tok-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	won, err := repo.MarkUsed(ctx, nil, "tok-1", time.Now())
	require.NoError(t, err)
	assert.True(t, won)

	mock.ExpectExec("UPDATE game_runtime.battle_sessions").
		WithArgs("tok-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	won, err = repo.MarkUsed(ctx, nil, "tok-1", time.Now())
	require.NoError(t, err)
	assert.False(t, won)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBattleSessionRepository_PurgeExpiredBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBattleSessionRepository(db)
	cutoff := time.Now().Add(-7 * 24 * time.Hour)

	mock.ExpectExec("DELETE FROM game_runtime.battle_sessions WHERE expires_at < \\$1 AND is_used = false").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	n, err := repo.PurgeExpiredBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tx := NewTransactor(db)
	ctx := context.Background()

	t.Run("成功提交", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE game_runtime.battle_sessions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tx.WithinTx(ctx, func(ctx context.Context, exec boil.ContextExecutor) error {
			_, err := NewBattleSessionRepository(db).MarkUsed(ctx, exec, "tok-1", time.Now())
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("出错回滚", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := tx.WithinTx(ctx, func(context.Context, boil.ContextExecutor) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestBattleSessionRepository_LiveMarkUsedOnce 并发条件更新只有一个成功
func TestBattleSessionRepository_LiveMarkUsedOnce(t *testing.T) {
	requireLiveDB(t)

	db, err := sql.Open("postgres", liveDSN)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	characterID := uuid.NewString()
	_, err = db.ExecContext(ctx,
		`INSERT INTO game_runtime.characters (id, user_id, name) VALUES ($1, $2, $3)`,
		characterID, uuid.NewString(), "live-"+characterID[:8])
	require.NoError(t, err)
	defer db.ExecContext(ctx, `DELETE FROM game_runtime.characters WHERE id = $1`, characterID)

	repo := NewBattleSessionRepository(db)
	session := newSession(t, uuid.NewString())
	session.CharacterID = characterID
	require.NoError(t, repo.Create(ctx, nil, session))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := repo.MarkUsed(ctx, nil, session.SessionToken, time.Now())
			assert.NoError(t, err)
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
