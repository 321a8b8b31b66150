package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-backend/internal/entity/game_runtime"
	"rpg-backend/internal/model/gamemodel"
	"rpg-backend/internal/modules/game/battle"
	"rpg-backend/internal/modules/game/stage"
	"rpg-backend/internal/pkg/config"
	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/metrics"
	"rpg-backend/internal/pkg/random"
	"rpg-backend/internal/pkg/xerrors"
	"rpg-backend/internal/repository/memory"
)

const (
	testUserID      = "user-1"
	testCharacterID = "char-1"
)

type progressionFixture struct {
	store     *memory.Store
	clock     *fakeClock
	suspicion *recordingSuspicion
	publisher *recordingPublisher
	svc       *ProgressionService
}

func newProgressionFixture(t *testing.T, mutate ...func(*config.GameConfig, *ProgressionDependencies)) *progressionFixture {
	t.Helper()

	f := &progressionFixture{
		store:     memory.NewStore(),
		clock:     &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		suspicion: &recordingSuspicion{},
		publisher: &recordingPublisher{},
	}

	cfg := config.DefaultGameConfig()
	deps := ProgressionDependencies{
		Transactor:    f.store,
		SessionRepo:   f.store.Sessions(),
		CharacterRepo: f.store.Characters(),
		Validator:     battle.NewPlausibilityValidator(),
		Suspicion:     f.suspicion,
		Random:        random.FixedSource(20250301),
		Publisher:     f.publisher,
		Metrics:       metrics.NewGameMetricsWithRegistry("test", prometheus.NewRegistry()),
		Logger:        log.Discard(),
		Clock:         f.clock.Now,
	}
	for _, m := range mutate {
		m(&cfg, &deps)
	}

	svc, err := NewProgressionService(cfg, deps)
	require.NoError(t, err)
	f.svc = svc

	f.addCharacter(t, testCharacterID, testUserID, game_runtime.DefaultProfile(cfg.InventorySlots))
	return f
}

func (f *progressionFixture) addCharacter(t *testing.T, id, userID string, profile game_runtime.Profile) {
	t.Helper()
	c := &game_runtime.Character{ID: id, UserID: userID, Name: id, Level: 1, Gold: 100, Gems: 10, Power: 100}
	require.NoError(t, c.SetProfile(profile))
	require.NoError(t, f.store.Characters().Create(context.Background(), nil, c))
}

func (f *progressionFixture) character(t *testing.T, id string) (*game_runtime.Character, game_runtime.Profile) {
	t.Helper()
	c, ok := f.store.Character(id)
	require.True(t, ok)
	p, err := c.Profile(50)
	require.NoError(t, err)
	return &c, p
}

func (f *progressionFixture) session(t *testing.T, token string) game_runtime.BattleSession {
	t.Helper()
	s, ok := f.store.Session(token)
	require.True(t, ok)
	return s
}

// plausibleLog 针对关卡内容构造一份能通过校验的战斗日志
func plausibleLog(cfg *StageConfig, issuedAt time.Time) gamemodel.BattleLog {
	start := issuedAt.UnixMilli() + 1000
	duration := int64(40000)
	mobs := cfg.Mobs

	kills := make([]gamemodel.MobKill, 0, len(mobs))
	for i, m := range mobs {
		kills = append(kills, gamemodel.MobKill{
			Name:      m.MobName,
			Level:     1,
			MaxHealth: m.Health,
			Timestamp: start + int64(i*i+1)*3000,
		})
	}

	return gamemodel.BattleLog{
		Version:         1,
		BattleStartTime: start,
		BattleEndTime:   start + duration,
		Chapter:         cfg.Chapter,
		Stage:           cfg.Stage,
		PlayerLevel:     1,
		PlayerPower:     100,
		Stats: gamemodel.BattleStats{
			TotalDamageDealt:    int64(gamemodel.TotalHealth(mobs)),
			TotalDamageReceived: int64(gamemodel.TotalDamage(mobs)),
			MobsKilled:          len(mobs),
			DurationMS:          duration,
		},
		MobKills: kills,
	}
}

func (f *progressionFixture) issue(t *testing.T, chapter, stageNum int) *StageConfig {
	t.Helper()
	cfg, err := f.svc.IssueStageConfig(context.Background(), testUserID, testCharacterID, chapter, stageNum)
	require.NoError(t, err)
	return cfg
}

func (f *progressionFixture) completeRequest(cfg *StageConfig) *CompleteStageRequest {
	return &CompleteStageRequest{
		UserID:       testUserID,
		CharacterID:  testCharacterID,
		SessionToken: cfg.SessionToken,
		Chapter:      cfg.Chapter,
		Stage:        cfg.Stage,
		BattleLog:    plausibleLog(cfg, f.clock.Now()),
	}
}

func requireCode(t *testing.T, err error, code xerrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := xerrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestIssueStageConfig_Success(t *testing.T) {
	f := newProgressionFixture(t)

	cfg := f.issue(t, 1, 1)
	assert.NotEmpty(t, cfg.SessionToken)
	assert.Equal(t, f.clock.Now().Add(600*time.Second).Unix(), cfg.ExpiresAt)
	assert.Equal(t, "Chapter 1-1", cfg.StageName)

	// 同一种子生成的内容与签发内容一致
	rng, _ := random.FixedSource(20250301).New()
	want := stage.NewGenerator().Generate(1, 1, rng)
	assert.Equal(t, want, cfg.StageContent)

	s := f.session(t, cfg.SessionToken)
	assert.Equal(t, testCharacterID, s.CharacterID)
	assert.False(t, s.IsUsed)
	snap, err := s.DecodeSnapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(20250301), snap.Seed)
	assert.Equal(t, cfg.StageContent, snap.Content)
}

func TestIssueStageConfig_Errors(t *testing.T) {
	f := newProgressionFixture(t)
	f.addCharacter(t, "char-other", "user-2", game_runtime.DefaultProfile(50))
	ctx := context.Background()

	tests := []struct {
		name        string
		userID      string
		characterID string
		chapter     int
		stage       int
		code        xerrors.ErrorCode
	}{
		{"chapter zero", testUserID, testCharacterID, 0, 1, xerrors.CodeInvalidChapterStage},
		{"chapter too high", testUserID, testCharacterID, 21, 1, xerrors.CodeInvalidChapterStage},
		{"stage too high", testUserID, testCharacterID, 1, 11, xerrors.CodeInvalidChapterStage},
		{"stage locked", testUserID, testCharacterID, 1, 2, xerrors.CodeStageLocked},
		{"next chapter locked", testUserID, testCharacterID, 2, 1, xerrors.CodeStageLocked},
		{"not owner", testUserID, "char-other", 1, 1, xerrors.CodeCharacterNotFound},
		{"missing character", testUserID, "missing", 1, 1, xerrors.CodeCharacterNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.IssueStageConfig(ctx, tt.userID, tt.characterID, tt.chapter, tt.stage)
			requireCode(t, err, tt.code)
		})
	}
	assert.Zero(t, f.store.SessionCount())
}

func TestIssueStageConfig_Throttled(t *testing.T) {
	f := newProgressionFixture(t, func(_ *config.GameConfig, d *ProgressionDependencies) {
		d.Limiter = NewIssueLimiter(nil, 2, time.Minute, log.Discard())
	})

	f.issue(t, 1, 1)
	f.issue(t, 1, 1)
	_, err := f.svc.IssueStageConfig(context.Background(), testUserID, testCharacterID, 1, 1)
	requireCode(t, err, xerrors.CodeRateLimitExceeded)
	assert.Equal(t, 2, f.store.SessionCount())
}

func TestIssueStageConfig_TokensUnique(t *testing.T) {
	f := newProgressionFixture(t, func(_ *config.GameConfig, d *ProgressionDependencies) {
		d.Random = random.CryptoSource{}
	})

	const n = 10000
	seen := make(map[string]struct{}, n)
	for range n {
		cfg := f.issue(t, 1, 1)
		_, dup := seen[cfg.SessionToken]
		require.False(t, dup, "duplicate token %s", cfg.SessionToken)
		seen[cfg.SessionToken] = struct{}{}
	}
	assert.Equal(t, n, f.store.SessionCount())
}

func TestIssueStageConfig_RetriesTokenCollision(t *testing.T) {
	f := newProgressionFixture(t)
	tokens := []string{"fixed", "fixed", "fresh"}
	f.svc.newToken = func() string {
		tok := tokens[0]
		tokens = tokens[1:]
		return tok
	}

	first := f.issue(t, 1, 1)
	second := f.issue(t, 1, 1)
	assert.Equal(t, "fixed", first.SessionToken)
	assert.Equal(t, "fresh", second.SessionToken)
}

func TestCompleteStage_AppliesRewardsOnce(t *testing.T) {
	f := newProgressionFixture(t)
	cfg := f.issue(t, 1, 1)
	req := f.completeRequest(cfg)
	f.clock.Advance(45 * time.Second)

	result, err := f.svc.CompleteStage(context.Background(), req)
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)
	assert.False(t, result.AlreadyCompleted)
	require.NotNil(t, result.Rewards)
	assert.Equal(t, cfg.Rewards, *result.Rewards)
	require.NotNil(t, result.Progression)
	assert.Equal(t, []string{"1-1"}, result.Progression.CompletedStages)
	assert.Equal(t, 1, result.Progression.HighestChapter)
	assert.Equal(t, 1, result.Progression.HighestStage)

	c, p := f.character(t, testCharacterID)
	assert.Equal(t, 100+cfg.Rewards.Gold, c.Gold)
	assert.Equal(t, 10+int64(cfg.Rewards.Gems), c.Gems)
	assert.Equal(t, cfg.Rewards.XP, c.Experience)
	assert.Len(t, p.Inventory.Items, len(cfg.Rewards.Items))
	assert.True(t, p.Progression.Chapters.HasCompleted(1, 1))
	assert.Equal(t, int64(155), c.Power)

	s := f.session(t, cfg.SessionToken)
	assert.True(t, s.IsUsed)
	assert.True(t, s.UsedAt.Valid)

	require.Len(t, f.publisher.subjects, 1)
	assert.Equal(t, "game.stage.completed", f.publisher.subjects[0])

	// 第二次提交：已完成，货币不变
	again, err := f.svc.CompleteStage(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, again.Success)
	assert.True(t, again.AlreadyCompleted)
	assert.Equal(t, "Session already used", again.Error)

	c2, _ := f.character(t, testCharacterID)
	assert.Equal(t, c.Gold, c2.Gold)
	assert.Equal(t, c.Experience, c2.Experience)
}

func TestCompleteStage_ConcurrentCompletionAppliesOnce(t *testing.T) {
	f := newProgressionFixture(t)
	cfg := f.issue(t, 1, 1)
	req := f.completeRequest(cfg)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		already   int
	)
	start := make(chan struct{})
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			r := *req
			result, err := f.svc.CompleteStage(context.Background(), &r)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if result.Success {
				successes++
			}
			if result.AlreadyCompleted {
				already++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, already)

	c, p := f.character(t, testCharacterID)
	assert.Equal(t, 100+cfg.Rewards.Gold, c.Gold)
	assert.Equal(t, cfg.Rewards.XP, c.Experience)
	assert.Equal(t, []string{"1-1"}, p.Progression.Chapters.CompletedStages)
}

func TestCompleteStage_ReplayAfterRetentionPurge(t *testing.T) {
	f := newProgressionFixture(t)
	cfg := f.issue(t, 1, 1)
	req := f.completeRequest(cfg)
	f.clock.Advance(45 * time.Second)

	first, err := f.svc.CompleteStage(context.Background(), req)
	require.NoError(t, err)
	require.True(t, first.Success, first.Error)

	f.clock.Advance(8 * 24 * time.Hour)
	_, err = f.store.Sessions().PurgeExpiredBefore(context.Background(), f.clock.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)

	again, err := f.svc.CompleteStage(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, again.Success)
	assert.True(t, again.AlreadyCompleted)
}

func TestCompleteStage_ExpiredSession(t *testing.T) {
	f := newProgressionFixture(t)
	cfg := f.issue(t, 1, 1)
	req := f.completeRequest(cfg)
	f.clock.Advance(601 * time.Second)

	result, err := f.svc.CompleteStage(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.False(t, result.AlreadyCompleted)
	assert.Equal(t, "Session expired", result.Error)
	assert.Nil(t, result.Rewards)

	c, _ := f.character(t, testCharacterID)
	assert.Equal(t, int64(100), c.Gold)
	assert.False(t, f.session(t, cfg.SessionToken).IsUsed)
}

func TestCompleteStage_ExactlyAtExpiryStillValid(t *testing.T) {
	f := newProgressionFixture(t)
	cfg := f.issue(t, 1, 1)
	req := f.completeRequest(cfg)
	f.clock.Advance(600 * time.Second)

	result, err := f.svc.CompleteStage(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Success, result.Error)
}

func TestCompleteStage_ChapterStageMismatch(t *testing.T) {
	f := newProgressionFixture(t)
	cfg := f.issue(t, 1, 1)
	req := f.completeRequest(cfg)
	req.Stage = 2

	result, err := f.svc.CompleteStage(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Chapter/stage mismatch", result.Error)
	assert.False(t, f.session(t, cfg.SessionToken).IsUsed)
}

func TestCompleteStage_ValidationRejectedKeepsSessionUsable(t *testing.T) {
	f := newProgressionFixture(t)
	cfg := f.issue(t, 1, 1)
	req := f.completeRequest(cfg)
	bad := *req
	bad.BattleLog.Stats.MobsKilled = len(cfg.Mobs) + 1
	bad.BattleLog.Stats.TotalDamageDealt = 1_000_000

	result, err := f.svc.CompleteStage(context.Background(), &bad)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t,
		fmt.Sprintf("Battle validation failed: Kill count mismatch: expected %d, got %d", len(cfg.Mobs), len(cfg.Mobs)+1),
		result.Error)
	assert.False(t, f.session(t, cfg.SessionToken).IsUsed)

	c, _ := f.character(t, testCharacterID)
	assert.Equal(t, int64(100), c.Gold)

	// 会话未被消费，合法日志仍可结算
	ok, err := f.svc.CompleteStage(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, ok.Success, ok.Error)

	// 两次到达校验器的上报都会输出可疑度
	require.Len(t, f.suspicion.events, 2)
	assert.False(t, f.suspicion.events[0].Accepted)
	assert.True(t, f.suspicion.events[1].Accepted)
}

func TestCompleteStage_DamageTooLowRejected(t *testing.T) {
	f := newProgressionFixture(t)
	cfg := f.issue(t, 1, 1)
	req := f.completeRequest(cfg)
	total := gamemodel.TotalHealth(cfg.Mobs)
	req.BattleLog.Stats.TotalDamageDealt = int64(total/2 - 1)

	result, err := f.svc.CompleteStage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Battle validation failed: Damage dealt too low for mob health", result.Error)
}

func TestCompleteStage_InvalidToken(t *testing.T) {
	f := newProgressionFixture(t)
	f.addCharacter(t, "char-2", testUserID, game_runtime.DefaultProfile(50))
	cfg := f.issue(t, 1, 1)

	_, err := f.svc.CompleteStage(context.Background(), &CompleteStageRequest{
		UserID: testUserID, CharacterID: testCharacterID, SessionToken: "nope", Chapter: 1, Stage: 1,
	})
	requireCode(t, err, xerrors.CodeInvalidSessionToken)

	// 令牌属于其他角色
	req := f.completeRequest(cfg)
	req.CharacterID = "char-2"
	_, err = f.svc.CompleteStage(context.Background(), req)
	requireCode(t, err, xerrors.CodeInvalidSessionToken)
	assert.Equal(t, 400, xerrors.GetHTTPStatus(xerrors.CodeInvalidSessionToken))
}

func TestCompleteStage_StorageFailureDoesNotConsumeSession(t *testing.T) {
	f := newProgressionFixture(t)
	cfg := f.issue(t, 1, 1)
	f.store.SetUpdateError(errors.New("disk full"))

	_, err := f.svc.CompleteStage(context.Background(), f.completeRequest(cfg))
	requireCode(t, err, xerrors.CodeDatabaseError)
	assert.False(t, f.session(t, cfg.SessionToken).IsUsed)

	f.store.SetUpdateError(nil)
	result, err := f.svc.CompleteStage(context.Background(), f.completeRequest(cfg))
	require.NoError(t, err)
	assert.True(t, result.Success, result.Error)
}

func TestCompleteStage_LevelUp(t *testing.T) {
	f := newProgressionFixture(t)
	cfg := f.issue(t, 1, 1)

	c, _ := f.store.Character(testCharacterID)
	c.Experience = max(400-cfg.Rewards.XP+1, 0)
	f.store.PutCharacter(c)

	result, err := f.svc.CompleteStage(context.Background(), f.completeRequest(cfg))
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)
	assert.True(t, result.LevelUp)
	require.NotNil(t, result.NewLevel)
	assert.Equal(t, 2, *result.NewLevel)

	updated, _ := f.character(t, testCharacterID)
	assert.Equal(t, 2, updated.Level)
	assert.Equal(t, 5, updated.FreeStatPoints)
	assert.Equal(t, int64(165), updated.Power)
}

func TestCompleteStage_BossAdvancesChapter(t *testing.T) {
	f := newProgressionFixture(t)

	profile := game_runtime.DefaultProfile(50)
	for st := 1; st <= 9; st++ {
		profile.Progression.Chapters.CompletedStages = append(profile.Progression.Chapters.CompletedStages, gamemodel.StageKey(1, st))
	}
	profile.Progression.Chapters.HighestStage = 10
	c, _ := f.store.Character(testCharacterID)
	require.NoError(t, c.SetProfile(profile))
	f.store.PutCharacter(c)

	cfg := f.issue(t, 1, 10)
	require.Len(t, cfg.Mobs, 1)
	result, err := f.svc.CompleteStage(context.Background(), f.completeRequest(cfg))
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 2, result.Progression.HighestChapter)
	assert.Equal(t, 1, result.Progression.HighestStage)

	progress, err := f.svc.GetChapterProgress(context.Background(), testUserID, testCharacterID)
	require.NoError(t, err)
	require.Len(t, progress.Chapters, 20)
	assert.True(t, progress.Chapters[1].IsUnlocked)
	assert.Equal(t, 10, progress.Chapters[0].StagesCompleted)
	assert.False(t, progress.Chapters[2].IsUnlocked)
}

func TestNewProgressionService_RefusesPermissiveInProduction(t *testing.T) {
	store := memory.NewStore()
	cfg := config.DefaultGameConfig()
	cfg.Environment = config.EnvProduction

	_, err := NewProgressionService(cfg, ProgressionDependencies{
		Transactor:    store,
		SessionRepo:   store.Sessions(),
		CharacterRepo: store.Characters(),
		Validator:     battle.NewPermissiveValidator(),
		Logger:        log.Discard(),
	})
	assert.Error(t, err)

	cfg.Environment = "development"
	svc, err := NewProgressionService(cfg, ProgressionDependencies{
		Transactor:    store,
		SessionRepo:   store.Sessions(),
		CharacterRepo: store.Characters(),
		Validator:     battle.NewPermissiveValidator(),
		Logger:        log.Discard(),
	})
	require.NoError(t, err)
	assert.Equal(t, "permissive", svc.ValidatorName())
}

func TestNewValidator(t *testing.T) {
	cfg := config.DefaultGameConfig()
	v, err := NewValidator(cfg)
	require.NoError(t, err)
	assert.Equal(t, "plausibility", v.Name())

	cfg.ValidatorMode = config.ValidatorPermissive
	v, err = NewValidator(cfg)
	require.NoError(t, err)
	assert.Equal(t, "permissive", v.Name())

	cfg.Environment = config.EnvProduction
	_, err = NewValidator(cfg)
	assert.Error(t, err)

	cfg.ValidatorMode = "lenient"
	_, err = NewValidator(cfg)
	assert.Error(t, err)
}

func TestChapterProgressByID(t *testing.T) {
	f := newProgressionFixture(t)

	progress, err := f.svc.ChapterProgressByID(context.Background(), testCharacterID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.HighestChapter)
	assert.True(t, progress.Chapters[0].IsUnlocked)
	assert.False(t, progress.Chapters[1].IsUnlocked)

	_, err = f.svc.ChapterProgressByID(context.Background(), "missing")
	requireCode(t, err, xerrors.CodeCharacterNotFound)
}
