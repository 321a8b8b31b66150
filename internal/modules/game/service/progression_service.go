package service

import (
	"context"
	"errors"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/google/uuid"

	"rpg-backend/internal/entity/game_runtime"
	"rpg-backend/internal/model/gamemodel"
	"rpg-backend/internal/modules/game/battle"
	"rpg-backend/internal/modules/game/economy"
	"rpg-backend/internal/modules/game/stage"
	"rpg-backend/internal/pkg/config"
	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/metrics"
	"rpg-backend/internal/pkg/notify"
	"rpg-backend/internal/pkg/random"
	"rpg-backend/internal/pkg/xerrors"
	"rpg-backend/internal/repository/interfaces"
)

// 结算失败时返回给客户端的原因
const (
	ReasonSessionUsed     = "Session already used"
	ReasonSessionExpired  = "Session expired"
	ReasonStageMismatch   = "Chapter/stage mismatch"
	reasonValidatorPrefix = "Battle validation failed: "
)

const tokenInsertAttempts = 3

// ProgressionDependencies 关卡进度服务的协作者
type ProgressionDependencies struct {
	Transactor    interfaces.Transactor
	SessionRepo   interfaces.BattleSessionRepository
	CharacterRepo interfaces.CharacterRepository
	Validator     battle.Validator
	Suspicion     battle.SuspicionReporter
	Limiter       IssueLimiter
	Random        random.Source
	Publisher     notify.Publisher
	Metrics       *metrics.GameMetrics
	Logger        log.Logger
	Clock         func() time.Time
}

// ProgressionService 关卡配置签发与结算
type ProgressionService struct {
	cfg           config.GameConfig
	tx            interfaces.Transactor
	sessionRepo   interfaces.BattleSessionRepository
	characterRepo interfaces.CharacterRepository
	generator     *stage.Generator
	validator     battle.Validator
	suspicion     battle.SuspicionReporter
	limiter       IssueLimiter
	random        random.Source
	publisher     notify.Publisher
	metrics       *metrics.GameMetrics
	logger        log.Logger
	clock         func() time.Time
	newToken      func() string
}

// NewProgressionService 生产环境拒绝使用宽松校验器
func NewProgressionService(cfg config.GameConfig, deps ProgressionDependencies) (*ProgressionService, error) {
	if deps.Transactor == nil || deps.SessionRepo == nil || deps.CharacterRepo == nil {
		return nil, errors.New("progression service requires transactor and repositories")
	}
	if deps.Validator == nil {
		deps.Validator = battle.NewPlausibilityValidator()
	}
	if _, ok := deps.Validator.(*battle.PermissiveValidator); ok && cfg.IsProduction() {
		return nil, errors.New("permissive battle validator is not allowed in production")
	}
	if deps.Logger == nil {
		deps.Logger = log.GetLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.DefaultGameMetrics
	}
	if deps.Suspicion == nil {
		deps.Suspicion = battle.NewSuspicionReporter(deps.Logger, deps.Metrics, deps.Publisher)
	}
	if deps.Limiter == nil {
		deps.Limiter = unlimited{}
	}
	if deps.Random == nil {
		deps.Random = random.CryptoSource{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	return &ProgressionService{
		cfg:           cfg,
		tx:            deps.Transactor,
		sessionRepo:   deps.SessionRepo,
		characterRepo: deps.CharacterRepo,
		generator:     stage.NewGenerator(),
		validator:     deps.Validator,
		suspicion:     deps.Suspicion,
		limiter:       deps.Limiter,
		random:        deps.Random,
		publisher:     deps.Publisher,
		metrics:       deps.Metrics,
		logger:        deps.Logger.With("component", "progression"),
		clock:         deps.Clock,
		newToken:      uuid.NewString,
	}, nil
}

// ValidatorName 当前使用的校验器
func (s *ProgressionService) ValidatorName() string {
	return s.validator.Name()
}

// ChapterProgress 章节进度
type ChapterProgress struct {
	CharacterID     string                `json:"character_id"`
	HighestChapter  int                   `json:"highest_chapter"`
	HighestStage    int                   `json:"highest_stage"`
	CompletedStages []string              `json:"completed_stages"`
	Chapters        []economy.ChapterInfo `json:"chapters"`
}

// GetChapterProgress 查询用户自己角色的章节进度
func (s *ProgressionService) GetChapterProgress(ctx context.Context, userID, characterID string) (*ChapterProgress, error) {
	character, err := s.loadOwnedCharacter(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}
	return s.chapterProgress(character)
}

// ChapterProgressByID 内部 RPC 使用，不做归属检查
func (s *ProgressionService) ChapterProgressByID(ctx context.Context, characterID string) (*ChapterProgress, error) {
	character, err := s.characterRepo.GetByID(ctx, nil, characterID)
	if err != nil {
		return nil, characterLookupError(err, characterID)
	}
	return s.chapterProgress(character)
}

func (s *ProgressionService) chapterProgress(character *game_runtime.Character) (*ChapterProgress, error) {
	profile, err := character.Profile(s.cfg.InventorySlots)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDataIntegrityError, "角色数据损坏")
	}
	chapters := profile.Progression.Chapters
	return &ChapterProgress{
		CharacterID:     character.ID,
		HighestChapter:  chapters.HighestChapter,
		HighestStage:    chapters.HighestStage,
		CompletedStages: chapters.CompletedStages,
		Chapters:        economy.ChapterOverview(chapters, s.cfg.TotalChapters, s.cfg.StagesPerChapter),
	}, nil
}

// StageConfig 关卡配置与会话令牌，关卡内容字段平铺输出
type StageConfig struct {
	SessionToken string `json:"session_token" example:"3f2b8c1e-9a4d-4f6b-8e21-7c5d9a0b1e2f"`
	ExpiresAt    int64  `json:"expires_at" example:"1700000600"`
	gamemodel.StageContent
}

// IssueStageConfig 生成关卡内容并签发一次性战斗会话
func (s *ProgressionService) IssueStageConfig(ctx context.Context, userID, characterID string, chapter, stageNum int) (*StageConfig, error) {
	if chapter < 1 || chapter > s.cfg.TotalChapters || stageNum < 1 || stageNum > s.cfg.StagesPerChapter {
		return nil, xerrors.NewInvalidChapterStageError(chapter, stageNum)
	}

	character, err := s.loadOwnedCharacter(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}
	profile, err := character.Profile(s.cfg.InventorySlots)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDataIntegrityError, "角色数据损坏")
	}
	if !economy.IsStageUnlocked(profile.Progression.Chapters, chapter, stageNum, s.cfg.StagesPerChapter) {
		return nil, xerrors.NewStageLockedError(chapter, stageNum)
	}

	if !s.limiter.Allow(ctx, characterID) {
		s.metrics.RecordIssueThrottled("")
		return nil, xerrors.FromCode(xerrors.CodeRateLimitExceeded).
			WithMetadata("character_id", characterID)
	}

	rng, seed := s.random.New()
	content := s.generator.Generate(chapter, stageNum, rng)
	snapshot := gamemodel.NewSessionSnapshot(content, seed)

	session, err := s.persistSession(ctx, characterID, snapshot)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSessionIssued(content.Kind(), "")
	log.LogGameEvent(ctx, s.logger, "session_issued", characterID,
		log.Int("chapter", chapter),
		log.Int("stage", stageNum),
		log.Int("mobs", len(content.Mobs)),
		log.Int64("seed", seed),
	)

	return &StageConfig{
		SessionToken: session.SessionToken,
		ExpiresAt:    session.ExpiresAt.Unix(),
		StageContent: content,
	}, nil
}

// persistSession 令牌冲突时换一个令牌重试
func (s *ProgressionService) persistSession(ctx context.Context, characterID string, snapshot gamemodel.SessionSnapshot) (*game_runtime.BattleSession, error) {
	var lastErr error
	for range tokenInsertAttempts {
		session, err := game_runtime.NewBattleSession(s.newToken(), characterID, snapshot, s.clock(), s.cfg.SessionTTL)
		if err != nil {
			return nil, xerrors.Wrap(err, xerrors.CodeInternalError, "创建战斗会话失败")
		}
		err = s.sessionRepo.Create(ctx, nil, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, interfaces.ErrDuplicate) {
			return nil, xerrors.NewDatabaseError("insert", "battle_sessions", err)
		}
		lastErr = err
		s.logger.WarnContext(ctx, "会话令牌冲突，重新生成", log.String("character_id", characterID))
	}
	return nil, xerrors.NewDatabaseError("insert", "battle_sessions", lastErr)
}

// CompleteStageRequest 结算请求
type CompleteStageRequest struct {
	UserID       string
	CharacterID  string
	SessionToken string
	Chapter      int
	Stage        int
	BattleLog    gamemodel.BattleLog
}

// CompleteStageResult 结算结果；业务失败以 Success=false 表达
type CompleteStageResult struct {
	Success          bool                          `json:"success"`
	AlreadyCompleted bool                          `json:"already_completed"`
	Error            string                        `json:"error,omitempty"`
	Rewards          *gamemodel.RewardPackage      `json:"rewards,omitempty"`
	Progression      *gamemodel.ChapterProgression `json:"progression,omitempty"`
	LevelUp          bool                          `json:"level_up"`
	NewLevel         *int                          `json:"new_level,omitempty"`
}

func failure(reason string) *CompleteStageResult {
	return &CompleteStageResult{Error: reason}
}

func alreadyCompleted() *CompleteStageResult {
	return &CompleteStageResult{AlreadyCompleted: true, Error: ReasonSessionUsed}
}

// StageCompletedEvent 结算成功后发布到 NATS
type StageCompletedEvent struct {
	CharacterID  string `json:"character_id"`
	SessionToken string `json:"session_token"`
	Chapter      int    `json:"chapter"`
	Stage        int    `json:"stage"`
	Gold         int64  `json:"gold"`
	Gems         int    `json:"gems"`
	XP           int64  `json:"xp"`
	Items        int    `json:"items"`
	LevelUp      bool   `json:"level_up"`
	CompletedAt  int64  `json:"completed_at"`
}

// CompleteStage 校验战斗日志并一次性发放会话快照中的奖励
//
// 检查顺序：会话归属 -> 是否已使用 -> 是否过期 -> 章节关卡一致 -> 战斗校验 -> 事务内条件更新并发奖
func (s *ProgressionService) CompleteStage(ctx context.Context, req *CompleteStageRequest) (*CompleteStageResult, error) {
	if req == nil || req.SessionToken == "" {
		return nil, xerrors.NewInvalidSessionTokenError()
	}

	session, err := s.sessionRepo.GetByToken(ctx, nil, req.SessionToken)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, xerrors.NewInvalidSessionTokenError()
	}
	if err != nil {
		return nil, xerrors.NewDatabaseError("select", "battle_sessions", err)
	}
	if session.CharacterID != req.CharacterID {
		return nil, xerrors.NewInvalidSessionTokenError()
	}

	if session.IsUsed {
		s.metrics.RecordCompletion(metrics.CompletionAlreadyCompleted, "")
		return alreadyCompleted(), nil
	}

	now := s.clock()
	if session.IsExpired(now) {
		s.metrics.RecordCompletion(metrics.CompletionExpired, "")
		return failure(ReasonSessionExpired), nil
	}

	if req.Chapter != session.Chapter || req.Stage != session.Stage {
		s.metrics.RecordCompletion(metrics.CompletionMismatch, "")
		return failure(ReasonStageMismatch), nil
	}

	snapshot, err := session.DecodeSnapshot()
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeDataIntegrityError, "会话快照损坏")
	}
	content := snapshot.Content

	verdict := s.validator.Validate(req.BattleLog, battle.Session{
		Chapter:   session.Chapter,
		Stage:     session.Stage,
		CreatedAt: session.CreatedAt,
		Mobs:      content.Mobs,
	})
	s.suspicion.Report(ctx, battle.SuspicionEvent{
		CharacterID:  req.CharacterID,
		SessionToken: req.SessionToken,
		Chapter:      session.Chapter,
		Stage:        session.Stage,
		Score:        battle.SuspicionScore(req.BattleLog, content.Mobs),
		Accepted:     verdict.Accepted,
		Reason:       verdict.Reason,
	})
	if !verdict.Accepted {
		s.metrics.RecordCompletion(metrics.CompletionRejected, "")
		s.logger.InfoContext(ctx, "战斗日志未通过校验",
			log.String("character_id", req.CharacterID),
			log.String("reason", verdict.Reason))
		return failure(reasonValidatorPrefix + verdict.Reason), nil
	}

	var (
		won         bool
		outcome     economy.Outcome
		progression gamemodel.ChapterProgression
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context, exec boil.ContextExecutor) error {
		var err error
		won, err = s.sessionRepo.MarkUsed(ctx, exec, req.SessionToken, now)
		if err != nil {
			return xerrors.NewDatabaseError("update", "battle_sessions", err)
		}
		if !won {
			return nil
		}
		outcome, progression, err = s.applyRewards(ctx, exec, req, content)
		return err
	})
	if err != nil {
		if appErr, ok := xerrors.As(err); ok {
			return nil, appErr
		}
		return nil, xerrors.NewDatabaseError("transaction", "characters", err)
	}
	if !won {
		s.metrics.RecordCompletion(metrics.CompletionAlreadyCompleted, "")
		return alreadyCompleted(), nil
	}

	s.afterCommit(ctx, req, content, outcome, now)

	rewards := content.Rewards
	result := &CompleteStageResult{
		Success:     true,
		Rewards:     &rewards,
		Progression: &progression,
		LevelUp:     outcome.LevelUp,
	}
	if outcome.LevelUp {
		level := outcome.NewLevel
		result.NewLevel = &level
	}
	return result, nil
}

// applyRewards 在事务内锁定角色并写入奖励
func (s *ProgressionService) applyRewards(ctx context.Context, exec boil.ContextExecutor, req *CompleteStageRequest, content gamemodel.StageContent) (economy.Outcome, gamemodel.ChapterProgression, error) {
	character, err := s.characterRepo.GetByIDForUpdate(ctx, exec, req.CharacterID)
	if err != nil {
		return economy.Outcome{}, gamemodel.ChapterProgression{}, characterLookupError(err, req.CharacterID)
	}
	if req.UserID != "" && character.UserID != req.UserID {
		return economy.Outcome{}, gamemodel.ChapterProgression{}, xerrors.NewCharacterNotFoundError(req.CharacterID)
	}

	profile, err := character.Profile(s.cfg.InventorySlots)
	if err != nil {
		return economy.Outcome{}, gamemodel.ChapterProgression{}, xerrors.Wrap(err, xerrors.CodeDataIntegrityError, "角色数据损坏")
	}

	ledger := economy.Ledger{
		Gold:           character.Gold,
		Gems:           character.Gems,
		XP:             character.Experience,
		Level:          character.Level,
		FreeStatPoints: character.FreeStatPoints,
		Inventory:      profile.Inventory,
		Progression:    profile.Progression,
	}
	outcome := economy.ApplyRewards(&ledger, content.Rewards, content.Chapter, content.Stage, economy.Rules{
		InventoryCap:      s.cfg.InventorySlots,
		LevelUpStatPoints: s.cfg.LevelUpStatPoints,
		StagesPerChapter:  s.cfg.StagesPerChapter,
	})

	character.Gold = ledger.Gold
	character.Gems = ledger.Gems
	character.Experience = ledger.XP
	character.Level = ledger.Level
	character.FreeStatPoints = ledger.FreeStatPoints
	character.Power = economy.CalculatePower(ledger.Level, profile.Stats)
	profile.Inventory = ledger.Inventory
	profile.Progression = ledger.Progression

	if err := character.SetProfile(profile); err != nil {
		return economy.Outcome{}, gamemodel.ChapterProgression{}, xerrors.Wrap(err, xerrors.CodeInternalError, "序列化角色数据失败")
	}
	if err := s.characterRepo.UpdateProgress(ctx, exec, character); err != nil {
		return economy.Outcome{}, gamemodel.ChapterProgression{}, xerrors.NewDatabaseError("update", "characters", err)
	}
	return outcome, ledger.Progression.Chapters, nil
}

// afterCommit 指标、日志与事件，失败不影响结算结果
func (s *ProgressionService) afterCommit(ctx context.Context, req *CompleteStageRequest, content gamemodel.StageContent, outcome economy.Outcome, now time.Time) {
	s.metrics.RecordCompletion(metrics.CompletionAccepted, "")
	s.metrics.ObserveBattleDuration(time.Duration(req.BattleLog.DurationWallMS())*time.Millisecond, "")
	for _, item := range content.Rewards.Items[:outcome.ItemsAdded] {
		s.metrics.RecordItemDropped(item.Rarity.String(), "")
	}
	if outcome.LevelUp {
		s.metrics.RecordLevelUp("")
	}
	if outcome.ItemsOverflow > 0 {
		s.metrics.RecordInventoryOverflow(outcome.ItemsOverflow, "")
		s.logger.WarnContext(ctx, "背包已满，部分掉落被丢弃",
			log.String("character_id", req.CharacterID),
			log.Int("dropped", outcome.ItemsOverflow))
	}

	rewards := content.Rewards
	log.LogGameEvent(ctx, s.logger, "stage_completed", req.CharacterID,
		log.Int("chapter", content.Chapter),
		log.Int("stage", content.Stage),
		log.Int64("gold", rewards.Gold),
		log.Int64("xp", rewards.XP),
		log.Int("items", outcome.ItemsAdded),
		log.Bool("level_up", outcome.LevelUp),
	)

	if s.publisher == nil {
		return
	}
	event := StageCompletedEvent{
		CharacterID:  req.CharacterID,
		SessionToken: req.SessionToken,
		Chapter:      content.Chapter,
		Stage:        content.Stage,
		Gold:         rewards.Gold,
		Gems:         rewards.Gems,
		XP:           rewards.XP,
		Items:        outcome.ItemsAdded,
		LevelUp:      outcome.LevelUp,
		CompletedAt:  now.Unix(),
	}
	if err := s.publisher.Publish(ctx, notify.SubjectStageCompleted, event); err != nil {
		s.logger.WarnContext(ctx, "发布关卡完成事件失败", log.Any("error", err))
	}
}

func (s *ProgressionService) loadOwnedCharacter(ctx context.Context, userID, characterID string) (*game_runtime.Character, error) {
	character, err := s.characterRepo.GetByID(ctx, nil, characterID)
	if err != nil {
		return nil, characterLookupError(err, characterID)
	}
	if character.UserID != userID {
		return nil, xerrors.NewCharacterNotFoundError(characterID)
	}
	return character, nil
}

func characterLookupError(err error, characterID string) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return xerrors.NewCharacterNotFoundError(characterID)
	}
	return xerrors.NewDatabaseError("select", "characters", err)
}
